package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"movie-ticket-cli/config"
	"movie-ticket-cli/logger"
	"movie-ticket-cli/service"
	"movie-ticket-cli/store"
	"movie-ticket-cli/tui"
)

const appName = "movie-ticket-cli"

var _ service.Gateway = (*store.FileStore)(nil)

// session is the state shared by every command once the data directory has
// been opened.
type session struct {
	cfg   *config.Config
	log   *zap.Logger
	store *store.FileStore
	svc   *service.Service
}

func (s *session) open(cmd *cobra.Command) error {
	if s.svc != nil {
		return nil
	}
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
		cfg = cfg.WithDataDir(dir)
	}

	s.cfg = cfg
	s.log = logger.NewOrNop(cfg.Env, cfg.LogLevel, cfg.LogFile)
	s.store = store.NewFileStore(cfg.DataDir)

	svc, err := service.Open(s.store,
		service.WithLogger(s.log),
		service.WithMaxSeatAttempts(cfg.MaxSeatAttempts),
	)
	s.svc = svc
	if err != nil {
		if !service.IsPersistence(err) {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}
	return nil
}

func (s *session) close() {
	if s.log != nil {
		_ = s.log.Sync()
	}
}

// NewRootCmd wires the TUI and the scriptable subcommands.
func NewRootCmd(version, commit string) *cobra.Command {
	s := &session{}

	rootCmd := &cobra.Command{
		Use:           appName,
		Short:         "Movie ticket booking from the terminal",
		Long:          `Book seats, cancel bookings and browse your booking history without leaving the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return s.open(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			s.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := tea.NewProgram(tui.New(s.svc), tea.WithAltScreen()).Run()
			return err
		},
	}
	rootCmd.PersistentFlags().String("data-dir", "", "directory holding movies.json, bookings.json and the booking history")

	rootCmd.AddCommand(
		newVersionCmd(version, commit),
		newMoviesCmd(s),
		newSeatsCmd(s),
		newHistoryCmd(s),
		newBookCmd(s),
		newCancelCmd(s),
	)
	return rootCmd
}

func newVersionCmd(version, commit string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s", appName, version)
			if commit != "none" && commit != "" {
				fmt.Fprintf(out, " (%s)", commit)
			}
			fmt.Fprintln(out)
		},
	}
}

func Execute(version, commit string) error {
	return NewRootCmd(version, commit).Execute()
}
