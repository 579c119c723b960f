package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"

	"movie-ticket-cli/model"
	"movie-ticket-cli/service"
	"movie-ticket-cli/store"
)

type appState int

const (
	stateMenu appState = iota
	stateSelectMovie
	stateEnterName
	stateEnterCount
	stateSelectSeats
	stateBooking
	stateBookingDone
	stateCancelName
	stateLoadingBookings
	stateSelectBooking
	stateCancelling
	stateCancelDone
	stateHistory
	stateError
)

type appModel struct {
	svc *service.Service

	state     appState
	lastState appState
	err       error

	width  int
	height int

	menuList    list.Model
	movieList   list.Model
	bookingList list.Model
	input       textinput.Model
	inputErr    string
	history     viewport.Model
	spinner     spinner.Model

	movieIndex  int
	movie       *model.Movie
	customer    string
	ticketCount int
	cursor      model.Seat
	picked      []model.Seat
	seatNotice  string

	booking      *model.Booking
	cancellation *service.Cancellation
	saveWarning  error
}

type errMsg struct {
	err            error
	returnState    appState
	returnStateSet bool
}

type bookingMsg struct {
	booking *model.Booking
	err     error
}

type activeBookingsMsg struct {
	bookings []model.Booking
	err      error
}

type cancelMsg struct {
	result *service.Cancellation
	err    error
}

// New builds the TUI on top of an opened booking service.
func New(svc *service.Service) tea.Model {
	m := appModel{
		svc:   svc,
		state: stateMenu,
	}

	m.menuList = newList("Movie Ticket Booking")
	m.menuList.SetFilteringEnabled(false)
	m.menuList.SetShowFilter(false)
	m.menuList.SetItems(buildMenuItems())
	m.movieList = newList("Select Movie")
	m.bookingList = newList("Your Active Bookings")

	m.input = textinput.New()
	m.input.CharLimit = 64
	m.history = viewport.New(0, 0)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	m.spinner = sp

	return m
}

func (m appModel) Init() tea.Cmd {
	return nil
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeViews()
		return m, nil

	case tea.KeyMsg:
		if m.isInputState() {
			return m.handleInputKey(msg)
		}
		if m.handleFilterInput(msg) {
			return m, nil
		}
		next, cmd, handled := m.handleKey(msg)
		if handled {
			return next, cmd
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.isLoadingState() {
			return m, cmd
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		if msg.returnStateSet {
			m.lastState = msg.returnState
		} else {
			m.lastState = recoverStateFrom(m.state)
		}
		m.state = stateError
		return m, nil

	case bookingMsg:
		if msg.booking == nil {
			m.picked = nil
			if movie, err := m.svc.Movie(m.movieIndex); err == nil {
				m.movie = movie
			}
			return m, errWithOptionsCmd(msg.err, stateSelectSeats)
		}
		m.booking = msg.booking
		m.saveWarning = msg.err
		m.state = stateBookingDone
		return m, nil

	case activeBookingsMsg:
		if msg.err != nil {
			if errors.Is(msg.err, service.ErrNoActiveBookings) {
				return m, errWithOptionsCmd(errors.Newf("no active bookings found for %s", m.customer), stateMenu)
			}
			return m, errWithOptionsCmd(msg.err, stateCancelName)
		}
		m.bookingList.ResetFilter()
		m.bookingList.SetItems(buildBookingItems(msg.bookings))
		m.bookingList.Select(0)
		m.state = stateSelectBooking
		return m, nil

	case cancelMsg:
		if msg.result == nil {
			return m, errWithOptionsCmd(msg.err, stateMenu)
		}
		m.cancellation = msg.result
		m.saveWarning = msg.err
		m.state = stateCancelDone
		return m, nil
	}

	var cmd tea.Cmd
	switch m.state {
	case stateMenu:
		m.menuList, cmd = m.menuList.Update(msg)
	case stateSelectMovie:
		m.movieList, cmd = m.movieList.Update(msg)
	case stateSelectBooking:
		m.bookingList, cmd = m.bookingList.Update(msg)
	case stateHistory:
		m.history, cmd = m.history.Update(msg)
	case stateEnterName, stateEnterCount, stateCancelName:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m appModel) View() string {
	header := m.headerView()
	switch m.state {
	case stateBooking, stateLoadingBookings, stateCancelling:
		return header + "\n\n" + m.loadingView()
	case stateMenu:
		return header + "\n\n" + m.menuList.View()
	case stateSelectMovie:
		return header + "\n\n" + m.movieList.View()
	case stateEnterName, stateEnterCount, stateCancelName:
		return header + "\n\n" + m.inputView()
	case stateSelectSeats:
		return header + "\n\n" + m.renderSeatPicker()
	case stateBookingDone:
		return header + "\n\n" + m.bookingSummaryView()
	case stateSelectBooking:
		return header + "\n\n" + m.bookingList.View()
	case stateCancelDone:
		return header + "\n\n" + m.cancelSummaryView()
	case stateHistory:
		return header + "\n\n" + m.history.View()
	case stateError:
		return header + "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(m.err.Error()) + "\n\n" + hint("Press esc to go back or ctrl+c to quit.")
	default:
		return header
	}
}

func (m appModel) headerView() string {
	title := lipgloss.NewStyle().Bold(true).Render("Movie Ticket Booking")
	sub := []string{}
	if m.movie != nil && m.isBookingFlow() {
		sub = append(sub, fmt.Sprintf("Movie: %s (%s)", m.movie.Title, store.FormatPrice(m.movie.Price)))
	}
	if m.customer != "" && m.state != stateMenu && m.state != stateHistory && m.state != stateSelectMovie {
		sub = append(sub, fmt.Sprintf("Customer: %s", m.customer))
	}
	if m.state == stateSelectSeats {
		sub = append(sub, fmt.Sprintf("Tickets: %d/%d", len(m.picked), m.ticketCount))
	}
	meta := strings.Join(sub, " • ")
	if meta != "" {
		meta = "\n" + lipgloss.NewStyle().Faint(true).Render(meta)
	}

	hints := "ctrl+c quit • esc back"
	switch m.state {
	case stateMenu:
		hints = "ctrl+c/q quit • enter select"
	case stateSelectMovie, stateSelectBooking:
		hints = "ctrl+c quit • esc back • type to filter • enter select"
	case stateEnterName, stateEnterCount, stateCancelName:
		hints = "ctrl+c quit • esc back • enter confirm"
	case stateSelectSeats:
		hints = "ctrl+c quit • esc back • arrows/hjkl move • enter/space pick seat • backspace undo"
	case stateBookingDone, stateCancelDone:
		hints = "ctrl+c quit • enter/esc back to menu"
	case stateHistory:
		hints = "ctrl+c quit • esc back • ↑/↓ scroll"
	}
	filterLine := ""
	if listPtr := m.activeList(); listPtr != nil {
		if filter := listPtr.FilterValue(); filter != "" {
			filterLine = "\n" + hint(fmt.Sprintf("Filter: %s", filter))
		}
	}
	return title + meta + filterLine + "\n" + hint(hints)
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit, true
	case "q":
		if m.state == stateMenu {
			return m, tea.Quit, true
		}
	case "esc":
		if listPtr := m.activeList(); listPtr != nil {
			if listPtr.SettingFilter() || listPtr.IsFiltered() {
				listPtr.ResetFilter()
				return m, nil, true
			}
		}
		next, cmd := m.goBack()
		return next, cmd, true
	}

	if m.state == stateSelectSeats {
		return m.handleSeatKey(msg)
	}

	if msg.Type == tea.KeyEnter {
		switch m.state {
		case stateMenu:
			item, ok := m.menuList.SelectedItem().(menuItem)
			if !ok {
				return m, nil, true
			}
			return m.runMenuAction(item.action)
		case stateSelectMovie:
			item, ok := m.movieList.SelectedItem().(movieItem)
			if !ok {
				return m, nil, true
			}
			m.movieIndex = item.index
			m.movie = item.movie
			return m, m.startInput(stateEnterName, "Enter your name", m.customer), true
		case stateSelectBooking:
			item, ok := m.bookingList.SelectedItem().(bookingItem)
			if !ok {
				return m, nil, true
			}
			m.state = stateCancelling
			return m, tea.Batch(m.cancelCmd(m.customer, item.index), m.spinner.Tick), true
		case stateBookingDone, stateCancelDone:
			m.state = stateMenu
			return m, nil, true
		}
	}
	return m, nil, false
}

func (m appModel) runMenuAction(action menuAction) (tea.Model, tea.Cmd, bool) {
	switch action {
	case actionBook:
		m.movieList.ResetFilter()
		m.movieList.SetItems(buildMovieItems(m.svc.Catalog()))
		m.state = stateSelectMovie
		return m, nil, true
	case actionCancel:
		return m, m.startInput(stateCancelName, "Enter your name for cancellation", m.customer), true
	case actionHistory:
		m.history.SetContent(m.historyContent())
		m.history.GotoTop()
		m.state = stateHistory
		return m, nil, true
	case actionQuit:
		return m, tea.Quit, true
	}
	return m, nil, true
}

func (m appModel) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		return m.goBack()
	case tea.KeyEnter:
		return m.submitInput()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) submitInput() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	switch m.state {
	case stateEnterName:
		if value == "" {
			m.inputErr = "Name is required."
			return m, nil
		}
		m.customer = value
		return m, m.startInput(stateEnterCount, "Enter number of tickets", "")
	case stateEnterCount:
		count, err := strconv.Atoi(value)
		if err != nil || count < 1 {
			m.inputErr = "Enter a valid number."
			return m, nil
		}
		movie, err := m.svc.Movie(m.movieIndex)
		if err != nil {
			return m, errCmd(err)
		}
		if available := movie.Seats.AvailableCount(); count > available {
			m.inputErr = fmt.Sprintf("Only %d seats available.", available)
			return m, nil
		}
		m.movie = movie
		m.ticketCount = count
		m.picked = nil
		m.seatNotice = ""
		m.cursor = firstAvailableSeat(movie.Seats)
		m.input.Blur()
		m.state = stateSelectSeats
		return m, nil
	case stateCancelName:
		if value == "" {
			m.inputErr = "Name is required."
			return m, nil
		}
		m.customer = value
		m.input.Blur()
		m.state = stateLoadingBookings
		return m, tea.Batch(m.fetchActiveBookingsCmd(value), m.spinner.Tick)
	}
	return m, nil
}

func (m *appModel) startInput(state appState, placeholder string, value string) tea.Cmd {
	m.state = state
	m.inputErr = ""
	m.input.Reset()
	m.input.Placeholder = placeholder
	m.input.Prompt = "> "
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m appModel) handleSeatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	grid := m.movie.Seats
	switch msg.String() {
	case "up", "k":
		m.cursor.Row = max(0, m.cursor.Row-1)
	case "down", "j":
		m.cursor.Row = min(grid.Rows()-1, m.cursor.Row+1)
	case "left", "h":
		m.cursor.Col = max(0, m.cursor.Col-1)
	case "right", "l":
		m.cursor.Col = min(grid.Cols()-1, m.cursor.Col+1)
	case "backspace":
		if len(m.picked) > 0 {
			m.picked = m.picked[:len(m.picked)-1]
		}
		m.seatNotice = ""
	case "enter", " ":
		return m.pickSeat(m.cursor)
	default:
		return m, nil, false
	}
	return m, nil, true
}

// pickSeat toggles seat in the current selection and books once the
// requested count is reached.
func (m appModel) pickSeat(seat model.Seat) (tea.Model, tea.Cmd, bool) {
	for i, picked := range m.picked {
		if picked == seat {
			m.picked = append(m.picked[:i:i], m.picked[i+1:]...)
			m.seatNotice = fmt.Sprintf("Seat %s released.", seat)
			return m, nil, true
		}
	}
	if !m.movie.Seats.IsAvailable(seat.Row, seat.Col) {
		m.seatNotice = fmt.Sprintf("Seat %s unavailable or invalid. Please try again.", seat)
		return m, nil, true
	}
	m.picked = append(m.picked, seat)
	m.seatNotice = fmt.Sprintf("Seat %s selected.", seat)
	if len(m.picked) < m.ticketCount {
		return m, nil, true
	}
	m.state = stateBooking
	return m, tea.Batch(m.bookCmd(), m.spinner.Tick), true
}

func (m appModel) goBack() (tea.Model, tea.Cmd) {
	switch m.state {
	case stateSelectMovie, stateCancelName, stateSelectBooking, stateHistory, stateBookingDone, stateCancelDone:
		m.input.Blur()
		m.state = stateMenu
	case stateEnterName:
		m.input.Blur()
		m.state = stateSelectMovie
	case stateEnterCount:
		return m, m.startInput(stateEnterName, "Enter your name", m.customer)
	case stateSelectSeats:
		m.picked = nil
		m.seatNotice = ""
		return m, m.startInput(stateEnterCount, "Enter number of tickets", strconv.Itoa(m.ticketCount))
	case stateError:
		m.state = m.lastState
	default:
		return m, nil
	}
	return m, nil
}

func (m *appModel) handleFilterInput(msg tea.KeyMsg) bool {
	listPtr := m.activeList()
	if listPtr == nil {
		return false
	}
	if !listPtr.FilteringEnabled() {
		return false
	}
	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) == 0 {
			return false
		}
		m.appendFilter(listPtr, string(msg.Runes))
		return true
	case tea.KeySpace:
		m.appendFilter(listPtr, " ")
		return true
	case tea.KeyBackspace, tea.KeyDelete:
		if listPtr.FilterValue() == "" {
			return false
		}
		m.popFilter(listPtr)
		return true
	default:
		return false
	}
}

func (m *appModel) appendFilter(listPtr *list.Model, value string) {
	if value == "" {
		return
	}
	current := listPtr.FilterValue()
	listPtr.SetFilterText(current + value)
}

func (m *appModel) popFilter(listPtr *list.Model) {
	value := listPtr.FilterValue()
	if value == "" {
		return
	}
	value = trimLastRune(value)
	if value == "" {
		listPtr.ResetFilter()
		return
	}
	listPtr.SetFilterText(value)
}

func trimLastRune(value string) string {
	runes := []rune(value)
	if len(runes) <= 1 {
		return ""
	}
	return string(runes[:len(runes)-1])
}

func (m *appModel) activeList() *list.Model {
	switch m.state {
	case stateMenu:
		return &m.menuList
	case stateSelectMovie:
		return &m.movieList
	case stateSelectBooking:
		return &m.bookingList
	default:
		return nil
	}
}

func (m appModel) isInputState() bool {
	return m.state == stateEnterName || m.state == stateEnterCount || m.state == stateCancelName
}

func (m appModel) isLoadingState() bool {
	return m.state == stateBooking || m.state == stateLoadingBookings || m.state == stateCancelling
}

func (m appModel) isBookingFlow() bool {
	switch m.state {
	case stateEnterName, stateEnterCount, stateSelectSeats, stateBooking:
		return true
	}
	return false
}

func (m appModel) loadingView() string {
	title := "Working"
	switch m.state {
	case stateBooking:
		title = "Booking seats"
	case stateLoadingBookings:
		title = "Looking up bookings"
	case stateCancelling:
		title = "Cancelling booking"
	}
	return fmt.Sprintf("%s %s\n\n%s", m.spinner.View(), title, hint("Saving data..."))
}

func (m appModel) inputView() string {
	label := m.input.Placeholder
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(label))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	if m.inputErr != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(m.inputErr))
	}
	return b.String()
}

func (m appModel) bookingSummaryView() string {
	b := m.booking
	lines := []string{
		lipgloss.NewStyle().Bold(true).Render("Booking Summary"),
		"",
		fmt.Sprintf("Customer: %s", b.CustomerName),
		fmt.Sprintf("Movie: %s", b.MovieTitle),
		fmt.Sprintf("Seats: %s", b.SeatLabels()),
		fmt.Sprintf("Total Price: %s", store.FormatPrice(b.TotalPrice)),
		fmt.Sprintf("Date & Time: %s", b.CreatedAt.Format(model.DateTimeLayout)),
		"",
		lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true).Render("Booking Confirmed!"),
	}
	return panel(m.width, strings.Join(lines, "\n")) + m.saveWarningView()
}

func (m appModel) cancelSummaryView() string {
	c := m.cancellation
	lines := []string{
		lipgloss.NewStyle().Bold(true).Render("Booking cancelled successfully!"),
		"",
		fmt.Sprintf("Movie: %s", c.Booking.MovieTitle),
		fmt.Sprintf("Seats: %s", c.Booking.SeatLabels()),
		fmt.Sprintf("Total Price: %s", store.FormatPrice(c.Booking.TotalPrice)),
		"",
		lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true).Render("Refund Amount: " + store.FormatPrice(c.Refund)),
	}
	if c.SeatsReleased == 0 && len(c.Booking.Seats) > 0 {
		lines = append(lines, hint("The movie is no longer listed; no seats were released."))
	}
	return panel(m.width, strings.Join(lines, "\n")) + m.saveWarningView()
}

func (m appModel) saveWarningView() string {
	if m.saveWarning == nil {
		return ""
	}
	return "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Render("Could not save data: "+m.saveWarning.Error())
}

func (m appModel) historyContent() string {
	ledger := m.svc.Ledger()
	if ledger.Len() == 0 {
		return "No booking history found."
	}
	return store.RenderHistory(ledger)
}

func (m *appModel) resizeViews() {
	if m.width == 0 || m.height == 0 {
		return
	}
	h := m.height - 6
	if h < 6 {
		h = 6
	}
	m.menuList.SetSize(m.width, h)
	m.movieList.SetSize(m.width, h)
	m.bookingList.SetSize(m.width, h)
	m.history.Width = m.width
	m.history.Height = h
	m.input.Width = max(10, m.width-4)
}

func newList(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = title
	l.Filter = caseInsensitiveFilter
	l.SetFilteringEnabled(true)
	l.SetShowFilter(true)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	return l
}

func panel(width int, content string) string {
	style := lipgloss.NewStyle().
		Padding(1, 3).
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("63"))
	if width > 56 {
		style = style.Width(min(width-8, 72))
	}
	return style.Render(content)
}

func hint(text string) string {
	return lipgloss.NewStyle().Faint(true).Render(text)
}

func errCmd(err error) tea.Cmd {
	return func() tea.Msg {
		return errMsg{err: err}
	}
}

func errWithOptionsCmd(err error, returnState appState) tea.Cmd {
	return func() tea.Msg {
		return errMsg{
			err:            err,
			returnState:    returnState,
			returnStateSet: true,
		}
	}
}

func recoverStateFrom(state appState) appState {
	switch state {
	case stateBooking:
		return stateSelectSeats
	case stateLoadingBookings:
		return stateCancelName
	case stateCancelling:
		return stateSelectBooking
	case stateError:
		return stateMenu
	default:
		return state
	}
}

func caseInsensitiveFilter(term string, targets []string) []list.Rank {
	term = strings.ToLower(term)
	lower := make([]string, len(targets))
	for i, t := range targets {
		lower[i] = strings.ToLower(t)
	}
	return list.DefaultFilter(term, lower)
}

func (m appModel) bookCmd() tea.Cmd {
	svc := m.svc
	name := m.customer
	index := m.movieIndex
	count := m.ticketCount
	seats := append([]model.Seat(nil), m.picked...)
	return func() tea.Msg {
		booking, err := svc.CreateBooking(context.Background(), name, index, count, service.QueuedSeats(seats...))
		return bookingMsg{booking: booking, err: err}
	}
}

func (m appModel) fetchActiveBookingsCmd(name string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		bookings, err := svc.ActiveBookings(name)
		return activeBookingsMsg{bookings: bookings, err: err}
	}
}

func (m appModel) cancelCmd(name string, index int) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		result, err := svc.CancelBooking(context.Background(), name, service.PickBooking(index))
		return cancelMsg{result: result, err: err}
	}
}
