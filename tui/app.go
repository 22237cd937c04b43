package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"talknbook-cli/config"
	"talknbook-cli/model"
	"talknbook-cli/service"
	"talknbook-cli/session"
	"talknbook-cli/store"
)

type appState int

const (
	stateStartup appState = iota
	stateLogin
	stateSignup
	stateAuthenticating
	stateLoadingMovies
	stateSelectMovie
	stateLoadingMovie
	stateLoadingSeats
	stateBooking
	stateSelectShowtime
	stateSubmitting
	stateConfirmation
	stateLoadingBookings
	stateMyBookings
	stateLoadingBookingDetail
	stateBookingDetail
	stateCancelSeats
	stateError
)

// catalogRedirectDelay is how long a movie-resolution error stays on screen
// before the user is sent back to the catalog.
const catalogRedirectDelay = 3 * time.Second

type appModel struct {
	client *service.Client
	cfg    config.Config
	layout session.Layout

	state     appState
	lastState appState
	err       error

	width  int
	height int

	account  store.Account
	loggedIn bool

	loginForm  authForm
	signupForm authForm

	movies    []model.Movie
	movieList list.Model

	sess         *session.Session
	cursorRow    int
	cursorCol    int
	showtimeList list.Model
	notice       string
	confirmed    *model.Booking

	bookings    []model.Booking
	bookingList list.Model
	bookingsErr error
	detail      *model.Booking

	cancel *cancelFlow

	spinner spinner.Model
}

type errMsg struct {
	err            error
	returnState    appState
	returnStateSet bool
	toCatalog      bool
}

type accountMsg struct {
	account store.Account
	ok      bool
	err     error
}

type authMsg struct {
	account store.Account
	signup  bool
	err     error
}

type loggedOutMsg struct{}

type moviesMsg struct {
	movies []model.Movie
	err    error
}

type movieMsg struct {
	movie model.Movie
	err   error
}

type bookedSeatsMsg struct {
	gen      int
	movieID  string
	showtime string
	seats    []string
	err      error
}

type bookingCreatedMsg struct {
	booking model.Booking
	err     error
}

type bookingsMsg struct {
	bookings []model.Booking
	err      error
}

type bookingDetailMsg struct {
	booking model.Booking
	err     error
}

type cancelDoneMsg struct {
	full bool
	err  error
}

type catalogReturnMsg struct{}

func New(cfg config.Config) tea.Model {
	m := appModel{
		client: service.NewClient(nil, cfg.APIBaseURL),
		cfg:    cfg,
		layout: session.Layout{Rows: cfg.SeatRows, SeatsPerRow: cfg.SeatsPerRow},
		state:  stateStartup,
	}

	m.loginForm = newLoginForm()
	m.signupForm = newSignupForm()
	m.movieList = newList("Now Showing")
	m.showtimeList = newList("Select Showtime")
	m.bookingList = newList("My Bookings")

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	m.spinner = sp

	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.restoreAccountCmd(), m.spinner.Tick)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case tea.KeyMsg:
		if m.isFormState() {
			return m.updateForm(msg)
		}
		if m.handleFilterInput(msg) {
			return m, nil
		}
		if next, cmd, handled := m.handleKey(msg); handled {
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
		if msg.toCatalog {
			return m, tea.Tick(catalogRedirectDelay, func(time.Time) tea.Msg {
				return catalogReturnMsg{}
			})
		}
		return m, nil

	case catalogReturnMsg:
		if m.state != stateError {
			return m, nil
		}
		m.err = nil
		m.sess = nil
		m.state = stateLoadingMovies
		return m, tea.Batch(m.fetchMoviesCmd(), m.spinner.Tick)

	case accountMsg:
		if msg.err != nil || !msg.ok {
			m.debugf("no restorable session: %v", msg.err)
			m.state = stateLogin
			return m, m.loginForm.focusCmd()
		}
		m.account = msg.account
		m.loggedIn = true
		m.client.SetToken(msg.account.Token)
		return m.afterAuth()

	case authMsg:
		if msg.err != nil {
			if msg.signup {
				m.signupForm.err = service.Message(msg.err)
				m.state = stateSignup
			} else {
				m.loginForm.err = service.Message(msg.err)
				m.state = stateLogin
			}
			return m, nil
		}
		m.account = msg.account
		m.loggedIn = true
		m.client.SetToken(msg.account.Token)
		m.loginForm = newLoginForm()
		m.signupForm = newSignupForm()
		return m.afterAuth()

	case loggedOutMsg:
		m.loggedIn = false
		m.account = store.Account{}
		m.client.ClearToken()
		m.sess = nil
		m.state = stateLogin
		return m, m.loginForm.focusCmd()

	case moviesMsg:
		if msg.err != nil {
			return m, errCmd(msg.err)
		}
		m.movies = msg.movies
		m.movieList.SetItems(buildMovieItems(msg.movies))
		m.state = stateSelectMovie
		return m, nil

	case movieMsg:
		if msg.err != nil {
			return m, errToCatalogCmd(msg.err)
		}
		return m.openBooking(msg.movie)

	case bookedSeatsMsg:
		return m.applyBookedSeats(msg)

	case bookingCreatedMsg:
		if msg.err != nil {
			// Selection survives a rejection; the server message is shown
			// verbatim and availability is re-queried so the seat that was
			// lost shows as booked.
			m.notice = service.Message(msg.err)
			m.state = stateBooking
			if m.sess != nil {
				return m, m.fetchBookedSeatsCmd(m.sess.Generation(), m.sess.Movie().Id, m.sess.Showtime())
			}
			return m, nil
		}
		booking := msg.booking
		m.confirmed = &booking
		m.notice = ""
		if m.sess != nil {
			m.sess.Clear()
		}
		m.state = stateConfirmation
		return m, nil

	case bookingsMsg:
		m.bookingsErr = msg.err
		m.state = stateMyBookings
		if msg.err == nil {
			m.bookings = msg.bookings
			m.bookingList.SetItems(buildBookingItems(msg.bookings))
		}
		return m, nil

	case bookingDetailMsg:
		if msg.err != nil {
			m.notice = service.Message(msg.err)
			m.state = stateMyBookings
			return m, nil
		}
		booking := msg.booking
		m.detail = &booking
		m.state = stateBookingDetail
		return m, nil

	case cancelDoneMsg:
		if msg.err != nil {
			m.notice = service.Message(msg.err)
			m.cancel = nil
			m.state = stateMyBookings
			return m, nil
		}
		if msg.full {
			m.notice = "Booking cancelled successfully"
		} else {
			m.notice = "Seats cancelled successfully"
		}
		m.cancel = nil
		m.state = stateLoadingBookings
		return m, tea.Batch(m.fetchBookingsCmd(), m.spinner.Tick)
	}

	var cmd tea.Cmd
	switch m.state {
	case stateSelectMovie:
		m.movieList, cmd = m.movieList.Update(msg)
	case stateSelectShowtime:
		m.showtimeList, cmd = m.showtimeList.Update(msg)
	case stateMyBookings:
		m.bookingList, cmd = m.bookingList.Update(msg)
	}
	return m, cmd
}

func (m appModel) afterAuth() (tea.Model, tea.Cmd) {
	if id := m.cfg.StartMovieID; id != "" {
		m.cfg.StartMovieID = ""
		m.state = stateLoadingMovie
		return m, tea.Batch(m.fetchMovieCmd(id), m.spinner.Tick)
	}
	m.state = stateLoadingMovies
	return m, tea.Batch(m.fetchMoviesCmd(), m.spinner.Tick)
}

func (m appModel) openBooking(movie model.Movie) (tea.Model, tea.Cmd) {
	if len(movie.Showtimes) == 0 {
		return m, errCmd(fmt.Errorf("no showtimes available for %s", movie.Title))
	}
	m.sess = session.New(movie, m.layout)
	m.cursorRow = 0
	m.cursorCol = 0
	m.notice = ""
	m.confirmed = nil
	m.state = stateLoadingSeats
	return m, tea.Batch(
		m.fetchBookedSeatsCmd(m.sess.Generation(), movie.Id, m.sess.Showtime()),
		m.spinner.Tick,
	)
}

func (m appModel) applyBookedSeats(msg bookedSeatsMsg) (tea.Model, tea.Cmd) {
	if m.sess == nil {
		return m, nil
	}
	// The generation restarts at zero for every new session, so it only
	// orders responses within one (movie, showtime) pair. A late response
	// for a booking the user has since left must match on the pair itself.
	if msg.movieID != m.sess.Movie().Id || msg.showtime != m.sess.Showtime() {
		m.debugf("discarding booked-seats response for %s %q", msg.movieID, msg.showtime)
		return m, nil
	}
	seats := msg.seats
	if msg.err != nil {
		// Fail open: an unreachable ledger must not block the UI. The
		// booking submission is where conflicts are caught for real.
		m.debugf("booked-seats query failed for %q: %v", msg.showtime, msg.err)
		seats = nil
	}
	if !m.sess.ApplyBookedSeats(msg.gen, seats) {
		// Response for a showtime the user has already left.
		m.debugf("discarding stale booked-seats response for %q", msg.showtime)
		return m, nil
	}
	if m.state == stateLoadingSeats {
		m.state = stateBooking
	}
	return m, nil
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit, true
	case "q":
		if m.state != stateSelectMovie && m.state != stateMyBookings && m.state != stateConfirmation {
			break
		}
		return m, tea.Quit, true
	case "esc":
		if m.state == stateMyBookings && m.cancel != nil {
			return m.handleBookingsKey(msg)
		}
		if listPtr := m.activeList(); listPtr != nil {
			if listPtr.SettingFilter() || listPtr.IsFiltered() {
				listPtr.ResetFilter()
				return m, nil, true
			}
		}
		next, cmd := m.goBack()
		return next, cmd, true
	case "ctrl+l":
		if m.loggedIn {
			return m, m.logoutCmd(), true
		}
	case "m":
		if m.state == stateSelectMovie || m.state == stateBooking {
			m.notice = ""
			m.state = stateLoadingBookings
			return m, tea.Batch(m.fetchBookingsCmd(), m.spinner.Tick), true
		}
	case "r":
		if m.state == stateMyBookings && m.bookingsErr != nil {
			m.state = stateLoadingBookings
			return m, tea.Batch(m.fetchBookingsCmd(), m.spinner.Tick), true
		}
	case "t":
		if m.state == stateBooking && m.sess != nil {
			m.showtimeList.SetItems(buildShowtimeItems(m.sess.Movie(), m.sess.Showtime()))
			m.state = stateSelectShowtime
			return m, nil, true
		}
	}

	if m.state == stateBooking {
		return m.handleBookingKey(msg)
	}
	if m.state == stateMyBookings {
		if next, cmd, handled := m.handleBookingsKey(msg); handled {
			return next, cmd, true
		}
	}
	if m.state == stateCancelSeats {
		return m.handleCancelKey(msg)
	}
	if m.state == stateBookingDetail {
		if msg.Type == tea.KeyEnter {
			next, cmd := m.goBack()
			return next, cmd, true
		}
		return m, nil, true
	}
	if m.state == stateConfirmation {
		if msg.Type == tea.KeyEnter || msg.String() == "esc" {
			m.confirmed = nil
			m.sess = nil
			m.state = stateLoadingMovies
			return m, tea.Batch(m.fetchMoviesCmd(), m.spinner.Tick), true
		}
		return m, nil, true
	}

	if msg.Type == tea.KeyEnter {
		switch m.state {
		case stateSelectMovie:
			item, ok := m.movieList.SelectedItem().(movieItem)
			if !ok {
				return m, nil, true
			}
			// Movie already in hand from the catalog: no id lookup.
			next, cmd := m.openBooking(item.movie)
			return next, cmd, true
		case stateSelectShowtime:
			item, ok := m.showtimeList.SelectedItem().(showtimeItem)
			if !ok {
				return m, nil, true
			}
			return m.switchShowtime(item.label)
		case stateError:
			next, cmd := m.goBack()
			return next, cmd, true
		}
	}
	return m, nil, false
}

func (m appModel) switchShowtime(label string) (tea.Model, tea.Cmd, bool) {
	if m.sess == nil {
		return m, nil, true
	}
	if label == m.sess.Showtime() {
		m.state = stateBooking
		return m, nil, true
	}
	gen := m.sess.SetShowtime(label)
	m.notice = ""
	m.state = stateLoadingSeats
	return m, tea.Batch(
		m.fetchBookedSeatsCmd(gen, m.sess.Movie().Id, label),
		m.spinner.Tick,
	), true
}

func (m appModel) goBack() (tea.Model, tea.Cmd) {
	switch m.state {
	case stateSignup:
		m.state = stateLogin
		return m, m.loginForm.focusCmd()
	case stateBooking, stateConfirmation:
		m.sess = nil
		m.confirmed = nil
		m.notice = ""
		if len(m.movieList.Items()) == 0 {
			m.state = stateLoadingMovies
			return m, tea.Batch(m.fetchMoviesCmd(), m.spinner.Tick)
		}
		m.state = stateSelectMovie
	case stateSelectShowtime:
		m.state = stateBooking
	case stateMyBookings:
		m.notice = ""
		if len(m.movieList.Items()) == 0 {
			m.state = stateLoadingMovies
			return m, tea.Batch(m.fetchMoviesCmd(), m.spinner.Tick)
		}
		m.state = stateSelectMovie
	case stateCancelSeats:
		m.cancel = nil
		m.state = stateMyBookings
	case stateBookingDetail:
		m.detail = nil
		m.state = stateMyBookings
	case stateError:
		m.err = nil
		m.state = m.lastState
		if m.state == stateSelectMovie && len(m.movieList.Items()) == 0 {
			m.state = stateLoadingMovies
			return m, tea.Batch(m.fetchMoviesCmd(), m.spinner.Tick)
		}
	default:
		return m, nil
	}
	return m, nil
}

func (m *appModel) handleFilterInput(msg tea.KeyMsg) bool {
	if m.cancel != nil {
		return false
	}
	listPtr := m.activeList()
	if listPtr == nil {
		return false
	}
	if !listPtr.FilteringEnabled() {
		return false
	}
	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) != 1 {
			return false
		}
		if m.isFilterCommandRune(msg.Runes[0]) {
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

// isFilterCommandRune keeps single-letter commands working on filterable
// lists; everything else types into the filter.
func (m *appModel) isFilterCommandRune(r rune) bool {
	switch m.state {
	case stateSelectMovie:
		return r == 'm' || r == 'q'
	case stateMyBookings:
		return r == 'x' || r == 'p' || r == 'r' || r == 'q'
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
	case stateSelectMovie:
		return &m.movieList
	case stateSelectShowtime:
		return &m.showtimeList
	case stateMyBookings:
		return &m.bookingList
	default:
		return nil
	}
}

func (m appModel) isFormState() bool {
	return m.state == stateLogin || m.state == stateSignup
}

func (m appModel) isLoadingState() bool {
	switch m.state {
	case stateStartup, stateAuthenticating, stateLoadingMovies, stateLoadingMovie,
		stateLoadingSeats, stateSubmitting, stateLoadingBookings, stateLoadingBookingDetail:
		return true
	}
	return false
}

func (m *appModel) resizeLists() {
	if m.width == 0 || m.height == 0 {
		return
	}
	h := m.height - 6
	if h < 6 {
		h = 6
	}
	m.movieList.SetSize(m.width, h)
	m.showtimeList.SetSize(m.width, h)
	m.bookingList.SetSize(m.width, h)
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

func caseInsensitiveFilter(term string, targets []string) []list.Rank {
	term = strings.ToLower(term)
	lower := make([]string, len(targets))
	for i, t := range targets {
		lower[i] = strings.ToLower(t)
	}
	return list.DefaultFilter(term, lower)
}

func errCmd(err error) tea.Cmd {
	return func() tea.Msg {
		return errMsg{err: err}
	}
}

func errToCatalogCmd(err error) tea.Cmd {
	return func() tea.Msg {
		return errMsg{err: err, toCatalog: true}
	}
}

func recoverStateFrom(state appState) appState {
	switch state {
	case stateAuthenticating:
		return stateLogin
	case stateLoadingMovies, stateLoadingMovie:
		return stateSelectMovie
	case stateLoadingSeats, stateSubmitting:
		return stateBooking
	case stateLoadingBookings, stateLoadingBookingDetail:
		return stateMyBookings
	default:
		return stateSelectMovie
	}
}

func (m appModel) debugf(format string, args ...any) {
	if !m.cfg.Debug {
		return
	}
	fmt.Fprintf(os.Stderr, "[talknbook] "+format+"\n", args...)
}

func (m appModel) restoreAccountCmd() tea.Cmd {
	return func() tea.Msg {
		account, ok, err := store.LoadAccount()
		if err != nil || !ok {
			return accountMsg{err: err}
		}
		if service.TokenExpired(account.Token, time.Now()) {
			_ = store.ClearAccount()
			return accountMsg{err: errors.New("stored token expired")}
		}

		// Confirm the token still works before trusting it.
		ctx := context.Background()
		m.client.SetToken(account.Token)
		user, err := m.client.CurrentUser(ctx)
		if err != nil {
			m.client.ClearToken()
			if service.IsUnauthorized(err) {
				_ = store.ClearAccount()
			}
			return accountMsg{err: err}
		}
		account.User = user
		return accountMsg{account: account, ok: true}
	}
}

func (m appModel) loginCmd(email string, password string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		auth, err := m.client.Login(ctx, email, password)
		if err != nil {
			return authMsg{err: err}
		}
		account := store.Account{Token: auth.AccessToken, User: auth.User}
		_ = store.SaveAccount(account)
		return authMsg{account: account}
	}
}

func (m appModel) signupCmd(username string, email string, password string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		auth, err := m.client.Signup(ctx, username, email, password)
		if err != nil {
			return authMsg{signup: true, err: err}
		}
		account := store.Account{Token: auth.AccessToken, User: auth.User}
		_ = store.SaveAccount(account)
		return authMsg{account: account, signup: true}
	}
}

func (m appModel) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		_ = store.ClearAccount()
		return loggedOutMsg{}
	}
}

func (m appModel) fetchMoviesCmd() tea.Cmd {
	return func() tea.Msg {
		if cached, fresh, err := store.LoadCatalogCache(); err == nil && fresh && len(cached) > 0 {
			return moviesMsg{movies: cached}
		}
		ctx := context.Background()
		movies, err := m.client.Movies(ctx, "", "")
		if err == nil && len(movies) > 0 {
			_ = store.SaveCatalogCache(movies)
		}
		return moviesMsg{movies: movies, err: err}
	}
}

func (m appModel) fetchMovieCmd(movieID string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		movie, err := m.client.MovieByID(ctx, movieID)
		return movieMsg{movie: movie, err: err}
	}
}

func (m appModel) fetchBookedSeatsCmd(gen int, movieID string, showtime string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		seats, err := m.client.BookedSeats(ctx, movieID, showtime)
		return bookedSeatsMsg{gen: gen, movieID: movieID, showtime: showtime, seats: seats, err: err}
	}
}

func (m appModel) submitBookingCmd(req model.BookingCreate) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		booking, err := m.client.CreateBooking(ctx, req)
		return bookingCreatedMsg{booking: booking, err: err}
	}
}

func (m appModel) fetchBookingsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		bookings, err := m.client.Bookings(ctx)
		return bookingsMsg{bookings: bookings, err: err}
	}
}

func (m appModel) fetchBookingDetailCmd(bookingID string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		booking, err := m.client.BookingByID(ctx, bookingID)
		return bookingDetailMsg{booking: booking, err: err}
	}
}

func (m appModel) cancelBookingCmd(bookingID string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		err := m.client.CancelBooking(ctx, bookingID)
		return cancelDoneMsg{full: true, err: err}
	}
}

func (m appModel) cancelSeatsCmd(bookingID string, seats []string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		err := m.client.CancelSeats(ctx, bookingID, seats)
		return cancelDoneMsg{err: err}
	}
}
