package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"talknbook-cli/config"
	"talknbook-cli/model"
	"talknbook-cli/service"
	"talknbook-cli/session"
)

func testConfig() config.Config {
	return config.Config{
		APIBaseURL:  "http://localhost:8000",
		SeatRows:    []string{"A", "B", "C"},
		SeatsPerRow: 4,
	}
}

func testMovie() model.Movie {
	return model.Movie{
		Id:        "movie-1",
		Title:     "Dune",
		Genre:     "Sci-Fi",
		Showtimes: []string{"4:00 PM", "7:00 PM"},
		Price:     12,
	}
}

func newTestModel(t *testing.T) appModel {
	t.Helper()
	m, ok := New(testConfig()).(appModel)
	if !ok {
		t.Fatal("expected New to return an appModel")
	}
	return m
}

func openTestBooking(t *testing.T, m appModel) appModel {
	t.Helper()
	next, _ := m.openBooking(testMovie())
	opened, ok := next.(appModel)
	if !ok {
		t.Fatal("expected openBooking to return an appModel")
	}
	return opened
}

type testItem struct {
	value string
}

func (t testItem) Title() string       { return t.value }
func (t testItem) Description() string { return "" }
func (t testItem) FilterValue() string { return strings.ToLower(t.value) }

func newFilterModel(t *testing.T, items []list.Item) *appModel {
	m := newTestModel(t)
	m.state = stateSelectMovie
	m.movieList = newList("Now Showing")
	m.movieList.SetItems(items)
	return &m
}

func TestHandleFilterInput_AppendsRunes(t *testing.T) {
	m := newFilterModel(t, []list.Item{
		testItem{value: "Dune"},
		testItem{value: "Oppenheimer"},
	})

	if !m.handleFilterInput(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")}) {
		t.Fatal("expected filter input to be handled")
	}
	if got := m.movieList.FilterValue(); got != "d" {
		t.Fatalf("expected filter value to be %q, got %q", "d", got)
	}

	if !m.handleFilterInput(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("u")}) {
		t.Fatal("expected filter input to be handled")
	}
	if got := m.movieList.FilterValue(); got != "du" {
		t.Fatalf("expected filter value to be %q, got %q", "du", got)
	}
}

func TestHandleFilterInput_Backspace(t *testing.T) {
	m := newFilterModel(t, []list.Item{
		testItem{value: "Dune"},
		testItem{value: "Oppenheimer"},
	})

	_ = m.handleFilterInput(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	_ = m.handleFilterInput(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("u")})

	if !m.handleFilterInput(tea.KeyMsg{Type: tea.KeyBackspace}) {
		t.Fatal("expected backspace to be handled")
	}
	if got := m.movieList.FilterValue(); got != "d" {
		t.Fatalf("expected filter value to be %q, got %q", "d", got)
	}
}

func TestOpenBooking_StartsSeatFetch(t *testing.T) {
	m := newTestModel(t)
	next, cmd := m.openBooking(testMovie())
	opened := next.(appModel)

	if opened.state != stateLoadingSeats {
		t.Fatalf("expected stateLoadingSeats, got %v", opened.state)
	}
	if opened.sess == nil {
		t.Fatal("expected a seat session to be created")
	}
	if got := opened.sess.Showtime(); got != "4:00 PM" {
		t.Fatalf("expected first showtime, got %q", got)
	}
	if cmd == nil {
		t.Fatal("expected a booked-seats fetch command")
	}
}

func TestBookedSeats_AppliesAndEntersBooking(t *testing.T) {
	m := openTestBooking(t, newTestModel(t))

	next, _ := m.Update(bookedSeatsMsg{
		gen:      m.sess.Generation(),
		movieID:  m.sess.Movie().Id,
		showtime: m.sess.Showtime(),
		seats:    []string{"A1", "A2"},
	})
	updated := next.(appModel)

	if updated.state != stateBooking {
		t.Fatalf("expected stateBooking, got %v", updated.state)
	}
	if got := updated.sess.Status("A1"); got != session.StatusBooked {
		t.Fatalf("expected A1 to be booked, got %v", got)
	}
}

func TestBookedSeats_StaleResponseIgnored(t *testing.T) {
	m := openTestBooking(t, newTestModel(t))
	staleGen := m.sess.Generation()
	m.sess.SetShowtime("7:00 PM")

	next, _ := m.Update(bookedSeatsMsg{
		gen:      staleGen,
		movieID:  m.sess.Movie().Id,
		showtime: "4:00 PM",
		seats:    []string{"A1"},
	})
	updated := next.(appModel)

	if updated.sess.Reconciled() {
		t.Fatal("expected stale response to leave session unreconciled")
	}
	if got := updated.sess.Status("A1"); got == session.StatusBooked {
		t.Fatal("expected stale booked seats to be discarded")
	}
	if updated.state != stateLoadingSeats {
		t.Fatalf("expected to keep waiting for fresh seats, got state %v", updated.state)
	}
}

func TestBookedSeats_OtherMovieResponseIgnored(t *testing.T) {
	m := openTestBooking(t, newTestModel(t))
	firstMovieID := m.sess.Movie().Id
	firstShowtime := m.sess.Showtime()

	// The user leaves the first movie and opens another; the new session's
	// generation matches the one the earlier fetch was tagged with.
	other := testMovie()
	other.Id = "movie-2"
	other.Title = "Oppenheimer"
	next, _ := m.openBooking(other)
	m = next.(appModel)

	next, _ = m.Update(bookedSeatsMsg{
		gen:      m.sess.Generation(),
		movieID:  firstMovieID,
		showtime: firstShowtime,
		seats:    []string{"A1", "A2"},
	})
	updated := next.(appModel)

	if updated.sess.Reconciled() {
		t.Fatal("expected the other movie's response to leave the session unreconciled")
	}
	if got := updated.sess.Status("A1"); got == session.StatusBooked {
		t.Fatal("expected the other movie's booked seats to be discarded")
	}
	if updated.state != stateLoadingSeats {
		t.Fatalf("expected to keep waiting for this movie's seats, got state %v", updated.state)
	}
}

func TestBookedSeats_FailureFailsOpen(t *testing.T) {
	m := openTestBooking(t, newTestModel(t))

	next, _ := m.Update(bookedSeatsMsg{
		gen:      m.sess.Generation(),
		movieID:  m.sess.Movie().Id,
		showtime: m.sess.Showtime(),
		err:      &service.APIError{StatusCode: 503, Endpoint: "/bookings/booked-seats"},
	})
	updated := next.(appModel)

	if updated.state != stateBooking {
		t.Fatalf("expected fail-open entry into stateBooking, got %v", updated.state)
	}
	if !updated.sess.Reconciled() {
		t.Fatal("expected session to be reconciled with an empty booked set")
	}
	if got := updated.sess.Status("A1"); got != session.StatusAvailable {
		t.Fatalf("expected A1 available after fail-open, got %v", got)
	}
}

func TestBookingCreated_FailurePreservesSelection(t *testing.T) {
	m := openTestBooking(t, newTestModel(t))
	m.sess.ApplyBookedSeats(m.sess.Generation(), nil)
	m.sess.Toggle("A1")
	m.sess.Toggle("A2")
	m.state = stateSubmitting

	next, cmd := m.Update(bookingCreatedMsg{
		err: &service.APIError{StatusCode: 409, Endpoint: "/bookings/", Detail: "Seat A1 already booked"},
	})
	updated := next.(appModel)

	if updated.state != stateBooking {
		t.Fatalf("expected to return to stateBooking, got %v", updated.state)
	}
	if updated.notice != "Seat A1 already booked" {
		t.Fatalf("expected verbatim server message, got %q", updated.notice)
	}
	if got := updated.sess.SelectionSize(); got != 2 {
		t.Fatalf("expected selection to survive the failure, got %d seats", got)
	}
	if cmd == nil {
		t.Fatal("expected an availability refresh command")
	}
}

func TestBookingCreated_SuccessShowsConfirmation(t *testing.T) {
	m := openTestBooking(t, newTestModel(t))
	m.sess.ApplyBookedSeats(m.sess.Generation(), nil)
	m.sess.Toggle("A1")
	m.state = stateSubmitting

	next, _ := m.Update(bookingCreatedMsg{
		booking: model.Booking{
			Id:         "bk-1",
			MovieTitle: "Dune",
			Showtime:   "4:00 PM",
			Seats:      []string{"A1"},
			TotalPrice: 12,
			Status:     model.BookingStatusConfirmed,
		},
	})
	updated := next.(appModel)

	if updated.state != stateConfirmation {
		t.Fatalf("expected stateConfirmation, got %v", updated.state)
	}
	if updated.confirmed == nil || updated.confirmed.Id != "bk-1" {
		t.Fatal("expected the confirmed booking to be kept for display")
	}
	if got := updated.sess.SelectionSize(); got != 0 {
		t.Fatalf("expected selection cleared after confirmation, got %d seats", got)
	}
}

func TestSwitchShowtime_ResetsAndRefetches(t *testing.T) {
	m := openTestBooking(t, newTestModel(t))
	m.sess.ApplyBookedSeats(m.sess.Generation(), nil)
	m.sess.Toggle("A1")
	oldGen := m.sess.Generation()

	next, cmd, handled := m.switchShowtime("7:00 PM")
	updated := next.(appModel)

	if !handled {
		t.Fatal("expected showtime switch to be handled")
	}
	if updated.state != stateLoadingSeats {
		t.Fatalf("expected stateLoadingSeats, got %v", updated.state)
	}
	if got := updated.sess.SelectionSize(); got != 0 {
		t.Fatalf("expected selection cleared on showtime change, got %d seats", got)
	}
	if updated.sess.Generation() == oldGen {
		t.Fatal("expected a new availability generation")
	}
	if cmd == nil {
		t.Fatal("expected a booked-seats fetch command")
	}
}

func TestSwitchShowtime_SameShowtimeKeepsSelection(t *testing.T) {
	m := openTestBooking(t, newTestModel(t))
	m.sess.ApplyBookedSeats(m.sess.Generation(), nil)
	m.sess.Toggle("A1")

	next, cmd, _ := m.switchShowtime(m.sess.Showtime())
	updated := next.(appModel)

	if updated.state != stateBooking {
		t.Fatalf("expected stateBooking, got %v", updated.state)
	}
	if cmd != nil {
		t.Fatal("expected no refetch when showtime is unchanged")
	}
	if got := updated.sess.SelectionSize(); got != 1 {
		t.Fatalf("expected selection kept, got %d seats", got)
	}
}

func TestSubmitBooking_RequiresSignIn(t *testing.T) {
	m := openTestBooking(t, newTestModel(t))
	m.sess.ApplyBookedSeats(m.sess.Generation(), nil)
	m.sess.Toggle("A1")
	m.state = stateBooking
	m.loggedIn = false

	next, cmd, _ := m.submitBooking()
	updated := next.(appModel)

	if cmd != nil {
		t.Fatal("expected no submit command without a signed-in user")
	}
	if updated.notice == "" {
		t.Fatal("expected a notice about signing in")
	}
}

func TestSubmitBooking_EmptySelectionShowsNotice(t *testing.T) {
	m := openTestBooking(t, newTestModel(t))
	m.loggedIn = true
	m.sess.ApplyBookedSeats(m.sess.Generation(), nil)
	m.state = stateBooking

	next, cmd, _ := m.submitBooking()
	updated := next.(appModel)

	if updated.state != stateBooking {
		t.Fatalf("expected to stay in stateBooking, got %v", updated.state)
	}
	if updated.notice == "" {
		t.Fatal("expected a notice about the empty selection")
	}
	if cmd != nil {
		t.Fatal("expected no submit command for an empty selection")
	}
}

func TestRenderBooking_CursorKeepsBookedMarker(t *testing.T) {
	m := openTestBooking(t, newTestModel(t))
	m.sess.ApplyBookedSeats(m.sess.Generation(), []string{"A1"})
	m.state = stateBooking
	m.cursorRow = 0
	m.cursorCol = 0

	if got := m.renderBooking(); !strings.Contains(got, "XX") {
		t.Fatal("expected the booked seat under the cursor to keep its XX marker")
	}
}

func TestHandleBookingKey_ToggleBookedSeatShowsNotice(t *testing.T) {
	m := openTestBooking(t, newTestModel(t))
	m.sess.ApplyBookedSeats(m.sess.Generation(), []string{"A1"})
	m.state = stateBooking
	m.cursorRow = 0
	m.cursorCol = 0

	next, _, handled := m.handleBookingKey(tea.KeyMsg{Type: tea.KeySpace})
	updated := next.(appModel)

	if !handled {
		t.Fatal("expected the toggle key to be handled")
	}
	if got := updated.sess.SelectionSize(); got != 0 {
		t.Fatalf("expected booked seat toggle to be a no-op, got %d selected", got)
	}
	if updated.notice == "" {
		t.Fatal("expected a notice about the booked seat")
	}
}
