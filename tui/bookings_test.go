package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"talknbook-cli/model"
	"talknbook-cli/service"
)

func testBooking() model.Booking {
	return model.Booking{
		Id:         "bk-1",
		MovieTitle: "Dune",
		Showtime:   "7:00 PM",
		Seats:      []string{"A1", "A2", "A3"},
		TotalPrice: 36,
		Status:     model.BookingStatusConfirmed,
	}
}

func newBookingsModel(t *testing.T, bookings ...model.Booking) appModel {
	t.Helper()
	m := newTestModel(t)
	m.state = stateMyBookings
	m.bookings = bookings
	m.bookingList.SetItems(buildBookingItems(bookings))
	return m
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestHandleBookingsKey_WholeCancelNeedsConfirm(t *testing.T) {
	m := newBookingsModel(t, testBooking())

	next, _, handled := m.handleBookingsKey(keyRune('x'))
	updated := next.(appModel)

	if !handled {
		t.Fatal("expected x to be handled")
	}
	if updated.cancel == nil || !updated.cancel.confirmFull {
		t.Fatal("expected a pending whole-booking confirmation")
	}

	next, _, _ = updated.handleBookingsKey(keyRune('n'))
	updated = next.(appModel)
	if updated.cancel != nil {
		t.Fatal("expected n to dismiss the confirmation")
	}
}

func TestHandleBookingsKey_ConfirmSendsCancel(t *testing.T) {
	m := newBookingsModel(t, testBooking())
	m.cancel = &cancelFlow{booking: testBooking(), confirmFull: true}

	_, cmd, handled := m.handleBookingsKey(keyRune('y'))
	if !handled {
		t.Fatal("expected y to be handled")
	}
	if cmd == nil {
		t.Fatal("expected a cancel command")
	}
}

func TestHandleBookingsKey_IgnoresCancelledBooking(t *testing.T) {
	cancelled := testBooking()
	cancelled.Status = model.BookingStatusCancelled
	m := newBookingsModel(t, cancelled)

	next, _, _ := m.handleBookingsKey(keyRune('x'))
	updated := next.(appModel)
	if updated.cancel != nil {
		t.Fatal("expected cancelled bookings to be unselectable for cancellation")
	}

	next, _, _ = m.handleBookingsKey(keyRune('p'))
	updated = next.(appModel)
	if updated.state == stateCancelSeats {
		t.Fatal("expected cancelled bookings to be unselectable for seat cancellation")
	}
}

func TestHandleBookingsKey_PartialOpensSeatPicker(t *testing.T) {
	m := newBookingsModel(t, testBooking())

	next, _, _ := m.handleBookingsKey(keyRune('p'))
	updated := next.(appModel)

	if updated.state != stateCancelSeats {
		t.Fatalf("expected stateCancelSeats, got %v", updated.state)
	}
	if updated.cancel == nil || updated.cancel.confirmFull {
		t.Fatal("expected a seat-picking flow without a pending confirmation")
	}
}

func TestHandleCancelKey_EmptySelectionShowsNotice(t *testing.T) {
	m := newBookingsModel(t, testBooking())
	m.state = stateCancelSeats
	m.cancel = &cancelFlow{booking: testBooking(), selected: map[string]bool{}}

	next, cmd, _ := m.handleCancelKey(tea.KeyMsg{Type: tea.KeyEnter})
	updated := next.(appModel)

	if cmd != nil {
		t.Fatal("expected no request for an empty seat selection")
	}
	if updated.notice == "" {
		t.Fatal("expected a notice about the empty selection")
	}
}

func TestHandleCancelKey_SubsetSendsRequest(t *testing.T) {
	m := newBookingsModel(t, testBooking())
	m.state = stateCancelSeats
	m.cancel = &cancelFlow{
		booking:  testBooking(),
		selected: map[string]bool{"A2": true},
	}

	_, cmd, _ := m.handleCancelKey(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a partial cancellation request")
	}
}

func TestHandleCancelKey_AllSeatsEscalates(t *testing.T) {
	m := newBookingsModel(t, testBooking())
	m.state = stateCancelSeats
	m.cancel = &cancelFlow{
		booking:  testBooking(),
		selected: map[string]bool{"A1": true, "A2": true, "A3": true},
	}

	next, cmd, _ := m.handleCancelKey(tea.KeyMsg{Type: tea.KeyEnter})
	updated := next.(appModel)

	if cmd != nil {
		t.Fatal("expected no request before the escalated confirmation")
	}
	if updated.cancel == nil || !updated.cancel.confirmFull || !updated.cancel.escalated {
		t.Fatal("expected selecting every seat to escalate to a whole-booking confirmation")
	}
	if updated.state != stateMyBookings {
		t.Fatalf("expected the confirmation to show over my bookings, got %v", updated.state)
	}
}

func TestHandleBookingsKey_EscalatedDeclineReturnsToPicker(t *testing.T) {
	m := newBookingsModel(t, testBooking())
	m.cancel = &cancelFlow{
		booking:     testBooking(),
		selected:    map[string]bool{"A1": true, "A2": true, "A3": true},
		confirmFull: true,
		escalated:   true,
	}

	next, _, _ := m.handleBookingsKey(keyRune('n'))
	updated := next.(appModel)

	if updated.state != stateCancelSeats {
		t.Fatalf("expected to return to the seat picker, got %v", updated.state)
	}
	if updated.cancel == nil || len(updated.cancel.selected) != 3 {
		t.Fatal("expected the seat selection to be kept")
	}
}

func TestHandleBookingsKey_EnterOpensDetail(t *testing.T) {
	m := newBookingsModel(t, testBooking())

	next, cmd, handled := m.handleBookingsKey(tea.KeyMsg{Type: tea.KeyEnter})
	updated := next.(appModel)

	if !handled {
		t.Fatal("expected enter to be handled")
	}
	if updated.state != stateLoadingBookingDetail {
		t.Fatalf("expected stateLoadingBookingDetail, got %v", updated.state)
	}
	if cmd == nil {
		t.Fatal("expected a booking detail fetch command")
	}
}

func TestBookingDetail_ShowsFetchedBooking(t *testing.T) {
	m := newBookingsModel(t, testBooking())
	m.state = stateLoadingBookingDetail

	next, _ := m.Update(bookingDetailMsg{booking: testBooking()})
	updated := next.(appModel)

	if updated.state != stateBookingDetail {
		t.Fatalf("expected stateBookingDetail, got %v", updated.state)
	}
	if updated.detail == nil || updated.detail.Id != "bk-1" {
		t.Fatal("expected the fetched booking to be kept for display")
	}

	view := updated.renderBookingDetail()
	for _, want := range []string{"Dune", "7:00 PM", "A1, A2, A3", "$36.00"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected detail view to contain %q", want)
		}
	}
}

func TestBookingDetail_ErrorReturnsToList(t *testing.T) {
	m := newBookingsModel(t, testBooking())
	m.state = stateLoadingBookingDetail

	next, _ := m.Update(bookingDetailMsg{
		err: &service.APIError{StatusCode: 404, Endpoint: "/bookings/bk-9", Detail: "Booking not found"},
	})
	updated := next.(appModel)

	if updated.state != stateMyBookings {
		t.Fatalf("expected stateMyBookings, got %v", updated.state)
	}
	if updated.notice != "Booking not found" {
		t.Fatalf("expected verbatim server message, got %q", updated.notice)
	}
}

func TestCancelDone_RefreshesBookings(t *testing.T) {
	m := newBookingsModel(t, testBooking())
	m.cancel = &cancelFlow{booking: testBooking(), confirmFull: true}

	next, cmd := m.Update(cancelDoneMsg{full: true})
	updated := next.(appModel)

	if updated.state != stateLoadingBookings {
		t.Fatalf("expected a bookings refresh, got state %v", updated.state)
	}
	if updated.cancel != nil {
		t.Fatal("expected the cancel flow to be cleared")
	}
	if updated.notice == "" {
		t.Fatal("expected a success notice")
	}
	if cmd == nil {
		t.Fatal("expected a fetch command")
	}
}

func TestCancelDone_ErrorShowsServerMessage(t *testing.T) {
	m := newBookingsModel(t, testBooking())

	next, _ := m.Update(cancelDoneMsg{
		err: &service.APIError{StatusCode: 400, Endpoint: "/bookings/bk-1", Detail: "Cannot cancel within 2 hours of showtime"},
	})
	updated := next.(appModel)

	if updated.state != stateMyBookings {
		t.Fatalf("expected stateMyBookings, got %v", updated.state)
	}
	if updated.notice != "Cannot cancel within 2 hours of showtime" {
		t.Fatalf("expected verbatim server message, got %q", updated.notice)
	}
}
