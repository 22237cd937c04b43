package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"talknbook-cli/model"
	"talknbook-cli/service"
)

type bookingItem struct {
	booking model.Booking
}

func (i bookingItem) Title() string {
	return fmt.Sprintf("%s • %s", i.booking.MovieTitle, i.booking.Showtime)
}

func (i bookingItem) Description() string {
	parts := []string{
		"Seats " + strings.Join(i.booking.Seats, ", "),
		formatPrice(i.booking.TotalPrice),
		titleCase(i.booking.Status),
	}
	if !i.booking.BookingDate.IsZero() {
		parts = append(parts, i.booking.BookingDate.Format("Jan 2, 2006"))
	}
	return strings.Join(parts, " • ")
}

func (i bookingItem) FilterValue() string {
	return i.booking.MovieTitle + " " + i.booking.Showtime
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func buildBookingItems(bookings []model.Booking) []list.Item {
	items := make([]list.Item, 0, len(bookings))
	for _, booking := range bookings {
		items = append(items, bookingItem{booking: booking})
	}
	return items
}

// cancelFlow carries the state of an in-progress cancellation: either a
// whole-booking confirmation or a seat subset being picked.
type cancelFlow struct {
	booking     model.Booking
	selected    map[string]bool
	cursor      int
	confirmFull bool
	escalated   bool
}

func (c *cancelFlow) selectedSeats() []string {
	seats := make([]string, 0, len(c.selected))
	for _, seat := range c.booking.Seats {
		if c.selected[seat] {
			seats = append(seats, seat)
		}
	}
	return seats
}

func (m appModel) handleBookingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if m.cancel != nil && m.cancel.confirmFull {
		switch msg.String() {
		case "y", "enter":
			id := m.cancel.booking.Id
			m.notice = ""
			return m, m.cancelBookingCmd(id), true
		case "n", "esc":
			if m.cancel.escalated {
				// Back to the seat picker with the selection intact.
				m.cancel.confirmFull = false
				m.cancel.escalated = false
				m.state = stateCancelSeats
			} else {
				m.cancel = nil
			}
			return m, nil, true
		}
		return m, nil, true
	}

	switch msg.String() {
	case "enter":
		item, ok := m.bookingList.SelectedItem().(bookingItem)
		if !ok {
			return m, nil, true
		}
		m.notice = ""
		m.state = stateLoadingBookingDetail
		return m, tea.Batch(m.fetchBookingDetailCmd(item.booking.Id), m.spinner.Tick), true
	case "x":
		item, ok := m.bookingList.SelectedItem().(bookingItem)
		if !ok || item.booking.Status != model.BookingStatusConfirmed {
			return m, nil, true
		}
		m.notice = ""
		m.cancel = &cancelFlow{booking: item.booking, confirmFull: true}
		return m, nil, true
	case "p":
		item, ok := m.bookingList.SelectedItem().(bookingItem)
		if !ok || item.booking.Status != model.BookingStatusConfirmed || len(item.booking.Seats) == 0 {
			return m, nil, true
		}
		m.notice = ""
		m.cancel = &cancelFlow{booking: item.booking, selected: map[string]bool{}}
		m.state = stateCancelSeats
		return m, nil, true
	}
	return m, nil, false
}

func (m appModel) handleCancelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if m.cancel == nil {
		m.state = stateMyBookings
		return m, nil, true
	}
	seats := m.cancel.booking.Seats
	switch msg.String() {
	case "up", "k", "left", "h":
		if m.cancel.cursor > 0 {
			m.cancel.cursor--
		}
		return m, nil, true
	case "down", "j", "right", "l":
		if m.cancel.cursor < len(seats)-1 {
			m.cancel.cursor++
		}
		return m, nil, true
	case " ", "x":
		seat := seats[m.cancel.cursor]
		if m.cancel.selected[seat] {
			delete(m.cancel.selected, seat)
		} else {
			m.cancel.selected[seat] = true
		}
		m.notice = ""
		return m, nil, true
	case "enter":
		chosen := m.cancel.selectedSeats()
		if len(chosen) == 0 {
			m.notice = "Select at least one seat to cancel"
			return m, nil, true
		}
		if len(chosen) == len(seats) {
			// Releasing every seat is a whole-booking cancellation, so it
			// gets the same confirmation step.
			m.cancel.confirmFull = true
			m.cancel.escalated = true
			m.state = stateMyBookings
			return m, nil, true
		}
		m.notice = ""
		return m, m.cancelSeatsCmd(m.cancel.booking.Id, chosen), true
	}
	return m, nil, true
}

func (m appModel) renderMyBookings() string {
	if m.cancel != nil && m.cancel.confirmFull {
		return m.renderCancelConfirm()
	}
	if m.bookingsErr != nil {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(
			"Could not load bookings: "+service.Message(m.bookingsErr)) +
			"\n\n" + hint("Press r to retry or esc to go back.")
	}
	view := m.bookingList.View()
	if len(m.bookingList.Items()) == 0 {
		view = "No bookings yet.\n\n" + hint("Press esc to browse movies.")
	}
	if m.notice != "" {
		view += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Render(m.notice)
	}
	return view
}

func (m appModel) renderCancelConfirm() string {
	chip := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("1")).
		Padding(0, 2)

	booking := m.cancel.booking
	lines := []string{chip.Render("Cancel Booking"), ""}
	if m.cancel.escalated {
		lines = append(lines, "You selected every seat on this booking.")
		lines = append(lines, "This cancels the entire booking.", "")
	}
	lines = append(lines,
		fmt.Sprintf("%s • %s", booking.MovieTitle, booking.Showtime),
		"Seats "+strings.Join(booking.Seats, ", ")+" • "+formatPrice(booking.TotalPrice),
		"",
		"Cancel this booking? (y/n)",
	)
	return strings.Join(lines, "\n")
}

func (m appModel) renderBookingDetail() string {
	if m.detail == nil {
		return ""
	}
	booking := m.detail

	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	if booking.Status == model.BookingStatusCancelled {
		statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	}

	lines := []string{
		lipgloss.NewStyle().Bold(true).Render(booking.MovieTitle),
		"",
		fmt.Sprintf("Showtime: %s", booking.Showtime),
		fmt.Sprintf("Seats:    %s", strings.Join(booking.Seats, ", ")),
		fmt.Sprintf("Total:    %s", formatPrice(booking.TotalPrice)),
		fmt.Sprintf("Status:   %s", statusStyle.Render(titleCase(booking.Status))),
	}
	if !booking.BookingDate.IsZero() {
		lines = append(lines, fmt.Sprintf("Booked:   %s", booking.BookingDate.Format("Jan 2, 2006 3:04 PM")))
	}
	lines = append(lines, "", hint("Press esc to go back."))
	return strings.Join(lines, "\n")
}

func (m appModel) renderCancelSeats() string {
	if m.cancel == nil {
		return ""
	}
	booking := m.cancel.booking

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Cancel Seats"))
	b.WriteString("\n")
	b.WriteString(hint(fmt.Sprintf("%s • %s", booking.MovieTitle, booking.Showtime)))
	b.WriteString("\n\n")

	cursorStyle := lipgloss.NewStyle().Reverse(true)
	for i, seat := range booking.Seats {
		mark := "[ ]"
		if m.cancel.selected[seat] {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s", mark, seat)
		if i == m.cancel.cursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(hint("space toggle • enter cancel selected • esc back"))
	if m.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(m.notice))
	}
	return b.String()
}
