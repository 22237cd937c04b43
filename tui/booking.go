package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"

	"talknbook-cli/model"
	"talknbook-cli/session"
)

type movieItem struct {
	movie model.Movie
}

func (i movieItem) Title() string { return i.movie.Title }

func (i movieItem) Description() string {
	parts := []string{}
	if i.movie.Genre != "" {
		parts = append(parts, i.movie.Genre)
	}
	if i.movie.Duration != "" {
		parts = append(parts, i.movie.Duration)
	}
	if i.movie.Rating != "" {
		parts = append(parts, "★ "+i.movie.Rating)
	}
	parts = append(parts, formatPrice(i.movie.Price))
	return strings.Join(parts, " • ")
}

func (i movieItem) FilterValue() string {
	return i.movie.Title + " " + i.movie.Genre
}

func buildMovieItems(movies []model.Movie) []list.Item {
	items := make([]list.Item, 0, len(movies))
	for _, movie := range movies {
		items = append(items, movieItem{movie: movie})
	}
	return items
}

type showtimeItem struct {
	label   string
	current bool
}

func (i showtimeItem) Title() string {
	if i.current {
		return i.label + " (current)"
	}
	return i.label
}

func (i showtimeItem) Description() string { return "" }
func (i showtimeItem) FilterValue() string { return i.label }

func buildShowtimeItems(movie model.Movie, current string) []list.Item {
	items := make([]list.Item, 0, len(movie.Showtimes))
	for _, label := range movie.Showtimes {
		items = append(items, showtimeItem{label: label, current: label == current})
	}
	return items
}

func (m appModel) handleBookingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if m.sess == nil {
		return m, nil, false
	}
	layout := m.sess.Layout()
	switch msg.String() {
	case "up", "k":
		if m.cursorRow > 0 {
			m.cursorRow--
		}
		return m, nil, true
	case "down", "j":
		if m.cursorRow < len(layout.Rows)-1 {
			m.cursorRow++
		}
		return m, nil, true
	case "left", "h":
		if m.cursorCol > 0 {
			m.cursorCol--
		}
		return m, nil, true
	case "right", "l":
		if m.cursorCol < layout.SeatsPerRow-1 {
			m.cursorCol++
		}
		return m, nil, true
	case " ", "x":
		seat := session.SeatID(layout.Rows[m.cursorRow], m.cursorCol+1)
		if !m.sess.Toggle(seat) && m.sess.Status(seat) == session.StatusBooked {
			m.notice = fmt.Sprintf("Seat %s is already booked", seat)
		} else {
			m.notice = ""
		}
		return m, nil, true
	case "c":
		m.sess.Clear()
		m.notice = ""
		return m, nil, true
	case "enter":
		return m.submitBooking()
	}
	return m, nil, false
}

func (m appModel) submitBooking() (tea.Model, tea.Cmd, bool) {
	if !m.loggedIn {
		m.notice = "Sign in to book seats"
		return m, nil, true
	}
	req, err := m.sess.BookingRequest()
	if err != nil {
		m.notice = "Select at least one seat to book"
		return m, nil, true
	}
	m.notice = ""
	m.state = stateSubmitting
	return m, tea.Batch(m.submitBookingCmd(req), m.spinner.Tick), true
}

func (m appModel) renderBooking() string {
	if m.sess == nil {
		return ""
	}
	movie := m.sess.Movie()
	layout := m.sess.Layout()

	var b strings.Builder

	gridWidth := layout.SeatsPerRow*3 - 1
	screenBar := screenBarBlock(gridWidth, "SCREEN")
	screenStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("214"))
	screenBorderStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Background(lipgloss.Color("236"))

	indent := strings.Repeat(" ", 2)
	b.WriteString(indent + screenBorderStyle.Render(screenBar.top) + "\n")
	b.WriteString(indent + screenStyle.Render(screenBar.mid) + "\n")
	b.WriteString(indent + screenBorderStyle.Render(screenBar.bot) + "\n\n")

	seatStyleAvailable := lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	seatStyleSelected := lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("2")).Bold(true)
	seatStyleBooked := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	cursorStyle := lipgloss.NewStyle().Reverse(true)

	for r, row := range layout.Rows {
		b.WriteString(fmt.Sprintf("%s ", row))
		for c := 0; c < layout.SeatsPerRow; c++ {
			seat := session.SeatID(row, c+1)
			var text string
			var style lipgloss.Style
			switch m.sess.Status(seat) {
			case session.StatusBooked:
				text, style = "XX", seatStyleBooked
			case session.StatusSelected:
				text, style = padCell(fmt.Sprintf("%d", c+1), 2), seatStyleSelected
			default:
				text, style = "[]", seatStyleAvailable
			}
			// The cursor highlights the seat but keeps its status glyph.
			if r == m.cursorRow && c == m.cursorCol {
				style = cursorStyle
			}
			b.WriteString(style.Render(text))
			if c < layout.SeatsPerRow-1 {
				b.WriteString(" ")
			}
		}
		b.WriteString(fmt.Sprintf(" %s\n", row))
	}

	b.WriteString("\n")
	b.WriteString(hint("Legend: [] available • green selected • XX booked"))
	b.WriteString("\n\n")

	selected := m.sess.SelectedSeats()
	summary := "No seats selected"
	if len(selected) > 0 {
		summary = fmt.Sprintf("Selected: %s • Total: %s", strings.Join(selected, ", "), formatPrice(m.sess.TotalPrice()))
	}
	b.WriteString(summary)
	b.WriteString("\n")
	b.WriteString(hint(fmt.Sprintf("%s • %s • %s", movie.Title, m.sess.Showtime(), formatPrice(movie.Price)+" per seat")))

	if m.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(m.notice))
	}
	return b.String()
}

func (m appModel) renderConfirmation() string {
	if m.confirmed == nil {
		return ""
	}
	booking := m.confirmed

	chip := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("2")).
		Padding(0, 2)

	lines := []string{
		chip.Render("Booking Confirmed"),
		"",
		fmt.Sprintf("Movie:    %s", booking.MovieTitle),
		fmt.Sprintf("Showtime: %s", booking.Showtime),
		fmt.Sprintf("Seats:    %s", strings.Join(booking.Seats, ", ")),
		fmt.Sprintf("Total:    %s", formatPrice(booking.TotalPrice)),
		"",
		hint("Press enter to browse more movies."),
	}
	return strings.Join(lines, "\n")
}

type screenBlock struct {
	top string
	mid string
	bot string
}

func screenBarBlock(width int, label string) screenBlock {
	if width < len(label)+4 {
		width = len(label) + 4
	}
	if width < 10 {
		width = 10
	}

	border := "╭" + strings.Repeat("─", width-2) + "╮"
	bottom := "╰" + strings.Repeat("─", width-2) + "╯"

	labelText := " " + label + " "
	padding := width - len(labelText) - 2
	left := padding / 2
	right := padding - left
	mid := "│" + strings.Repeat(" ", left) + labelText + strings.Repeat(" ", right) + "│"
	return screenBlock{top: border, mid: mid, bot: bottom}
}

func padCell(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if text == "" {
		return strings.Repeat(" ", width)
	}
	if len(text) >= width {
		return text[:width]
	}
	padding := width - len(text)
	left := padding / 2
	right := padding - left
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", right)
}

func formatPrice(price float64) string {
	return fmt.Sprintf("$%.2f", price)
}
