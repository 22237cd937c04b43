package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m appModel) View() string {
	header := m.headerView()
	switch m.state {
	case stateStartup, stateAuthenticating, stateLoadingMovies, stateLoadingMovie,
		stateLoadingSeats, stateSubmitting, stateLoadingBookings, stateLoadingBookingDetail:
		return header + "\n\n" + m.loadingView()
	case stateLogin:
		return header + "\n\n" + m.renderAuthForm("Sign In", m.loginForm)
	case stateSignup:
		return header + "\n\n" + m.renderAuthForm("Create Account", m.signupForm)
	case stateSelectMovie:
		return header + "\n\n" + m.movieList.View()
	case stateSelectShowtime:
		return header + "\n\n" + m.showtimeList.View()
	case stateBooking:
		return header + "\n\n" + m.renderBooking()
	case stateConfirmation:
		return header + "\n\n" + m.renderConfirmation()
	case stateMyBookings:
		return header + "\n\n" + m.renderMyBookings()
	case stateBookingDetail:
		return header + "\n\n" + m.renderBookingDetail()
	case stateCancelSeats:
		return header + "\n\n" + m.renderCancelSeats()
	case stateError:
		return header + "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(errText(m.err)) + "\n\n" + hint("Press esc to go back or ctrl+c to quit.")
	default:
		return header
	}
}

func (m appModel) headerView() string {
	title := lipgloss.NewStyle().Bold(true).Render("TalkNBook")
	sub := []string{}
	if m.loggedIn && m.account.User.Username != "" {
		sub = append(sub, "Signed in as "+m.account.User.Username)
	}
	if m.sess != nil && (m.state == stateBooking || m.state == stateLoadingSeats || m.state == stateSubmitting || m.state == stateSelectShowtime) {
		sub = append(sub, fmt.Sprintf("Movie: %s", m.sess.Movie().Title))
		sub = append(sub, fmt.Sprintf("Showtime: %s", m.sess.Showtime()))
	}
	meta := strings.Join(sub, " • ")
	if meta != "" {
		meta = "\n" + lipgloss.NewStyle().Faint(true).Render(meta)
	}

	hints := "ctrl+c quit • esc back"
	switch m.state {
	case stateLogin:
		hints = "enter sign in • tab next field • ctrl+s sign up • esc quit"
	case stateSignup:
		hints = "enter create account • tab next field • esc back to sign in"
	case stateSelectMovie:
		hints = "ctrl+c quit • type to filter • enter select • m my bookings • ctrl+l sign out • q quit"
	case stateBooking:
		hints = "arrows move • space toggle seat • enter book • t showtime • c clear • m my bookings • esc back"
	case stateSelectShowtime:
		hints = "ctrl+c quit • esc back • enter select showtime"
	case stateMyBookings:
		hints = "ctrl+c quit • esc back • enter details • x cancel booking • p cancel seats"
		if m.bookingsErr != nil {
			hints = "ctrl+c quit • esc back • r retry"
		}
	case stateBookingDetail:
		hints = "ctrl+c quit • esc back"
	case stateCancelSeats:
		hints = "ctrl+c quit • esc back • space toggle • enter confirm"
	}
	filterLine := ""
	if listPtr := m.activeList(); listPtr != nil {
		if filter := listPtr.FilterValue(); filter != "" {
			filterLine = "\n" + hint(fmt.Sprintf("Filter: %s", filter))
		}
	}
	return title + meta + filterLine + "\n" + hint(hints)
}

func (m appModel) loadingView() string {
	title := "Loading"
	switch m.state {
	case stateStartup:
		title = "Restoring session"
	case stateAuthenticating:
		title = "Signing in"
	case stateLoadingMovies:
		title = "Loading movies"
	case stateLoadingMovie:
		title = "Loading movie"
	case stateLoadingSeats:
		title = "Loading seats"
	case stateSubmitting:
		title = "Booking seats"
	case stateLoadingBookings:
		title = "Loading bookings"
	case stateLoadingBookingDetail:
		title = "Loading booking"
	}

	return fmt.Sprintf("%s %s\n\n%s", m.spinner.View(), title, hint("Fetching data..."))
}

func (m appModel) renderAuthForm(title string, form authForm) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
	b.WriteString("\n\n")
	for i := range form.inputs {
		b.WriteString(form.inputs[i].View())
		b.WriteString("\n")
	}
	if form.err != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(form.err))
		b.WriteString("\n")
	}
	return b.String()
}

func hint(text string) string {
	return lipgloss.NewStyle().Faint(true).Render(text)
}

func errText(err error) string {
	if err == nil {
		return "something went wrong"
	}
	return err.Error()
}
