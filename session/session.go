// Package session holds the client-side state of one seat-selection-and-
// booking interaction: the resolved movie, the active showtime, the local
// selection and the server-reported booked set. It performs no I/O; callers
// fetch booked seats and feed responses back through ApplyBookedSeats.
package session

import (
	"errors"

	"talknbook-cli/model"
)

// Status is the derived state of a single seat. It is never stored per seat;
// Status() computes it from the booked and selection sets on demand.
type Status int

const (
	StatusAvailable Status = iota
	StatusSelected
	StatusBooked
)

// ErrEmptySelection is returned by BookingRequest when no seats are selected.
var ErrEmptySelection = errors.New("no seats selected")

// Session is scoped to one (movie, showtime) pair. Changing the showtime
// clears the selection and invalidates any in-flight booked-seats query via
// the request generation.
type Session struct {
	layout   Layout
	movie    model.Movie
	showtime string

	selected map[string]bool
	booked   map[string]bool

	// generation increases on every showtime change; booked-seats responses
	// carry the generation that initiated them and stale ones are discarded.
	generation int
	reconciled bool
}

// New creates a session for a resolved movie, starting on its first showtime
// when one exists.
func New(movie model.Movie, layout Layout) *Session {
	s := &Session{
		layout:   layout,
		movie:    movie,
		selected: map[string]bool{},
		booked:   map[string]bool{},
	}
	if len(movie.Showtimes) > 0 {
		s.showtime = movie.Showtimes[0]
	}
	return s
}

func (s *Session) Movie() model.Movie { return s.movie }
func (s *Session) Layout() Layout     { return s.layout }
func (s *Session) Showtime() string   { return s.showtime }
func (s *Session) Generation() int    { return s.generation }

// Reconciled reports whether a booked-seats response for the current
// showtime has been applied. Seats must not be presented as bookable
// before this is true.
func (s *Session) Reconciled() bool { return s.reconciled }

// SetShowtime switches the active showtime. The selection is cleared
// unconditionally and the booked set is reset pending a fresh query. The
// returned generation must accompany the booked-seats request so that the
// response can be matched against the showtime that initiated it.
func (s *Session) SetShowtime(label string) int {
	s.showtime = label
	s.selected = map[string]bool{}
	s.booked = map[string]bool{}
	s.reconciled = false
	s.generation++
	return s.generation
}

// ApplyBookedSeats replaces the booked set with a server response. A
// response whose generation no longer matches belongs to a showtime the
// user has since navigated away from and is discarded. Seats the server
// now reports as booked are dropped from the local selection.
func (s *Session) ApplyBookedSeats(gen int, seats []string) bool {
	if gen != s.generation {
		return false
	}
	s.booked = make(map[string]bool, len(seats))
	for _, seat := range seats {
		s.booked[seat] = true
		delete(s.selected, seat)
	}
	s.reconciled = true
	return true
}

// Toggle flips a seat in or out of the selection. Booked seats and seats
// outside the layout are never toggleable.
func (s *Session) Toggle(seat string) bool {
	if s.booked[seat] || !s.layout.Contains(seat) {
		return false
	}
	if s.selected[seat] {
		delete(s.selected, seat)
	} else {
		s.selected[seat] = true
	}
	return true
}

// Status derives the display state of a seat. Booked always wins over a
// local selection.
func (s *Session) Status(seat string) Status {
	if s.booked[seat] {
		return StatusBooked
	}
	if s.selected[seat] {
		return StatusSelected
	}
	return StatusAvailable
}

// SelectedSeats returns the selection in layout order.
func (s *Session) SelectedSeats() []string {
	seats := make([]string, 0, len(s.selected))
	for seat := range s.selected {
		seats = append(seats, seat)
	}
	return s.layout.SortSeats(seats)
}

func (s *Session) SelectionSize() int { return len(s.selected) }

// TotalPrice is the display price: seat count times the movie's per-seat
// price. The authoritative total is whatever the server stores.
func (s *Session) TotalPrice() float64 {
	return float64(len(s.selected)) * s.movie.Price
}

// Clear drops the selection, keeping showtime and booked set intact.
func (s *Session) Clear() {
	s.selected = map[string]bool{}
}

// BookingRequest builds the creation payload for the current selection.
func (s *Session) BookingRequest() (model.BookingCreate, error) {
	if len(s.selected) == 0 {
		return model.BookingCreate{}, ErrEmptySelection
	}
	return model.BookingCreate{
		MovieId:    s.movie.Id,
		MovieTitle: s.movie.Title,
		Showtime:   s.showtime,
		Seats:      s.SelectedSeats(),
		TotalPrice: s.TotalPrice(),
	}, nil
}
