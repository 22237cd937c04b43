package session

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Layout is the venue seat grid: an ordered set of row letters and a fixed
// number of seats per row.
type Layout struct {
	Rows        []string
	SeatsPerRow int
}

// DefaultLayout matches the single-auditorium venue configuration.
func DefaultLayout() Layout {
	return Layout{
		Rows:        []string{"A", "B", "C", "D", "E", "F"},
		SeatsPerRow: 8,
	}
}

// SeatID composes a seat identifier from a row label and a 1-based number.
func SeatID(row string, number int) string {
	return fmt.Sprintf("%s%d", row, number)
}

// Seats returns every seat identifier in stable rendering order: row by row,
// seat numbers ascending.
func (l Layout) Seats() []string {
	seats := make([]string, 0, len(l.Rows)*l.SeatsPerRow)
	for _, row := range l.Rows {
		for n := 1; n <= l.SeatsPerRow; n++ {
			seats = append(seats, SeatID(row, n))
		}
	}
	return seats
}

// Contains reports whether a seat identifier names a seat in this layout.
func (l Layout) Contains(seat string) bool {
	row, number, ok := l.split(seat)
	if !ok {
		return false
	}
	if number < 1 || number > l.SeatsPerRow {
		return false
	}
	for _, r := range l.Rows {
		if r == row {
			return true
		}
	}
	return false
}

func (l Layout) split(seat string) (string, int, bool) {
	seat = strings.TrimSpace(seat)
	if len(seat) < 2 {
		return "", 0, false
	}
	i := 0
	for i < len(seat) && (seat[i] < '0' || seat[i] > '9') {
		i++
	}
	if i == 0 || i == len(seat) {
		return "", 0, false
	}
	number, err := strconv.Atoi(seat[i:])
	if err != nil {
		return "", 0, false
	}
	return seat[:i], number, true
}

// SortSeats orders seat identifiers in layout order. Identifiers outside the
// layout keep their relative order at the end.
func (l Layout) SortSeats(seats []string) []string {
	rank := make(map[string]int, len(l.Rows)*l.SeatsPerRow)
	for i, seat := range l.Seats() {
		rank[seat] = i
	}

	sorted := append([]string{}, seats...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, okI := rank[sorted[i]]
		rj, okJ := rank[sorted[j]]
		if okI && okJ {
			return ri < rj
		}
		return okI && !okJ
	})
	return sorted
}
