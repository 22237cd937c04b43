// Package config loads client configuration from a .env file and the
// environment. Every value has a working default so the client runs with no
// configuration at all against a local backend.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultAPIBaseURL  = "http://localhost:8000"
	defaultSeatRows    = "A,B,C,D,E,F"
	defaultSeatsPerRow = 8
)

type Config struct {
	// APIBaseURL is the root of the booking service REST API.
	APIBaseURL string
	// SeatRows are the venue's ordered row letters.
	SeatRows []string
	// SeatsPerRow is the fixed seat count per row.
	SeatsPerRow int
	// StartMovieID, when set, skips the catalog and opens booking for that
	// movie directly.
	StartMovieID string
	// Debug enables diagnostics on stderr.
	Debug bool
}

// Load reads .env (when present) and the environment.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		APIBaseURL:   defaultAPIBaseURL,
		SeatRows:     splitRows(defaultSeatRows),
		SeatsPerRow:  defaultSeatsPerRow,
		StartMovieID: strings.TrimSpace(os.Getenv("TALKNBOOK_MOVIE_ID")),
		Debug:        strings.TrimSpace(os.Getenv("TALKNBOOK_DEBUG")) != "",
	}

	if v := strings.TrimSpace(os.Getenv("TALKNBOOK_API_URL")); v != "" {
		cfg.APIBaseURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv("TALKNBOOK_SEAT_ROWS")); v != "" {
		if rows := splitRows(v); len(rows) > 0 {
			cfg.SeatRows = rows
		}
	}
	if v := strings.TrimSpace(os.Getenv("TALKNBOOK_SEATS_PER_ROW")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SeatsPerRow = n
		}
	}
	return cfg
}

func splitRows(value string) []string {
	var rows []string
	for _, part := range strings.Split(value, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part != "" {
			rows = append(rows, part)
		}
	}
	return rows
}
