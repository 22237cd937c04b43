package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"talknbook-cli/model"
)

// BookedSeats queries the seat ledger for one (movie, showtime) pair. It is
// a read shaped as a POST; it runs as a single attempt because callers
// re-issue it on every showtime change and treat failure as an empty set.
func (c *Client) BookedSeats(ctx context.Context, movieID string, showtime string) ([]string, error) {
	if strings.TrimSpace(movieID) == "" || strings.TrimSpace(showtime) == "" {
		return nil, errors.New("movie id and showtime are required")
	}
	endpoint := fmt.Sprintf("%s/bookings/booked-seats", c.baseURL)

	var res model.BookedSeatsResponse
	if err := c.doJSON(ctx, "POST", endpoint, model.BookedSeatsRequest{MovieId: movieID, Showtime: showtime}, &res); err != nil {
		return nil, err
	}
	return res.BookedSeats, nil
}

// CreateBooking submits one atomic booking request. Never retried: a
// rejection means a seat was lost to another booker and the user has to
// re-select, not replay.
func (c *Client) CreateBooking(ctx context.Context, req model.BookingCreate) (model.Booking, error) {
	if len(req.Seats) == 0 {
		return model.Booking{}, errors.New("at least one seat is required")
	}
	endpoint := fmt.Sprintf("%s/bookings/", c.baseURL)

	var booking model.Booking
	if err := c.doJSON(ctx, "POST", endpoint, req, &booking); err != nil {
		return model.Booking{}, err
	}
	return booking, nil
}

// Bookings lists the authenticated user's bookings.
func (c *Client) Bookings(ctx context.Context) ([]model.Booking, error) {
	endpoint := fmt.Sprintf("%s/bookings/", c.baseURL)

	var bookings []model.Booking
	if err := c.getJSON(ctx, endpoint, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// BookingByID fetches one booking owned by the authenticated user.
func (c *Client) BookingByID(ctx context.Context, bookingID string) (model.Booking, error) {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return model.Booking{}, errors.New("booking id is required")
	}
	endpoint := fmt.Sprintf("%s/bookings/%s", c.baseURL, url.PathEscape(bookingID))

	var booking model.Booking
	if err := c.getJSON(ctx, endpoint, &booking); err != nil {
		return model.Booking{}, err
	}
	return booking, nil
}

// CancelBooking cancels a whole booking.
func (c *Client) CancelBooking(ctx context.Context, bookingID string) error {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return errors.New("booking id is required")
	}
	endpoint := fmt.Sprintf("%s/bookings/%s", c.baseURL, url.PathEscape(bookingID))
	return c.doJSON(ctx, "DELETE", endpoint, nil, nil)
}

// CancelSeats cancels a subset of a booking's seats. Callers cancelling
// every seat should use CancelBooking; the server treats them the same but
// the messaging differs.
func (c *Client) CancelSeats(ctx context.Context, bookingID string, seats []string) error {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return errors.New("booking id is required")
	}
	if len(seats) == 0 {
		return errors.New("at least one seat is required")
	}
	endpoint := fmt.Sprintf("%s/bookings/%s", c.baseURL, url.PathEscape(bookingID))
	return c.doJSON(ctx, "DELETE", endpoint, model.CancelSeatsRequest{Seats: seats}, nil)
}
