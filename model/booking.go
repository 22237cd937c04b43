package model

import "time"

const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

type Booking struct {
	Id          string    `json:"id"`
	UserId      string    `json:"user_id"`
	MovieId     string    `json:"movie_id"`
	MovieTitle  string    `json:"movie_title"`
	Showtime    string    `json:"showtime"`
	Seats       []string  `json:"seats"`
	TotalPrice  float64   `json:"total_price"`
	BookingDate time.Time `json:"booking_date"`
	Status      string    `json:"status"`
}

type BookingCreate struct {
	MovieId    string   `json:"movie_id"`
	MovieTitle string   `json:"movie_title"`
	Showtime   string   `json:"showtime"`
	Seats      []string `json:"seats"`
	TotalPrice float64  `json:"total_price"`
}

type BookedSeatsRequest struct {
	MovieId  string `json:"movie_id"`
	Showtime string `json:"showtime"`
}

type BookedSeatsResponse struct {
	MovieId     string   `json:"movie_id"`
	Showtime    string   `json:"showtime"`
	BookedSeats []string `json:"booked_seats"`
}

type CancelSeatsRequest struct {
	Seats []string `json:"seats"`
}
