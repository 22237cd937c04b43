package model

type Movie struct {
	Id          string   `json:"id"`
	Title       string   `json:"title"`
	Genre       string   `json:"genre"`
	Duration    string   `json:"duration"`
	Rating      string   `json:"rating"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Showtimes   []string `json:"showtimes"`
	Price       float64  `json:"price"`
}
