package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"talknbook-cli/model"
)

// Movies fetches the catalog, optionally filtered by genre or a search
// query. Both filters are server-side; an empty value omits the parameter.
func (c *Client) Movies(ctx context.Context, genre string, search string) ([]model.Movie, error) {
	endpoint := fmt.Sprintf("%s/movies", c.baseURL)

	params := url.Values{}
	if genre = strings.TrimSpace(genre); genre != "" && !strings.EqualFold(genre, "All Genres") {
		params.Set("genre", genre)
	}
	if search = strings.TrimSpace(search); search != "" {
		params.Set("search", search)
	}
	if encoded := params.Encode(); encoded != "" {
		endpoint = endpoint + "?" + encoded
	}

	var movies []model.Movie
	if err := c.getJSON(ctx, endpoint, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// MovieByID fetches a single movie.
func (c *Client) MovieByID(ctx context.Context, movieID string) (model.Movie, error) {
	movieID = strings.TrimSpace(movieID)
	if movieID == "" {
		return model.Movie{}, errors.New("movie id is required")
	}
	endpoint := fmt.Sprintf("%s/movies/%s", c.baseURL, url.PathEscape(movieID))

	var movie model.Movie
	if err := c.getJSON(ctx, endpoint, &movie); err != nil {
		return model.Movie{}, err
	}
	if movie.Id == "" {
		return model.Movie{}, errors.New("movie not found")
	}
	return movie, nil
}
