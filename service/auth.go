package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"talknbook-cli/model"
)

// Login exchanges credentials for an access token and the user profile.
func (c *Client) Login(ctx context.Context, email string, password string) (model.AuthResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return model.AuthResponse{}, errors.New("email and password are required")
	}
	endpoint := fmt.Sprintf("%s/auth/login-json", c.baseURL)

	var auth model.AuthResponse
	if err := c.doJSON(ctx, "POST", endpoint, model.LoginRequest{Email: email, Password: password}, &auth); err != nil {
		return model.AuthResponse{}, err
	}
	if auth.AccessToken == "" {
		return model.AuthResponse{}, errors.New("login response missing access token")
	}
	return auth, nil
}

// Signup registers a new account and returns its first session.
func (c *Client) Signup(ctx context.Context, username string, email string, password string) (model.AuthResponse, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return model.AuthResponse{}, errors.New("username, email and password are required")
	}
	endpoint := fmt.Sprintf("%s/auth/signup", c.baseURL)

	var auth model.AuthResponse
	if err := c.doJSON(ctx, "POST", endpoint, model.SignupRequest{Username: username, Email: email, Password: password}, &auth); err != nil {
		return model.AuthResponse{}, err
	}
	if auth.AccessToken == "" {
		return model.AuthResponse{}, errors.New("signup response missing access token")
	}
	return auth, nil
}

// CurrentUser fetches the profile behind the attached token.
func (c *Client) CurrentUser(ctx context.Context) (model.User, error) {
	endpoint := fmt.Sprintf("%s/auth/me", c.baseURL)

	var user model.User
	if err := c.getJSON(ctx, endpoint, &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// TokenExpired inspects a stored JWT's exp claim without verifying the
// signature; verification is the server's job, this only avoids presenting
// a token that is already past its lifetime. Tokens that cannot be parsed
// or carry no expiry are treated as expired.
func TokenExpired(token string, now time.Time) bool {
	token = strings.TrimSpace(token)
	if token == "" {
		return true
	}

	parser := jwt.NewParser()
	parsed, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return true
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return !now.Before(exp.Time)
}
