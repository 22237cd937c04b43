package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"talknbook-cli/model"
)

const (
	appDirName      = "talknbook-cli"
	catalogCacheTTL = 10 * time.Minute
)

type cacheEnvelope[T any] struct {
	UpdatedAt time.Time `json:"updated_at"`
	Data      T         `json:"data"`
}

// Account is the persisted authenticated session: the bearer token and the
// profile it belongs to. It survives restarts and is destroyed at logout.
type Account struct {
	Token   string     `json:"token"`
	User    model.User `json:"user"`
	SavedAt time.Time  `json:"saved_at"`
}

// LoadAccount reads the persisted session. A missing file is not an error;
// it returns ok=false.
func LoadAccount() (Account, bool, error) {
	path, err := configPath("session.json")
	if err != nil {
		return Account{}, false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Account{}, false, nil
		}
		return Account{}, false, err
	}

	var account Account
	if err := json.Unmarshal(data, &account); err != nil {
		return Account{}, false, errors.New("invalid session format")
	}
	if account.Token == "" {
		return Account{}, false, nil
	}
	return account, true, nil
}

// SaveAccount persists a session created by login or signup.
func SaveAccount(account Account) error {
	if account.Token == "" {
		return errors.New("token is required")
	}
	path, err := configPath("session.json")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if account.SavedAt.IsZero() {
		account.SavedAt = time.Now()
	}
	payload, err := json.MarshalIndent(account, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

// ClearAccount destroys the persisted session at logout.
func ClearAccount() error {
	path, err := configPath("session.json")
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// LoadCatalogCache returns the cached movie catalog and whether it is still
// fresh enough to show without a refetch.
func LoadCatalogCache() ([]model.Movie, bool, error) {
	path, err := cachePath("movies.json")
	if err != nil {
		return nil, false, err
	}
	cache, err := loadCache[[]model.Movie](path)
	if err != nil {
		return nil, false, err
	}
	return cache.Data, time.Since(cache.UpdatedAt) <= catalogCacheTTL, nil
}

// SaveCatalogCache stores the movie catalog for quick startup.
func SaveCatalogCache(movies []model.Movie) error {
	path, err := cachePath("movies.json")
	if err != nil {
		return err
	}
	return saveCache(path, movies)
}

func loadCache[T any](path string) (cacheEnvelope[T], error) {
	var cache cacheEnvelope[T]
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cache, nil
		}
		return cache, err
	}
	if err := json.Unmarshal(data, &cache); err != nil {
		return cache, err
	}
	return cache, nil
}

func saveCache[T any](path string, data T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	cache := cacheEnvelope[T]{
		UpdatedAt: time.Now(),
		Data:      data,
	}
	payload, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func configPath(name string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDirName, name), nil
}

func cachePath(name string) (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDirName, name), nil
}
