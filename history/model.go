package history

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidRecord = errors.New("query, response and user are required")

const (
	DefaultLimit       = 10
	DefaultSuggestions = 5
)

type Config struct {
	Limit       int `yaml:"limit"`
	Suggestions int `yaml:"suggestions"`
}

type Record struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"createdAt"`
}

type Repository interface {
	// Append stores the record and counts its query towards suggestions.
	Append(ctx context.Context, record Record) error

	// Recent returns up to n records of the user, newest first.
	Recent(ctx context.Context, userID string, n int) ([]Record, error)

	// Popular returns up to n queries by descending frequency. A non-empty
	// filter keeps only queries containing it, ignoring case.
	Popular(ctx context.Context, filter string, n int) ([]string, error)
}
