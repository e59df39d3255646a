package repo

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrUniqueViolation is returned when a write hits a unique index.
	ErrUniqueViolation = errors.New("unique constraint violated")
	// ErrStaleState is returned when a conditional update matched no row
	// because the record changed since it was read.
	ErrStaleState = errors.New("record state changed concurrently")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
