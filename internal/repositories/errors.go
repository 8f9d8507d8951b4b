package repositories

import "errors"

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// ErrUnavailable is returned by every repository built without a database connection.
var ErrUnavailable = errors.New("database is not available")
