package repositories

import "errors"

// ErrNotFound is returned when a record does not exist. Callers check
// it with errors.Is; repositories wrap it with the record's identity.
var ErrNotFound = errors.New("not found")
