package suppliers

import "errors"

// ErrNotFound indicates a supplier was not found.
var ErrNotFound = errors.New("not found")
