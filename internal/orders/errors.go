package orders

import "errors"

// ErrNotFound is returned by change flows when the referenced order id has
// never been saved.
var ErrNotFound = errors.New("order not found")
