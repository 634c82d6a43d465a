package cart

import "errors"

var (
	ErrInvalidService  = errors.New("invalid service data")
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 100")
	ErrQuantityLimit   = errors.New("maximum quantity per item is 100")
	ErrItemNotFound    = errors.New("cart item not found")
	ErrInvalidSection  = errors.New("invalid section index")
	ErrFileLimit       = errors.New("maximum 5 files per section")

	// ErrRecordNotFound is returned by a Persistence when no record is stored
	// under the key.
	ErrRecordNotFound = errors.New("cart record not found")
)
