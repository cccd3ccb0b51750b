package query

import "errors"

var (
	// ErrDuplicateOrdering is returned when a second ordering method is applied to a query.
	ErrDuplicateOrdering = errors.New("canopy: cannot use an ordering method more than once")

	// ErrDuplicateLimit is returned when a second limiting method is applied to a query.
	ErrDuplicateLimit = errors.New("canopy: cannot use another limiting method")

	// ErrInvalidBound is returned when a filter bound is not null, a boolean, a number or a string.
	ErrInvalidBound = errors.New("canopy: query bounds must be null, boolean, number or string")

	// ErrInvalidLimit is returned when a limit amount is negative.
	ErrInvalidLimit = errors.New("canopy: limit amount must not be negative")
)
