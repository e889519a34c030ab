package dedup

import "errors"

// ErrInvalidInput is returned when a check is invoked with empty content,
// empty code, or a missing project id. The facade validates eagerly and
// fails fast; nothing is normalized, compared, or recorded.
var ErrInvalidInput = errors.New("invalid input")
