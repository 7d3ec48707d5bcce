package analysis

import "errors"

// ErrInvalidRequest reports a request body that does not decode or lacks required input.
var ErrInvalidRequest = errors.New("invalid analysis request")
