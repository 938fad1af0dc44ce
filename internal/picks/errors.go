package picks

import "errors"

// ErrInvalidArgument is returned for malformed engine input such as a
// non-positive window size or a threshold outside [0, 1].
var ErrInvalidArgument = errors.New("invalid argument")
