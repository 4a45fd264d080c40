package mesh

import "errors"

var (
	ErrMediaUnavailable = errors.New("media unavailable")
	ErrNotInCall        = errors.New("not in a call")
)
