package link

import "errors"

var (
	// ErrOutsideBracket indicates a write after the transmit bracket ended.
	ErrOutsideBracket = errors.New("write outside transmit bracket")
	// ErrTimeout indicates no frame arrived in time.
	ErrTimeout = errors.New("frame timeout")
)
