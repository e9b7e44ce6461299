package proto

import "errors"

var (
	// ErrInvalidFrame is the only error Decode returns. On a shared bus the
	// reason a frame is malformed is not actionable.
	ErrInvalidFrame = errors.New("invalid frame")
	// ErrInvalidAddress indicates an address outside 1-247 was given to an encoder.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrShortBuffer indicates the destination can't hold the encoded frame.
	ErrShortBuffer = errors.New("buffer too small")
	// ErrPayloadLength indicates a payload doesn't fit the LEN byte, or a
	// reply payload which isn't exactly ReplyPayloadLen bytes.
	ErrPayloadLength = errors.New("invalid payload length")
)
