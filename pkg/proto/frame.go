package proto

import (
	"encoding/binary"
	"fmt"
)

// Frame layout constants.
const (
	Start      byte = 0x01
	Overhead        = 6
	MinAddress byte = 1
	MaxAddress byte = 247
	MaxPayload      = 255
)

// Commands.
const (
	CmdPoll  byte = 0x01
	CmdReply byte = 0x02
)

// Frame is a successfully decoded frame.
type Frame struct {
	Address byte
	Command byte
	Payload []byte
}

// ValidAddress reports whether addr is a usable node address.
func ValidAddress(addr byte) bool {
	return addr >= MinAddress && addr <= MaxAddress
}

// FrameLen returns the encoded size of a frame carrying n payload bytes.
func FrameLen(n int) int {
	return Overhead + n
}

// CommandName returns a printable name of cmd.
func CommandName(cmd byte) string {
	switch cmd {
	case CmdPoll:
		return "POLL"
	case CmdReply:
		return "REPLY"
	}
	return fmt.Sprintf("0x%02x", cmd)
}

// EncodeTo lays out a frame into dst and returns the number of bytes written.
func EncodeTo(dst []byte, addr, cmd byte, payload []byte) (int, error) {
	if !ValidAddress(addr) {
		return 0, ErrInvalidAddress
	}
	if len(payload) > MaxPayload {
		return 0, ErrPayloadLength
	}
	size := FrameLen(len(payload))
	if len(dst) < size {
		return 0, ErrShortBuffer
	}
	dst[0], dst[1], dst[2], dst[3] = Start, addr, cmd, byte(len(payload))
	copy(dst[4:], payload)
	crcAt := 4 + len(payload)
	binary.LittleEndian.PutUint16(dst[crcAt:], Checksum(dst[1:crcAt]))
	return size, nil
}

// Encode allocates and returns an encoded frame.
func Encode(addr, cmd byte, payload []byte) ([]byte, error) {
	buf := make([]byte, FrameLen(len(payload)))
	n, err := EncodeTo(buf, addr, cmd, payload)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// EncodePoll builds the POLL request for addr.
func EncodePoll(addr byte) ([]byte, error) {
	return Encode(addr, CmdPoll, nil)
}

// Decode validates p as exactly one frame. The returned payload is a
// sub-slice of p.
func Decode(p []byte) (f Frame, err error) {
	if len(p) < Overhead || p[0] != Start {
		return f, ErrInvalidFrame
	}
	n := int(p[3])
	if len(p) != FrameLen(n) {
		return f, ErrInvalidFrame
	}
	crcAt := 4 + n
	if binary.LittleEndian.Uint16(p[crcAt:]) != Checksum(p[1:crcAt]) {
		return f, ErrInvalidFrame
	}
	if !ValidAddress(p[1]) {
		return f, ErrInvalidFrame
	}
	f.Address, f.Command, f.Payload = p[1], p[2], p[4:crcAt:crcAt]
	return f, nil
}

// IsReplyFrom reports whether f is a REPLY sent by addr.
func (f Frame) IsReplyFrom(addr byte) bool {
	return f.Command == CmdReply && f.Address == addr
}

// String implements fmt.Stringer.
func (f Frame) String() string {
	return fmt.Sprintf("%s addr=%d len=%d", CommandName(f.Command), f.Address, len(f.Payload))
}
