package proto

import "encoding/binary"

// Reply payload constants.
const (
	Channels        = 4
	ReplyPayloadLen = Channels * 2

	// Invalid marks a disconnected or unreadable channel.
	Invalid int16 = 0x7fff
)

// Temps holds one raw value per channel in tenths of a degree Celsius.
type Temps [Channels]int16

// AllInvalid returns Temps with every channel marked Invalid.
func AllInvalid() (t Temps) {
	for i := range t {
		t[i] = Invalid
	}
	return
}

// Valid reports whether channel ch carries a reading.
func (t Temps) Valid(ch int) bool {
	return t[ch] != Invalid
}

// PutReply packs temps into dst which must be at least ReplyPayloadLen long.
func PutReply(dst []byte, temps Temps) {
	_ = dst[ReplyPayloadLen-1]
	for i, v := range temps {
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(v))
	}
}

// BuildReply packs temps into a reply payload.
func BuildReply(temps Temps) (p [ReplyPayloadLen]byte) {
	PutReply(p[:], temps)
	return
}

// ParseReply unpacks a reply payload. The Invalid sentinel is passed
// through unchanged.
func ParseReply(p []byte) (t Temps, err error) {
	if len(p) != ReplyPayloadLen {
		return t, ErrPayloadLength
	}
	for i := range t {
		t[i] = int16(binary.LittleEndian.Uint16(p[i*2:]))
	}
	return t, nil
}

// EncodeReply writes a complete REPLY frame from addr into dst without
// allocating.
func EncodeReply(dst []byte, addr byte, temps Temps) (int, error) {
	payload := BuildReply(temps)
	return EncodeTo(dst, addr, CmdReply, payload[:])
}
