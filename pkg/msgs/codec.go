package msgs

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/golang/protobuf/ptypes"
	"github.com/golang/protobuf/ptypes/wrappers"

	"github.com/robotalks/tmon/pkg/reading"
)

// Encoding selects the message format.
type Encoding string

// Encodings
const (
	JSON  Encoding = "json"
	Proto Encoding = "proto"
)

// ParseEncoding validates an encoding name. Empty means JSON.
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(s) {
	case "", JSON:
		return JSON, nil
	case Proto:
		return Proto, nil
	}
	return "", fmt.Errorf("unknown encoding %q", s)
}

// Telemetry is the JSON form of a reading.
type Telemetry struct {
	Time    time.Time   `json:"ts"`
	Address int         `json:"addr"`
	Temps   [4]*float64 `json:"temps"`
}

// NewTelemetry converts a reading.
func NewTelemetry(r reading.Reading) *Telemetry {
	t := &Telemetry{Time: r.Time.UTC(), Address: int(r.Address)}
	for ch, c := range r.Channels {
		if c.Valid {
			v := c.Celsius()
			t.Temps[ch] = &v
		}
	}
	return t
}

// Reading converts back, rounding to tenths.
func (t *Telemetry) Reading() (r reading.Reading, err error) {
	if t.Address <= 0 || t.Address > math.MaxUint8 {
		return r, fmt.Errorf("invalid address %d", t.Address)
	}
	r.Time, r.Address = t.Time, byte(t.Address)
	for ch, v := range t.Temps {
		if v != nil {
			r.Channels[ch] = reading.Channel{Tenths: int16(math.Round(*v * 10)), Valid: true}
		}
	}
	return r, nil
}

// NewReadingMsg converts a reading to its protobuf form.
func NewReadingMsg(r reading.Reading) (*ReadingMsg, error) {
	ts, err := ptypes.TimestampProto(r.Time)
	if err != nil {
		return nil, err
	}
	m := &ReadingMsg{Time: ts, Address: uint32(r.Address)}
	for ch, field := range m.temps() {
		if c := r.Channels[ch]; c.Valid {
			*field = &wrappers.Int32Value{Value: int32(c.Tenths)}
		}
	}
	return m, nil
}

// Reading converts back.
func (m *ReadingMsg) Reading() (r reading.Reading, err error) {
	if m.Address == 0 || m.Address > math.MaxUint8 {
		return r, fmt.Errorf("invalid address %d", m.Address)
	}
	if r.Time, err = ptypes.Timestamp(m.Time); err != nil {
		return r, err
	}
	r.Address = byte(m.Address)
	for ch, field := range m.temps() {
		if v := *field; v != nil {
			r.Channels[ch] = reading.Channel{Tenths: int16(v.Value), Valid: true}
		}
	}
	return r, nil
}

// Encode serializes a reading.
func Encode(r reading.Reading, enc Encoding) ([]byte, error) {
	if enc == Proto {
		m, err := NewReadingMsg(r)
		if err != nil {
			return nil, err
		}
		return proto.Marshal(m)
	}
	return json.Marshal(NewTelemetry(r))
}

// Decode parses a reading encoded by Encode.
func Decode(data []byte, enc Encoding) (reading.Reading, error) {
	if enc == Proto {
		var m ReadingMsg
		if err := proto.Unmarshal(data, &m); err != nil {
			return reading.Reading{}, err
		}
		return m.Reading()
	}
	var t Telemetry
	if err := json.Unmarshal(data, &t); err != nil {
		return reading.Reading{}, err
	}
	return t.Reading()
}
