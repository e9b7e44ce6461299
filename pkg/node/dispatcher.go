package node

import "github.com/robotalks/tmon/pkg/proto"

// ReplyLen is the encoded length of a REPLY frame.
const ReplyLen = proto.Overhead + proto.ReplyPayloadLen

// Dispatcher answers POLL frames addressed to this node. It keeps no
// state between calls.
type Dispatcher struct {
	Address byte
	Sensors SensorProvider
}

// Accepts tells whether f must be answered.
func (d *Dispatcher) Accepts(f proto.Frame) bool {
	return f.Address == d.Address && f.Command == proto.CmdPoll
}

// Dispatch encodes the reply to f into buf. It returns nil, nil when f is
// not for this node or not a POLL.
func (d *Dispatcher) Dispatch(f proto.Frame, buf []byte) ([]byte, error) {
	if !d.Accepts(f) {
		return nil, nil
	}
	return d.Report(buf)
}

// Report encodes a REPLY with the current readings into buf, used both
// for answers and for unsolicited pushes.
func (d *Dispatcher) Report(buf []byte) ([]byte, error) {
	n, err := proto.EncodeReply(buf, d.Address, Sample(d.Sensors))
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}
