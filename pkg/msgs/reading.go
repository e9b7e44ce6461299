package msgs

import (
	"github.com/golang/protobuf/proto"
	"github.com/golang/protobuf/ptypes/timestamp"
	"github.com/golang/protobuf/ptypes/wrappers"
)

// ReadingMsg is the protobuf form of a reading.
type ReadingMsg struct {
	Time    *timestamp.Timestamp `protobuf:"bytes,1,opt,name=time,proto3" json:"time,omitempty"`
	Address uint32               `protobuf:"varint,2,opt,name=address,proto3" json:"address,omitempty"`
	Temp0   *wrappers.Int32Value `protobuf:"bytes,3,opt,name=temp0,proto3" json:"temp0,omitempty"`
	Temp1   *wrappers.Int32Value `protobuf:"bytes,4,opt,name=temp1,proto3" json:"temp1,omitempty"`
	Temp2   *wrappers.Int32Value `protobuf:"bytes,5,opt,name=temp2,proto3" json:"temp2,omitempty"`
	Temp3   *wrappers.Int32Value `protobuf:"bytes,6,opt,name=temp3,proto3" json:"temp3,omitempty"`
}

// Reset implements proto.Message.
func (m *ReadingMsg) Reset() { *m = ReadingMsg{} }

// String implements proto.Message.
func (m *ReadingMsg) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*ReadingMsg) ProtoMessage() {}

func (m *ReadingMsg) temps() [4]**wrappers.Int32Value {
	return [4]**wrappers.Int32Value{&m.Temp0, &m.Temp1, &m.Temp2, &m.Temp3}
}
