package bridge

import (
	"errors"
	"fmt"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/uartframe/pkg/l0/frame"
)

// ErrInvalidEnvelope indicates a packet which is not an encoded frame.
var ErrInvalidEnvelope = errors.New("invalid envelope")

// Envelope carries one frame on the packet side of the bridge.
type Envelope struct {
	Sender   uint32 `protobuf:"varint,1,opt,name=sender,proto3" json:"sender,omitempty"`
	Receiver uint32 `protobuf:"varint,2,opt,name=receiver,proto3" json:"receiver,omitempty"`
	Data     []byte `protobuf:"bytes,3,opt,name=data,proto3" json:"data,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Envelope) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Envelope) Reset() { *m = Envelope{} }

// String implements proto.Message.
func (m *Envelope) String() string { return proto.CompactTextString(m) }

// Frame converts the envelope to a frame after range checks.
func (m *Envelope) Frame() (*frame.Frame, error) {
	if m.Sender > 0xff || m.Receiver > 0xff {
		return nil, fmt.Errorf("%w: id %d->%d out of range", ErrInvalidEnvelope, m.Sender, m.Receiver)
	}
	if len(m.Data) > frame.FrameDataMaxSize {
		return nil, frame.ErrDataTooBig
	}
	return &frame.Frame{Sender: byte(m.Sender), Receiver: byte(m.Receiver), Data: m.Data}, nil
}

// EnvelopeOf wraps f.
func EnvelopeOf(f *frame.Frame) *Envelope {
	return &Envelope{Sender: uint32(f.Sender), Receiver: uint32(f.Receiver), Data: f.Data}
}

// EncodeEnvelope encodes f in protobuf wire format.
func EncodeEnvelope(f *frame.Frame) ([]byte, error) {
	if len(f.Data) > frame.FrameDataMaxSize {
		return nil, frame.ErrFrameTooLong
	}
	return proto.Marshal(EnvelopeOf(f))
}

// DecodeEnvelope decodes a packet produced by EncodeEnvelope.
// Unknown fields are skipped.
func DecodeEnvelope(pkt []byte) (*frame.Frame, error) {
	var m Envelope
	if err := proto.Unmarshal(pkt, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}
	return m.Frame()
}
