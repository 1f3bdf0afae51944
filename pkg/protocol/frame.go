package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// FrameType discriminates the frames a backend may send.
type FrameType string

const (
	// FrameWrite carries a single facet write.
	FrameWrite FrameType = "write"

	// FrameBatch carries multiple facet writes applied in order.
	FrameBatch FrameType = "batch"

	// FramePing is a liveness probe; the channel answers with a pong.
	FramePing FrameType = "ping"

	// FramePong answers a ping.
	FramePong FrameType = "pong"
)

// Limits enforced during decode.
const (
	// MaxFrameSize is the largest accepted encoded frame in bytes.
	MaxFrameSize = 1 << 20

	// MaxBatchWrites is the largest accepted writes list.
	MaxBatchWrites = 1024
)

// Decode errors.
var (
	ErrFrameTooLarge    = errors.New("protocol: frame exceeds size limit")
	ErrUnknownFrameType = errors.New("protocol: unknown frame type")
	ErrBatchTooLarge    = errors.New("protocol: batch exceeds write limit")
	ErrEmptyIdentifier  = errors.New("protocol: write with empty identifier")
	ErrNoWrites         = errors.New("protocol: write frame without writes")
)

// Write is one facet update: an identifier and its next value.
type Write struct {
	ID    string `json:"id"`
	Value any    `json:"value"`
}

// Frame is the unit of transmission on the backend channel.
//
// Timestamp is the backend's send time in Unix milliseconds. It is
// optional, opaque to the engine, and echoed back in pongs so backends can
// measure round-trip latency.
type Frame struct {
	Type      FrameType `json:"type"`
	Seq       uint64    `json:"seq,omitempty"`
	Writes    []Write   `json:"writes,omitempty"`
	Timestamp uint64    `json:"ts,omitempty"`
}

// NewWriteFrame builds a single-write frame.
func NewWriteFrame(seq uint64, id string, value any) *Frame {
	return &Frame{
		Type:   FrameWrite,
		Seq:    seq,
		Writes: []Write{{ID: id, Value: value}},
	}
}

// NewBatchFrame builds a frame applying writes in order.
func NewBatchFrame(seq uint64, writes []Write) *Frame {
	return &Frame{Type: FrameBatch, Seq: seq, Writes: writes}
}

// NewPing builds a liveness probe frame.
func NewPing(seq uint64) *Frame {
	return &Frame{Type: FramePing, Seq: seq}
}

// NewPong builds the answer to a ping, echoing its sequence and timestamp.
func NewPong(ping *Frame) *Frame {
	return &Frame{Type: FramePong, Seq: ping.Seq, Timestamp: ping.Timestamp}
}

// EncodeFrame encodes a frame to its wire representation.
func EncodeFrame(f *Frame) ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode frame: %w", err)
	}
	return data, nil
}

// DecodeFrame decodes and validates a frame from its wire representation.
func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}

	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("protocol: decode frame: %w", err)
	}

	switch f.Type {
	case FrameWrite, FrameBatch:
		if len(f.Writes) == 0 {
			return nil, ErrNoWrites
		}
		if len(f.Writes) > MaxBatchWrites {
			return nil, ErrBatchTooLarge
		}
		for _, w := range f.Writes {
			if w.ID == "" {
				return nil, ErrEmptyIdentifier
			}
		}
	case FramePing, FramePong:
		// No payload to validate.
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFrameType, f.Type)
	}

	return &f, nil
}
