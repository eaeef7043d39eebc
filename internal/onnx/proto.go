package onnx

import "encoding/binary"

// message builds one protobuf message in wire format. Field writers append
// a tag followed by the value; nesting goes through Message. Only the two
// wire types ONNX needs are implemented: varint and length-delimited.
type message struct {
	buf []byte
}

const (
	wireVarint = 0
	wireBytes  = 2
)

func (m *message) tag(field, wireType int) {
	m.buf = binary.AppendUvarint(m.buf, uint64(field)<<3|uint64(wireType))
}

// Int64 writes a varint field.
func (m *message) Int64(field int, v int64) {
	m.tag(field, wireVarint)
	m.buf = binary.AppendUvarint(m.buf, uint64(v))
}

// String writes a length-delimited string field.
func (m *message) String(field int, s string) {
	m.tag(field, wireBytes)
	m.buf = binary.AppendUvarint(m.buf, uint64(len(s)))
	m.buf = append(m.buf, s...)
}

// Bytes writes a length-delimited bytes field.
func (m *message) Bytes(field int, b []byte) {
	m.tag(field, wireBytes)
	m.buf = binary.AppendUvarint(m.buf, uint64(len(b)))
	m.buf = append(m.buf, b...)
}

// Message writes an embedded message field.
func (m *message) Message(field int, sub *message) {
	m.Bytes(field, sub.buf)
}
