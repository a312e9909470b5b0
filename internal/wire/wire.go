// Package wire implements the bit-exact delta wire layout, the
// operation-type enum, and the schema-registry encoded-field reference
// format.
package wire

import (
	"encoding/binary"
	"errors"

	"github.com/econic-ai/massive-graph/internal/id"
	"github.com/econic-ai/massive-graph/internal/varint"
)

// ErrTruncated is returned when a byte slice is shorter than the wire
// layout it is being decoded as.
var ErrTruncated = errors.New("wire: truncated delta")

// ErrBadParam is returned when a parameter's declared length runs past
// the end of the buffer, or its varint length prefix is malformed.
var ErrBadParam = errors.New("wire: malformed parameter")

// OpType is the single-byte operation discriminator carried in every
// delta. Values with the top bit set (0x80+) are privileged operations;
// see IsPrivileged.
type OpType uint8

// Operation type enum, authoritative wire values for every op kind.
const (
	OpSet         OpType = 0
	OpDelete      OpType = 1
	OpIncrement   OpType = 2
	OpAppend      OpType = 3
	OpSplice      OpType = 4
	OpInsert      OpType = 5
	OpRemove      OpType = 6
	OpClear       OpType = 7
	OpSliceUpdate OpType = 8
	OpReshape     OpType = 9

	OpCreateSchema   OpType = 16
	OpCreateDocument OpType = 17
	OpCreateSnapshot OpType = 18
	OpDeleteDocument OpType = 19
	OpAddField       OpType = 20
	OpRemoveField    OpType = 21
	OpAddChild       OpType = 22
	OpRemoveChild    OpType = 23
	OpSetParent      OpType = 24

	OpPrepend      OpType = 32
	OpInsertAt     OpType = 33
	OpInsertWhere  OpType = 34
	OpReplaceAt    OpType = 35
	OpReplaceWhere OpType = 36
	OpDeleteAt     OpType = 37
	OpDeleteWhere  OpType = 38

	OpStreamAppend OpType = 48
	OpStreamMarkAt OpType = 49

	OpDeltas OpType = 64
)

// IsPrivileged reports whether op requires elevated executor
// permission: privileged ops have the top bit set (0x80+).
func (op OpType) IsPrivileged() bool { return op&0x80 != 0 }

// Param is a single typed, length-prefixed parameter as carried in a
// delta's param list: `[type:u8][length:varint][value:bytes]`.
type Param struct {
	Type  uint8
	Value []byte
}

// Delta is the decoded form of a wire-format delta record.
type Delta struct {
	DocID         id.ID16
	SchemaVersion uint16
	Op            OpType
	Params        []Param
	Payload       []byte
}

// headerLen is the fixed prefix before the variable param list:
// 16 (doc_id) + 2 (schema_version) + 1 (op_type) + 1 (param_count).
const headerLen = 16 + 2 + 1 + 1

// Encode serializes d into the bit-exact wire layout.
func Encode(d Delta) ([]byte, error) {
	if len(d.Params) > 0xFF {
		return nil, ErrBadParam
	}
	out := make([]byte, headerLen, headerLen+len(d.Payload)+16*len(d.Params))
	copy(out[0:16], d.DocID[:])
	binary.LittleEndian.PutUint16(out[16:18], d.SchemaVersion)
	out[18] = byte(d.Op)
	out[19] = byte(len(d.Params))

	for _, p := range d.Params {
		lenBytes, err := varint.Encode(uint32(len(p.Value)))
		if err != nil {
			return nil, err
		}
		out = append(out, p.Type)
		out = append(out, lenBytes...)
		out = append(out, p.Value...)
	}
	out = append(out, d.Payload...)
	return out, nil
}

// Decode parses b into a Delta. Decode∘Encode is the identity on any
// Delta value produced by this package (byte-exact round trip).
func Decode(b []byte) (Delta, error) {
	var d Delta
	if len(b) < headerLen {
		return d, ErrTruncated
	}
	copy(d.DocID[:], b[0:16])
	d.SchemaVersion = binary.LittleEndian.Uint16(b[16:18])
	d.Op = OpType(b[18])
	paramCount := int(b[19])

	off := headerLen
	d.Params = make([]Param, 0, paramCount)
	for i := 0; i < paramCount; i++ {
		if off >= len(b) {
			return Delta{}, ErrBadParam
		}
		ptype := b[off]
		off++
		plen, n, err := varint.Decode(b[off:])
		if err != nil {
			return Delta{}, ErrBadParam
		}
		off += n
		if off+int(plen) > len(b) {
			return Delta{}, ErrBadParam
		}
		value := make([]byte, plen)
		copy(value, b[off:off+int(plen)])
		off += int(plen)
		d.Params = append(d.Params, Param{Type: ptype, Value: value})
	}
	d.Payload = append([]byte(nil), b[off:]...)
	return d, nil
}

// EncodedFieldRef is the schema-registry interface's encoded-field
// reference format: `[schema_version:u16 big-endian][field_index:varint][param_count:u8][params...]`.
// Note the endianness difference from the delta header's schema_version
// (little-endian): this is the wire format the schema registry's atomic
// swap semantics consume, specified here only at its interface boundary.
type EncodedFieldRef struct {
	SchemaVersion uint16
	FieldIndex    uint32
	Params        []Param
}

// EncodeFieldRef serializes f per the encoded-field reference format.
func EncodeFieldRef(f EncodedFieldRef) ([]byte, error) {
	if len(f.Params) > 0xFF {
		return nil, ErrBadParam
	}
	fieldBytes, err := varint.Encode(f.FieldIndex)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 2, 2+len(fieldBytes)+1)
	binary.BigEndian.PutUint16(out[0:2], f.SchemaVersion)
	out = append(out, fieldBytes...)
	out = append(out, byte(len(f.Params)))
	for _, p := range f.Params {
		lenBytes, err := varint.Encode(uint32(len(p.Value)))
		if err != nil {
			return nil, err
		}
		out = append(out, p.Type)
		out = append(out, lenBytes...)
		out = append(out, p.Value...)
	}
	return out, nil
}

// DecodeFieldRef parses an encoded-field reference.
func DecodeFieldRef(b []byte) (EncodedFieldRef, error) {
	var f EncodedFieldRef
	if len(b) < 2 {
		return f, ErrTruncated
	}
	f.SchemaVersion = binary.BigEndian.Uint16(b[0:2])
	off := 2
	fieldIndex, n, err := varint.Decode(b[off:])
	if err != nil {
		return EncodedFieldRef{}, ErrBadParam
	}
	f.FieldIndex = fieldIndex
	off += n
	if off >= len(b) {
		return EncodedFieldRef{}, ErrBadParam
	}
	paramCount := int(b[off])
	off++
	f.Params = make([]Param, 0, paramCount)
	for i := 0; i < paramCount; i++ {
		if off >= len(b) {
			return EncodedFieldRef{}, ErrBadParam
		}
		ptype := b[off]
		off++
		plen, n, err := varint.Decode(b[off:])
		if err != nil {
			return EncodedFieldRef{}, ErrBadParam
		}
		off += n
		if off+int(plen) > len(b) {
			return EncodedFieldRef{}, ErrBadParam
		}
		value := make([]byte, plen)
		copy(value, b[off:off+int(plen)])
		off += int(plen)
		f.Params = append(f.Params, Param{Type: ptype, Value: value})
	}
	return f, nil
}
