package filter

import (
	"bytes"
	"encoding/binary"
	"image/color"
	"io"
	"math"

	"github.com/gogpu/vgraster/internal/geom"
)

// nodeTag identifies a concrete FilterNode type in the encoded stream.
// New tags must only ever be appended; renumbering breaks old streams.
type nodeTag uint8

const (
	tagBlur nodeTag = iota + 1
	tagColorMatrix
	tagDropShadow
	tagMerge
	tagOffset
)

// legacyReserved is written after every node record for backward
// compatibility with a field Skia's filter serializer once carried
// (a persistence-version marker); readers must consume and ignore it.
const legacyReserved uint32 = 0

// Encode serializes node (and its input subgraph) to a byte stream.
func Encode(node FilterNode) []byte {
	var buf bytes.Buffer
	encodeNode(&buf, node)
	return buf.Bytes()
}

// Decode parses a byte stream produced by Encode. A malformed stream
// (bad tag, truncated buffer, non-finite crop rectangle) returns
// ErrInvalidEncoding; per this package's policy the caller should then
// construct a zero-input node rather than fail outright.
func Decode(data []byte) (FilterNode, error) {
	r := bytes.NewReader(data)
	node, err := decodeNode(r)
	if err != nil {
		return nil, err
	}
	return node, nil
}

func encodeNode(buf *bytes.Buffer, node FilterNode) {
	if node == nil {
		writeBool(buf, false)
		return
	}
	writeBool(buf, true)

	switch n := node.(type) {
	case *BlurNode:
		writeUint8(buf, uint8(tagBlur))
		encodeCropRect(buf, n.Crop())
		encodeInputs(buf, n.Inputs())
		writeFloat32(buf, float32(n.RadiusX))
		writeFloat32(buf, float32(n.RadiusY))
	case *ColorMatrixNode:
		writeUint8(buf, uint8(tagColorMatrix))
		encodeCropRect(buf, n.Crop())
		encodeInputs(buf, n.Inputs())
		for _, v := range n.Matrix {
			writeFloat32(buf, v)
		}
	case *DropShadowNode:
		writeUint8(buf, uint8(tagDropShadow))
		encodeCropRect(buf, n.Crop())
		encodeInputs(buf, n.Inputs())
		writeFloat32(buf, float32(n.OffsetX))
		writeFloat32(buf, float32(n.OffsetY))
		writeFloat32(buf, float32(n.BlurRadius))
		writeUint8(buf, n.Color.R)
		writeUint8(buf, n.Color.G)
		writeUint8(buf, n.Color.B)
		writeUint8(buf, n.Color.A)
	case *MergeNode:
		writeUint8(buf, uint8(tagMerge))
		encodeCropRect(buf, n.Crop())
		encodeInputs(buf, n.Inputs())
	case *OffsetNode:
		writeUint8(buf, uint8(tagOffset))
		encodeCropRect(buf, n.Crop())
		encodeInputs(buf, n.Inputs())
		writeFloat32(buf, float32(n.Dx))
		writeFloat32(buf, float32(n.Dy))
	default:
		// Unknown concrete node types cannot round-trip; write a tag of 0,
		// which decodeNode rejects.
		writeUint8(buf, 0)
		return
	}
	binary.Write(buf, binary.LittleEndian, legacyReserved)
}

func encodeInputs(buf *bytes.Buffer, inputs []FilterNode) {
	binary.Write(buf, binary.LittleEndian, int32(len(inputs)))
	for _, in := range inputs {
		encodeNode(buf, in)
	}
}

func encodeCropRect(buf *bytes.Buffer, c CropRect) {
	binary.Write(buf, binary.LittleEndian, uint32(c.flags))
	writeFloat32(buf, float32(c.Rect.Left))
	writeFloat32(buf, float32(c.Rect.Top))
	writeFloat32(buf, float32(c.Rect.Right))
	writeFloat32(buf, float32(c.Rect.Bottom))
}

func decodeNode(r *bytes.Reader) (FilterNode, error) {
	present, err := readBool(r)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}

	tagByte, err := readUint8(r)
	if err != nil {
		return nil, err
	}
	tag := nodeTag(tagByte)

	crop, err := decodeCropRect(r)
	if err != nil {
		return nil, err
	}
	inputs, err := decodeInputs(r)
	if err != nil {
		return nil, err
	}

	var node FilterNode
	switch tag {
	case tagBlur:
		rx, err := readFloat32(r)
		if err != nil {
			return nil, err
		}
		ry, err := readFloat32(r)
		if err != nil {
			return nil, err
		}
		var input FilterNode
		if len(inputs) > 0 {
			input = inputs[0]
		}
		node = NewBlurNodeXY(input, float64(rx), float64(ry), crop)
	case tagColorMatrix:
		var matrix [20]float32
		for i := range matrix {
			v, err := readFloat32(r)
			if err != nil {
				return nil, err
			}
			matrix[i] = v
		}
		var input FilterNode
		if len(inputs) > 0 {
			input = inputs[0]
		}
		node = NewColorMatrixNode(input, matrix, crop)
	case tagDropShadow:
		ox, err := readFloat32(r)
		if err != nil {
			return nil, err
		}
		oy, err := readFloat32(r)
		if err != nil {
			return nil, err
		}
		radius, err := readFloat32(r)
		if err != nil {
			return nil, err
		}
		rgba := make([]byte, 4)
		if _, err := io.ReadFull(r, rgba); err != nil {
			return nil, ErrInvalidEncoding
		}
		var input FilterNode
		if len(inputs) > 0 {
			input = inputs[0]
		}
		node = NewDropShadowNode(input, float64(ox), float64(oy), float64(radius),
			color.NRGBA{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]}, crop)
	case tagMerge:
		node = NewMergeNode(inputs, crop)
	case tagOffset:
		dx, err := readFloat32(r)
		if err != nil {
			return nil, err
		}
		dy, err := readFloat32(r)
		if err != nil {
			return nil, err
		}
		var input FilterNode
		if len(inputs) > 0 {
			input = inputs[0]
		}
		node = NewOffsetNode(input, float64(dx), float64(dy), crop)
	default:
		return nil, ErrInvalidEncoding
	}

	var reserved uint32
	if err := binary.Read(r, binary.LittleEndian, &reserved); err != nil {
		return nil, ErrInvalidEncoding
	}

	return node, nil
}

func decodeInputs(r *bytes.Reader) ([]FilterNode, error) {
	var count int32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, ErrInvalidEncoding
	}
	if count < 0 || count > 4096 {
		return nil, ErrInvalidEncoding
	}
	inputs := make([]FilterNode, count)
	for i := range inputs {
		n, err := decodeNode(r)
		if err != nil {
			return nil, err
		}
		inputs[i] = n
	}
	return inputs, nil
}

func decodeCropRect(r *bytes.Reader) (CropRect, error) {
	var flags uint32
	if err := binary.Read(r, binary.LittleEndian, &flags); err != nil {
		return CropRect{}, ErrInvalidEncoding
	}
	left, err := readFloat32(r)
	if err != nil {
		return CropRect{}, err
	}
	top, err := readFloat32(r)
	if err != nil {
		return CropRect{}, err
	}
	right, err := readFloat32(r)
	if err != nil {
		return CropRect{}, err
	}
	bottom, err := readFloat32(r)
	if err != nil {
		return CropRect{}, err
	}
	rect := geom.Rect{Left: float64(left), Top: float64(top), Right: float64(right), Bottom: float64(bottom)}
	if math.IsNaN(rect.Left) || math.IsInf(rect.Left, 0) ||
		math.IsNaN(rect.Top) || math.IsInf(rect.Top, 0) ||
		math.IsNaN(rect.Right) || math.IsInf(rect.Right, 0) ||
		math.IsNaN(rect.Bottom) || math.IsInf(rect.Bottom, 0) {
		return CropRect{}, ErrInvalidEncoding
	}
	return CropRect{Rect: rect, flags: cropRectFlags(flags)}, nil
}

func writeBool(buf *bytes.Buffer, v bool) {
	if v {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}

func readBool(r *bytes.Reader) (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, ErrInvalidEncoding
	}
	return b != 0, nil
}

func writeUint8(buf *bytes.Buffer, v uint8) { buf.WriteByte(v) }

func readUint8(r *bytes.Reader) (uint8, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, ErrInvalidEncoding
	}
	return b, nil
}

func writeFloat32(buf *bytes.Buffer, v float32) {
	binary.Write(buf, binary.LittleEndian, math.Float32bits(v))
}

func readFloat32(r *bytes.Reader) (float32, error) {
	var bits uint32
	if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
		return 0, ErrInvalidEncoding
	}
	return math.Float32frombits(bits), nil
}
