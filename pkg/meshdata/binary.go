package meshdata

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Binary format constants.
const (
	binaryMagic   = "EMSH"
	BinaryVersion = uint16(1)
)

// Binary format errors.
var (
	ErrInvalidBinaryMagic       = errors.New("invalid mesh data magic: expected 'EMSH'")
	ErrUnsupportedBinaryVersion = errors.New("unsupported mesh data version")
)

// EncodeBinary writes sections in the versioned little-endian layout. Field
// order matches the text layout; every array carries an explicit uint32 length.
//
//	"EMSH" u16 version u32 N
//	N x { i32 min i32 max i32 first i32 tris u16 len material }
//	N x { u32 n f32[n] vertices, normals, tangents, uvs; u32 n u32[n] indices }
func EncodeBinary(w io.Writer, sections []Section) error {
	for i := range sections {
		if err := sections[i].Validate(); err != nil {
			return fmt.Errorf("section %d: %w", i, err)
		}
		if len(sections[i].Material) > 0xFFFF {
			return fmt.Errorf("section %d: %w: name longer than 65535 bytes", i, ErrInvalidMaterialName)
		}
	}

	bw := bufio.NewWriter(w)
	le := binary.LittleEndian

	bw.WriteString(binaryMagic)
	binary.Write(bw, le, BinaryVersion)
	binary.Write(bw, le, uint32(len(sections)))

	for i := range sections {
		b := sections[i].Bounds
		binary.Write(bw, le, [4]int32{int32(b.MinVertex), int32(b.MaxVertex), int32(b.FirstIndex), int32(b.NumTriangles)})
		binary.Write(bw, le, uint16(len(sections[i].Material)))
		bw.WriteString(sections[i].Material)
	}

	for i := range sections {
		s := &sections[i]
		for _, fs := range [][]float32{s.Vertices, s.Normals, s.Tangents, s.UVs} {
			binary.Write(bw, le, uint32(len(fs)))
			binary.Write(bw, le, fs)
		}
		binary.Write(bw, le, uint32(len(s.Indices)))
		binary.Write(bw, le, s.Indices)
	}

	return bw.Flush()
}

// DecodeBinary parses data written by EncodeBinary.
func DecodeBinary(data []byte) ([]Section, error) {
	if len(data) < len(binaryMagic)+2+4 {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorruptFile, len(data))
	}
	if string(data[:4]) != binaryMagic {
		return nil, ErrInvalidBinaryMagic
	}

	r := bytes.NewReader(data[4:])
	le := binary.LittleEndian

	var version uint16
	binary.Read(r, le, &version)
	if version != BinaryVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBinaryVersion, version)
	}

	var count uint32
	binary.Read(r, le, &count)
	// Each section header is at least 18 bytes.
	if int64(count)*18 > int64(r.Len()) {
		return nil, fmt.Errorf("%w: section count %d exceeds data size", ErrCorruptFile, count)
	}

	sections := make([]Section, count)
	for i := range sections {
		var hdr [4]int32
		var nameLen uint16
		if err := binary.Read(r, le, &hdr); err != nil {
			return nil, fmt.Errorf("%w: section %d header: %v", ErrCorruptFile, i, err)
		}
		if err := binary.Read(r, le, &nameLen); err != nil {
			return nil, fmt.Errorf("%w: section %d header: %v", ErrCorruptFile, i, err)
		}
		name := make([]byte, nameLen)
		if _, err := io.ReadFull(r, name); err != nil {
			return nil, fmt.Errorf("%w: section %d material: %v", ErrCorruptFile, i, err)
		}
		sections[i].Bounds = Bounds{int(hdr[0]), int(hdr[1]), int(hdr[2]), int(hdr[3])}
		sections[i].Material = string(name)
	}

	for i := range sections {
		s := &sections[i]
		var err error
		for _, dst := range []*[]float32{&s.Vertices, &s.Normals, &s.Tangents, &s.UVs} {
			if *dst, err = readFloat32s(r); err != nil {
				return nil, fmt.Errorf("section %d data: %w", i, err)
			}
		}
		if s.Indices, err = readUint32s(r); err != nil {
			return nil, fmt.Errorf("section %d indices: %w", i, err)
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("%w: section %d: %v", ErrCorruptFile, i, err)
		}
	}

	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptFile, r.Len())
	}
	return sections, nil
}

func readLength(r *bytes.Reader) (int, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return 0, fmt.Errorf("%w: reading length: %v", ErrCorruptFile, err)
	}
	if int64(n)*4 > int64(r.Len()) {
		return 0, fmt.Errorf("%w: length %d exceeds remaining %d bytes", ErrCorruptFile, n, r.Len())
	}
	return int(n), nil
}

func readFloat32s(r *bytes.Reader) ([]float32, error) {
	n, err := readLength(r)
	if err != nil {
		return nil, err
	}
	out := make([]float32, n)
	if n == 0 {
		return out, nil
	}
	if err := binary.Read(r, binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	return out, nil
}

func readUint32s(r *bytes.Reader) ([]uint32, error) {
	n, err := readLength(r)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, n)
	if n == 0 {
		return out, nil
	}
	if err := binary.Read(r, binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	return out, nil
}

// Decode detects the encoding of data and parses it.
func Decode(data []byte) ([]Section, error) {
	if bytes.HasPrefix(data, []byte(binaryMagic)) {
		return DecodeBinary(data)
	}
	return DecodeText(bytes.NewReader(data))
}
