package meshdata

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// ErrCorruptFile is returned when encoded section data cannot be parsed.
var ErrCorruptFile = errors.New("corrupt mesh data")

// maxPrealloc caps slice preallocation driven by counts read from a file.
const maxPrealloc = 1 << 16

// EncodeText writes sections in the whitespace-delimited text layout:
//
//	N (min max first tris material){N} (vertices normals tangents uvs indices){N}
//
// All tokens are on one line separated by single spaces, with no trailing newline.
func EncodeText(w io.Writer, sections []Section) error {
	for i := range sections {
		if err := sections[i].Validate(); err != nil {
			return fmt.Errorf("section %d: %w", i, err)
		}
	}

	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 32)

	buf = strconv.AppendInt(buf[:0], int64(len(sections)), 10)
	bw.Write(buf)

	for i := range sections {
		b := sections[i].Bounds
		for _, v := range [4]int{b.MinVertex, b.MaxVertex, b.FirstIndex, b.NumTriangles} {
			buf = append(buf[:0], ' ')
			buf = strconv.AppendInt(buf, int64(v), 10)
			bw.Write(buf)
		}
		bw.WriteByte(' ')
		bw.WriteString(sections[i].Material)
	}

	writeFloats := func(fs []float32) {
		for _, f := range fs {
			buf = append(buf[:0], ' ')
			buf = strconv.AppendFloat(buf, float64(f), 'g', -1, 32)
			bw.Write(buf)
		}
	}

	for i := range sections {
		s := &sections[i]
		writeFloats(s.Vertices)
		writeFloats(s.Normals)
		writeFloats(s.Tangents)
		writeFloats(s.UVs)
		for _, idx := range s.Indices {
			buf = append(buf[:0], ' ')
			buf = strconv.AppendUint(buf, uint64(idx), 10)
			bw.Write(buf)
		}
	}

	return bw.Flush()
}

// tokenReader walks a whitespace-separated token stream.
type tokenReader struct {
	sc    *bufio.Scanner
	count int
}

func newTokenReader(r io.Reader) *tokenReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	sc.Split(bufio.ScanWords)
	return &tokenReader{sc: sc}
}

func (t *tokenReader) next() (string, error) {
	if !t.sc.Scan() {
		if err := t.sc.Err(); err != nil {
			return "", fmt.Errorf("%w: token %d: %v", ErrCorruptFile, t.count, err)
		}
		return "", fmt.Errorf("%w: unexpected end of data after %d tokens", ErrCorruptFile, t.count)
	}
	t.count++
	return t.sc.Text(), nil
}

func (t *tokenReader) int() (int, error) {
	tok, err := t.next()
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("%w: token %d: bad integer %q", ErrCorruptFile, t.count, tok)
	}
	return v, nil
}

func (t *tokenReader) floats(dst []float32, n int) ([]float32, error) {
	for i := 0; i < n; i++ {
		tok, err := t.next()
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(tok, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: token %d: bad float %q", ErrCorruptFile, t.count, tok)
		}
		dst = append(dst, float32(v))
	}
	return dst, nil
}

func (t *tokenReader) indices(dst []uint32, n int) ([]uint32, error) {
	for i := 0; i < n; i++ {
		tok, err := t.next()
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseUint(tok, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: token %d: bad index %q", ErrCorruptFile, t.count, tok)
		}
		dst = append(dst, uint32(v))
	}
	return dst, nil
}

// DecodeText parses sections written by EncodeText. Any whitespace separates
// tokens. A missing token, a malformed number or data left over after the
// last section fails the whole decode with ErrCorruptFile.
func DecodeText(r io.Reader) ([]Section, error) {
	t := newTokenReader(r)

	count, err := t.int()
	if err != nil {
		return nil, fmt.Errorf("reading section count: %w", err)
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: negative section count %d", ErrCorruptFile, count)
	}

	sections := make([]Section, 0, min(count, maxPrealloc))
	for i := 0; i < count; i++ {
		var s Section
		fields := [4]*int{&s.Bounds.MinVertex, &s.Bounds.MaxVertex, &s.Bounds.FirstIndex, &s.Bounds.NumTriangles}
		for _, f := range fields {
			if *f, err = t.int(); err != nil {
				return nil, fmt.Errorf("reading section %d header: %w", i, err)
			}
		}
		if s.Material, err = t.next(); err != nil {
			return nil, fmt.Errorf("reading section %d material: %w", i, err)
		}
		if s.Bounds.VertexCount() < 0 || s.Bounds.NumTriangles < 0 {
			return nil, fmt.Errorf("%w: section %d has negative counts %s", ErrCorruptFile, i, s.Bounds)
		}
		sections = append(sections, s)
	}

	for i := range sections {
		if err := decodeTextBody(t, &sections[i]); err != nil {
			return nil, fmt.Errorf("reading section %d data: %w", i, err)
		}
		if err := sections[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: section %d: %v", ErrCorruptFile, i, err)
		}
	}

	if t.sc.Scan() {
		return nil, fmt.Errorf("%w: trailing data after %d tokens", ErrCorruptFile, t.count)
	}
	if err := t.sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	return sections, nil
}

func decodeTextBody(t *tokenReader, s *Section) error {
	n := s.Bounds.VertexCount()
	prealloc := min(n, maxPrealloc)
	var err error

	if s.Vertices, err = t.floats(make([]float32, 0, 3*prealloc), 3*n); err != nil {
		return err
	}
	if s.Normals, err = t.floats(make([]float32, 0, 3*prealloc), 3*n); err != nil {
		return err
	}
	if s.Tangents, err = t.floats(make([]float32, 0, 3*prealloc), 3*n); err != nil {
		return err
	}
	if s.UVs, err = t.floats(make([]float32, 0, 2*prealloc), 2*n); err != nil {
		return err
	}
	ni := 3 * s.Bounds.NumTriangles
	if s.Indices, err = t.indices(make([]uint32, 0, min(ni, maxPrealloc)), ni); err != nil {
		return err
	}
	return nil
}
