package meshdata

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestBinary_RoundTrip(t *testing.T) {
	sections := []Section{
		makeSection("Brick", 4, 0.25, 0, 1, 2, 0, 2, 3),
		makeSection("NONE", 3, -7, 2, 1, 0),
	}
	Rechain(sections)
	want := CloneAll(sections)

	var buf bytes.Buffer
	if err := EncodeBinary(&buf, sections); err != nil {
		t.Fatalf("EncodeBinary failed: %v", err)
	}

	got, err := DecodeBinary(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeBinary failed: %v", err)
	}
	sectionsEqual(t, got, want)

	// Decode sniffs the format.
	sniffed, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	sectionsEqual(t, sniffed, want)
}

func TestBinary_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeBinary(&buf, nil); err != nil {
		t.Fatalf("EncodeBinary failed: %v", err)
	}
	if buf.Len() != 10 {
		t.Errorf("empty encoding is %d bytes, want 10", buf.Len())
	}
	got, err := DecodeBinary(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeBinary failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d sections, want 0", len(got))
	}
}

func TestDecodeBinary_Errors(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeBinary(&buf, []Section{makeSection("Brick", 3, 0, 0, 1, 2)}); err != nil {
		t.Fatalf("EncodeBinary failed: %v", err)
	}
	valid := buf.Bytes()

	badVersion := append([]byte{}, valid...)
	binary.LittleEndian.PutUint16(badVersion[4:], 9)

	hugeCount := append([]byte{}, valid...)
	binary.LittleEndian.PutUint32(hugeCount[6:], 1<<30)

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"too short", []byte("EMSH"), ErrCorruptFile},
		{"bad magic", append([]byte("XXXX"), valid[4:]...), ErrInvalidBinaryMagic},
		{"bad version", badVersion, ErrUnsupportedBinaryVersion},
		{"huge count", hugeCount, ErrCorruptFile},
		{"truncated", valid[:len(valid)-3], ErrCorruptFile},
		{"trailing", append(append([]byte{}, valid...), 0), ErrCorruptFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBinary(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got error %v, want %v", err, tt.wantErr)
			}
		})
	}
}
