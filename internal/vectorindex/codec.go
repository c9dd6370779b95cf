package vectorindex

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"math"
)

var magic = [8]byte{'R', 'M', 'D', 'X', 'I', 'D', 'X', '1'}

// Encode writes the index as: magic, uint32 dim, uint32 count, float32 LE data, uint32 crc32.
func (f *Flat) Encode(w io.Writer) error {
	var buf bytes.Buffer
	buf.Grow(len(magic) + 8 + 4*len(f.data) + 4)
	buf.Write(magic[:])

	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(f.dim))
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(f.Len()))
	buf.Write(hdr[:])

	var word [4]byte
	for _, x := range f.data {
		binary.LittleEndian.PutUint32(word[:], math.Float32bits(x))
		buf.Write(word[:])
	}
	binary.LittleEndian.PutUint32(word[:], crc32.ChecksumIEEE(buf.Bytes()))
	buf.Write(word[:])

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// Decode reads an index produced by Encode.
func Decode(r io.Reader) (*Flat, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	if len(raw) < len(magic)+8+4 {
		return nil, fmt.Errorf("short file (%d bytes): %w", len(raw), ErrCorrupt)
	}
	if !bytes.Equal(raw[:len(magic)], magic[:]) {
		return nil, fmt.Errorf("bad magic: %w", ErrCorrupt)
	}

	body, sum := raw[:len(raw)-4], binary.LittleEndian.Uint32(raw[len(raw)-4:])
	if crc32.ChecksumIEEE(body) != sum {
		return nil, fmt.Errorf("checksum mismatch: %w", ErrCorrupt)
	}

	dim := int(binary.LittleEndian.Uint32(body[8:12]))
	count := int(binary.LittleEndian.Uint32(body[12:16]))
	payload := body[16:]
	if dim == 0 || count == 0 {
		return nil, fmt.Errorf("dim=%d count=%d: %w", dim, count, ErrCorrupt)
	}
	if len(payload) != 4*dim*count {
		return nil, fmt.Errorf("payload %d bytes, want %d: %w", len(payload), 4*dim*count, ErrCorrupt)
	}

	data := make([]float32, dim*count)
	for i := range data {
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[4*i:]))
	}
	return &Flat{dim: dim, data: data}, nil
}
