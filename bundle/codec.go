package bundle

import (
	"bytes"
	"compress/zlib"
	"io"
	"math/bits"
	"strings"

	"github.com/bndltools/bundle/bundle/bio"
	"github.com/snksoft/crc"
)

// crcTable is CRC-32 as computed by zlib (polynomial 0x04c11db7, init
// 0xffffffff, reflected input and output, final xor 0xffffffff), used to
// derive a resource's 32-bit ID from its name.
var crcTable = crc.NewTable(&crc.Parameters{
	Width:      32,
	Polynomial: 0x04c11db7,
	ReflectIn:  true,
	ReflectOut: true,
	Init:       0xffffffff,
	FinalXor:   0xffffffff,
})

// hashResourceName computes the 32-bit resource ID for a resource name: the
// CRC-32 (zlib polynomial) of the ASCII-lowercased name, with no path
// normalization or trailing terminator.
func hashResourceName(name string) uint32 {
	lower := strings.ToLower(name)

	hash := crc.NewHashWithTable(crcTable)
	hash.Write([]byte(lower))
	return hash.CRC32()
}

// packSizeAlign packs a size and its power-of-two alignment into a single
// 32-bit word: the low 28 bits hold size, the high 4 bits hold log2(align).
func packSizeAlign(size, alignment uint32) uint32 {
	exp := uint32(bits.TrailingZeros32(alignment))
	return (size & 0x0FFFFFFF) | (exp << 28)
}

// unpackSize extracts the size from a packed size|align word.
func unpackSize(w uint32) uint32 {
	return w & 0x0FFFFFFF
}

// unpackAlign extracts the alignment from a packed size|align word. An
// exponent of 0 decodes as alignment 1; since packSizeAlign encodes both an
// alignment of 0 and an alignment of 1 as exponent 0, an empty slot stored
// with either value reads back as 1.
func unpackAlign(w uint32) uint32 {
	return 1 << (w >> 28)
}

// readDependency reads one Dependency record: a 64-bit ID (upper half
// ignored), a 32-bit internal offset, and a trailing 32-bit zero.
func readDependency(c *bio.Cursor) (Dependency, error) {
	id, err := c.ReadUint64()
	if err != nil {
		return Dependency{}, malformed("dependency.resourceID", err)
	}

	offset, err := c.ReadUint32()
	if err != nil {
		return Dependency{}, malformed("dependency.internalOffset", err)
	}

	if _, err := c.ReadUint32(); err != nil {
		return Dependency{}, malformed("dependency.reserved", err)
	}

	return Dependency{ResourceID: uint32(id), InternalOffset: offset}, nil
}

// writeDependency writes one Dependency record followed by a reserved zero
// word, then aligns the cursor to an 8-byte boundary.
func writeDependency(c *bio.Cursor, d Dependency) {
	c.WriteUint64(uint64(d.ResourceID))
	c.WriteUint32(d.InternalOffset)
	c.WriteUint32(0)
	c.Align(8)
}

// compressBlock deflates data at maximum compression, zlib-wrapped (2-byte
// header, Adler-32 trailer) exactly as produced by zlib's compress2.
func compressBlock(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, compressionError("compress", err)
	}

	if _, err := w.Write(data); err != nil {
		return nil, compressionError("compress", err)
	}

	if err := w.Close(); err != nil {
		return nil, compressionError("compress", err)
	}

	return buf.Bytes(), nil
}

// decompressBlock inflates a raw zlib stream and asserts the output length
// matches the declared uncompressed size.
func decompressBlock(data []byte, uncompressedSize uint32) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, compressionError("decompress", err)
	}
	defer r.Close()

	out := make([]byte, uncompressedSize)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, compressionError("decompress", err)
	}

	// A byte left after the declared size means the stream inflates to more
	// than uncompressedSize; report that as an error rather than truncating.
	var extra [1]byte
	if n, _ := r.Read(extra[:]); n != 0 {
		return nil, compressionError("decompress", io.ErrShortBuffer)
	}

	return out, nil
}
