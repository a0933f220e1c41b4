package bundle

import (
	"bytes"
	"testing"

	"github.com/bndltools/bundle/bundle/bio"
)

func TestHashResourceNameIsCaseInsensitive(t *testing.T) {
	variants := []string{"Foo.bin", "foo.bin", "FOO.BIN"}

	want := hashResourceName(variants[0])
	for _, v := range variants[1:] {
		if got := hashResourceName(v); got != want {
			t.Fatalf("hashResourceName(%q) = %08x, want %08x", v, got, want)
		}
	}
}

func TestPackSizeAlignRoundTrip(t *testing.T) {
	sizes := []uint32{0, 1, 1024, 0x0FFFFFFE}
	for _, size := range sizes {
		for exp := 0; exp <= 15; exp++ {
			align := uint32(1) << exp

			packed := packSizeAlign(size, align)
			if got := unpackSize(packed); got != size {
				t.Fatalf("unpackSize(packSizeAlign(%d, %d)) = %d, want %d", size, align, got, size)
			}
			if got := unpackAlign(packed); got != align {
				t.Fatalf("unpackAlign(packSizeAlign(%d, %d)) = %d, want %d", size, align, got, align)
			}
		}
	}
}

func TestDependencyReadWriteRoundTrip(t *testing.T) {
	c := bio.NewWriter()
	d := Dependency{ResourceID: 0x12345678, InternalOffset: 64}
	writeDependency(c, d)

	c.Seek(0, 0)
	got, err := readDependency(c)
	if err != nil {
		t.Fatalf("readDependency: %v", err)
	}
	if got != d {
		t.Fatalf("readDependency = %+v, want %+v", got, d)
	}
}

func TestCompressionRoundTrip(t *testing.T) {
	original := []byte("the quick brown fox jumps over the lazy dog, repeated: the quick brown fox jumps over the lazy dog")

	compressed, err := compressBlock(original)
	if err != nil {
		t.Fatalf("compressBlock: %v", err)
	}

	if bytes.Equal(compressed, original) {
		t.Fatalf("compressed output equals input")
	}

	decompressed, err := decompressBlock(compressed, uint32(len(original)))
	if err != nil {
		t.Fatalf("decompressBlock: %v", err)
	}

	if !bytes.Equal(decompressed, original) {
		t.Fatalf("decompressBlock = %q, want %q", decompressed, original)
	}
}

func TestDecompressBlockSizeMismatch(t *testing.T) {
	original := []byte("some payload bytes")
	compressed, err := compressBlock(original)
	if err != nil {
		t.Fatalf("compressBlock: %v", err)
	}

	if _, err := decompressBlock(compressed, uint32(len(original)+10)); err == nil {
		t.Fatalf("expected error on size mismatch")
	}
}
