package bundle

import (
	"bytes"
	"testing"
)

func TestModernSaveLoadRoundTrip(t *testing.T) {
	cat := New(Modern, 2, PC, 0)

	err := cat.AddResource(0xAABB, ResourceData{
		ResourceType: LUAScript,
		Checksum:     0,
		FileBlocks: [3][]byte{
			0: []byte("return {}"),
			2: []byte("extra blob"),
		},
		Alignments: [3]uint32{0: 4, 2: 4},
		Dependencies: []Dependency{
			{ResourceID: 0xCCDD, InternalOffset: 4},
		},
	})
	if err != nil {
		t.Fatalf("AddResource: %v", err)
	}

	raw, err := Save(cat)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if string(raw[:4]) != "bnd2" {
		t.Fatalf("magic = %q, want bnd2", raw[:4])
	}

	got, err := Load(raw)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Flavor() != Modern {
		t.Fatalf("Flavor() = %v, want Modern", got.Flavor())
	}

	data, err := got.Get(0xAABB)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.HasPrefix(data.FileBlocks[0], []byte("return {}")) {
		t.Fatalf("block 0 = %q, want prefix %q", data.FileBlocks[0], "return {}")
	}
	if !bytes.Equal(data.FileBlocks[2], []byte("extra blob")) {
		t.Fatalf("block 2 = %q", data.FileBlocks[2])
	}
	if len(data.Dependencies) != 1 || data.Dependencies[0].ResourceID != 0xCCDD {
		t.Fatalf("Dependencies = %+v", data.Dependencies)
	}
}

func TestModernCompressedSaveLoadRoundTrip(t *testing.T) {
	cat := New(Modern, 2, PC, Compressed)

	payload := bytes.Repeat([]byte("compress me please "), 50)
	if err := cat.AddResource(0x01, ResourceData{
		ResourceType: Raster,
		FileBlocks:   [3][]byte{0: payload},
		Alignments:   [3]uint32{0: 4},
	}); err != nil {
		t.Fatalf("AddResource: %v", err)
	}

	raw, err := Save(cat)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(raw)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	data, err := got.Get(0x01)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(data.FileBlocks[0], payload) {
		t.Fatalf("decompressed block mismatch: got %d bytes, want %d", len(data.FileBlocks[0]), len(payload))
	}
}

func TestModernDebugInfoRoundTrip(t *testing.T) {
	cat := New(Modern, 2, PC, 0)

	if err := cat.AddResource(0x42, ResourceData{
		ResourceType: Model,
		FileBlocks:   [3][]byte{0: []byte("mesh data")},
		Alignments:   [3]uint32{0: 4},
	}); err != nil {
		t.Fatalf("AddResource: %v", err)
	}
	cat.SetDebugInfo(0x42, DebugInfo{Name: "hero.mesh", TypeName: "Model"})

	raw, err := Save(cat)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(raw)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Flags()&HasResourceStringTable == 0 {
		t.Fatalf("HasResourceStringTable not set on reload")
	}
	info, ok := got.DebugInfo(0x42)
	if !ok || info.Name != "hero.mesh" {
		t.Fatalf("DebugInfo = %+v, ok=%v", info, ok)
	}
}

func TestModernUnsupportedRevisionRejected(t *testing.T) {
	c := []byte("bnd2")
	var buf bytes.Buffer
	buf.Write(c)
	buf.Write([]byte{0x03, 0, 0, 0}) // revision 3, little-endian PC
	buf.Write([]byte{0x01, 0, 0, 0}) // platform PC
	buf.Write(make([]byte, 4*5))     // rest of header, irrelevant

	if _, err := Load(buf.Bytes()); err == nil {
		t.Fatalf("Load succeeded with unsupported revision, want error")
	}
}

func TestModernNonPCSaveRejected(t *testing.T) {
	cat := New(Modern, 2, Xbox360, 0)
	if _, err := Save(cat); err == nil {
		t.Fatalf("Save succeeded for non-PC platform, want error")
	}
}
