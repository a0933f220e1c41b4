package bundle

import (
	"bytes"
	"testing"
)

func TestLegacySaveLoadRoundTrip(t *testing.T) {
	cat := New(Legacy, 5, Xbox360, 0)

	err := cat.AddResource(0x1001, ResourceData{
		ResourceType: TextFile,
		FileBlocks: [3][]byte{
			0: []byte("hello legacy world"),
			1: []byte("secondary block payload"),
		},
		Alignments: [3]uint32{0: 4, 1: 4},
		Dependencies: []Dependency{
			{ResourceID: 0x2002, InternalOffset: 16},
		},
	})
	if err != nil {
		t.Fatalf("AddResource: %v", err)
	}

	raw, err := Save(cat)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if string(raw[:4]) != "bndl" {
		t.Fatalf("magic = %q, want bndl", raw[:4])
	}

	got, err := Load(raw)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got.Flavor() != Legacy {
		t.Fatalf("Flavor() = %v, want Legacy", got.Flavor())
	}

	data, err := got.Get(0x1001)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(data.FileBlocks[0], []byte("hello legacy world")) {
		t.Fatalf("block 0 = %q", data.FileBlocks[0])
	}
	if !bytes.Equal(data.FileBlocks[1], []byte("secondary block payload")) {
		t.Fatalf("block 1 = %q", data.FileBlocks[1])
	}
	if len(data.Dependencies) != 1 || data.Dependencies[0].ResourceID != 0x2002 {
		t.Fatalf("Dependencies = %+v", data.Dependencies)
	}
}

func TestLegacySaveLoadDebugInfoRoundTrip(t *testing.T) {
	cat := New(Legacy, 5, Xbox360, 0)

	if err := cat.AddResource(0x5005, ResourceData{
		ResourceType: Raster,
		FileBlocks:   [3][]byte{0: []byte("texture bytes")},
		Alignments:   [3]uint32{0: 4},
	}); err != nil {
		t.Fatalf("AddResource: %v", err)
	}

	cat.SetDebugInfo(0x5005, DebugInfo{Name: "sky.tga", TypeName: "Raster"})

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

	info, ok := got.DebugInfo(0x5005)
	if !ok {
		t.Fatalf("DebugInfo missing after reload")
	}
	if info.Name != "sky.tga" || info.TypeName != "Raster" {
		t.Fatalf("DebugInfo = %+v", info)
	}

	if _, found := got.resources[resourceStringTableID]; found {
		t.Fatalf("synthetic resource string table resource leaked into catalog")
	}

	if ids := got.ListIDs(); len(ids) != 1 || ids[0] != 0x5005 {
		t.Fatalf("ListIDs = %v, want [0x5005]", ids)
	}
}

func TestLegacyUnsupportedPlatformRejected(t *testing.T) {
	cat := New(Legacy, 5, Xbox360, 0)
	raw, err := Save(cat)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Corrupt the platform word to something other than Xbox360 and confirm
	// the loader rejects it rather than silently misinterpreting layout.
	raw = append([]byte(nil), raw...)
	const platformWordOffset = 4 + 4 + 4 + 5*8 + 20 + 4 + 4 + 4 + 4
	raw[platformWordOffset+3] = 0x09

	if _, err := Load(raw); err == nil {
		t.Fatalf("Load succeeded on corrupted platform word, want error")
	}
}
