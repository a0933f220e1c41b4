package bundle

import (
	"errors"
	"testing"
)

func TestLoadRejectsUnknownMagic(t *testing.T) {
	_, err := Load([]byte("nope0000"))
	if !errors.Is(err, ErrNotABundle) {
		t.Fatalf("Load error = %v, want ErrNotABundle", err)
	}
}

func TestLoadRejectsShortInput(t *testing.T) {
	_, err := Load([]byte("bn"))
	if !errors.Is(err, ErrNotABundle) {
		t.Fatalf("Load error = %v, want ErrNotABundle", err)
	}
}

func TestSaveUnknownFlavorRejected(t *testing.T) {
	cat := New(Flavor(99), 1, PC, 0)
	if _, err := Save(cat); err == nil {
		t.Fatalf("Save succeeded for unknown flavor, want error")
	}
}

// TestModernDependencyInliningIsTransparent exercises the invariant that a
// Modern resource's inline block-0 dependency tail never leaks into the
// bytes returned by Get.
func TestModernDependencyInliningIsTransparent(t *testing.T) {
	cat := New(Modern, 2, PC, 0)

	payload := []byte("0123456789abcdef") // exactly 16 bytes, so no alignment padding is introduced
	if err := cat.AddResource(0x10, ResourceData{
		ResourceType: Raster,
		FileBlocks:   [3][]byte{0: payload},
		Dependencies: []Dependency{{ResourceID: 0x20, InternalOffset: 8}},
	}); err != nil {
		t.Fatalf("AddResource: %v", err)
	}

	data, err := cat.Get(0x10)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if len(data.FileBlocks[0]) != len(payload) {
		t.Fatalf("FileBlocks[0] length = %d, want %d (dependency tail leaked)", len(data.FileBlocks[0]), len(payload))
	}
	if string(data.FileBlocks[0]) != string(payload) {
		t.Fatalf("FileBlocks[0] = %q, want %q", data.FileBlocks[0], payload)
	}
}

// TestHasResourceStringTableFlagMatchesDebugInfo exercises both flavors:
// after a save/load cycle the reloaded flag must track whether any debug
// info was saved, first with none and then with one entry.
func TestHasResourceStringTableFlagMatchesDebugInfo(t *testing.T) {
	for _, flavor := range []Flavor{Modern, Legacy} {
		platform := PC
		revision := uint32(2)
		if flavor == Legacy {
			platform = Xbox360
			revision = 5
		}

		cat := New(flavor, revision, platform, 0)
		if err := cat.AddResource(1, ResourceData{
			ResourceType: Raster,
			FileBlocks:   [3][]byte{0: []byte("data")},
		}); err != nil {
			t.Fatalf("[%v] AddResource: %v", flavor, err)
		}

		raw, err := Save(cat)
		if err != nil {
			t.Fatalf("[%v] Save: %v", flavor, err)
		}
		reloaded, err := Load(raw)
		if err != nil {
			t.Fatalf("[%v] Load: %v", flavor, err)
		}
		if reloaded.Flags()&HasResourceStringTable != 0 {
			t.Fatalf("[%v] HasResourceStringTable set with no debug info", flavor)
		}

		cat.SetDebugInfo(1, DebugInfo{Name: "n", TypeName: "t"})
		raw, err = Save(cat)
		if err != nil {
			t.Fatalf("[%v] Save with debug info: %v", flavor, err)
		}
		reloaded, err = Load(raw)
		if err != nil {
			t.Fatalf("[%v] Load with debug info: %v", flavor, err)
		}
		if reloaded.Flags()&HasResourceStringTable == 0 {
			t.Fatalf("[%v] HasResourceStringTable not set with debug info present", flavor)
		}
	}
}
