package bundle

import "github.com/bndltools/bundle/bundle/bio"

const modernMagic = "bnd2"
const legacyMagic = "bndl"

// Load parses a bundle archive from its raw bytes, dispatching on the
// 4-byte magic at the start of the buffer.
func Load(data []byte) (*Catalog, error) {
	if len(data) < 4 {
		return nil, ErrNotABundle
	}

	c := bio.NewCursor(data)
	magic, err := c.ReadString(4)
	if err != nil {
		return nil, ErrNotABundle
	}

	switch magic {
	case modernMagic:
		return loadModern(c)
	case legacyMagic:
		return loadLegacy(c)
	default:
		return nil, ErrNotABundle
	}
}

// Save serializes a Catalog back to its on-disk form, choosing the Modern
// or Legacy layout according to cat.Flavor().
func Save(cat *Catalog) ([]byte, error) {
	switch cat.Flavor() {
	case Modern:
		return saveModern(cat)
	case Legacy:
		return saveLegacy(cat)
	default:
		return nil, &FormatError{Kind: ErrUnsupportedVersion, Field: "flavor"}
	}
}
