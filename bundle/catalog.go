package bundle

import (
	"sort"
	"sync"

	"github.com/bndltools/bundle/bundle/bio"
)

// Catalog is the in-memory resource catalog for one archive: resources
// keyed by ID, optional debug info, and (Legacy only) out-of-block
// dependency lists. All mutating and snapshot-materializing operations are
// serialized by a single mutex; there is no finer-grained locking and no
// support for cancellation mid-operation.
type Catalog struct {
	mu sync.Mutex

	flavor   Flavor
	revision uint32
	platform Platform
	flags    Flags

	resources          map[uint32]*Resource
	debugInfo          map[uint32]DebugInfo
	legacyDependencies map[uint32][]Dependency
}

// New creates an empty Catalog of the given flavor, revision, and platform.
func New(flavor Flavor, revision uint32, platform Platform, flags Flags) *Catalog {
	return &Catalog{
		flavor:   flavor,
		revision: revision,
		platform: platform,
		flags:    flags,

		resources:          make(map[uint32]*Resource),
		debugInfo:          make(map[uint32]DebugInfo),
		legacyDependencies: make(map[uint32][]Dependency),
	}
}

// Flavor reports which container layout this catalog was loaded as, or was
// constructed for.
func (c *Catalog) Flavor() Flavor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flavor
}

// Revision reports the archive revision number.
func (c *Catalog) Revision() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.revision
}

// Platform reports the target platform.
func (c *Catalog) Platform() Platform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.platform
}

// Flags reports the archive flag bitset.
func (c *Catalog) Flags() Flags {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flags
}

// SetDebugInfo sets or clears the debug name/type pair for a resource ID.
// An empty DebugInfo removes the entry.
func (c *Catalog) SetDebugInfo(id uint32, info DebugInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if info == (DebugInfo{}) {
		delete(c.debugInfo, id)
		return
	}
	c.debugInfo[id] = info
}

// DebugInfo returns the debug name/type pair for a resource ID, if any.
func (c *Catalog) DebugInfo(id uint32) (DebugInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	info, ok := c.debugInfo[id]
	return info, ok
}

// sortedIDs returns the catalog's resource IDs in ascending order. Callers
// must hold c.mu.
func (c *Catalog) sortedIDs() []uint32 {
	ids := make([]uint32, 0, len(c.resources))
	for id := range c.resources {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ListIDs returns every resource ID in the catalog, ascending.
func (c *Catalog) ListIDs() []uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sortedIDs()
}

// ListIDsByType groups resource IDs by ResourceType, each group ascending
// by ID.
func (c *Catalog) ListIDsByType() map[ResourceType][]uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[ResourceType][]uint32)
	for _, id := range c.sortedIDs() {
		r := c.resources[id]
		out[r.ResourceType] = append(out[r.ResourceType], id)
	}
	return out
}

// Get returns a decompressed snapshot of a resource's data, with the
// Modern in-block-0 dependency tail already stripped and dependencies
// populated from either the block-0 tail (Modern) or legacyDependencies
// (Legacy).
func (c *Catalog) Get(id uint32) (ResourceData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.resources[id]
	if !ok {
		return ResourceData{}, &ResourceError{Kind: ErrUnknownResource, ID: id}
	}

	data := ResourceData{
		ResourceType: r.ResourceType,
		Checksum:     r.Checksum,
	}

	for i := 0; i < 3; i++ {
		decoded, err := c.decodeBlock(r.FileBlocks[i])
		if err != nil {
			return ResourceData{}, err
		}
		data.FileBlocks[i] = decoded
		data.Alignments[i] = r.FileBlocks[i].UncompressedAlignment
	}

	if r.NumberOfDependencies == 0 {
		return data, nil
	}

	switch c.flavor {
	case Legacy:
		data.Dependencies = append([]Dependency(nil), c.legacyDependencies[id]...)
	case Modern:
		deps, stripped, err := splitDependencyTail(data.FileBlocks[0], r.DependenciesOffset, r.NumberOfDependencies)
		if err != nil {
			return ResourceData{}, err
		}
		data.Dependencies = deps
		data.FileBlocks[0] = stripped
	}

	return data, nil
}

// GetBinary returns the decompressed bytes of a single block, with no
// dependency-tail stripping (that is only meaningful through Get).
func (c *Catalog) GetBinary(id uint32, blockIndex int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.resources[id]
	if !ok {
		return nil, &ResourceError{Kind: ErrUnknownResource, ID: id}
	}
	if blockIndex < 0 || blockIndex > 2 {
		return nil, malformed("blockIndex", nil)
	}

	return c.decodeBlock(r.FileBlocks[blockIndex])
}

// decodeBlock returns decompressed bytes for a FileBlock. Callers must hold
// c.mu.
func (c *Catalog) decodeBlock(b FileBlock) ([]byte, error) {
	if b.Empty() {
		return nil, nil
	}

	if c.flags&Compressed == 0 {
		return append([]byte(nil), b.Data...), nil
	}

	return decompressBlock(b.Data, b.UncompressedSize)
}

// splitDependencyTail reads the inline Dependency sequence from the tail of
// a Modern block-0 buffer and returns the block bytes with the tail
// removed.
func splitDependencyTail(block0 []byte, offset uint32, count uint16) ([]Dependency, []byte, error) {
	if int(offset) > len(block0) {
		return nil, nil, malformed("dependenciesOffset", nil)
	}

	tail := block0[offset:]
	c := bio.NewCursor(tail)

	deps := make([]Dependency, 0, count)
	for i := uint16(0); i < count; i++ {
		d, err := readDependency(c)
		if err != nil {
			return nil, nil, err
		}
		deps = append(deps, d)
	}

	return deps, append([]byte(nil), block0[:offset]...), nil
}

// AddResource inserts a brand-new resource and installs its payload via
// replaceResourceLocked. Fails with ErrDuplicateResource if id already
// exists.
func (c *Catalog) AddResource(id uint32, data ResourceData) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.resources[id]; exists {
		return &ResourceError{Kind: ErrDuplicateResource, ID: id}
	}
	if len(data.Dependencies) > 65535 {
		return &ResourceError{Kind: ErrTooManyDependencies, ID: id}
	}

	c.resources[id] = &Resource{ResourceType: data.ResourceType}
	return c.replaceResourceLocked(id, data)
}

// ReplaceResource rebuilds an existing resource's blocks and dependencies
// from data. Fails with ErrUnknownResource if id is absent, or
// ErrTooManyDependencies if data carries more than 65535 dependencies.
func (c *Catalog) ReplaceResource(id uint32, data ResourceData) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.resources[id]; !exists {
		return &ResourceError{Kind: ErrUnknownResource, ID: id}
	}
	if len(data.Dependencies) > 65535 {
		return &ResourceError{Kind: ErrTooManyDependencies, ID: id}
	}

	return c.replaceResourceLocked(id, data)
}

// replaceResourceLocked implements the shared body of AddResource and
// ReplaceResource. Callers must hold c.mu and must have already validated
// the dependency count.
func (c *Catalog) replaceResourceLocked(id uint32, data ResourceData) error {
	r := c.resources[id]

	r.Checksum = 0
	r.DependenciesOffset = 0
	r.NumberOfDependencies = 0

	for i := 0; i < 3; i++ {
		in := data.FileBlocks[i]

		if len(in) == 0 {
			r.FileBlocks[i] = FileBlock{}
			continue
		}

		payload := in
		if c.flavor == Modern && i == 0 && len(data.Dependencies) > 0 {
			aligned := alignLen(len(in), 16)
			buf := make([]byte, aligned, aligned+len(data.Dependencies)*16)
			copy(buf, in)

			w := bio.NewWriter()
			for _, d := range data.Dependencies {
				writeDependency(w, d)
			}
			buf = append(buf, w.Bytes()...)

			payload = buf
			r.DependenciesOffset = uint32(aligned)
			r.NumberOfDependencies = uint16(len(data.Dependencies))
		}

		block := FileBlock{
			UncompressedSize:      uint32(len(payload)),
			UncompressedAlignment: data.Alignments[i],
		}

		if c.flags&Compressed != 0 {
			compressed, err := compressBlock(payload)
			if err != nil {
				return err
			}
			block.Data = compressed
			block.CompressedSize = uint32(len(compressed))
		} else {
			block.Data = payload
			block.CompressedSize = 0
		}

		r.FileBlocks[i] = block
	}

	if c.flavor == Legacy {
		if len(data.Dependencies) > 0 {
			c.legacyDependencies[id] = append([]Dependency(nil), data.Dependencies...)
			r.NumberOfDependencies = uint16(len(data.Dependencies))
		} else {
			delete(c.legacyDependencies, id)
		}
	}

	return nil
}

func alignLen(n, align int) int {
	rem := n % align
	if rem == 0 {
		return n
	}
	return n + (align - rem)
}

// syncResourceStringTableFlag keeps HasResourceStringTable consistent with
// the catalog's actual contents: set whenever debugInfo is non-empty,
// cleared otherwise.
func (c *Catalog) syncResourceStringTableFlag() {
	if len(c.debugInfo) > 0 {
		c.flags |= HasResourceStringTable
	} else {
		c.flags &^= HasResourceStringTable
	}
}
