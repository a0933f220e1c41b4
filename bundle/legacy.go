package bundle

import (
	"io"

	"github.com/bndltools/bundle/bundle/bio"
	"github.com/bndltools/bundle/bundle/rst"
)

// legacyMappedBlock maps the five raw on-disk file-block slots onto the two
// slots this codec actually keeps: slot 0 -> block 0, slot 2 -> block 1.
// Slots 1, 3, and 4 are read (to keep the cursor advancing correctly) and
// discarded.
func legacyMappedBlock(slot int) (int, bool) {
	switch slot {
	case 0:
		return 0, true
	case 2:
		return 1, true
	default:
		return 0, false
	}
}

func loadLegacy(c *bio.Cursor) (*Catalog, error) {
	c.SetBigEndian(true)

	revision, err := c.ReadUint32()
	if err != nil {
		return nil, malformed("revision", err)
	}
	if revision < 3 || revision > 5 {
		return nil, &FormatError{Kind: ErrUnsupportedVersion, Field: "revision"}
	}

	numEntries, err := c.ReadUint32()
	if err != nil {
		return nil, malformed("numEntries", err)
	}

	var dataBlockSizes [5]uint32
	for i := range dataBlockSizes {
		dataBlockSizes[i], err = c.ReadUint32()
		if err != nil {
			return nil, malformed("dataBlockSizes", err)
		}
		if _, err := c.ReadUint32(); err != nil { // alignment, informational only
			return nil, malformed("dataBlockAlignments", err)
		}
	}

	if err := c.Skip(20); err != nil { // unknown memory
		return nil, malformed("unknownMemory", err)
	}

	idListOffset, err := c.ReadUint32()
	if err != nil {
		return nil, malformed("idListOffset", err)
	}
	idTableOffset, err := c.ReadUint32()
	if err != nil {
		return nil, malformed("idTableOffset", err)
	}
	if _, err := c.ReadUint32(); err != nil { // dependency block offset, unused
		return nil, malformed("dependencyBlockOffset", err)
	}
	dataBlockOffset, err := c.ReadUint32()
	if err != nil {
		return nil, malformed("dataBlockOffset", err)
	}

	platformWord, err := c.ReadUint32()
	if err != nil {
		return nil, malformed("platform", err)
	}
	if Platform(platformWord) != Xbox360 {
		return nil, &FormatError{Kind: ErrUnsupportedPlatform, Field: "platform"}
	}

	compressedWord, err := c.ReadUint32()
	if err != nil {
		return nil, malformed("compressed", err)
	}
	compressed := compressedWord != 0

	flags := Flags(0)
	if compressed {
		flags = Compressed
	}

	if _, err := c.ReadUint32(); err != nil { // sometimes echoes numEntries
		return nil, malformed("entryCountEcho", err)
	}

	uncompInfoOffset, err := c.ReadUint32()
	if err != nil {
		return nil, malformed("uncompInfoOffset", err)
	}

	if _, err := c.ReadUint32(); err != nil { // main memory alignment
		return nil, malformed("mainMemoryAlignment", err)
	}
	if _, err := c.ReadUint32(); err != nil { // graphics memory alignment
		return nil, malformed("graphicsMemoryAlignment", err)
	}

	cat := New(Legacy, revision, Xbox360, flags)

	if err := c.Seek(int(idListOffset), io.SeekStart); err != nil {
		return nil, malformed("idListOffset", err)
	}

	resourceIDs := make([]uint32, numEntries)
	for i := range resourceIDs {
		idWord, err := c.ReadUint64()
		if err != nil {
			return nil, malformed("resourceID", err)
		}
		resourceIDs[i] = uint32(idWord)
	}

	if err := c.Seek(int(idTableOffset), io.SeekStart); err != nil {
		return nil, malformed("idTableOffset", err)
	}

	for _, id := range resourceIDs {
		r, err := readLegacyDescriptor(c, dataBlockOffset, dataBlockSizes, compressed)
		if err != nil {
			return nil, err
		}
		cat.resources[id] = r
	}

	if compressed {
		if err := c.Seek(int(uncompInfoOffset), io.SeekStart); err != nil {
			return nil, malformed("uncompInfoOffset", err)
		}

		for _, id := range resourceIDs {
			r := cat.resources[id]
			if err := readLegacyUncompressedSizes(c, r); err != nil {
				return nil, err
			}
		}
	}

	for _, id := range resourceIDs {
		r := cat.resources[id]
		if r.DependenciesOffset == 0 {
			continue
		}

		if err := c.Seek(int(r.DependenciesOffset), io.SeekStart); err != nil {
			return nil, malformed("dependenciesOffset", err)
		}

		count, err := c.ReadUint32()
		if err != nil {
			return nil, malformed("numberOfDependencies", err)
		}
		r.NumberOfDependencies = uint16(count)

		if _, err := c.ReadUint32(); err != nil { // reserved zero
			return nil, malformed("dependenciesReserved", err)
		}

		deps := make([]Dependency, 0, count)
		for i := uint32(0); i < count; i++ {
			d, err := readDependency(c)
			if err != nil {
				return nil, err
			}
			deps = append(deps, d)
		}
		cat.legacyDependencies[id] = deps
	}

	rstResource, hasRST := cat.resources[resourceStringTableID]
	if !hasRST || rstResource.FileBlocks[0].Empty() {
		return cat, nil
	}

	rawBlock0, err := cat.decodeBlock(rstResource.FileBlocks[0])
	if err != nil {
		return nil, err
	}

	rstCursor := bio.NewCursor(rawBlock0)
	rstCursor.SetBigEndian(true)

	strLen, err := rstCursor.ReadUint32()
	if err != nil {
		return nil, malformed("resourceStringTable.length", err)
	}

	xmlText, err := rstCursor.ReadString(int(strLen))
	if err != nil {
		return nil, malformed("resourceStringTable.xml", err)
	}

	entries, err := rst.Parse(xmlText)
	if err != nil {
		return nil, malformed("resourceStringTable", err)
	}

	for _, e := range entries {
		cat.debugInfo[e.ID] = DebugInfo{Name: e.Name, TypeName: e.TypeName}
	}
	cat.flags |= HasResourceStringTable

	delete(cat.resources, resourceStringTableID)
	delete(cat.legacyDependencies, resourceStringTableID)

	return cat, nil
}

func readLegacyDescriptor(c *bio.Cursor, dataBlockOffset uint32, dataBlockSizes [5]uint32, compressed bool) (*Resource, error) {
	r := &Resource{}

	if _, err := c.ReadUint32(); err != nil { // unknown
		return nil, malformed("descriptor.unknown", err)
	}

	var err error
	r.DependenciesOffset, err = c.ReadUint32()
	if err != nil {
		return nil, malformed("descriptor.dependenciesOffset", err)
	}

	typeWord, err := c.ReadUint32()
	if err != nil {
		return nil, malformed("descriptor.resourceType", err)
	}
	r.ResourceType = ResourceType(typeWord)

	for slot := 0; slot < 5; slot++ {
		size, err := c.ReadUint32()
		if err != nil {
			return nil, malformed("descriptor.size", err)
		}
		align, err := c.ReadUint32()
		if err != nil {
			return nil, malformed("descriptor.align", err)
		}

		mapped, ok := legacyMappedBlock(slot)
		if !ok {
			continue
		}

		if compressed {
			r.FileBlocks[mapped].CompressedSize = size
			r.FileBlocks[mapped].UncompressedAlignment = align
		} else {
			r.FileBlocks[mapped].UncompressedSize = size
			r.FileBlocks[mapped].UncompressedAlignment = align
		}
	}

	var localOffsets [5]uint32
	for slot := 0; slot < 5; slot++ {
		localOffsets[slot], err = c.ReadUint32()
		if err != nil {
			return nil, malformed("descriptor.localOffset", err)
		}
		if _, err := c.ReadUint32(); err != nil { // constant one
			return nil, malformed("descriptor.localOffsetConstant", err)
		}
	}

	dataCursor := c.Copy()
	var cumulative uint32
	for slot := 0; slot < 5; slot++ {
		if slot > 0 {
			cumulative += dataBlockSizes[slot-1]
		}

		mapped, ok := legacyMappedBlock(slot)
		if !ok {
			continue
		}

		block := &r.FileBlocks[mapped]
		readSize := block.UncompressedSize
		if compressed {
			readSize = block.CompressedSize
		}
		if readSize == 0 {
			continue
		}

		if err := dataCursor.Seek(int(dataBlockOffset+cumulative+localOffsets[slot]), io.SeekStart); err != nil {
			return nil, malformed("descriptor.blockOffset", err)
		}

		data, err := dataCursor.ReadBytes(int(readSize))
		if err != nil {
			return nil, malformed("descriptor.blockData", err)
		}
		block.Data = data
	}

	if err := c.Skip(20); err != nil { // unknown memory stuff
		return nil, malformed("descriptor.trailingMemory", err)
	}

	return r, nil
}

func readLegacyUncompressedSizes(c *bio.Cursor, r *Resource) error {
	for slot := 0; slot < 5; slot++ {
		size, err := c.ReadUint32()
		if err != nil {
			return malformed("uncompInfo.size", err)
		}
		align, err := c.ReadUint32()
		if err != nil {
			return malformed("uncompInfo.align", err)
		}

		mapped, ok := legacyMappedBlock(slot)
		if !ok {
			continue
		}

		r.FileBlocks[mapped].UncompressedSize = size
		r.FileBlocks[mapped].UncompressedAlignment = align
	}
	return nil
}

// saveLegacy serializes cat as a Legacy ("bndl") archive at revision 5.
func saveLegacy(cat *Catalog) ([]byte, error) {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	cat.syncResourceStringTableFlag()

	writeDebugData := len(cat.debugInfo) > 0 && cat.flags&Compressed == 0
	if writeDebugData {
		if err := insertLegacyDebugResource(cat); err != nil {
			return nil, err
		}
		defer func() {
			delete(cat.resources, legacySyntheticDebugID)
		}()
	}

	c := bio.NewWriter()
	c.SetBigEndian(true)

	c.WriteString("bndl")
	c.WriteUint32(5)

	entryCount := uint32(len(cat.resources))
	c.WriteUint32(entryCount)

	var blockSizeMarks [2]bio.Mark
	for i := 0; i < 5; i++ {
		mark := c.PlaceholderU32()
		if i == 0 {
			blockSizeMarks[0] = mark
		} else if i == 2 {
			blockSizeMarks[1] = mark
		}
		c.WriteUint32(1) // alignment placeholder, back-patched with the data block loop
	}

	for i := 0; i < 5; i++ {
		c.WriteUint32(0) // memory addresses, unsupported
	}

	idListOffsetMark := c.PlaceholderU32()
	idTableOffsetMark := c.PlaceholderU32()
	importBlockOffsetMark := c.PlaceholderU32()
	dataBlockOffsetMark := c.PlaceholderU32()

	c.WriteUint32(uint32(Xbox360))

	if cat.flags&Compressed != 0 {
		c.WriteUint32(1)
		c.WriteUint32(entryCount)
	} else {
		c.WriteUint32(0)
		c.WriteUint32(0)
	}

	uncompInfoOffsetMark := c.PlaceholderU32()
	c.WriteUint32(0) // main memory alignment
	c.WriteUint32(0) // graphics memory alignment

	ids := cat.sortedIDs()

	if err := c.BackPatchU32(idListOffsetMark, uint32(c.Pos())); err != nil {
		return nil, err
	}
	for _, id := range ids {
		// The synthetic debug resource is keyed internally by
		// legacySyntheticDebugID (so it always sorts last) but recorded on
		// disk under the literal ID the original producer uses.
		if id == legacySyntheticDebugID {
			c.WriteUint64(uint64(resourceStringTableID))
			continue
		}
		c.WriteUint64(uint64(id))
	}

	if err := c.BackPatchU32(idTableOffsetMark, uint32(c.Pos())); err != nil {
		return nil, err
	}

	importMarks := make(map[uint32]bio.Mark, len(ids))
	localOffsetMarks := make(map[uint32][2]bio.Mark, len(ids))

	for _, id := range ids {
		r := cat.resources[id]

		c.WriteUint32(0) // ignored

		importMarks[id] = c.PlaceholderU32()

		c.WriteUint32(uint32(r.ResourceType))

		for slot := 0; slot < 5; slot++ {
			mapped, ok := legacyMappedBlock(slot)
			if !ok {
				c.WriteUint32(0)
				c.WriteUint32(1)
				continue
			}

			block := r.FileBlocks[mapped]
			size := block.UncompressedSize
			if cat.flags&Compressed != 0 {
				size = block.CompressedSize
			}
			align := block.UncompressedAlignment
			if size == 0 {
				align = 1
			}
			c.WriteUint32(size)
			c.WriteUint32(align)
		}

		var marks [2]bio.Mark
		for slot := 0; slot < 5; slot++ {
			mapped, ok := legacyMappedBlock(slot)
			mark := c.PlaceholderU32()
			if ok {
				marks[mapped] = mark
			}
			c.WriteUint32(1) // constant
		}
		localOffsetMarks[id] = marks

		for i := 0; i < 5; i++ {
			c.WriteUint32(0) // memory stuff, unsupported
		}
	}

	if cat.flags&Compressed != 0 {
		if err := c.BackPatchU32(uncompInfoOffsetMark, uint32(c.Pos())); err != nil {
			return nil, err
		}

		for _, id := range ids {
			r := cat.resources[id]
			for slot := 0; slot < 5; slot++ {
				mapped, ok := legacyMappedBlock(slot)
				if !ok {
					c.WriteUint32(0)
					c.WriteUint32(1)
					continue
				}

				block := r.FileBlocks[mapped]
				align := block.UncompressedAlignment
				if block.UncompressedSize == 0 {
					align = 1
				}
				c.WriteUint32(block.UncompressedSize)
				c.WriteUint32(align)
			}
		}
	}

	if err := c.BackPatchU32(importBlockOffsetMark, uint32(c.Pos())); err != nil {
		return nil, err
	}
	for _, id := range ids {
		deps := cat.legacyDependencies[id]
		if len(deps) == 0 {
			continue
		}

		if err := c.BackPatchU32(importMarks[id], uint32(c.Pos())); err != nil {
			return nil, err
		}

		c.WriteUint32(uint32(len(deps)))
		c.WriteUint32(0)
		for _, d := range deps {
			writeDependency(c, d)
		}
	}

	if err := c.BackPatchU32(dataBlockOffsetMark, uint32(c.Pos())); err != nil {
		return nil, err
	}

	blockStart := c.Pos()
	for mapped := 0; mapped < 2; mapped++ {
		for _, id := range ids {
			r := cat.resources[id]
			block := r.FileBlocks[mapped]

			size := block.UncompressedSize
			if cat.flags&Compressed != 0 {
				size = block.CompressedSize
			}
			if size == 0 {
				continue
			}

			if err := c.BackPatchU32(localOffsetMarks[id][mapped], uint32(c.Pos()-blockStart)); err != nil {
				return nil, err
			}
			c.WriteBytes(block.Data)
		}

		size := uint32(c.Pos() - blockStart)
		align := uint32(1)
		if size > 0 {
			if mapped == 1 {
				align = 4096
			} else {
				align = 1024
			}
		}
		if err := c.BackPatchU32(blockSizeMarks[mapped], size); err != nil {
			return nil, err
		}
		if err := c.BackPatchU32(bio.Mark{Offset: blockSizeMarks[mapped].Offset + 4}, align); err != nil {
			return nil, err
		}

		blockStart = c.Pos()
	}

	return c.Bytes(), nil
}

// insertLegacyDebugResource installs the synthetic debug-info resource the
// Legacy saver writes under the internal placeholder ID
// legacySyntheticDebugID; the ID list instead records resourceStringTableID
// for this position, matching the original producer's asymmetric ID usage.
func insertLegacyDebugResource(cat *Catalog) error {
	entries := make([]rst.Entry, 0, len(cat.debugInfo))
	for id, info := range cat.debugInfo {
		entries = append(entries, rst.Entry{ID: id, Name: info.Name, TypeName: info.TypeName})
	}
	xmlText := rst.Render(entries)

	payload := bio.NewWriter()
	payload.SetBigEndian(true)
	payload.WriteUint32(uint32(len(xmlText)))
	payload.WriteString(xmlText)

	cat.resources[legacySyntheticDebugID] = &Resource{
		ResourceType: TextFile,
		FileBlocks: [3]FileBlock{
			{
				UncompressedSize:      uint32(len(payload.Bytes())),
				UncompressedAlignment: 4,
				Data:                  payload.Bytes(),
			},
		},
	}
	return nil
}
