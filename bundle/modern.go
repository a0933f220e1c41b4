package bundle

import (
	"fmt"
	"io"

	"github.com/bndltools/bundle/bundle/bio"
	"github.com/bndltools/bundle/bundle/rst"
)

// modernEntrySize is the byte size of one fixed-layout entry descriptor:
// id(8) + checksum(8) + 3 size|align words(12) + 3 compressed sizes(12) +
// 3 local offsets(12) + dependenciesOffset(4) + resourceType(4) +
// numberOfDependencies(2) + padding(2).
const modernEntrySize = 64

// modernHeaderSize is the fixed header size after 16-byte alignment: magic,
// revision, platform, rstOffset, numEntries, idBlockOffset, three block
// offsets, and flags occupy 40 bytes, padded to the next 16-byte boundary.
const modernHeaderSize = 48

func loadModern(c *bio.Cursor) (*Catalog, error) {
	revision, err := c.ReadUint32()
	if err != nil {
		return nil, malformed("revision", err)
	}

	platformWord, err := c.ReadUint32()
	if err != nil {
		return nil, malformed("platform", err)
	}
	platform := Platform(platformWord)

	c.SetBigEndian(platform.BigEndian())
	if platform.BigEndian() {
		revision = byteswap32(revision)
	}

	if revision != 2 {
		return nil, &FormatError{Kind: ErrUnsupportedVersion, Field: "revision"}
	}

	rstOffset, err := c.ReadUint32()
	if err != nil {
		return nil, malformed("rstOffset", err)
	}
	numEntries, err := c.ReadUint32()
	if err != nil {
		return nil, malformed("numEntries", err)
	}
	idBlockOffset, err := c.ReadUint32()
	if err != nil {
		return nil, malformed("idBlockOffset", err)
	}

	var blockOffsets [3]uint32
	for i := range blockOffsets {
		blockOffsets[i], err = c.ReadUint32()
		if err != nil {
			return nil, malformed("blockOffsets", err)
		}
	}

	flagsWord, err := c.ReadUint32()
	if err != nil {
		return nil, malformed("flags", err)
	}
	flags := Flags(flagsWord)

	cat := New(Modern, revision, platform, flags)

	if idBlockOffset < modernHeaderSize {
		return nil, malformed("idBlockOffset", nil)
	}
	if remaining := c.Len() - int(idBlockOffset); remaining < 0 || uint64(numEntries)*modernEntrySize > uint64(remaining) {
		return nil, malformed("numEntries", nil)
	}

	if err := c.Seek(int(idBlockOffset), io.SeekStart); err != nil {
		return nil, malformed("idBlockOffset", err)
	}

	for i := uint32(0); i < numEntries; i++ {
		id, r, err := readModernEntry(c, blockOffsets, flags)
		if err != nil {
			return nil, err
		}
		if id == 0 {
			return nil, malformed("resourceID", nil)
		}
		cat.resources[id] = r
	}

	if flags&HasResourceStringTable != 0 {
		if err := c.Seek(int(rstOffset), io.SeekStart); err != nil {
			return nil, malformed("rstOffset", err)
		}

		xmlText, err := c.ReadCString()
		if err != nil {
			return nil, malformed("resourceStringTable", err)
		}

		entries, err := rst.Parse(xmlText)
		if err != nil {
			return nil, malformed("resourceStringTable", err)
		}

		for _, e := range entries {
			cat.debugInfo[e.ID] = DebugInfo{Name: e.Name, TypeName: e.TypeName}
		}
	}

	return cat, nil
}

func readModernEntry(c *bio.Cursor, blockOffsets [3]uint32, flags Flags) (uint32, *Resource, error) {
	idWord, err := c.ReadUint64()
	if err != nil {
		return 0, nil, malformed("resourceID", err)
	}
	id := uint32(idWord)

	checksumWord, err := c.ReadUint64()
	if err != nil {
		return 0, nil, malformed("checksum", err)
	}

	r := &Resource{Checksum: uint32(checksumWord)}

	var sizeAlign [3]uint32
	for i := range sizeAlign {
		sizeAlign[i], err = c.ReadUint32()
		if err != nil {
			return 0, nil, malformed("uncompressedSize", err)
		}
		r.FileBlocks[i].UncompressedSize = unpackSize(sizeAlign[i])
		r.FileBlocks[i].UncompressedAlignment = unpackAlign(sizeAlign[i])
	}

	for i := 0; i < 3; i++ {
		r.FileBlocks[i].CompressedSize, err = c.ReadUint32()
		if err != nil {
			return 0, nil, malformed("compressedSize", err)
		}
	}

	var localOffsets [3]uint32
	for i := range localOffsets {
		localOffsets[i], err = c.ReadUint32()
		if err != nil {
			return 0, nil, malformed("localOffset", err)
		}
	}

	r.DependenciesOffset, err = c.ReadUint32()
	if err != nil {
		return 0, nil, malformed("dependenciesOffset", err)
	}

	typeWord, err := c.ReadUint32()
	if err != nil {
		return 0, nil, malformed("resourceType", err)
	}
	r.ResourceType = ResourceType(typeWord)

	r.NumberOfDependencies, err = c.ReadUint16()
	if err != nil {
		return 0, nil, malformed("numberOfDependencies", err)
	}

	if _, err := c.ReadUint16(); err != nil {
		return 0, nil, malformed("padding", err)
	}

	dataCursor := c.Copy()
	for j := 0; j < 3; j++ {
		readSize := r.FileBlocks[j].UncompressedSize
		if flags&Compressed != 0 {
			readSize = r.FileBlocks[j].CompressedSize
		}
		if readSize == 0 {
			continue
		}

		if err := dataCursor.Seek(int(blockOffsets[j]+localOffsets[j]), io.SeekStart); err != nil {
			return 0, nil, malformed("fileBlockOffset", err)
		}

		data, err := dataCursor.ReadBytes(int(readSize))
		if err != nil {
			return 0, nil, malformed("fileBlockData", err)
		}
		r.FileBlocks[j].Data = data
	}

	return id, r, nil
}

func byteswap32(v uint32) uint32 {
	return (v << 24) | (v<<8)&0xff0000 | (v>>8)&0xff00 | (v >> 24)
}

// saveModern serializes cat as a Modern ("bnd2") archive. Only PC output is
// supported.
func saveModern(cat *Catalog) ([]byte, error) {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	if cat.platform != PC {
		return nil, &FormatError{Kind: ErrUnsupportedPlatform, Field: "platform"}
	}

	cat.syncResourceStringTableFlag()

	c := bio.NewWriter()
	c.WriteString("bnd2")
	c.WriteUint32(2)
	c.WriteUint32(uint32(PC))

	rstOffsetMark := c.PlaceholderU32()
	c.WriteUint32(uint32(len(cat.resources)))

	idBlockOffsetMark := c.PlaceholderU32()
	var blockOffsetMarks [3]bio.Mark
	for i := range blockOffsetMarks {
		blockOffsetMarks[i] = c.PlaceholderU32()
	}

	c.WriteUint32(uint32(cat.flags))
	c.Align(16)
	if c.Pos() != modernHeaderSize {
		panic(fmt.Sprintf("bundle: modern header size drifted: got %d, want %d", c.Pos(), modernHeaderSize))
	}

	if err := c.BackPatchU32(rstOffsetMark, uint32(c.Pos())); err != nil {
		return nil, err
	}
	if cat.flags&HasResourceStringTable != 0 {
		entries := make([]rst.Entry, 0, len(cat.debugInfo))
		for id, info := range cat.debugInfo {
			entries = append(entries, rst.Entry{ID: id, Name: info.Name, TypeName: info.TypeName})
		}

		xmlText := rst.Render(entries)
		c.WriteString(xmlText)
		c.WriteUint8(0)
		c.Align(16)
	}

	ids := cat.sortedIDs()

	if err := c.BackPatchU32(idBlockOffsetMark, uint32(c.Pos())); err != nil {
		return nil, err
	}

	localOffsetMarks := make([][3]bio.Mark, len(ids))
	for i, id := range ids {
		r := cat.resources[id]

		c.WriteUint64(uint64(id))
		c.WriteUint64(uint64(r.Checksum))

		for j := 0; j < 3; j++ {
			c.WriteUint32(packSizeAlign(r.FileBlocks[j].UncompressedSize, r.FileBlocks[j].UncompressedAlignment))
		}
		for j := 0; j < 3; j++ {
			c.WriteUint32(r.FileBlocks[j].CompressedSize)
		}
		for j := 0; j < 3; j++ {
			localOffsetMarks[i][j] = c.PlaceholderU32()
		}

		c.WriteUint32(r.DependenciesOffset)
		c.WriteUint32(uint32(r.ResourceType))
		c.WriteUint16(r.NumberOfDependencies)
		c.WriteUint16(0)
	}

	for j := 0; j < 3; j++ {
		if err := c.BackPatchU32(blockOffsetMarks[j], uint32(c.Pos())); err != nil {
			return nil, err
		}
		blockStart := c.Pos()

		for i, id := range ids {
			r := cat.resources[id]
			block := r.FileBlocks[j]

			size := block.UncompressedSize
			if cat.flags&Compressed != 0 {
				size = block.CompressedSize
			}
			if size == 0 {
				continue
			}

			if err := c.BackPatchU32(localOffsetMarks[i][j], uint32(c.Pos()-blockStart)); err != nil {
				return nil, err
			}
			c.WriteBytes(block.Data)

			if j != 0 && i != len(ids)-1 {
				c.Align(128)
			} else {
				c.Align(16)
			}
		}

		if j != 2 {
			c.Align(128)
		}
	}

	return c.Bytes(), nil
}
