// Package rst marshals and unmarshals the resource string table: the
// optional XML mapping from resource ID to a human-readable debug name and
// type name, embedded in a bundle archive.
//
// Parsing is permissive: two known producer defects — a spurious slash
// that turns the root opening tag into a closing tag, and a stray
// duplicated closing-tag tail —
// are tolerated rather than treated as parse failures.
package rst

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Entry is one resource-string-table row.
type Entry struct {
	ID       uint32
	Name     string
	TypeName string
}

type document struct {
	XMLName   xml.Name `xml:"ResourceStringTable"`
	Resources []resourceElement `xml:"Resource"`
}

type resourceElement struct {
	ID   string `xml:"id,attr"`
	Type string `xml:"type,attr"`
	Name string `xml:"name,attr"`
}

const strayTail = "</ResourceStringTable>\n\t"

// cleanDefects tolerates the known producer defects: a root closing tag
// that opens the document instead of a root opening tag, and a stray
// duplicate closing-tag tail.
func cleanDefects(s string) string {
	if strings.HasPrefix(s, "</ResourceStringTable>") {
		s = s[:1] + s[2:]
	}

	if idx := strings.Index(s, strayTail); idx >= 0 {
		s = s[:idx] + s[idx+len(strayTail):]
	}

	return s
}

// Parse decodes a resource string table from its XML text.
func Parse(xmlText string) ([]Entry, error) {
	cleaned := cleanDefects(xmlText)

	var doc document
	if err := xml.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, fmt.Errorf("rst: parse: %w", err)
	}

	entries := make([]Entry, 0, len(doc.Resources))
	for _, r := range doc.Resources {
		id, err := strconv.ParseUint(r.ID, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("rst: parse: resource id %q: %w", r.ID, err)
		}

		entries = append(entries, Entry{
			ID:       uint32(id),
			Name:     r.Name,
			TypeName: r.Type,
		})
	}

	return entries, nil
}

// Render encodes entries as tab-indented XML with no declaration, matching
// the original producer's pugixml output: self-closing Resource elements
// with no space before "/>", and the resource ID rendered as lower-case,
// zero-padded 8 hex digits.
func Render(entries []Entry) string {
	sorted := append([]Entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	doc := document{
		Resources: make([]resourceElement, 0, len(sorted)),
	}
	for _, e := range sorted {
		doc.Resources = append(doc.Resources, resourceElement{
			ID:   fmt.Sprintf("%08x", e.ID),
			Type: e.TypeName,
			Name: e.Name,
		})
	}

	out, err := xml.MarshalIndent(doc, "", "\t")
	if err != nil {
		// doc is always well-formed plain attribute data; this cannot fail.
		panic(fmt.Sprintf("rst: render: %v", err))
	}

	return strings.ReplaceAll(string(out), "></Resource>", "/>")
}
