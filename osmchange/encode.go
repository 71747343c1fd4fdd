// Package osmchange encodes and decodes the XML documents of the OSM
// editing API: osmChange uploads, diffResult responses and changeset
// metadata. It is a pure codec, transport is handled elsewhere.
package osmchange

import (
	"bytes"
	"encoding/xml"
	"sort"
	"strconv"

	osm "github.com/omniscale/go-osm"
	"github.com/pkg/errors"

	"github.com/omniscale/go-osmapi/coord"
	"github.com/omniscale/go-osmapi/diff"
	"github.com/omniscale/go-osmapi/element"
)

var memberTypeNames = map[osm.MemberType]string{
	osm.NodeMember:     "node",
	osm.WayMember:      "way",
	osm.RelationMember: "relation",
}

var memberTypeValues = map[string]osm.MemberType{
	"node":     osm.NodeMember,
	"way":      osm.WayMember,
	"relation": osm.RelationMember,
}

type xmlOsmChange struct {
	XMLName   xml.Name  `xml:"osmChange"`
	Version   string    `xml:"version,attr"`
	Generator string    `xml:"generator,attr"`
	Create    *xmlBlock `xml:"create,omitempty"`
	Modify    *xmlBlock `xml:"modify,omitempty"`
	Delete    *xmlBlock `xml:"delete,omitempty"`
}

type xmlBlock struct {
	Nodes     []xmlNode     `xml:"node"`
	Ways      []xmlWay      `xml:"way"`
	Relations []xmlRelation `xml:"relation"`
}

type xmlNode struct {
	ID        int64    `xml:"id,attr"`
	Version   int32    `xml:"version,attr,omitempty"`
	Changeset int64    `xml:"changeset,attr"`
	Lat       string   `xml:"lat,attr,omitempty"`
	Lon       string   `xml:"lon,attr,omitempty"`
	Tags      []xmlTag `xml:"tag"`
}

type xmlWay struct {
	ID        int64    `xml:"id,attr"`
	Version   int32    `xml:"version,attr,omitempty"`
	Changeset int64    `xml:"changeset,attr"`
	Nds       []xmlNd  `xml:"nd"`
	Tags      []xmlTag `xml:"tag"`
}

type xmlRelation struct {
	ID        int64       `xml:"id,attr"`
	Version   int32       `xml:"version,attr,omitempty"`
	Changeset int64       `xml:"changeset,attr"`
	Members   []xmlMember `xml:"member"`
	Tags      []xmlTag    `xml:"tag"`
}

type xmlNd struct {
	Ref int64 `xml:"ref,attr"`
}

type xmlMember struct {
	Type string `xml:"type,attr"`
	Ref  int64  `xml:"ref,attr"`
	Role string `xml:"role,attr"`
}

type xmlTag struct {
	Key   string `xml:"k,attr"`
	Value string `xml:"v,attr"`
}

// Marshal encodes the package as an osmChange 0.6 document.
func Marshal(pkg *diff.Package, generator string) ([]byte, error) {
	doc := xmlOsmChange{
		Version:   "0.6",
		Generator: generator,
		Create:    block(pkg.Creates, pkg.ChangesetID),
		Modify:    block(pkg.Modifies, pkg.ChangesetID),
		Delete:    block(pkg.Deletes, pkg.ChangesetID),
	}
	buf := bytes.Buffer{}
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, errors.Wrap(err, "encoding osmChange")
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func block(changes []diff.Change, changesetID int64) *xmlBlock {
	if len(changes) == 0 {
		return nil
	}
	b := xmlBlock{}
	for i := range changes {
		c := &changes[i]
		switch {
		case c.Node != nil:
			n := xmlNode{
				ID:        c.Node.ID,
				Version:   c.Node.Version,
				Changeset: changesetID,
				Tags:      xmlTags(c.Node.Tags),
			}
			if !c.Delete {
				n.Lat = formatCoord(c.Node.Position.Lat.Value())
				n.Lon = formatCoord(c.Node.Position.Long.Value())
			}
			b.Nodes = append(b.Nodes, n)
		case c.Way != nil:
			w := xmlWay{
				ID:        c.Way.ID,
				Version:   c.Way.Version,
				Changeset: changesetID,
				Tags:      xmlTags(c.Way.Tags),
			}
			for _, ref := range c.Way.Refs {
				w.Nds = append(w.Nds, xmlNd{Ref: ref})
			}
			b.Ways = append(b.Ways, w)
		case c.Rel != nil:
			r := xmlRelation{
				ID:        c.Rel.ID,
				Version:   c.Rel.Version,
				Changeset: changesetID,
				Tags:      xmlTags(c.Rel.Tags),
			}
			for _, m := range c.Rel.Members {
				r.Members = append(r.Members, xmlMember{
					Type: memberTypeNames[m.Type],
					Ref:  m.ID,
					Role: m.Role,
				})
			}
			b.Relations = append(b.Relations, r)
		}
	}
	return &b
}

func xmlTags(t element.Tags) []xmlTag {
	if len(t) == 0 {
		return nil
	}
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	result := make([]xmlTag, 0, len(keys))
	for _, k := range keys {
		result = append(result, xmlTag{Key: k, Value: t[k]})
	}
	return result
}

func formatCoord(v coord.Type) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 64)
}
