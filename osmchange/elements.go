package osmchange

import (
	"encoding/xml"
	"io"

	"github.com/pkg/errors"

	"github.com/omniscale/go-osmapi/coord"
	"github.com/omniscale/go-osmapi/element"
)

type xmlElements struct {
	XMLName   xml.Name       `xml:"osm"`
	Nodes     []xmlFetchNode `xml:"node"`
	Ways      []xmlFetchWay  `xml:"way"`
	Relations []xmlFetchRel  `xml:"relation"`
}

type xmlFetchNode struct {
	ID      int64    `xml:"id,attr"`
	Version int32    `xml:"version,attr"`
	Lat     float64  `xml:"lat,attr"`
	Lon     float64  `xml:"lon,attr"`
	Tags    []xmlTag `xml:"tag"`
}

type xmlFetchWay struct {
	ID      int64    `xml:"id,attr"`
	Version int32    `xml:"version,attr"`
	Nds     []xmlNd  `xml:"nd"`
	Tags    []xmlTag `xml:"tag"`
}

type xmlFetchRel struct {
	ID      int64       `xml:"id,attr"`
	Version int32       `xml:"version,attr"`
	Members []xmlMember `xml:"member"`
	Tags    []xmlTag    `xml:"tag"`
}

// ParseElements decodes an element fetch response. Coordinates are clamped
// or wrapped into their valid ranges, the server is trusted here.
func ParseElements(r io.Reader) ([]element.Element, error) {
	doc := xmlElements{}
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decoding elements")
	}

	result := make([]element.Element, 0,
		len(doc.Nodes)+len(doc.Ways)+len(doc.Relations))
	for _, n := range doc.Nodes {
		node := &element.Node{
			Meta: element.Meta{ID: n.ID, Version: n.Version, Tags: mapTags(n.Tags)},
			Position: coord.Coordinates{
				Lat:  coord.ClampedLatitude(coord.Type(n.Lat)),
				Long: coord.WrappedLongitude(coord.Type(n.Lon)),
			},
		}
		result = append(result, node)
	}
	for _, w := range doc.Ways {
		way := &element.Way{
			Meta: element.Meta{ID: w.ID, Version: w.Version, Tags: mapTags(w.Tags)},
		}
		for _, nd := range w.Nds {
			way.Refs = append(way.Refs, nd.Ref)
		}
		result = append(result, way)
	}
	for _, rel := range doc.Relations {
		relation := &element.Relation{
			Meta: element.Meta{ID: rel.ID, Version: rel.Version, Tags: mapTags(rel.Tags)},
		}
		for _, m := range rel.Members {
			t, ok := memberTypeValues[m.Type]
			if !ok {
				// ignore unknown member types
				continue
			}
			relation.Members = append(relation.Members, element.Member{
				ID:   m.Ref,
				Type: t,
				Role: m.Role,
			})
		}
		result = append(result, relation)
	}
	return result, nil
}

func mapTags(tags []xmlTag) element.Tags {
	if len(tags) == 0 {
		return nil
	}
	result := make(element.Tags, len(tags))
	for _, tag := range tags {
		result[tag.Key] = tag.Value
	}
	return result
}
