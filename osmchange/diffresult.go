package osmchange

import (
	"encoding/xml"
	"io"

	osm "github.com/omniscale/go-osm"
	"github.com/pkg/errors"

	"github.com/omniscale/go-osmapi/diff"
)

type xmlDiffResult struct {
	XMLName   xml.Name       `xml:"diffResult"`
	Nodes     []xmlResultRow `xml:"node"`
	Ways      []xmlResultRow `xml:"way"`
	Relations []xmlResultRow `xml:"relation"`
}

type xmlResultRow struct {
	OldID      int64 `xml:"old_id,attr"`
	NewID      int64 `xml:"new_id,attr"`
	NewVersion int32 `xml:"new_version,attr"`
}

// ParseDiffResult decodes the diffResult document of a successful upload
// into one mapping per operation. Deleted elements carry no new ID or
// version in the document and none in the mapping.
func ParseDiffResult(r io.Reader) ([]diff.Mapping, error) {
	result := xmlDiffResult{}
	if err := xml.NewDecoder(r).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "decoding diffResult")
	}

	mappings := make([]diff.Mapping, 0,
		len(result.Nodes)+len(result.Ways)+len(result.Relations))
	add := func(rows []xmlResultRow, t osm.MemberType) {
		for _, row := range rows {
			mappings = append(mappings, diff.Mapping{
				Type:    t,
				OldID:   row.OldID,
				NewID:   row.NewID,
				Version: row.NewVersion,
			})
		}
	}
	add(result.Nodes, osm.NodeMember)
	add(result.Ways, osm.WayMember)
	add(result.Relations, osm.RelationMember)
	return mappings, nil
}
