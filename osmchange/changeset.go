package osmchange

import (
	"bytes"
	"encoding/xml"
	"io"
	"time"

	osm "github.com/omniscale/go-osm"
	"github.com/pkg/errors"
)

type xmlOsm struct {
	XMLName    xml.Name       `xml:"osm"`
	Changesets []xmlChangeset `xml:"changeset"`
}

type xmlChangeset struct {
	ID         int64        `xml:"id,attr"`
	CreatedAt  isoTime      `xml:"created_at,attr"`
	ClosedAt   isoTime      `xml:"closed_at,attr"`
	Open       bool         `xml:"open,attr"`
	User       string       `xml:"user,attr"`
	UserID     int32        `xml:"uid,attr"`
	NumChanges int32        `xml:"num_changes,attr"`
	MinLon     float64      `xml:"min_lon,attr"`
	MinLat     float64      `xml:"min_lat,attr"`
	MaxLon     float64      `xml:"max_lon,attr"`
	MaxLat     float64      `xml:"max_lat,attr"`
	Comments   []xmlComment `xml:"discussion>comment"`
	Tags       []xmlTag     `xml:"tag"`
}

type xmlComment struct {
	UserID int32   `xml:"uid,attr"`
	User   string  `xml:"user,attr"`
	Date   isoTime `xml:"date,attr"`
	Text   string  `xml:"text"`
}

type isoTime struct {
	time.Time
}

func (t *isoTime) UnmarshalXMLAttr(attr xml.Attr) error {
	if attr.Value == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, attr.Value)
	if err != nil {
		return err
	}
	*t = isoTime{parsed}
	return nil
}

// ParseChangeset decodes the changeset metadata document returned by the
// server for a single changeset.
func ParseChangeset(r io.Reader) (*osm.Changeset, error) {
	doc := xmlOsm{}
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decoding changeset")
	}
	if len(doc.Changesets) == 0 {
		return nil, errors.New("no changeset in response")
	}
	cs := doc.Changesets[0]

	result := &osm.Changeset{
		ID:         cs.ID,
		CreatedAt:  cs.CreatedAt.Time,
		ClosedAt:   cs.ClosedAt.Time,
		Open:       cs.Open,
		UserID:     cs.UserID,
		UserName:   cs.User,
		NumChanges: cs.NumChanges,
		MaxExtent:  [4]float64{cs.MinLon, cs.MinLat, cs.MaxLon, cs.MaxLat},
	}
	if len(cs.Tags) > 0 {
		result.Tags = make(osm.Tags, len(cs.Tags))
		for _, tag := range cs.Tags {
			result.Tags[tag.Key] = tag.Value
		}
	}
	for _, c := range cs.Comments {
		result.Comments = append(result.Comments, osm.Comment{
			UserID:    c.UserID,
			UserName:  c.User,
			CreatedAt: c.Date.Time,
			Text:      c.Text,
		})
	}
	return result, nil
}

// MarshalChangeset encodes the open-changeset request body with the given
// changeset tags. A created_by tag with the generator is added unless the
// tags already carry one.
func MarshalChangeset(tags osm.Tags, generator string) ([]byte, error) {
	type xmlCreate struct {
		XMLName   xml.Name `xml:"osm"`
		Changeset struct {
			Tags []xmlTag `xml:"tag"`
		} `xml:"changeset"`
	}
	if _, ok := tags["created_by"]; !ok && generator != "" {
		merged := make(osm.Tags, len(tags)+1)
		for k, v := range tags {
			merged[k] = v
		}
		merged["created_by"] = generator
		tags = merged
	}
	doc := xmlCreate{}
	doc.Changeset.Tags = xmlTags(tags)
	buf := bytes.Buffer{}
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, errors.Wrap(err, "encoding changeset")
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
