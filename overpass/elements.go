package overpass

import (
	"context"
	"encoding/json"

	osm "github.com/omniscale/go-osm"
	"github.com/pkg/errors"

	"github.com/omniscale/go-osmapi/coord"
	"github.com/omniscale/go-osmapi/element"
)

type jsonResponse struct {
	Elements []jsonElement `json:"elements"`
}

type jsonElement struct {
	Type    string            `json:"type"`
	ID      int64             `json:"id"`
	Version int32             `json:"version"`
	Lat     float64           `json:"lat"`
	Lon     float64           `json:"lon"`
	Nodes   []int64           `json:"nodes"`
	Members []jsonMember      `json:"members"`
	Tags    map[string]string `json:"tags"`
}

type jsonMember struct {
	Type string `json:"type"`
	Ref  int64  `json:"ref"`
	Role string `json:"role"`
}

var memberTypes = map[string]osm.MemberType{
	"node":     osm.NodeMember,
	"way":      osm.WayMember,
	"relation": osm.RelationMember,
}

// QueryElements runs query and decodes the result into elements. The query
// must request JSON output ([out:json]).
func (c *Client) QueryElements(ctx context.Context, query string) ([]element.Element, error) {
	body, err := c.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return decodeElements(body)
}

func decodeElements(body []byte) ([]element.Element, error) {
	resp := jsonResponse{}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, "decoding overpass response")
	}

	result := make([]element.Element, 0, len(resp.Elements))
	for _, e := range resp.Elements {
		meta := element.Meta{ID: e.ID, Version: e.Version, Tags: e.Tags}
		switch e.Type {
		case "node":
			result = append(result, &element.Node{
				Meta: meta,
				Position: coord.Coordinates{
					Lat:  coord.ClampedLatitude(coord.Type(e.Lat)),
					Long: coord.WrappedLongitude(coord.Type(e.Lon)),
				},
			})
		case "way":
			result = append(result, &element.Way{Meta: meta, Refs: e.Nodes})
		case "relation":
			rel := &element.Relation{Meta: meta}
			for _, m := range e.Members {
				t, ok := memberTypes[m.Type]
				if !ok {
					// ignore unknown member types
					continue
				}
				rel.Members = append(rel.Members, element.Member{
					ID:   m.Ref,
					Type: t,
					Role: m.Role,
				})
			}
			result = append(result, rel)
		default:
			log.Warnf("ignoring element of unknown type %q", e.Type)
		}
	}
	return result, nil
}
