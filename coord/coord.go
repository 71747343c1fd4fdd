// Package coord provides validated coordinate types for the OSM API.
//
// Latitude and Longitude reject values outside the valid WGS84 ranges.
// See https://wiki.openstreetmap.org/wiki/Coordinates
package coord

import (
	"errors"
	"fmt"
	"math"
)

var ErrOutOfRange = errors.New("coordinate value out of range")

const (
	MinLatitude  Type = -90.0
	MaxLatitude  Type = 90.0
	MinLongitude Type = -180.0
	MaxLongitude Type = 180.0
)

// Latitude is the y coordinate, valid in [-90, 90].
type Latitude struct {
	value Type
}

// NewLatitude returns ErrOutOfRange for values outside [-90, 90].
func NewLatitude(value Type) (Latitude, error) {
	if value < MinLatitude || value > MaxLatitude {
		return Latitude{}, ErrOutOfRange
	}
	return Latitude{value: value}, nil
}

// ClampedLatitude clamps out of range values to -90/90.
func ClampedLatitude(value Type) Latitude {
	if value < MinLatitude {
		return Latitude{value: MinLatitude}
	}
	if value > MaxLatitude {
		return Latitude{value: MaxLatitude}
	}
	return Latitude{value: value}
}

func (l Latitude) Value() Type { return l.value }

func (l Latitude) String() string { return fmt.Sprintf("%v", l.value) }

// Longitude is the x coordinate, valid in [-180, 180].
type Longitude struct {
	value Type
}

// NewLongitude returns ErrOutOfRange for values outside [-180, 180].
func NewLongitude(value Type) (Longitude, error) {
	if value < MinLongitude || value > MaxLongitude {
		return Longitude{}, ErrOutOfRange
	}
	return Longitude{value: value}, nil
}

// WrappedLongitude wraps values into [-180, 180). 190 becomes -170.
func WrappedLongitude(value Type) Longitude {
	return Longitude{value: wrap(value, MinLongitude, MaxLongitude)}
}

func (l Longitude) Value() Type { return l.value }

func (l Longitude) String() string { return fmt.Sprintf("%v", l.value) }

// wrap maps value into [min, max) with euclidean remainder semantics.
func wrap(value, min, max Type) Type {
	span := float64(max - min)
	v := math.Mod(float64(value-min), span)
	if v < 0 {
		v += span
	}
	return Type(v) + min
}

// Coordinates is a single point on earth.
type Coordinates struct {
	Lat  Latitude
	Long Longitude
}

// NewCoordinates validates both values and returns ErrOutOfRange if either
// is outside its range.
func NewCoordinates(lat, long Type) (Coordinates, error) {
	latitude, err := NewLatitude(lat)
	if err != nil {
		return Coordinates{}, err
	}
	longitude, err := NewLongitude(long)
	if err != nil {
		return Coordinates{}, err
	}
	return Coordinates{Lat: latitude, Long: longitude}, nil
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%v %v", c.Lat.value, c.Long.value)
}
