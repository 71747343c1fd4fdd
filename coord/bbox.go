package coord

import "errors"

var ErrCornerOrder = errors.New("south-west corner must be south-west of north-east corner")

// BBox is a bounding box, defined by its south-west (lower left) and
// north-east (upper right) corners.
// See https://wiki.openstreetmap.org/wiki/Bounding_box
// The zero BBox is empty; Extend and NewBBox produce non-empty boxes.
type BBox struct {
	SouthWest Coordinates
	NorthEast Coordinates
	set       bool
}

// NewBBox returns ErrCornerOrder if southWest is not south-west of northEast.
func NewBBox(southWest, northEast Coordinates) (BBox, error) {
	if southWest.Lat.value > northEast.Lat.value ||
		southWest.Long.value > northEast.Long.value {
		return BBox{}, ErrCornerOrder
	}
	return BBox{SouthWest: southWest, NorthEast: northEast, set: true}, nil
}

// Empty reports whether the box contains no point yet.
func (b BBox) Empty() bool { return !b.set }

// Tuple returns the corner values in (south, west, north, east) order.
func (b BBox) Tuple() (south, west, north, east Type) {
	return b.SouthWest.Lat.value, b.SouthWest.Long.value,
		b.NorthEast.Lat.value, b.NorthEast.Long.value
}

// Extend grows the box to include c. A zero BBox extended the first time
// collapses to the point itself.
func (b *BBox) Extend(c Coordinates) {
	if !b.set {
		b.SouthWest = c
		b.NorthEast = c
		b.set = true
		return
	}
	if c.Lat.value < b.SouthWest.Lat.value {
		b.SouthWest.Lat = c.Lat
	}
	if c.Long.value < b.SouthWest.Long.value {
		b.SouthWest.Long = c.Long
	}
	if c.Lat.value > b.NorthEast.Lat.value {
		b.NorthEast.Lat = c.Lat
	}
	if c.Long.value > b.NorthEast.Long.value {
		b.NorthEast.Long = c.Long
	}
}
