package coord

import (
	"testing"
)

func TestLatitudeRange(t *testing.T) {
	for _, value := range []Type{0.0, -90.0, 90.0, 45.5} {
		if _, err := NewLatitude(value); err != nil {
			t.Error("rejected valid latitude", value)
		}
	}
	for _, value := range []Type{-90.1, 90.1, -160.0, 160.0} {
		if _, err := NewLatitude(value); err != ErrOutOfRange {
			t.Error("accepted invalid latitude", value)
		}
	}
}

func TestLongitudeRange(t *testing.T) {
	for _, value := range []Type{0.0, -180.0, 180.0, 13.4} {
		if _, err := NewLongitude(value); err != nil {
			t.Error("rejected valid longitude", value)
		}
	}
	for _, value := range []Type{-180.1, 180.1, -360.0, 360.0} {
		if _, err := NewLongitude(value); err != ErrOutOfRange {
			t.Error("accepted invalid longitude", value)
		}
	}
}

func TestClampedLatitude(t *testing.T) {
	if v := ClampedLatitude(100.0).Value(); v != 90.0 {
		t.Fatal(v)
	}
	if v := ClampedLatitude(-100.0).Value(); v != -90.0 {
		t.Fatal(v)
	}
	if v := ClampedLatitude(47.5).Value(); v != 47.5 {
		t.Fatal(v)
	}
}

func TestWrappedLongitude(t *testing.T) {
	if v := WrappedLongitude(190.0).Value(); v != -170.0 {
		t.Fatal(v)
	}
	if v := WrappedLongitude(-190.0).Value(); v != 170.0 {
		t.Fatal(v)
	}
	if v := WrappedLongitude(360.0).Value(); v != 0.0 {
		t.Fatal(v)
	}
	if v := WrappedLongitude(13.4).Value(); v != 13.4 {
		t.Fatal(v)
	}
}

func TestCoordinates(t *testing.T) {
	c, err := NewCoordinates(1.0, 2.0)
	if err != nil {
		t.Fatal(err)
	}
	if c.Lat.Value() != 1.0 || c.Long.Value() != 2.0 {
		t.Fatal(c)
	}
	if _, err := NewCoordinates(91.0, 0.0); err != ErrOutOfRange {
		t.Fatal(err)
	}
	if _, err := NewCoordinates(0.0, 181.0); err != ErrOutOfRange {
		t.Fatal(err)
	}
}

func TestBBoxCornerOrder(t *testing.T) {
	sw, _ := NewCoordinates(1.0, 1.0)
	ne, _ := NewCoordinates(2.0, 2.0)

	if _, err := NewBBox(sw, ne); err != nil {
		t.Fatal(err)
	}
	if _, err := NewBBox(ne, sw); err != ErrCornerOrder {
		t.Fatal(err)
	}
}

func TestBBoxTuple(t *testing.T) {
	sw, _ := NewCoordinates(1.0, 2.0)
	ne, _ := NewCoordinates(3.0, 4.0)
	bbox, err := NewBBox(sw, ne)
	if err != nil {
		t.Fatal(err)
	}
	south, west, north, east := bbox.Tuple()
	if south != 1.0 || west != 2.0 || north != 3.0 || east != 4.0 {
		t.Fatal(south, west, north, east)
	}
}

func TestBBoxExtend(t *testing.T) {
	bbox := BBox{}
	if !bbox.Empty() {
		t.Fatal("zero bbox not empty")
	}

	c1, _ := NewCoordinates(2.0, 3.0)
	bbox.Extend(c1)
	if bbox.Empty() {
		t.Fatal("extended bbox still empty")
	}
	south, west, north, east := bbox.Tuple()
	if south != 2.0 || west != 3.0 || north != 2.0 || east != 3.0 {
		t.Fatal(south, west, north, east)
	}

	c2, _ := NewCoordinates(-1.0, 5.0)
	bbox.Extend(c2)
	south, west, north, east = bbox.Tuple()
	if south != -1.0 || west != 3.0 || north != 2.0 || east != 5.0 {
		t.Fatal(south, west, north, east)
	}
}
