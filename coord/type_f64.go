//go:build !coord32
// +build !coord32

package coord

// Type is the numeric type used for all coordinate values. The default is
// float64. Builds with the coord32 tag use float32 instead. The precision is
// fixed per build so a single store never mixes representations.
type Type = float64
