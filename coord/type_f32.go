//go:build coord32
// +build coord32

package coord

// Type is the numeric type used for all coordinate values in coord32 builds.
type Type = float32
