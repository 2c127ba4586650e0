package math

import "math"

// Box is an axis-aligned bounding box.
type Box struct {
	Min Vec3
	Max Vec3
}

// EmptyBox returns an inverted box that any Expand call will replace.
func EmptyBox() Box {
	inf := float32(math.Inf(1))
	return Box{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// IsEmpty reports whether the box contains no points.
func (b Box) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Expand grows the box to include p.
func (b Box) Expand(p Vec3) Box {
	return Box{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Size returns the full extents along each axis.
func (b Box) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b Box) Center() Vec3 {
	return b.Min.Add(b.Size().Scale(0.5))
}

// HalfExtents returns half of the box size.
func (b Box) HalfExtents() Vec3 {
	return b.Size().Scale(0.5)
}

// Corners returns the eight corners, top face (max Z) first.
func (b Box) Corners() [8]Vec3 {
	lo, hi := b.Min, b.Max
	return [8]Vec3{
		{lo.X, hi.Y, hi.Z},
		{hi.X, hi.Y, hi.Z},
		{hi.X, lo.Y, hi.Z},
		{lo.X, lo.Y, hi.Z},
		{lo.X, hi.Y, lo.Z},
		{hi.X, hi.Y, lo.Z},
		{hi.X, lo.Y, lo.Z},
		{lo.X, lo.Y, lo.Z},
	}
}
