package math

// Vec2 is a 2D vector, used for texture coordinates.
type Vec2 struct {
	X, Y float32
}

// Vec2FromSlice reads two consecutive floats starting at offset i.
func Vec2FromSlice(s []float32, i int) Vec2 {
	return Vec2{s[i], s[i+1]}
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// AppendTo appends X, Y to a flat float buffer.
func (v Vec2) AppendTo(s []float32) []float32 {
	return append(s, v.X, v.Y)
}
