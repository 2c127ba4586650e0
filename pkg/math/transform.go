package math

// Transform is a rigid offset: a rotation followed by a translation.
// It carries a mesh component's local geometry into its generation root frame.
type Transform struct {
	Rotation    Quat
	Translation Vec3
}

// TransformIdentity returns a transform that leaves points unchanged.
func TransformIdentity() Transform {
	return Transform{Rotation: QuatIdentity()}
}

// TransformPoint rotates p and then translates it.
func (t Transform) TransformPoint(p Vec3) Vec3 {
	return t.Rotation.Rotate(p).Add(t.Translation)
}

// TransformVector rotates v without translation (normals, tangents).
func (t Transform) TransformVector(v Vec3) Vec3 {
	return t.Rotation.Rotate(v)
}

// RelativeTransform computes the offset of a child placed at childRot/childPos
// relative to a root placed at rootRot/rootPos. The returned transform maps
// child-local points into root-local space.
func RelativeTransform(rootRot Quat, rootPos Vec3, childRot Quat, childPos Vec3) Transform {
	return Transform{
		Rotation:    rootRot.Conjugate().Mul(childRot).Normalize(),
		Translation: rootRot.Unrotate(childPos.Sub(rootPos)),
	}
}
