package components

import "math"

// Vec3 is a 3D vector in world units, Y up.
type Vec3 struct {
	X, Y, Z float32
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float32 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// LengthSq returns the squared length of v.
func (v Vec3) LengthSq() float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Length returns the length of v.
func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.LengthSq())))
}

// DistSq returns the squared distance from v to o.
func (v Vec3) DistSq(o Vec3) float32 {
	return v.Sub(o).LengthSq()
}

// Dist returns the distance from v to o.
func (v Vec3) Dist(o Vec3) float32 {
	return float32(math.Sqrt(float64(v.DistSq(o))))
}

// DistXZSq returns the squared horizontal distance from v to o,
// ignoring the vertical axis.
func (v Vec3) DistXZSq(o Vec3) float32 {
	dx := v.X - o.X
	dz := v.Z - o.Z
	return dx*dx + dz*dz
}

// DistXZ returns the horizontal distance from v to o.
func (v Vec3) DistXZ(o Vec3) float32 {
	return float32(math.Sqrt(float64(v.DistXZSq(o))))
}

// Normalized returns v scaled to unit length. Near-zero vectors
// return the zero vector rather than NaN.
func (v Vec3) Normalized() Vec3 {
	lsq := v.LengthSq()
	if lsq < 1e-12 {
		return Vec3{}
	}
	inv := 1 / float32(math.Sqrt(float64(lsq)))
	return Vec3{v.X * inv, v.Y * inv, v.Z * inv}
}

// FlatNormalized returns the horizontal direction of v as a unit
// vector with Y forced to zero.
func (v Vec3) FlatNormalized() Vec3 {
	return Vec3{X: v.X, Z: v.Z}.Normalized()
}

// Lerp returns the linear interpolation from v to o at t.
func (v Vec3) Lerp(o Vec3, t float32) Vec3 {
	return Vec3{
		v.X + (o.X-v.X)*t,
		v.Y + (o.Y-v.Y)*t,
		v.Z + (o.Z-v.Z)*t,
	}
}

// HeadingXZ returns the yaw angle of v on the horizontal plane.
func (v Vec3) HeadingXZ() float32 {
	return float32(math.Atan2(float64(v.Z), float64(v.X)))
}
