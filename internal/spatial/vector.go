package spatial

import "math"

// Vector3 is a 3-element Euclidean vector.
type Vector3 struct {
	X, Y, Z float64
}

// Zero is the additive identity vector.
var Zero = Vector3{}

// Add returns v + u.
func (v Vector3) Add(u Vector3) Vector3 {
	return Vector3{X: v.X + u.X, Y: v.Y + u.Y, Z: v.Z + u.Z}
}

// Sub returns v - u.
func (v Vector3) Sub(u Vector3) Vector3 {
	return Vector3{X: v.X - u.X, Y: v.Y - u.Y, Z: v.Z - u.Z}
}

// Scale returns v scaled by s.
func (v Vector3) Scale(s float64) Vector3 {
	return Vector3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Lerp linearly interpolates from a to b by fraction t.
func Lerp(a, b Vector3, t float64) Vector3 {
	return Vector3{
		X: a.X + t*(b.X-a.X),
		Y: a.Y + t*(b.Y-a.Y),
		Z: a.Z + t*(b.Z-a.Z),
	}
}

// Norm returns the Euclidean length of v.
func (v Vector3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// AlmostEqual reports whether v and u differ by no more than tol in every
// component.
func (v Vector3) AlmostEqual(u Vector3, tol float64) bool {
	return math.Abs(v.X-u.X) <= tol && math.Abs(v.Y-u.Y) <= tol && math.Abs(v.Z-u.Z) <= tol
}
