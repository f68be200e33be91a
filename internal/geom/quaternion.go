package geom

import "math"

// Quaternion is a unit quaternion encoding a 3D orientation, stored as
// (w, x, y, z). This field order is the fixed convention used end to
// end: random initialization, forward kinematics, the BFGS line
// search's orientation update and ComposeResult all agree on it.
type Quaternion struct {
	W, X, Y, Z float64
}

// IdentityQuaternion is the no-rotation orientation.
var IdentityQuaternion = Quaternion{W: 1}

// Mul returns q * o. Quaternion multiplication is non-commutative; o
// is applied first (i.e. Mul represents "rotate by o, then by q").
func (q Quaternion) Mul(o Quaternion) Quaternion {
	return Quaternion{
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
	}
}

// Norm returns the quaternion's Euclidean length.
func (q Quaternion) Norm() float64 {
	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

// Normalize returns q scaled to unit length. The identity quaternion is
// returned if q has zero norm.
func (q Quaternion) Normalize() Quaternion {
	n := q.Norm()
	if n == 0 {
		return IdentityQuaternion
	}
	inv := 1 / n
	return Quaternion{W: q.W * inv, X: q.X * inv, Y: q.Y * inv, Z: q.Z * inv}
}

// ToMat3 converts a unit quaternion to its equivalent 3x3 rotation
// matrix.
func (q Quaternion) ToMat3() Mat3 {
	w, x, y, z := q.W, q.X, q.Y, q.Z
	x2, y2, z2 := x+x, y+y, z+z
	wx, wy, wz := w*x2, w*y2, w*z2
	xx, xy, xz := x*x2, x*y2, x*z2
	yy, yz, zz := y*y2, y*z2, z*z2

	return Mat3{
		M00: 1 - (yy + zz), M01: xy - wz, M02: xz + wy,
		M10: xy + wz, M11: 1 - (xx + zz), M12: yz - wx,
		M20: xz - wy, M21: yz + wx, M22: 1 - (xx + yy),
	}
}

// AxisAngleToQuat builds a unit quaternion rotating by angle theta
// (radians) about a unit axis. The caller supplies theta as a full
// rotation angle; the half-angle formula is applied internally.
func AxisAngleToQuat(axis Vec3, theta float64) Quaternion {
	half := theta / 2
	s := math.Sin(half)
	return Quaternion{
		W: math.Cos(half),
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
	}.Normalize()
}

// RotationVectorToQuat builds a quaternion from a (possibly small)
// rotation vector v, whose direction is the rotation axis and whose
// magnitude is the rotation angle in radians. Used for the ROOT
// orientation update in the BFGS line search, where the optimizer
// produces an unrestricted 3-vector step rather than an axis/angle
// pair. The zero vector maps to the identity quaternion.
func RotationVectorToQuat(v Vec3) Quaternion {
	angle := v.Norm()
	if angle == 0 {
		return IdentityQuaternion
	}
	return AxisAngleToQuat(v.Scale(1/angle), angle)
}
