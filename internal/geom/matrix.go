package geom

// Mat3 is a row-major 3x3 matrix, used here exclusively as the
// rotation matrix derived from a frame's orientation quaternion.
type Mat3 struct {
	M00, M01, M02 float64
	M10, M11, M12 float64
	M20, M21, M22 float64
}

// Apply returns M * v.
func (m Mat3) Apply(v Vec3) Vec3 {
	return Vec3{
		X: m.M00*v.X + m.M01*v.Y + m.M02*v.Z,
		Y: m.M10*v.X + m.M11*v.Y + m.M12*v.Z,
		Z: m.M20*v.X + m.M21*v.Y + m.M22*v.Z,
	}
}
