package engine

import "math"

// Matrix2D represents a 2D affine transformation matrix.
// Layout: [a, b, c, d, e, f] representing:
// | a  c  e |
// | b  d  f |
// | 0  0  1 |
//
// Where:
// - a, d = scale
// - b, c = skew/rotation
// - e, f = translation
type Matrix2D [6]float64

// Identity returns the identity matrix.
func Identity() Matrix2D {
	return Matrix2D{1, 0, 0, 1, 0, 0}
}

// Translate returns a translation matrix.
func Translate(tx, ty float64) Matrix2D {
	return Matrix2D{1, 0, 0, 1, tx, ty}
}

// Scale returns a scale matrix.
func Scale(sx, sy float64) Matrix2D {
	return Matrix2D{sx, 0, 0, sy, 0, 0}
}

// Rotate returns a rotation matrix (angle in radians).
func Rotate(radians float64) Matrix2D {
	sin, cos := math.Sincos(radians)
	return Matrix2D{cos, sin, -sin, cos, 0, 0}
}

// RotateDegrees returns a rotation matrix (angle in degrees).
func RotateDegrees(degrees float64) Matrix2D {
	return Rotate(degrees * math.Pi / 180.0)
}

// Multiply multiplies this matrix by another: result = m * other
// This applies 'other' first, then 'm'.
func (m Matrix2D) Multiply(other Matrix2D) Matrix2D {
	return Matrix2D{
		m[0]*other[0] + m[2]*other[1],        // a
		m[1]*other[0] + m[3]*other[1],        // b
		m[0]*other[2] + m[2]*other[3],        // c
		m[1]*other[2] + m[3]*other[3],        // d
		m[0]*other[4] + m[2]*other[5] + m[4], // e
		m[1]*other[4] + m[3]*other[5] + m[5], // f
	}
}

// TransformPoint applies the matrix to a point.
func (m Matrix2D) TransformPoint(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// TransformVector applies only the linear part of the matrix (no translation).
// Used for converting direction/offset vectors between coordinate spaces.
func (m Matrix2D) TransformVector(v Point) Point {
	return Point{
		X: m[0]*v.X + m[2]*v.Y,
		Y: m[1]*v.X + m[3]*v.Y,
	}
}

// TransformRect transforms a rectangle and returns its axis-aligned bounding box.
func (m Matrix2D) TransformRect(r Rect) Rect {
	p0 := m.TransformPoint(Point{r.X, r.Y})
	p1 := m.TransformPoint(Point{r.X + r.Width, r.Y})
	p2 := m.TransformPoint(Point{r.X + r.Width, r.Y + r.Height})
	p3 := m.TransformPoint(Point{r.X, r.Y + r.Height})

	minX := min(p0.X, min(p1.X, min(p2.X, p3.X)))
	minY := min(p0.Y, min(p1.Y, min(p2.Y, p3.Y)))
	maxX := max(p0.X, max(p1.X, max(p2.X, p3.X)))
	maxY := max(p0.Y, max(p1.Y, max(p2.Y, p3.Y)))

	return Rect{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

// Determinant returns the determinant of the matrix.
func (m Matrix2D) Determinant() float64 {
	return m[0]*m[3] - m[1]*m[2]
}

// Invert returns the inverse of the matrix, or Identity if not invertible.
func (m Matrix2D) Invert() Matrix2D {
	det := m.Determinant()
	if det == 0 || math.IsInf(det, 0) || math.IsNaN(det) {
		return Identity()
	}

	invDet := 1.0 / det
	return Matrix2D{
		m[3] * invDet,
		-m[1] * invDet,
		-m[2] * invDet,
		m[0] * invDet,
		(m[2]*m[5] - m[3]*m[4]) * invDet,
		(m[1]*m[4] - m[0]*m[5]) * invDet,
	}
}

// FromTransform creates a matrix from node transform properties.
// This composes: Translate(x, y) * Rotate(r) * Scale(sx, sy) * Translate(-ax, -ay)
// The anchor point (ax, ay) is the rotation/scale center.
func FromTransform(t Transform) Matrix2D {
	rad := t.R * math.Pi / 180.0
	sin, cos := math.Sincos(rad)

	return Matrix2D{
		cos * t.SX,  // a
		sin * t.SX,  // b
		-sin * t.SY, // c
		cos * t.SY,  // d
		t.X + t.AX - cos*t.SX*t.AX + sin*t.SY*t.AY, // e
		t.Y + t.AY - sin*t.SX*t.AX - cos*t.SY*t.AY, // f
	}
}

// degenerateScaleEps is the threshold below which an axis scale is treated
// as collapsed and substituted during decomposition.
const degenerateScaleEps = 1e-12

// Decompose splits the matrix into translation, rotation (degrees) and
// non-uniform scale, assuming it was composed as T * R * S (no skew).
// A skewed matrix decomposes to the closest representable transform:
// rotation from the X basis vector, Y scale from the determinant.
// Degenerate axes (zero or non-finite scale) are substituted with scale 1
// so NaN never propagates into stored transforms; ok reports whether the
// decomposition was usable.
func (m Matrix2D) Decompose() (t Transform, ok bool) {
	t = Transform{X: m[4], Y: m[5], SX: 1, SY: 1}

	sx := math.Hypot(m[0], m[1])
	if sx < degenerateScaleEps || math.IsInf(sx, 0) || math.IsNaN(sx) {
		return t, false
	}

	det := m.Determinant()
	sy := det / sx
	if math.Abs(sy) < degenerateScaleEps || math.IsInf(sy, 0) || math.IsNaN(sy) {
		return t, false
	}

	t.SX = sx
	t.SY = sy
	t.R = math.Atan2(m[1], m[0]) * 180.0 / math.Pi
	return t, true
}

// FieldsFromMatrix solves for the transform fields that reproduce matrix m
// under FromTransform with the given anchor point. Decomposition degeneracy
// is reported through ok as in Decompose.
func FieldsFromMatrix(m Matrix2D, ax, ay float64) (Transform, bool) {
	t, ok := m.Decompose()
	t.AX = ax
	t.AY = ay

	// FromTransform places translation at
	//   e = x + ax - (RS·(ax,ay)).x
	//   f = y + ay - (RS·(ax,ay)).y
	// so solve for x, y given the decomposed linear part.
	rad := t.R * math.Pi / 180.0
	sin, cos := math.Sincos(rad)
	t.X = m[4] - ax + cos*t.SX*ax - sin*t.SY*ay
	t.Y = m[5] - ay + sin*t.SX*ax + cos*t.SY*ay
	return t, ok
}

// ToSlice returns the matrix as a float64 slice for JSON serialization.
func (m Matrix2D) ToSlice() []float64 {
	return []float64{m[0], m[1], m[2], m[3], m[4], m[5]}
}

// IsIdentity checks if this is the identity matrix (within epsilon).
func (m Matrix2D) IsIdentity() bool {
	const eps = 1e-10
	return math.Abs(m[0]-1) < eps &&
		math.Abs(m[1]) < eps &&
		math.Abs(m[2]) < eps &&
		math.Abs(m[3]-1) < eps &&
		math.Abs(m[4]) < eps &&
		math.Abs(m[5]) < eps
}
