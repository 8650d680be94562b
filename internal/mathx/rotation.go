// Package mathx converts between the Euler-degree rotations stored in scene
// files and the quaternions components hold at runtime.
package mathx

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// gimbalEpsilon is the cos(yaw) below which pitch and roll are no longer
// independent and roll is pinned to zero.
const gimbalEpsilon = 1e-6

// EulerToQuat builds a quaternion from Euler angles in degrees.
// X is pitch, Y is yaw and Z is roll; X is applied first, then Y, then Z.
func EulerToQuat(deg mgl32.Vec3) mgl32.Quat {
	hx := float64(mgl32.DegToRad(deg.X())) * 0.5
	hy := float64(mgl32.DegToRad(deg.Y())) * 0.5
	hz := float64(mgl32.DegToRad(deg.Z())) * 0.5

	cx, sx := math.Cos(hx), math.Sin(hx)
	cy, sy := math.Cos(hy), math.Sin(hy)
	cz, sz := math.Cos(hz), math.Sin(hz)

	return mgl32.Quat{
		W: float32(cx*cy*cz + sx*sy*sz),
		V: mgl32.Vec3{
			float32(sx*cy*cz - cx*sy*sz),
			float32(cx*sy*cz + sx*cy*sz),
			float32(cx*cy*sz - sx*sy*cz),
		},
	}
}

// QuatToEuler returns the Euler angles in degrees of q, inverse of EulerToQuat.
// Yaw is kept in [-90, 90]. The quaternion does not need to be normalized.
func QuatToEuler(q mgl32.Quat) mgl32.Vec3 {
	w, x, y, z := float64(q.W), float64(q.V.X()), float64(q.V.Y()), float64(q.V.Z())
	n := math.Sqrt(w*w + x*x + y*y + z*z)
	if n == 0 {
		return mgl32.Vec3{}
	}
	w, x, y, z = w/n, x/n, y/n, z/n

	// Rotation matrix terms, row-major.
	r00 := 1 - 2*(y*y+z*z)
	r10 := 2 * (x*y + w*z)
	r20 := 2 * (x*z - w*y)
	r21 := 2 * (y*z + w*x)
	r22 := 1 - 2*(x*x+y*y)

	cosYaw := math.Hypot(r00, r10)
	yaw := math.Atan2(-r20, cosYaw)

	var pitch, roll float64
	if cosYaw > gimbalEpsilon {
		pitch = math.Atan2(r21, r22)
		roll = math.Atan2(r10, r00)
	} else {
		r11 := 1 - 2*(x*x+z*z)
		r12 := 2 * (y*z - w*x)
		pitch = math.Atan2(-r12, r11)
	}

	return mgl32.Vec3{
		float32(pitch * 180 / math.Pi),
		float32(yaw * 180 / math.Pi),
		float32(roll * 180 / math.Pi),
	}
}

// QuatApproxEqual reports whether a and b describe the same rotation within eps,
// treating q and -q as equal.
func QuatApproxEqual(a, b mgl32.Quat, eps float32) bool {
	if a.Dot(b) < 0 {
		b = mgl32.Quat{W: -b.W, V: b.V.Mul(-1)}
	}
	return a.ApproxEqualThreshold(b, eps)
}
