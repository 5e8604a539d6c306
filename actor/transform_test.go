package actor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func vec3Equal(a, b mgl64.Vec3, tolerance float64) bool {
	return math.Abs(a.X()-b.X()) < tolerance &&
		math.Abs(a.Y()-b.Y()) < tolerance &&
		math.Abs(a.Z()-b.Z()) < tolerance
}

func floatEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

func TestTransform_ApplyAndInverse(t *testing.T) {
	pose := Transform{
		Position: mgl64.Vec3{1, 2, 3},
		Rotation: mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1}),
	}

	world := pose.Apply(mgl64.Vec3{1, 0, 0})
	if !vec3Equal(world, mgl64.Vec3{1, 3, 3}, 1e-9) {
		t.Errorf("Expected (1,3,3), got %v", world)
	}

	local := pose.ApplyInverse(world)
	if !vec3Equal(local, mgl64.Vec3{1, 0, 0}, 1e-9) {
		t.Errorf("Expected round trip to (1,0,0), got %v", local)
	}

	inv := pose.Inverse()
	if !vec3Equal(inv.Apply(world), mgl64.Vec3{1, 0, 0}, 1e-9) {
		t.Errorf("Inverse transform should undo Apply")
	}
}

func TestTransform_Mul(t *testing.T) {
	parent := Transform{
		Position: mgl64.Vec3{10, 0, 0},
		Rotation: mgl64.QuatRotate(math.Pi, mgl64.Vec3{0, 0, 1}),
	}
	child := NewTransformAt(mgl64.Vec3{1, 0, 0})

	composed := parent.Mul(child)
	if !vec3Equal(composed.Position, mgl64.Vec3{9, 0, 0}, 1e-9) {
		t.Errorf("Expected child origin at (9,0,0), got %v", composed.Position)
	}

	point := mgl64.Vec3{0, 1, 0}
	if !vec3Equal(composed.Apply(point), parent.Apply(child.Apply(point)), 1e-9) {
		t.Errorf("Composition should match applying child then parent")
	}
}

func TestTransform_ZeroRotationIsIdentity(t *testing.T) {
	pose := Transform{Position: mgl64.Vec3{0, 0, 5}}

	if got := pose.Apply(mgl64.Vec3{1, 1, 1}); !vec3Equal(got, mgl64.Vec3{1, 1, 6}, 1e-12) {
		t.Errorf("Expected (1,1,6), got %v", got)
	}
	if !pose.IsFinite() {
		t.Errorf("Literal transform should be finite")
	}

	pose.Position[0] = math.NaN()
	if pose.IsFinite() {
		t.Errorf("NaN position should not be finite")
	}
}
