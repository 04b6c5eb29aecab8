package sim

import (
	"errors"
	"testing"

	"github.com/voxhull/collider-uploader/pkg/geom"
	"github.com/voxhull/collider-uploader/pkg/math"
)

// floorBody is a 10x1x10 slab with its top face at Y=0.
func floorBody() geom.NamedBody {
	return geom.NamedBody{
		Name: "floor",
		Kind: geom.BodyHull,
		Mesh: geom.Mesh{Positions: []math.Vec3{
			{X: -5, Y: -1, Z: -5},
			{X: 5, Y: 0, Z: 5},
		}},
	}
}

func TestAddStaticBodyEmpty(t *testing.T) {
	w := NewWorld()
	if err := w.AddStaticBody(geom.NamedBody{Name: "void"}); err == nil {
		t.Fatal("expected error for body without points")
	}
}

func TestAddPlayerTwice(t *testing.T) {
	w := NewWorld()
	if err := w.AddPlayer("p1", math.Vec3{}); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}
	if err := w.AddPlayer("p1", math.Vec3{}); !errors.Is(err, ErrPlayerExists) {
		t.Fatalf("expected ErrPlayerExists, got %v", err)
	}
}

func TestMoveUnknownPlayer(t *testing.T) {
	w := NewWorld()
	if err := w.MovePlayer("ghost", math.Vec3{X: 1}, false); !errors.Is(err, ErrPlayerUnknown) {
		t.Fatalf("expected ErrPlayerUnknown, got %v", err)
	}
}

func TestPlayerFallsUnderGravity(t *testing.T) {
	w := NewWorld()
	if err := w.AddPlayer("p1", math.Vec3{Y: 10}); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}

	for i := 0; i < 10; i++ {
		w.Step(1.0 / 60.0)
	}

	p, ok := w.PlayerState("p1")
	if !ok {
		t.Fatal("player disappeared")
	}
	if p.Position.Y >= 10 {
		t.Errorf("player should have fallen, still at Y=%v", p.Position.Y)
	}
	if p.Velocity.Y >= 0 {
		t.Errorf("expected downward velocity, got %v", p.Velocity.Y)
	}
}

func TestPlayerLandsOnStaticBody(t *testing.T) {
	w := NewWorld()
	if err := w.AddStaticBody(floorBody()); err != nil {
		t.Fatalf("AddStaticBody: %v", err)
	}
	if err := w.AddPlayer("p1", math.Vec3{Y: 2}); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}

	for i := 0; i < 300; i++ {
		w.Step(1.0 / 60.0)
	}

	p, _ := w.PlayerState("p1")
	if !p.Grounded {
		t.Fatal("player should be grounded on the floor")
	}
	// Feet rest on the slab top: center sits one half extent above Y=0.
	want := playerHalfExtents.Y
	if diff := p.Position.Y - want; diff < -0.01 || diff > 0.01 {
		t.Errorf("expected resting Y near %v, got %v", want, p.Position.Y)
	}
	if p.Velocity.Y != 0 {
		t.Errorf("resting player should have zero vertical velocity, got %v", p.Velocity.Y)
	}
}

func TestMovePlayerSpeed(t *testing.T) {
	w := NewWorld()
	if err := w.AddPlayer("p1", math.Vec3{}); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}

	// Oversized direction vectors are normalized to the fixed speed.
	if err := w.MovePlayer("p1", math.Vec3{X: 100, Z: 0}, false); err != nil {
		t.Fatalf("MovePlayer: %v", err)
	}
	p, _ := w.PlayerState("p1")
	if p.Velocity.X != PlayerSpeed {
		t.Errorf("expected horizontal speed %v, got %v", PlayerSpeed, p.Velocity.X)
	}

	// Zero direction stops horizontal movement.
	if err := w.MovePlayer("p1", math.Vec3{}, false); err != nil {
		t.Fatalf("MovePlayer: %v", err)
	}
	p, _ = w.PlayerState("p1")
	if p.Velocity.X != 0 || p.Velocity.Z != 0 {
		t.Errorf("expected stop, got velocity %v", p.Velocity)
	}
}

func TestJumpOnlyFromGround(t *testing.T) {
	w := NewWorld()
	if err := w.AddStaticBody(floorBody()); err != nil {
		t.Fatalf("AddStaticBody: %v", err)
	}
	if err := w.AddPlayer("p1", math.Vec3{Y: 5}); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}

	// Mid-air jump does nothing.
	if err := w.MovePlayer("p1", math.Vec3{}, true); err != nil {
		t.Fatalf("MovePlayer: %v", err)
	}
	p, _ := w.PlayerState("p1")
	if p.Velocity.Y > 0 {
		t.Error("mid-air jump should not apply impulse")
	}

	// Land, then jump.
	for i := 0; i < 300; i++ {
		w.Step(1.0 / 60.0)
	}
	p, _ = w.PlayerState("p1")
	if !p.Grounded {
		t.Fatal("player should have landed")
	}
	if err := w.MovePlayer("p1", math.Vec3{}, true); err != nil {
		t.Fatalf("MovePlayer: %v", err)
	}
	p, _ = w.PlayerState("p1")
	if p.Velocity.Y != JumpImpulse {
		t.Errorf("expected jump impulse %v, got %v", JumpImpulse, p.Velocity.Y)
	}
}

func TestRemovePlayer(t *testing.T) {
	w := NewWorld()
	if err := w.AddPlayer("p1", math.Vec3{}); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}
	w.RemovePlayer("p1")
	if _, ok := w.PlayerState("p1"); ok {
		t.Error("removed player should be gone")
	}
	w.RemovePlayer("p1") // no-op
}

func TestWallBlocksHorizontalMovement(t *testing.T) {
	w := NewWorld()
	if err := w.AddStaticBody(floorBody()); err != nil {
		t.Fatalf("AddStaticBody: %v", err)
	}
	wall := geom.NamedBody{
		Name: "wall",
		Kind: geom.BodyHull,
		Mesh: geom.Mesh{Positions: []math.Vec3{
			{X: 2, Y: 0, Z: -5},
			{X: 3, Y: 5, Z: 5},
		}},
	}
	if err := w.AddStaticBody(wall); err != nil {
		t.Fatalf("AddStaticBody: %v", err)
	}
	if err := w.AddPlayer("p1", math.Vec3{Y: playerHalfExtents.Y}); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}

	for i := 0; i < 600; i++ {
		if err := w.MovePlayer("p1", math.Vec3{X: 1}, false); err != nil {
			t.Fatalf("MovePlayer: %v", err)
		}
		w.Step(1.0 / 60.0)
	}

	p, _ := w.PlayerState("p1")
	if p.Position.X >= 2 {
		t.Errorf("wall should stop the player before X=2, got X=%v", p.Position.X)
	}
}
