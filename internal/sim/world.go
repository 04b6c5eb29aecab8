// Package sim hosts the physics world that uploaded collision bodies
// feed into. The world is owned by whoever constructs it and is stepped
// by an external tick; all mutation goes through its methods under one
// lock, so there is a single writer by construction.
package sim

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/voxhull/collider-uploader/internal/logger"
	"github.com/voxhull/collider-uploader/pkg/geom"
	"github.com/voxhull/collider-uploader/pkg/math"
)

const (
	// PlayerSpeed is the horizontal movement speed in units per second.
	PlayerSpeed float32 = 3.0
	// JumpImpulse is the vertical velocity applied by a jump.
	JumpImpulse float32 = 5.0
)

// DefaultGravity points down the Y axis.
var DefaultGravity = math.Vec3{Y: -10}

// playerHalfExtents approximates the player capsule with a box.
var playerHalfExtents = math.Vec3{X: 0.3, Y: 0.9, Z: 0.3}

var (
	ErrPlayerExists  = errors.New("player already exists")
	ErrPlayerUnknown = errors.New("player unknown")
)

// aabb is an axis-aligned box in world space.
type aabb struct {
	min, max math.Vec3
}

func (b aabb) overlaps(o aabb) bool {
	return b.min.X < o.max.X && b.max.X > o.min.X &&
		b.min.Y < o.max.Y && b.max.Y > o.min.Y &&
		b.min.Z < o.max.Z && b.max.Z > o.min.Z
}

// Player is a dynamic body driven by movement commands.
type Player struct {
	ID       string
	Position math.Vec3
	Velocity math.Vec3
	Grounded bool
}

func (p *Player) box() aabb {
	return aabb{
		min: p.Position.Sub(playerHalfExtents),
		max: p.Position.Add(playerHalfExtents),
	}
}

// World simulates players against static collision geometry. Static
// bodies never move; players integrate under gravity and are pushed out
// of static boxes along the axis of least penetration.
type World struct {
	mu      sync.Mutex
	gravity math.Vec3
	statics []aabb
	players map[string]*Player
}

// NewWorld creates an empty world with default gravity.
func NewWorld() *World {
	return &World{
		gravity: DefaultGravity,
		players: make(map[string]*Player),
	}
}

// SetGravity replaces the gravity vector.
func (w *World) SetGravity(g math.Vec3) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.gravity = g
}

// AddStaticBody registers a collision body as immovable geometry. The
// body's bounding box stands in for its exact shape.
func (w *World) AddStaticBody(body geom.NamedBody) error {
	if len(body.Mesh.Positions) == 0 {
		return fmt.Errorf("body %q has no points", body.Name)
	}

	box := aabb{min: body.Mesh.Positions[0], max: body.Mesh.Positions[0]}
	for _, p := range body.Mesh.Positions[1:] {
		box.min.X = min32(box.min.X, p.X)
		box.min.Y = min32(box.min.Y, p.Y)
		box.min.Z = min32(box.min.Z, p.Z)
		box.max.X = max32(box.max.X, p.X)
		box.max.Y = max32(box.max.Y, p.Y)
		box.max.Z = max32(box.max.Z, p.Z)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.statics = append(w.statics, box)

	logger.L().Debug("static body added",
		zap.String("name", body.Name),
		zap.Int("statics", len(w.statics)),
	)
	return nil
}

// AddPlayer spawns a player at the given position.
func (w *World) AddPlayer(id string, pos math.Vec3) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.players[id]; ok {
		return fmt.Errorf("player %q: %w", id, ErrPlayerExists)
	}
	w.players[id] = &Player{ID: id, Position: pos}
	return nil
}

// RemovePlayer despawns a player. Removing an unknown player is a no-op.
func (w *World) RemovePlayer(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.players, id)
}

// MovePlayer sets a player's horizontal velocity from a direction and
// optionally jumps. The direction's Y component is ignored; jumping only
// works from the ground.
func (w *World) MovePlayer(id string, dir math.Vec3, jump bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[id]
	if !ok {
		return fmt.Errorf("player %q: %w", id, ErrPlayerUnknown)
	}

	flat := math.Vec3{X: dir.X, Z: dir.Z}
	if flat.Length() > 0 {
		flat = flat.Normalize().Scale(PlayerSpeed)
	}
	p.Velocity.X = flat.X
	p.Velocity.Z = flat.Z

	if jump && p.Grounded {
		p.Velocity.Y = JumpImpulse
		p.Grounded = false
	}
	return nil
}

// PlayerState returns a snapshot of a player.
func (w *World) PlayerState(id string) (Player, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[id]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

// Step advances the simulation by dt seconds: gravity, integration,
// then push-out against every static box along the axis of least
// penetration.
func (w *World) Step(dt float32) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, p := range w.players {
		p.Velocity = p.Velocity.Add(w.gravity.Scale(dt))
		p.Position = p.Position.Add(p.Velocity.Scale(dt))
		p.Grounded = false

		for _, s := range w.statics {
			box := p.box()
			if !box.overlaps(s) {
				continue
			}
			w.resolve(p, box, s)
		}
	}
}

// resolve pushes a player out of a static box along the smallest
// overlap axis and kills velocity on that axis. A push up means the
// player landed on the box.
func (w *World) resolve(p *Player, box, s aabb) {
	overlapX := min32(box.max.X, s.max.X) - max32(box.min.X, s.min.X)
	overlapY := min32(box.max.Y, s.max.Y) - max32(box.min.Y, s.min.Y)
	overlapZ := min32(box.max.Z, s.max.Z) - max32(box.min.Z, s.min.Z)
	if overlapX <= 0 || overlapY <= 0 || overlapZ <= 0 {
		return
	}

	switch {
	case overlapX <= overlapY && overlapX <= overlapZ:
		if p.Position.X < (s.min.X+s.max.X)/2 {
			p.Position.X -= overlapX
		} else {
			p.Position.X += overlapX
		}
		p.Velocity.X = 0
	case overlapY <= overlapX && overlapY <= overlapZ:
		if p.Position.Y < (s.min.Y+s.max.Y)/2 {
			p.Position.Y -= overlapY
		} else {
			p.Position.Y += overlapY
			p.Grounded = true
		}
		p.Velocity.Y = 0
	default:
		if p.Position.Z < (s.min.Z+s.max.Z)/2 {
			p.Position.Z -= overlapZ
		} else {
			p.Position.Z += overlapZ
		}
		p.Velocity.Z = 0
	}
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
