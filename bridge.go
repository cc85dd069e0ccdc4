package rigid

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/gekko3d/rigid/body"
)

// BodyKey is the host-side name of a body created through a Bridge.
type BodyKey string

func makeBodyKey() BodyKey {
	return BodyKey(uuid.NewString())
}

// BodyDesc describes a body to create. Nil material fields keep the body
// defaults.
type BodyDesc struct {
	Shape           ShapeID
	Mass            float64
	Ghost           bool
	Position        mgl64.Vec3
	Rotation        mgl64.Quat
	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3
	Restitution     *float64
	Friction        *float64
	Group           uint32
	Mask            uint32
}

// FrameBody pairs a body's state with its host key.
type FrameBody struct {
	Key BodyKey
	BodyState
}

// FrameEvent is a collision event with host keys.
type FrameEvent struct {
	KeyA BodyKey
	KeyB BodyKey
	CollisionEvent
}

// Frame is everything a host needs after one tick.
type Frame struct {
	Tick   uint64
	Bodies []FrameBody
	Events []FrameEvent
}

type command func(br *Bridge) error

// Bridge runs a World on its own goroutine. Hosts queue commands and read
// frames; nothing else crosses between the two sides.
type Bridge struct {
	world    *World
	registry *ShapeRegistry
	logger   Logger

	mu    sync.Mutex
	queue []command

	latest  atomic.Pointer[Frame]
	running atomic.Bool

	// Owned by the stepping goroutine.
	bodies  map[BodyKey]*body.Body
	keys    map[uint32]BodyKey
	retired []uint32
}

func NewBridge(w *World, registry *ShapeRegistry) *Bridge {
	return &Bridge{
		world:    w,
		registry: registry,
		logger:   w.Logger(),
		bodies:   make(map[BodyKey]*body.Body),
		keys:     make(map[uint32]BodyKey),
	}
}

func (br *Bridge) SetLogger(l Logger) {
	br.logger = orNop(l)
}

func (br *Bridge) push(cmd command) {
	br.mu.Lock()
	br.queue = append(br.queue, cmd)
	br.mu.Unlock()
}

func (br *Bridge) drain() []command {
	br.mu.Lock()
	defer br.mu.Unlock()
	cmds := br.queue
	br.queue = nil
	return cmds
}

// CreateBody queues a new body and returns the key it will have.
func (br *Bridge) CreateBody(desc BodyDesc) BodyKey {
	key := makeBodyKey()
	br.push(func(br *Bridge) error {
		s, ok := br.registry.Get(desc.Shape)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownShape, desc.Shape)
		}
		var b *body.Body
		if desc.Ghost {
			b = body.NewGhost(s)
		} else {
			b = body.NewRigid(s, desc.Mass)
		}
		rot := desc.Rotation
		if rot.Len() == 0 {
			rot = mgl64.QuatIdent()
		}
		b.SetTransform(desc.Position, rot)
		b.SetVelocity(desc.LinearVelocity, desc.AngularVelocity)
		if desc.Restitution != nil {
			b.Restitution = *desc.Restitution
		}
		if desc.Friction != nil {
			b.Friction = *desc.Friction
		}
		b.Group, b.Mask = desc.Group, desc.Mask
		b.UserData = key

		if err := br.world.AddBody(b); err != nil {
			return err
		}
		br.bodies[key] = b
		br.keys[b.ID] = key
		return nil
	})
	return key
}

func (br *Bridge) RemoveBody(key BodyKey) {
	br.push(func(br *Bridge) error {
		b, err := br.lookup(key)
		if err != nil {
			return err
		}
		// The key stays resolvable until the next frame reports the removal.
		br.retired = append(br.retired, b.ID)
		delete(br.bodies, key)
		return br.world.RemoveBody(b)
	})
}

func (br *Bridge) SetTransform(key BodyKey, position mgl64.Vec3, rotation mgl64.Quat) {
	br.withBody(key, func(b *body.Body) { b.SetTransform(position, rotation) })
}

func (br *Bridge) SetVelocity(key BodyKey, linear, angular mgl64.Vec3) {
	br.withBody(key, func(b *body.Body) { b.SetVelocity(linear, angular) })
}

// ApplyForce adds a force for the next tick only.
func (br *Bridge) ApplyForce(key BodyKey, force mgl64.Vec3) {
	br.withBody(key, func(b *body.Body) { b.ApplyForce(force) })
}

func (br *Bridge) ApplyImpulse(key BodyKey, impulse, point mgl64.Vec3) {
	br.withBody(key, func(b *body.Body) { b.ApplyImpulse(impulse, point) })
}

func (br *Bridge) SetGravity(g mgl64.Vec3) {
	br.push(func(br *Bridge) error {
		br.world.SetGravity(g)
		return nil
	})
}

func (br *Bridge) withBody(key BodyKey, fn func(b *body.Body)) {
	br.push(func(br *Bridge) error {
		b, err := br.lookup(key)
		if err != nil {
			return err
		}
		fn(b)
		return nil
	})
}

func (br *Bridge) lookup(key BodyKey) (*body.Body, error) {
	b, ok := br.bodies[key]
	if !ok {
		return nil, fmt.Errorf("%w: key %s", ErrUnknownBody, key)
	}
	return b, nil
}

// Latest returns the most recent frame without consuming it, or nil before
// the first tick.
func (br *Bridge) Latest() *Frame {
	return br.latest.Load()
}

// TakeFrame returns the most recent frame and clears it, so a host polling
// every render frame only sees each tick once.
func (br *Bridge) TakeFrame() *Frame {
	return br.latest.Swap(nil)
}

// Tick applies queued commands, steps the world by dt and publishes a frame.
// Run calls it on a ticker; tests may call it directly.
func (br *Bridge) Tick(dt float64) {
	for _, cmd := range br.drain() {
		if err := cmd(br); err != nil {
			br.logger.Warnf("bridge command failed: %v", err)
		}
	}
	br.world.Step(dt)
	br.latest.Store(br.frame())
}

func (br *Bridge) frame() *Frame {
	f := &Frame{Tick: br.world.Tick()}
	for _, s := range br.world.Snapshot() {
		f.Bodies = append(f.Bodies, FrameBody{Key: br.keys[s.ID], BodyState: s})
	}
	for _, e := range br.world.Events() {
		f.Events = append(f.Events, FrameEvent{KeyA: br.keys[e.BodyA], KeyB: br.keys[e.BodyB], CollisionEvent: e})
	}
	for _, id := range br.retired {
		delete(br.keys, id)
	}
	br.retired = br.retired[:0]
	return f
}

// Run steps the world at the configured tick rate until ctx is done. Only
// one Run may be active per bridge.
func (br *Bridge) Run(ctx context.Context) error {
	if !br.running.CompareAndSwap(false, true) {
		return fmt.Errorf("rigid: bridge already running")
	}
	defer br.running.Store(false)

	rate := br.world.Config().TickRate
	dt := 1.0 / rate
	ticker := time.NewTicker(time.Duration(float64(time.Second) / rate))
	defer ticker.Stop()

	br.logger.Infof("bridge started at %.0f Hz", rate)
	for {
		select {
		case <-ctx.Done():
			br.logger.Infof("bridge stopped after %d ticks", br.world.Tick())
			return nil
		case <-ticker.C:
			br.Tick(dt)
		}
	}
}
