package rigid

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/body"
	"github.com/gekko3d/rigid/contact"
)

type EventKind uint8

const (
	EventStart EventKind = iota
	EventContinue
	EventEnd
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventContinue:
		return "continue"
	case EventEnd:
		return "end"
	}
	return "unknown"
}

// CollisionEvent reports one touching pair for a tick. Point, Normal and
// Depth come from the deepest contact point. Manifold end events leave them
// zero; sensor end events repeat the last overlap seen.
type CollisionEvent struct {
	Kind  EventKind
	BodyA uint32
	BodyB uint32
	// Sensor marks an overlap reported by a ghost body.
	Sensor bool
	Point  mgl64.Vec3
	// Normal points from A toward B.
	Normal mgl64.Vec3
	Depth  float64
	// RelativeLinear and RelativeAngular are B's velocities minus A's.
	RelativeLinear  mgl64.Vec3
	RelativeAngular mgl64.Vec3
}

func pairEvent(kind EventKind, a, b *body.Body) CollisionEvent {
	return CollisionEvent{
		Kind:            kind,
		BodyA:           a.ID,
		BodyB:           b.ID,
		RelativeLinear:  b.LinearVelocity.Sub(a.LinearVelocity),
		RelativeAngular: b.AngularVelocity.Sub(a.AngularVelocity),
	}
}

func manifoldEvent(kind EventKind, m *contact.Manifold) CollisionEvent {
	e := pairEvent(kind, m.A, m.B)
	if d, ok := m.Deepest(); ok {
		e.Point = d.Point
		e.Normal = d.Normal
		e.Depth = d.Depth
	}
	return e
}

func ghostEvent(kind EventKind, ghost *body.Body, c body.Contact) CollisionEvent {
	e := pairEvent(kind, ghost, c.Other)
	e.Sensor = true
	e.Point = c.Point
	e.Normal = c.Normal
	e.Depth = c.Depth
	return e
}
