package body

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Contact describes a touch from the receiving body's point of view: Normal
// points from the receiver toward Other.
type Contact struct {
	Other  *Body
	Point  mgl64.Vec3
	Normal mgl64.Vec3
	Depth  float64
}

type listeners struct {
	contact      []func(Contact)
	endAll       []func(other *Body)
	contactStart []func(other *Body)
	contactCont  []func(other *Body)
	contactEnd   []func(other *Body)
}

// OnContact fires when a new point joins a manifold involving b.
func (b *Body) OnContact(fn func(Contact)) {
	b.listeners.contact = append(b.listeners.contact, fn)
}

// OnEndAllContact fires when the last contact point between b and another
// body is dropped.
func (b *Body) OnEndAllContact(fn func(other *Body)) {
	b.listeners.endAll = append(b.listeners.endAll, fn)
}

// OnContactStart and its siblings fire for ghost bodies as their sensed set
// changes.
func (b *Body) OnContactStart(fn func(other *Body)) {
	b.listeners.contactStart = append(b.listeners.contactStart, fn)
}

func (b *Body) OnContactContinue(fn func(other *Body)) {
	b.listeners.contactCont = append(b.listeners.contactCont, fn)
}

func (b *Body) OnContactEnd(fn func(other *Body)) {
	b.listeners.contactEnd = append(b.listeners.contactEnd, fn)
}

func (b *Body) NotifyContact(c Contact) {
	for _, fn := range b.listeners.contact {
		fn(c)
	}
}

func (b *Body) NotifyEndAllContact(other *Body) {
	for _, fn := range b.listeners.endAll {
		fn(other)
	}
}

// Sense records an overlap seen by a ghost body during this tick. c is from
// the ghost's point of view; the deepest contact per body wins.
func (b *Body) Sense(c Contact) {
	if b.sensed == nil || c.Other == nil {
		return
	}
	if prev, ok := b.sensed[c.Other.ID]; ok && prev.Depth >= c.Depth {
		return
	}
	b.sensed[c.Other.ID] = c
}

// Forget drops other from both sensed sets without firing events, used when
// other leaves the world.
func (b *Body) Forget(other *Body) {
	if b.sensed != nil {
		delete(b.sensed, other.ID)
		delete(b.prevSense, other.ID)
	}
}

// Sensed is the ghost's overlap set for the current tick.
func (b *Body) Sensed() []*Body {
	contacts := sortedContacts(b.sensed)
	out := make([]*Body, len(contacts))
	for i, c := range contacts {
		out[i] = c.Other
	}
	return out
}

// DiffSensed compares this tick's sensed set against the previous tick,
// fires start/continue/end listeners and rolls the sets over. Ended contacts
// carry the last data seen for the pair. Results are ordered by body ID.
func (b *Body) DiffSensed() (started, continued, ended []Contact) {
	if b.sensed == nil {
		return nil, nil, nil
	}
	for _, c := range sortedContacts(b.sensed) {
		if _, ok := b.prevSense[c.Other.ID]; ok {
			continued = append(continued, c)
		} else {
			started = append(started, c)
		}
	}
	for _, c := range sortedContacts(b.prevSense) {
		if _, ok := b.sensed[c.Other.ID]; !ok {
			ended = append(ended, c)
		}
	}

	for _, c := range started {
		for _, fn := range b.listeners.contactStart {
			fn(c.Other)
		}
	}
	for _, c := range continued {
		for _, fn := range b.listeners.contactCont {
			fn(c.Other)
		}
	}
	for _, c := range ended {
		for _, fn := range b.listeners.contactEnd {
			fn(c.Other)
		}
	}

	b.prevSense, b.sensed = b.sensed, b.prevSense
	clear(b.sensed)
	return started, continued, ended
}

func sortedContacts(set map[uint32]Contact) []Contact {
	out := make([]Contact, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Other.ID < out[j].Other.ID })
	return out
}
