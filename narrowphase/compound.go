package narrowphase

import (
	"github.com/gekko3d/rigid/shape"
)

// compoundContacts recurses into every child of a compound A, then maps the
// child-frame anchors back into A's frame.
func (d *Detector) compoundContacts(a, b Proxy) []Contact {
	comp := a.Shape.(*shape.Compound)
	var out []Contact
	for _, child := range comp.Children() {
		cp := a.Child(child)
		if !cp.Shape.LocalAABB().Transform(cp.Transform).Overlaps(b.Shape.LocalAABB().Transform(b.Transform)) {
			continue
		}
		for _, c := range d.Detect(cp, b) {
			c.LocalA = child.Transform.Apply(c.LocalA)
			out = append(out, c)
		}
	}
	return out
}
