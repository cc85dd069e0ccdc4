package rigid

import (
	"sync"

	"github.com/google/uuid"

	"github.com/gekko3d/rigid/shape"
)

// ShapeID names a registered shape across the bridge boundary.
type ShapeID string

// ShapeRegistry shares read-only shapes between bodies. It is safe for
// concurrent use so hosts can register shapes while a bridge is running.
type ShapeRegistry struct {
	mu     sync.RWMutex
	shapes map[ShapeID]shape.Shape
}

func NewShapeRegistry() *ShapeRegistry {
	return &ShapeRegistry{shapes: make(map[ShapeID]shape.Shape)}
}

func makeShapeID() ShapeID {
	return ShapeID(uuid.NewString())
}

// Register stores s and returns its new ID.
func (r *ShapeRegistry) Register(s shape.Shape) ShapeID {
	id := makeShapeID()
	r.mu.Lock()
	r.shapes[id] = s
	r.mu.Unlock()
	return id
}

func (r *ShapeRegistry) Get(id ShapeID) (shape.Shape, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.shapes[id]
	return s, ok
}

// Remove forgets id. Bodies already built from the shape keep it.
func (r *ShapeRegistry) Remove(id ShapeID) {
	r.mu.Lock()
	delete(r.shapes, id)
	r.mu.Unlock()
}

func (r *ShapeRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.shapes)
}
