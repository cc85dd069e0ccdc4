package rigid

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/rigid/body"
	"github.com/gekko3d/rigid/shape"
)

type recordingLogger struct {
	mu    sync.Mutex
	infos []string
	warns []string
}

func (l *recordingLogger) DebugEnabled() bool                { return false }
func (l *recordingLogger) SetDebug(enabled bool)             {}
func (l *recordingLogger) Debugf(format string, args ...any) {}
func (l *recordingLogger) Errorf(format string, args ...any) {}

func (l *recordingLogger) Infof(format string, args ...any) {
	l.mu.Lock()
	l.infos = append(l.infos, fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

func (l *recordingLogger) Warnf(format string, args ...any) {
	l.mu.Lock()
	l.warns = append(l.warns, fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

func newTestBridge(t *testing.T) (*Bridge, *ShapeRegistry) {
	t.Helper()
	w := newTestWorld(t, nil)
	reg := NewShapeRegistry()
	return NewBridge(w, reg), reg
}

func frameBody(f *Frame, key BodyKey) (FrameBody, bool) {
	for _, b := range f.Bodies {
		if b.Key == key {
			return b, true
		}
	}
	return FrameBody{}, false
}

func TestBridgeCreatesAndSteps(t *testing.T) {
	br, reg := newTestBridge(t)
	sphere := reg.Register(shape.NewSphere(0.5))
	ground := reg.Register(shape.NewPlane(10, 10))

	floor := br.CreateBody(BodyDesc{Shape: ground, Mass: body.InfiniteMass})
	ball := br.CreateBody(BodyDesc{Shape: sphere, Mass: 1, Position: mgl64.Vec3{0, 0.45, 0}})
	assert.Nil(t, br.Latest())

	br.Tick(1.0 / 60)
	f := br.Latest()
	require.NotNil(t, f)
	assert.Equal(t, uint64(1), f.Tick)
	require.Len(t, f.Bodies, 2)

	fb, ok := frameBody(f, ball)
	require.True(t, ok)
	assert.Less(t, fb.Position.Y(), 0.5)

	require.NotEmpty(t, f.Events)
	assert.Equal(t, floor, f.Events[0].KeyA)
	assert.Equal(t, ball, f.Events[0].KeyB)
	assert.Equal(t, EventStart, f.Events[0].Kind)

	assert.Same(t, f, br.TakeFrame())
	assert.Nil(t, br.Latest())
}

func TestBridgeCommands(t *testing.T) {
	br, reg := newTestBridge(t)
	sphere := reg.Register(shape.NewSphere(0.5))
	key := br.CreateBody(BodyDesc{Shape: sphere, Mass: 1})
	br.SetGravity(mgl64.Vec3{})
	br.SetTransform(key, mgl64.Vec3{3, 0, 0}, mgl64.QuatIdent())
	br.SetVelocity(key, mgl64.Vec3{0, 0, 6}, mgl64.Vec3{})
	br.Tick(0.5)

	fb, ok := frameBody(br.Latest(), key)
	require.True(t, ok)
	assert.InDelta(t, 3, fb.Position.X(), 1e-9)
	assert.InDelta(t, 3, fb.Position.Z(), 1e-9)

	br.ApplyImpulse(key, mgl64.Vec3{0, 0, -6}, mgl64.Vec3{3, 0, 3})
	br.Tick(0.5)
	fb, _ = frameBody(br.Latest(), key)
	assert.InDelta(t, 0, fb.LinearVelocity.Z(), 1e-9)

	br.RemoveBody(key)
	br.Tick(0.5)
	_, ok = frameBody(br.Latest(), key)
	assert.False(t, ok)
}

func TestBridgeLogsFailedCommands(t *testing.T) {
	br, _ := newTestBridge(t)
	logger := &recordingLogger{}
	br.SetLogger(logger)

	br.CreateBody(BodyDesc{Shape: ShapeID("missing"), Mass: 1})
	br.ApplyForce(BodyKey("nobody"), mgl64.Vec3{1, 0, 0})
	br.Tick(1.0 / 60)
	assert.Len(t, logger.warns, 2)
	assert.Empty(t, br.Latest().Bodies)
}

func TestBridgeRun(t *testing.T) {
	br, reg := newTestBridge(t)
	key := br.CreateBody(BodyDesc{Shape: reg.Register(shape.NewSphere(1)), Mass: 1})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- br.Run(ctx) }()

	require.Eventually(t, func() bool {
		f := br.Latest()
		return f != nil && f.Tick >= 3
	}, 2*time.Second, 5*time.Millisecond)
	assert.Error(t, br.Run(ctx), "second Run must refuse")

	cancel()
	require.NoError(t, <-done)
	_, ok := frameBody(br.Latest(), key)
	assert.True(t, ok)
}

func TestShapeRegistry(t *testing.T) {
	reg := NewShapeRegistry()
	box := shape.NewBox(mgl64.Vec3{1, 1, 1})
	a := reg.Register(box)
	b := reg.Register(box)
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, reg.Len())

	got, ok := reg.Get(a)
	require.True(t, ok)
	assert.Same(t, box, got)

	reg.Remove(a)
	_, ok = reg.Get(a)
	assert.False(t, ok)
	assert.Equal(t, 1, reg.Len())
}
