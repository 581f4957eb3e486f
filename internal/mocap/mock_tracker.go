package mocap

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/umarshaikh/physiosync/internal/engine"
)

// MockTracker is a test implementation of the PoseTracker interface.
// It plays back a scripted sequence of wrist positions.
type MockTracker struct {
	mu     sync.Mutex
	points []engine.Point3D
	index  int
	loop   bool
	err    error
}

// NewMockTracker creates a tracker that returns the given wrist
// positions in order. With loop set, the sequence repeats.
func NewMockTracker(points []engine.Point3D, loop bool) *MockTracker {
	return &MockTracker{
		points: points,
		loop:   loop,
	}
}

// SetError sets the error that will be returned by Track.
func (m *MockTracker) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Track returns the next scripted wrist position. Once the sequence is
// exhausted (and loop is off) it reports no pose detected.
func (m *MockTracker) Track(frame *gocv.Mat) (engine.Point3D, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return engine.Point3D{}, false, m.err
	}

	if m.index >= len(m.points) {
		if !m.loop || len(m.points) == 0 {
			return engine.Point3D{}, false, nil
		}
		m.index = 0
	}

	p := m.points[m.index]
	m.index++
	return p, true, nil
}

// Close is a no-op for the mock tracker.
func (m *MockTracker) Close() error {
	return nil
}
