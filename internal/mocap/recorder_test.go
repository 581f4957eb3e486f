package mocap

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/umarshaikh/physiosync/internal/engine"
	"github.com/umarshaikh/physiosync/internal/extract"
)

// testFrames builds a small looping frame sequence for the mock camera.
func testFrames(t *testing.T, n int) []*gocv.Mat {
	t.Helper()

	frames := make([]*gocv.Mat, n)
	for i := range frames {
		mat := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
		frames[i] = &mat
	}
	t.Cleanup(func() {
		for _, f := range frames {
			f.Close()
		}
	})
	return frames
}

// wristPath builds a scripted wrist trajectory for the mock tracker.
func wristPath(n int) []engine.Point3D {
	points := make([]engine.Point3D, n)
	for i := range points {
		phase := float64(i) / float64(n) * 2 * math.Pi
		points[i] = engine.Point3D{
			X: math.Sin(phase),
			Y: math.Cos(phase),
			Z: 0.1 * math.Sin(phase),
		}
	}
	return points
}

// waitForFinish polls until the recorder leaves the recording state.
func waitForFinish(t *testing.T, r *Recorder) Status {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		s := r.Status()
		if s.State != StateRecording {
			return s
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("recorder did not finish in time")
	return Status{}
}

func TestRecorder_TimedSessionWritesRecording(t *testing.T) {
	dir := t.TempDir()
	camera := NewMockCamera(testFrames(t, 3), true)
	tracker := NewMockTracker(wristPath(50), true)
	rec := NewRecorder(camera, tracker, dir)

	if got := rec.Status().State; got != StateIdle {
		t.Fatalf("initial state = %q, want %q", got, StateIdle)
	}

	if err := rec.Start(200 * time.Millisecond); err != nil {
		t.Fatalf("failed to start recording: %v", err)
	}

	status := waitForFinish(t, rec)
	if status.State != StateDone {
		t.Fatalf("state = %q (%s), want %q", status.State, status.Error, StateDone)
	}
	if status.File == "" {
		t.Fatal("finished session should name a recording file")
	}
	if status.Samples < 2 {
		t.Fatalf("captured %d samples, want at least 2", status.Samples)
	}

	// The recording must load back through the extraction pipeline
	traj, err := extract.FromFile(filepath.Join(dir, status.File))
	if err != nil {
		t.Fatalf("failed to load recording: %v", err)
	}
	if len(traj) != status.Samples {
		t.Errorf("recording has %d samples, status reports %d", len(traj), status.Samples)
	}
}

func TestRecorder_StopEndsSessionEarly(t *testing.T) {
	dir := t.TempDir()
	camera := NewMockCamera(testFrames(t, 3), true)
	tracker := NewMockTracker(wristPath(50), true)
	rec := NewRecorder(camera, tracker, dir)

	if err := rec.Start(time.Minute); err != nil {
		t.Fatalf("failed to start recording: %v", err)
	}

	// Let a few samples accumulate before stopping
	deadline := time.Now().Add(5 * time.Second)
	for rec.Status().Samples < 3 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	rec.Stop()

	status := rec.Status()
	if status.State != StateDone {
		t.Fatalf("state after stop = %q (%s), want %q", status.State, status.Error, StateDone)
	}
	if camera.IsOpen() {
		t.Error("camera should be closed after the session")
	}
}

func TestRecorder_RejectsConcurrentSessions(t *testing.T) {
	dir := t.TempDir()
	camera := NewMockCamera(testFrames(t, 3), true)
	tracker := NewMockTracker(wristPath(50), true)
	rec := NewRecorder(camera, tracker, dir)

	if err := rec.Start(time.Minute); err != nil {
		t.Fatalf("failed to start recording: %v", err)
	}
	defer rec.Stop()

	if err := rec.Start(time.Minute); err != ErrAlreadyRecording {
		t.Errorf("second start returned %v, want ErrAlreadyRecording", err)
	}
}

func TestRecorder_ErrorWhenNoPoseDetected(t *testing.T) {
	dir := t.TempDir()
	camera := NewMockCamera(testFrames(t, 3), true)
	tracker := NewMockTracker(nil, false) // never detects a pose
	rec := NewRecorder(camera, tracker, dir)

	if err := rec.Start(100 * time.Millisecond); err != nil {
		t.Fatalf("failed to start recording: %v", err)
	}

	status := waitForFinish(t, rec)
	if status.State != StateError {
		t.Fatalf("state = %q, want %q when nothing was tracked", status.State, StateError)
	}
	if status.Error == "" {
		t.Error("error state should carry a message")
	}
}

func TestRecorder_RejectsInvalidDuration(t *testing.T) {
	rec := NewRecorder(NewMockCamera(nil, true), NewMockTracker(nil, false), t.TempDir())

	if err := rec.Start(0); err == nil {
		t.Error("expected error for zero duration")
	}
}

func TestRecorder_SubscribersReceiveSamples(t *testing.T) {
	dir := t.TempDir()
	camera := NewMockCamera(testFrames(t, 3), true)
	tracker := NewMockTracker(wristPath(50), true)
	rec := NewRecorder(camera, tracker, dir)

	samples, cancel := rec.Subscribe()
	defer cancel()

	if err := rec.Start(150 * time.Millisecond); err != nil {
		t.Fatalf("failed to start recording: %v", err)
	}
	waitForFinish(t, rec)

	select {
	case s := <-samples:
		if s.TimestampMs < 0 {
			t.Errorf("sample timestamp = %d, want >= 0", s.TimestampMs)
		}
	default:
		t.Error("subscriber received no samples from the session")
	}
}
