package mocap

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/umarshaikh/physiosync/internal/engine"
	"github.com/umarshaikh/physiosync/internal/extract"
)

// Recorder states
const (
	StateIdle      = "idle"
	StateRecording = "recording"
	StateDone      = "done"
	StateError     = "error"
)

// ErrAlreadyRecording is returned by Start while a session is running.
var ErrAlreadyRecording = errors.New("recording already in progress")

// Sample is one tracked wrist position with its capture time.
type Sample struct {
	TimestampMs int64          `json:"timestamp_ms"`
	Point       engine.Point3D `json:"point"`
}

// Status reports the recorder's current state. After a finished session
// File names the recording relative to the recordings directory.
type Status struct {
	State     string `json:"state"`
	File      string `json:"file,omitempty"`
	Samples   int    `json:"samples"`
	ElapsedMs int64  `json:"elapsed_ms"`
	Error     string `json:"error,omitempty"`
}

// Recorder runs timed capture sessions: it pulls frames from the
// camera, tracks the wrist in each one, and writes the collected
// trajectory to a timestamped CSV file in the recordings directory.
type Recorder struct {
	camera  Camera
	tracker PoseTracker
	dir     string

	mu      sync.Mutex
	state   string
	file    string
	samples int
	started time.Time
	elapsed time.Duration
	err     error
	stop    chan struct{}
	done    chan struct{}

	subMu sync.Mutex
	subs  map[chan Sample]struct{}
}

// NewRecorder creates a recorder writing to the given directory.
func NewRecorder(camera Camera, tracker PoseTracker, dir string) *Recorder {
	return &Recorder{
		camera:  camera,
		tracker: tracker,
		dir:     dir,
		state:   StateIdle,
		subs:    make(map[chan Sample]struct{}),
	}
}

// Start begins a capture session that runs for the given duration or
// until Stop is called. Only one session can run at a time.
func (r *Recorder) Start(duration time.Duration) error {
	if duration <= 0 {
		return fmt.Errorf("invalid duration %v", duration)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateRecording {
		return ErrAlreadyRecording
	}

	if err := r.camera.Open(); err != nil {
		r.state = StateError
		r.err = err
		return err
	}

	r.state = StateRecording
	r.file = ""
	r.samples = 0
	r.err = nil
	r.started = time.Now()
	r.elapsed = 0
	r.stop = make(chan struct{})
	r.done = make(chan struct{})

	go r.run(duration, r.stop, r.done)

	return nil
}

// Stop ends the running session early and waits for the recording file
// to be written. Stopping an idle recorder is a no-op.
func (r *Recorder) Stop() {
	r.mu.Lock()
	if r.state != StateRecording {
		r.mu.Unlock()
		return
	}
	stop, done := r.stop, r.done
	r.mu.Unlock()

	close(stop)
	<-done
}

// Status returns a snapshot of the recorder state.
func (r *Recorder) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Status{
		State:   r.state,
		File:    r.file,
		Samples: r.samples,
	}
	if r.state == StateRecording {
		s.ElapsedMs = time.Since(r.started).Milliseconds()
	} else {
		s.ElapsedMs = r.elapsed.Milliseconds()
	}
	if r.err != nil {
		s.Error = r.err.Error()
	}
	return s
}

// Subscribe returns a channel receiving every tracked sample of the
// running and future sessions. The returned func cancels the
// subscription.
func (r *Recorder) Subscribe() (<-chan Sample, func()) {
	ch := make(chan Sample, 64)

	r.subMu.Lock()
	r.subs[ch] = struct{}{}
	r.subMu.Unlock()

	cancel := func() {
		r.subMu.Lock()
		delete(r.subs, ch)
		r.subMu.Unlock()
	}
	return ch, cancel
}

func (r *Recorder) broadcast(s Sample) {
	r.subMu.Lock()
	defer r.subMu.Unlock()

	for ch := range r.subs {
		select {
		case ch <- s:
		default:
			// Slow subscriber, drop the sample
		}
	}
}

func (r *Recorder) run(duration time.Duration, stop, done chan struct{}) {
	defer close(done)

	interval := time.Second / time.Duration(r.camera.FPS())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	deadline := time.After(duration)
	started := time.Now()

	var traj engine.Trajectory
	var timestamps []int64

	var runErr error

capture:
	for {
		select {
		case <-stop:
			break capture
		case <-deadline:
			break capture
		case <-ticker.C:
			frame, err := r.camera.ReadFrame()
			if err != nil {
				runErr = err
				break capture
			}

			point, ok, err := r.tracker.Track(frame)
			frame.Close()
			if err != nil {
				runErr = err
				break capture
			}
			if !ok {
				continue // no pose in this frame
			}

			sample := Sample{
				TimestampMs: time.Since(started).Milliseconds(),
				Point:       point,
			}
			traj = append(traj, point)
			timestamps = append(timestamps, sample.TimestampMs)

			r.mu.Lock()
			r.samples = len(traj)
			r.mu.Unlock()

			r.broadcast(sample)
		}
	}

	elapsed := time.Since(started)
	r.camera.Close()

	file := ""
	if runErr == nil {
		file, runErr = r.save(traj, timestamps)
	}

	r.mu.Lock()
	r.elapsed = elapsed
	r.samples = len(traj)
	if runErr != nil {
		r.state = StateError
		r.err = runErr
	} else {
		r.state = StateDone
		r.file = file
	}
	r.mu.Unlock()
}

// save writes the session to a timestamped CSV file and returns its
// name relative to the recordings directory.
func (r *Recorder) save(traj engine.Trajectory, timestamps []int64) (string, error) {
	if len(traj) < 2 {
		return "", fmt.Errorf("only %d samples captured, need at least 2", len(traj))
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", err
	}

	name := "rec_" + time.Now().Format("20060102_150405") + ".csv"

	f, err := os.Create(filepath.Join(r.dir, name))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := extract.WriteCSV(f, traj, timestamps); err != nil {
		return "", err
	}

	return name, nil
}
