package mocap

import (
	"gocv.io/x/gocv"

	"github.com/umarshaikh/physiosync/internal/engine"
)

// PoseTracker defines the interface for wrist tracking implementations.
type PoseTracker interface {
	// Track analyzes a video frame and returns the wrist position.
	// The second return value is false when no pose was detected.
	Track(frame *gocv.Mat) (engine.Point3D, bool, error)

	// Close releases any resources held by the tracker.
	Close() error
}

// TrackerConfig holds configuration options for pose tracking.
type TrackerConfig struct {
	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultTrackerConfig returns a TrackerConfig with sensible default values.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
