// Package pose implements the landmark processing stage of the
// motion-sync pipeline: temporal smoothing, jitter rejection, joint
// angle extraction, and two-source ensemble fusion.
//
// Raw landmarks arrive from upstream pose estimators as normalized 3D
// points. The Processor turns them into velocity-annotated,
// confidence-scored landmarks suitable for the biomechanics stage.
package pose

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Landmark is one tracked anatomical point for a single frame, in a
// normalized coordinate space. Visibility is optional; upstream
// sources that do not report it leave the pointer nil.
type Landmark struct {
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Z          float64  `json:"z"`
	Visibility *float64 `json:"visibility,omitempty"`
}

// Position returns the landmark position as a vector.
func (l Landmark) Position() r3.Vec {
	return r3.Vec{X: l.X, Y: l.Y, Z: l.Z}
}

// VisibilityOr returns the landmark visibility, or def when the
// upstream source did not report one.
func (l Landmark) VisibilityOr(def float64) float64 {
	if l.Visibility == nil {
		return def
	}
	return *l.Visibility
}

// ProcessedLandmark is a smoothed, velocity-annotated landmark.
type ProcessedLandmark struct {
	Position   r3.Vec
	Visibility float64
	Velocity   r3.Vec
	Smoothed   bool
	Confidence float64
}

// JointAngleResult is the angle at a named joint between its two
// adjacent bone vectors.
type JointAngleResult struct {
	Name       string
	Angle      float64 // degrees
	Confidence float64
	Velocity   float64 // degrees per second
}

// Landmark indices for the 33-point full-body topology produced by the
// primary upstream source.
const (
	LandmarkNose           = 0
	LandmarkLeftShoulder   = 11
	LandmarkRightShoulder  = 12
	LandmarkLeftElbow      = 13
	LandmarkRightElbow     = 14
	LandmarkLeftWrist      = 15
	LandmarkRightWrist     = 16
	LandmarkLeftHip        = 23
	LandmarkRightHip       = 24
	LandmarkLeftKnee       = 25
	LandmarkRightKnee      = 26
	LandmarkLeftAnkle      = 27
	LandmarkRightAnkle     = 28
	LandmarkLeftHeel       = 29
	LandmarkRightHeel      = 30
	LandmarkLeftFootIndex  = 31
	LandmarkRightFootIndex = 32

	// LandmarkCount is the size of the full-body skeleton.
	LandmarkCount = 33
)

// frameHistory is a fixed-capacity ring buffer of processed frames,
// used for angular-velocity lookback.
type frameHistory struct {
	frames [][]ProcessedLandmark
	head   int
	count  int
}

func newFrameHistory(capacity int) *frameHistory {
	if capacity < 1 {
		capacity = 1
	}
	return &frameHistory{
		frames: make([][]ProcessedLandmark, capacity),
	}
}

// Push appends a frame, evicting the oldest when full.
func (h *frameHistory) Push(frame []ProcessedLandmark) {
	h.frames[h.head] = frame
	h.head = (h.head + 1) % len(h.frames)
	if h.count < len(h.frames) {
		h.count++
	}
}

// FromLatest returns the frame n steps back from the most recent push
// (n=0 is the most recent). Returns nil if fewer frames are buffered.
func (h *frameHistory) FromLatest(n int) []ProcessedLandmark {
	if n < 0 || n >= h.count {
		return nil
	}
	idx := (h.head - 1 - n + 2*len(h.frames)) % len(h.frames)
	return h.frames[idx]
}

// Len returns the number of buffered frames.
func (h *frameHistory) Len() int {
	return h.count
}

// Reset discards all buffered frames.
func (h *frameHistory) Reset() {
	for i := range h.frames {
		h.frames[i] = nil
	}
	h.head = 0
	h.count = 0
}
