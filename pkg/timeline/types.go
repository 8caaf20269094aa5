// Package timeline models exercise choreography as a four-track
// timeline (animation phases, speech, visual cues, generic events)
// and plays it back on a virtual clock with tempo, loop, pause and
// seek, emitting typed events on an event bus.
package timeline

import (
	"strings"
	"time"
)

// PhaseType classifies an animation phase for downstream consumers.
type PhaseType string

// Animation phase types.
const (
	PhaseMovement   PhaseType = "movement"
	PhaseHold       PhaseType = "hold"
	PhaseRest       PhaseType = "rest"
	PhaseTransition PhaseType = "transition"
)

// InferPhaseType derives a phase type from a phase name. It is a pure
// function shared by the authoring convenience API and track
// evaluation.
func InferPhaseType(phase string) PhaseType {
	name := strings.ToLower(phase)
	switch {
	case strings.Contains(name, "hold") || strings.Contains(name, "pause"):
		return PhaseHold
	case strings.Contains(name, "rest") || strings.Contains(name, "relax") || strings.Contains(name, "idle"):
		return PhaseRest
	case strings.Contains(name, "transition") || strings.Contains(name, "prepare") || strings.Contains(name, "setup"):
		return PhaseTransition
	default:
		return PhaseMovement
	}
}

// Easing names an interpolation curve for the rendering collaborator.
type Easing string

// Easing curves.
const (
	EaseLinear Easing = "linear"
	EaseIn     Easing = "easeIn"
	EaseOut    Easing = "easeOut"
	EaseInOut  Easing = "easeInOut"
)

// AnimationPhase is one item on the animation track, active over
// [Start, End).
type AnimationPhase struct {
	Start       time.Duration `json:"start"`
	End         time.Duration `json:"end"`
	Phase       string        `json:"phase"`
	Type        PhaseType     `json:"type"`
	Description string        `json:"description,omitempty"`
	Easing      Easing        `json:"easing,omitempty"`
}

// Viseme is a mouth-shape sub-event within a speech item, offset from
// the speech start.
type Viseme struct {
	Offset time.Duration `json:"offset"`
	Shape  string        `json:"shape"`
}

// SpeechItem is one spoken prompt on the speech track. The prompt
// fires once at Start+PreDelay and ends Duration later.
type SpeechItem struct {
	Start    time.Duration `json:"start"`
	Phrase   string        `json:"phrase"`
	Duration time.Duration `json:"duration"`
	PreDelay time.Duration `json:"preDelay,omitempty"`
	Visemes  []Viseme      `json:"visemes,omitempty"`
}

// effectiveStart is when the speech actually begins.
func (s SpeechItem) effectiveStart() time.Duration {
	return s.Start + s.PreDelay
}

// CueType classifies a visual cue for the UI collaborator.
type CueType string

// Cue types.
const (
	CueHighlight CueType = "highlight"
	CueArrow     CueType = "arrow"
	CueWarning   CueType = "warning"
)

// Cue is one item on the visual-cue track, active over [Start, End).
// A zero End keeps the cue active until the end of the timeline.
type Cue struct {
	Start       time.Duration `json:"start"`
	End         time.Duration `json:"end,omitempty"`
	ID          string        `json:"id"`
	Type        CueType       `json:"type"`
	TargetJoint string        `json:"targetJoint,omitempty"`
}

// EventItem is a generic one-shot item on the event track. Name
// becomes the bus event type when it fires.
type EventItem struct {
	Time time.Duration  `json:"time"`
	Name string         `json:"name"`
	Data map[string]any `json:"data,omitempty"`
}

// Tracks holds the four parallel tracks. Items within each track are
// kept sorted by start time.
type Tracks struct {
	Animation []AnimationPhase `json:"animation"`
	Speech    []SpeechItem     `json:"speech"`
	Cues      []Cue            `json:"cues"`
	Events    []EventItem      `json:"events"`
}

// Timeline is a complete piece of exercise choreography. Author it
// once through the Add* methods, then hand it to an Orchestrator.
type Timeline struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration"`
	Loop     bool          `json:"loop"`
	Tempo    float64       `json:"tempo"`
	Tracks   Tracks        `json:"tracks"`
}

// phaseAt returns the animation phase containing t, if any.
func (tl *Timeline) phaseAt(t time.Duration) (AnimationPhase, bool) {
	for _, p := range tl.Tracks.Animation {
		if t >= p.Start && t < p.End {
			return p, true
		}
	}
	return AnimationPhase{}, false
}

// cueEnd resolves a cue's end time, substituting the timeline end for
// open-ended cues.
func (tl *Timeline) cueEnd(c Cue) time.Duration {
	if c.End <= 0 {
		return tl.Duration
	}
	return c.End
}
