package timeline

import (
	"time"

	"github.com/kinesio/go-kinesio/pkg/events"
)

// Bus event types emitted by the orchestrator.
const (
	EventPhaseChange       events.EventType = "PHASE_CHANGE"
	EventAnimationStart    events.EventType = "ANIMATION_START"
	EventAnimationProgress events.EventType = "ANIMATION_PROGRESS"
	EventAnimationComplete events.EventType = "ANIMATION_COMPLETE"
	EventSpeechStart       events.EventType = "SPEECH_START"
	EventSpeechEnd         events.EventType = "SPEECH_END"
	EventVisemeUpdate      events.EventType = "VISEME_UPDATE"
	EventCueTrigger        events.EventType = "CUE_TRIGGER"
	EventCueClear          events.EventType = "CUE_CLEAR"
	EventTempoChange       events.EventType = "TEMPO_CHANGE"
	EventRepCount          events.EventType = "REP_COUNT"
	EventSetCount          events.EventType = "SET_COUNT"
)

// PhaseChange announces a transition to a new animation phase.
type PhaseChange struct {
	At            time.Time
	Phase         string
	PhaseType     PhaseType
	PreviousPhase string
	Position      time.Duration
}

func (PhaseChange) EventType() events.EventType { return EventPhaseChange }
func (e PhaseChange) Timestamp() time.Time      { return e.At }

// AnimationStart announces the start of timeline playback.
type AnimationStart struct {
	At       time.Time
	Timeline string
	Duration time.Duration
}

func (AnimationStart) EventType() events.EventType { return EventAnimationStart }
func (e AnimationStart) Timestamp() time.Time      { return e.At }

// AnimationProgress reports playback position at a throttled cadence.
type AnimationProgress struct {
	At       time.Time
	Position time.Duration
	Progress float64 // 0-1
	Loop     int
}

func (AnimationProgress) EventType() events.EventType { return EventAnimationProgress }
func (e AnimationProgress) Timestamp() time.Time      { return e.At }

// AnimationComplete announces that a non-looping timeline finished.
type AnimationComplete struct {
	At       time.Time
	Timeline string
}

func (AnimationComplete) EventType() events.EventType { return EventAnimationComplete }
func (e AnimationComplete) Timestamp() time.Time      { return e.At }

// SpeechStart asks the speech collaborator to speak a phrase.
type SpeechStart struct {
	At       time.Time
	Phrase   string
	Duration time.Duration
}

func (SpeechStart) EventType() events.EventType { return EventSpeechStart }
func (e SpeechStart) Timestamp() time.Time      { return e.At }

// SpeechEnd announces that a phrase's allotted time elapsed.
type SpeechEnd struct {
	At     time.Time
	Phrase string
}

func (SpeechEnd) EventType() events.EventType { return EventSpeechEnd }
func (e SpeechEnd) Timestamp() time.Time      { return e.At }

// VisemeUpdate drives avatar mouth shapes during speech.
type VisemeUpdate struct {
	At     time.Time
	Phrase string
	Shape  string
}

func (VisemeUpdate) EventType() events.EventType { return EventVisemeUpdate }
func (e VisemeUpdate) Timestamp() time.Time      { return e.At }

// CueTrigger activates a visual cue.
type CueTrigger struct {
	At          time.Time
	CueID       string
	CueType     CueType
	TargetJoint string
}

func (CueTrigger) EventType() events.EventType { return EventCueTrigger }
func (e CueTrigger) Timestamp() time.Time      { return e.At }

// CueClear deactivates a visual cue.
type CueClear struct {
	At    time.Time
	CueID string
}

func (CueClear) EventType() events.EventType { return EventCueClear }
func (e CueClear) Timestamp() time.Time      { return e.At }

// TempoChange announces a new playback tempo.
type TempoChange struct {
	At    time.Time
	Tempo float64
}

func (TempoChange) EventType() events.EventType { return EventTempoChange }
func (e TempoChange) Timestamp() time.Time      { return e.At }

// RepCount reports the updated repetition counter.
type RepCount struct {
	At   time.Time
	Reps int
}

func (RepCount) EventType() events.EventType { return EventRepCount }
func (e RepCount) Timestamp() time.Time      { return e.At }

// SetCount reports the updated set counter.
type SetCount struct {
	At   time.Time
	Sets int
}

func (SetCount) EventType() events.EventType { return EventSetCount }
func (e SetCount) Timestamp() time.Time      { return e.At }

// GenericEvent is a fired event-track item. Its bus type is the
// item's name, so consumers subscribe to exactly the custom events
// they care about.
type GenericEvent struct {
	At   time.Time
	Name string
	Data map[string]any
}

func (e GenericEvent) EventType() events.EventType { return events.EventType(e.Name) }
func (e GenericEvent) Timestamp() time.Time        { return e.At }
