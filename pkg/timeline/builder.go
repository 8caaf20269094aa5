package timeline

import (
	"sort"
	"time"

	"github.com/pkg/errors"
)

// Options configures a new timeline.
type Options struct {
	Loop  bool
	Tempo float64
}

// New creates an empty timeline. A zero tempo defaults to 1.0.
func New(name string, duration time.Duration, opts Options) (*Timeline, error) {
	if name == "" {
		return nil, errors.New("timeline: name is required")
	}
	if duration <= 0 {
		return nil, errors.Errorf("timeline: duration must be positive, got %v", duration)
	}

	tempo := opts.Tempo
	if tempo == 0 {
		tempo = 1.0
	}
	if tempo < minTempo || tempo > maxTempo {
		return nil, errors.Errorf("timeline: tempo %v outside [%v, %v]", tempo, minTempo, maxTempo)
	}

	return &Timeline{
		Name:     name,
		Duration: duration,
		Loop:     opts.Loop,
		Tempo:    tempo,
	}, nil
}

// PhaseOptions carries the optional fields of an animation phase.
type PhaseOptions struct {
	Description string
	Easing      Easing
}

// AddAnimationPhase appends a phase covering [start, end) with an
// explicit phase type.
func (tl *Timeline) AddAnimationPhase(start, end time.Duration, phase string, phaseType PhaseType, opts PhaseOptions) error {
	if phase == "" {
		return errors.New("timeline: phase name is required")
	}
	if err := tl.checkRange(start, end); err != nil {
		return errors.Wrapf(err, "phase %q", phase)
	}

	item := AnimationPhase{
		Start:       start,
		End:         end,
		Phase:       phase,
		Type:        phaseType,
		Description: opts.Description,
		Easing:      opts.Easing,
	}

	idx := sort.Search(len(tl.Tracks.Animation), func(i int) bool {
		return tl.Tracks.Animation[i].Start > start
	})
	tl.Tracks.Animation = append(tl.Tracks.Animation, AnimationPhase{})
	copy(tl.Tracks.Animation[idx+1:], tl.Tracks.Animation[idx:])
	tl.Tracks.Animation[idx] = item
	return nil
}

// AddPhase appends a phase with its type inferred from the name.
func (tl *Timeline) AddPhase(start, end time.Duration, phase string, opts PhaseOptions) error {
	return tl.AddAnimationPhase(start, end, phase, InferPhaseType(phase), opts)
}

// SpeechOptions carries the optional fields of a speech item.
type SpeechOptions struct {
	PreDelay time.Duration
	Visemes  []Viseme
}

// AddSpeech appends a spoken prompt firing at start (plus any
// pre-delay) and lasting the given duration.
func (tl *Timeline) AddSpeech(start time.Duration, phrase string, duration time.Duration, opts SpeechOptions) error {
	if phrase == "" {
		return errors.New("timeline: phrase is required")
	}
	if duration <= 0 {
		return errors.Errorf("timeline: speech duration must be positive, got %v", duration)
	}
	if start < 0 || start > tl.Duration {
		return errors.Errorf("timeline: speech start %v outside [0, %v]", start, tl.Duration)
	}

	item := SpeechItem{
		Start:    start,
		Phrase:   phrase,
		Duration: duration,
		PreDelay: opts.PreDelay,
		Visemes:  opts.Visemes,
	}

	idx := sort.Search(len(tl.Tracks.Speech), func(i int) bool {
		return tl.Tracks.Speech[i].Start > start
	})
	tl.Tracks.Speech = append(tl.Tracks.Speech, SpeechItem{})
	copy(tl.Tracks.Speech[idx+1:], tl.Tracks.Speech[idx:])
	tl.Tracks.Speech[idx] = item
	return nil
}

// AddCue appends a visual cue. A zero end keeps the cue active until
// the end of the timeline.
func (tl *Timeline) AddCue(start time.Duration, cueID string, cueType CueType, targetJoint string, end time.Duration) error {
	if cueID == "" {
		return errors.New("timeline: cue id is required")
	}
	if end > 0 {
		if err := tl.checkRange(start, end); err != nil {
			return errors.Wrapf(err, "cue %q", cueID)
		}
	} else if start < 0 || start > tl.Duration {
		return errors.Errorf("timeline: cue start %v outside [0, %v]", start, tl.Duration)
	}

	item := Cue{
		Start:       start,
		End:         end,
		ID:          cueID,
		Type:        cueType,
		TargetJoint: targetJoint,
	}

	idx := sort.Search(len(tl.Tracks.Cues), func(i int) bool {
		return tl.Tracks.Cues[i].Start > start
	})
	tl.Tracks.Cues = append(tl.Tracks.Cues, Cue{})
	copy(tl.Tracks.Cues[idx+1:], tl.Tracks.Cues[idx:])
	tl.Tracks.Cues[idx] = item
	return nil
}

// AddEvent appends a generic one-shot event firing once at the given
// time.
func (tl *Timeline) AddEvent(at time.Duration, name string, data map[string]any) error {
	if name == "" {
		return errors.New("timeline: event name is required")
	}
	if at < 0 || at > tl.Duration {
		return errors.Errorf("timeline: event time %v outside [0, %v]", at, tl.Duration)
	}

	item := EventItem{Time: at, Name: name, Data: data}

	idx := sort.Search(len(tl.Tracks.Events), func(i int) bool {
		return tl.Tracks.Events[i].Time > at
	})
	tl.Tracks.Events = append(tl.Tracks.Events, EventItem{})
	copy(tl.Tracks.Events[idx+1:], tl.Tracks.Events[idx:])
	tl.Tracks.Events[idx] = item
	return nil
}

func (tl *Timeline) checkRange(start, end time.Duration) error {
	if start < 0 {
		return errors.Errorf("start %v before timeline origin", start)
	}
	if end <= start {
		return errors.Errorf("end %v not after start %v", end, start)
	}
	if end > tl.Duration {
		return errors.Errorf("end %v past timeline duration %v", end, tl.Duration)
	}
	return nil
}
