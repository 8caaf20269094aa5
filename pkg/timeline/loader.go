package timeline

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// Choreography file schema. Times are plain milliseconds so content
// authors never have to think in nanoseconds.
type timelineFile struct {
	Name       string           `json:"name"`
	DurationMs float64          `json:"durationMs"`
	Loop       bool             `json:"loop"`
	Tempo      float64          `json:"tempo"`
	Animation  []animationEntry `json:"animation,omitempty"`
	Speech     []speechEntry    `json:"speech,omitempty"`
	Cues       []cueEntry       `json:"cues,omitempty"`
	Events     []eventEntry     `json:"events,omitempty"`
}

type animationEntry struct {
	StartMs     float64 `json:"startMs"`
	EndMs       float64 `json:"endMs"`
	Phase       string  `json:"phase"`
	Type        string  `json:"type,omitempty"`
	Description string  `json:"description,omitempty"`
	Easing      string  `json:"easing,omitempty"`
}

type speechEntry struct {
	StartMs    float64       `json:"startMs"`
	Phrase     string        `json:"phrase"`
	DurationMs float64       `json:"durationMs"`
	PreDelayMs float64       `json:"preDelayMs,omitempty"`
	Visemes    []visemeEntry `json:"visemes,omitempty"`
}

type visemeEntry struct {
	OffsetMs float64 `json:"offsetMs"`
	Shape    string  `json:"shape"`
}

type cueEntry struct {
	StartMs     float64 `json:"startMs"`
	EndMs       float64 `json:"endMs,omitempty"`
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	TargetJoint string  `json:"targetJoint,omitempty"`
}

type eventEntry struct {
	TimeMs float64        `json:"timeMs"`
	Name   string         `json:"name"`
	Data   map[string]any `json:"data,omitempty"`
}

// LoadFile loads a choreography timeline from a JSON file on disk.
func LoadFile(path string) (*Timeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "timeline: read choreography file")
	}
	return Parse(data)
}

// LoadFS loads a choreography timeline from a file system, allowing
// embedded choreography packs.
func LoadFS(fsys fs.FS, path string) (*Timeline, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.Wrap(err, "timeline: read choreography file")
	}
	return Parse(data)
}

// LoadDirectory loads every *.json choreography file in a directory.
func LoadDirectory(dir string) ([]*Timeline, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, errors.Wrap(err, "timeline: list choreography files")
	}

	var timelines []*Timeline
	for _, file := range files {
		tl, err := LoadFile(file)
		if err != nil {
			return nil, errors.Wrapf(err, "timeline: load %s", file)
		}
		timelines = append(timelines, tl)
	}
	return timelines, nil
}

// Parse builds a Timeline from choreography JSON, running every item
// through the authoring API so file content gets the same validation
// as programmatic authoring.
func Parse(data []byte) (*Timeline, error) {
	var raw timelineFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "timeline: parse choreography JSON")
	}

	tl, err := New(raw.Name, ms(raw.DurationMs), Options{Loop: raw.Loop, Tempo: raw.Tempo})
	if err != nil {
		return nil, err
	}

	for _, a := range raw.Animation {
		phaseType := PhaseType(a.Type)
		if a.Type == "" {
			phaseType = InferPhaseType(a.Phase)
		}
		opts := PhaseOptions{Description: a.Description, Easing: Easing(a.Easing)}
		if err := tl.AddAnimationPhase(ms(a.StartMs), ms(a.EndMs), a.Phase, phaseType, opts); err != nil {
			return nil, err
		}
	}

	for _, s := range raw.Speech {
		visemes := make([]Viseme, len(s.Visemes))
		for i, v := range s.Visemes {
			visemes[i] = Viseme{Offset: ms(v.OffsetMs), Shape: v.Shape}
		}
		opts := SpeechOptions{PreDelay: ms(s.PreDelayMs), Visemes: visemes}
		if err := tl.AddSpeech(ms(s.StartMs), s.Phrase, ms(s.DurationMs), opts); err != nil {
			return nil, err
		}
	}

	for _, c := range raw.Cues {
		if err := tl.AddCue(ms(c.StartMs), c.ID, CueType(c.Type), c.TargetJoint, ms(c.EndMs)); err != nil {
			return nil, err
		}
	}

	for _, e := range raw.Events {
		if err := tl.AddEvent(ms(e.TimeMs), e.Name, e.Data); err != nil {
			return nil, err
		}
	}

	return tl, nil
}

// Marshal serializes a timeline back into choreography JSON. The
// output round-trips through Parse.
func Marshal(tl *Timeline) ([]byte, error) {
	raw := timelineFile{
		Name:       tl.Name,
		DurationMs: toMs(tl.Duration),
		Loop:       tl.Loop,
		Tempo:      tl.Tempo,
	}

	for _, p := range tl.Tracks.Animation {
		raw.Animation = append(raw.Animation, animationEntry{
			StartMs:     toMs(p.Start),
			EndMs:       toMs(p.End),
			Phase:       p.Phase,
			Type:        string(p.Type),
			Description: p.Description,
			Easing:      string(p.Easing),
		})
	}

	for _, s := range tl.Tracks.Speech {
		entry := speechEntry{
			StartMs:    toMs(s.Start),
			Phrase:     s.Phrase,
			DurationMs: toMs(s.Duration),
			PreDelayMs: toMs(s.PreDelay),
		}
		for _, v := range s.Visemes {
			entry.Visemes = append(entry.Visemes, visemeEntry{OffsetMs: toMs(v.Offset), Shape: v.Shape})
		}
		raw.Speech = append(raw.Speech, entry)
	}

	for _, c := range tl.Tracks.Cues {
		raw.Cues = append(raw.Cues, cueEntry{
			StartMs:     toMs(c.Start),
			EndMs:       toMs(c.End),
			ID:          c.ID,
			Type:        string(c.Type),
			TargetJoint: c.TargetJoint,
		})
	}

	for _, e := range tl.Tracks.Events {
		raw.Events = append(raw.Events, eventEntry{TimeMs: toMs(e.Time), Name: e.Name, Data: e.Data})
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "timeline: marshal choreography")
	}
	return data, nil
}

// SaveFile writes a timeline to disk as choreography JSON.
func SaveFile(tl *Timeline, path string) error {
	data, err := Marshal(tl)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "timeline: write choreography file")
	}
	return nil
}

func ms(v float64) time.Duration {
	return time.Duration(v * float64(time.Millisecond))
}

func toMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
