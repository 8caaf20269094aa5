package timeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const squatJSON = `{
	"name": "squat-basic",
	"durationMs": 4000,
	"loop": true,
	"tempo": 1.5,
	"animation": [
		{"startMs": 0, "endMs": 1500, "phase": "descend", "easing": "easeInOut"},
		{"startMs": 1500, "endMs": 2500, "phase": "hold bottom"},
		{"startMs": 2500, "endMs": 4000, "phase": "ascend", "type": "movement"}
	],
	"speech": [
		{"startMs": 100, "phrase": "bend your knees", "durationMs": 900, "preDelayMs": 50,
		 "visemes": [{"offsetMs": 0, "shape": "B"}, {"offsetMs": 300, "shape": "E"}]}
	],
	"cues": [
		{"startMs": 1500, "endMs": 2500, "id": "knee-align", "type": "highlight", "targetJoint": "leftKnee"},
		{"startMs": 3000, "id": "posture", "type": "warning"}
	],
	"events": [
		{"timeMs": 4000, "name": "REP_DONE", "data": {"rep": 1}}
	]
}`

func TestParse_FullChoreography(t *testing.T) {
	tl, err := Parse([]byte(squatJSON))
	if err != nil {
		t.Fatal(err)
	}

	if tl.Name != "squat-basic" {
		t.Errorf("name: got %q", tl.Name)
	}
	if tl.Duration != 4*time.Second {
		t.Errorf("duration: got %v, want 4s", tl.Duration)
	}
	if !tl.Loop {
		t.Error("loop flag lost")
	}
	if tl.Tempo != 1.5 {
		t.Errorf("tempo: got %v, want 1.5", tl.Tempo)
	}

	if len(tl.Tracks.Animation) != 3 {
		t.Fatalf("animation items: got %d, want 3", len(tl.Tracks.Animation))
	}
	// Empty type is inferred from the phase name, explicit type wins.
	if got := tl.Tracks.Animation[1].Type; got != PhaseHold {
		t.Errorf("inferred type for %q: got %v, want hold", tl.Tracks.Animation[1].Phase, got)
	}
	if got := tl.Tracks.Animation[0].Easing; got != EaseInOut {
		t.Errorf("easing: got %v", got)
	}

	if len(tl.Tracks.Speech) != 1 {
		t.Fatalf("speech items: got %d, want 1", len(tl.Tracks.Speech))
	}
	sp := tl.Tracks.Speech[0]
	if sp.PreDelay != 50*time.Millisecond {
		t.Errorf("pre-delay: got %v", sp.PreDelay)
	}
	if len(sp.Visemes) != 2 || sp.Visemes[1].Offset != 300*time.Millisecond {
		t.Errorf("visemes: got %+v", sp.Visemes)
	}

	if len(tl.Tracks.Cues) != 2 {
		t.Fatalf("cues: got %d, want 2", len(tl.Tracks.Cues))
	}
	open := tl.Tracks.Cues[1]
	if open.ID != "posture" || open.End != 0 {
		t.Errorf("open-ended cue: got %+v", open)
	}

	if len(tl.Tracks.Events) != 1 || tl.Tracks.Events[0].Name != "REP_DONE" {
		t.Errorf("events: got %+v", tl.Tracks.Events)
	}
}

func TestParse_RejectsMalformedJSON(t *testing.T) {
	if _, err := Parse([]byte("{not json")); err == nil {
		t.Error("malformed JSON accepted")
	}
}

func TestParse_RunsAuthoringValidation(t *testing.T) {
	cases := []struct {
		name string
		json string
	}{
		{"missing name", `{"durationMs": 1000}`},
		{"phase past duration", `{"name": "x", "durationMs": 1000,
			"animation": [{"startMs": 0, "endMs": 2000, "phase": "p"}]}`},
		{"speech without phrase", `{"name": "x", "durationMs": 1000,
			"speech": [{"startMs": 0, "durationMs": 100}]}`},
		{"cue without id", `{"name": "x", "durationMs": 1000,
			"cues": [{"startMs": 0, "type": "highlight"}]}`},
	}

	for _, tc := range cases {
		if _, err := Parse([]byte(tc.json)); err == nil {
			t.Errorf("%s accepted", tc.name)
		}
	}
}

func TestMarshal_RoundTrips(t *testing.T) {
	original, err := Parse([]byte(squatJSON))
	if err != nil {
		t.Fatal(err)
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatal(err)
	}
	reparsed, err := Parse(data)
	if err != nil {
		t.Fatalf("marshalled output does not reparse: %v", err)
	}

	if reparsed.Name != original.Name || reparsed.Duration != original.Duration ||
		reparsed.Loop != original.Loop || reparsed.Tempo != original.Tempo {
		t.Errorf("header changed in round trip: %+v", reparsed)
	}
	if len(reparsed.Tracks.Animation) != len(original.Tracks.Animation) ||
		len(reparsed.Tracks.Speech) != len(original.Tracks.Speech) ||
		len(reparsed.Tracks.Cues) != len(original.Tracks.Cues) ||
		len(reparsed.Tracks.Events) != len(original.Tracks.Events) {
		t.Errorf("track sizes changed in round trip")
	}
	if got := reparsed.Tracks.Animation[1]; got != original.Tracks.Animation[1] {
		t.Errorf("animation item changed: got %+v, want %+v", got, original.Tracks.Animation[1])
	}
}

func TestSaveFile(t *testing.T) {
	tl, err := Parse([]byte(squatJSON))
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "out.json")
	if err := SaveFile(tl, path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Name != tl.Name {
		t.Errorf("saved name: got %q, want %q", loaded.Name, tl.Name)
	}
}

func TestLoadFileAndDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "squat.json")
	if err := os.WriteFile(path, []byte(squatJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	tl, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if tl.Name != "squat-basic" {
		t.Errorf("loaded name: got %q", tl.Name)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("missing file accepted")
	}

	// A second valid file plus an unrelated non-json file.
	second := `{"name": "cooldown", "durationMs": 2000}`
	if err := os.WriteFile(filepath.Join(dir, "cooldown.json"), []byte(second), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore"), 0o644); err != nil {
		t.Fatal(err)
	}

	timelines, err := LoadDirectory(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(timelines) != 2 {
		t.Errorf("directory load: got %d timelines, want 2", len(timelines))
	}
}
