package timeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/kinesio/go-kinesio/internal/log"
	"github.com/kinesio/go-kinesio/pkg/events"
)

// Tempo limits. setTempo clamps into this range.
const (
	minTempo = 0.1
	maxTempo = 3.0
)

// State is the orchestrator playback state.
type State int

// Playback states.
const (
	StateStopped State = iota
	StatePlaying
	StatePaused
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// ScheduleFunc schedules f to run after d and returns a cancel
// function. The default uses time.AfterFunc; tests inject their own.
type ScheduleFunc func(d time.Duration, f func()) (cancel func())

// Config tunes an orchestrator. The zero value of each field selects
// a sensible default.
type Config struct {
	// TickInterval is the internal scheduling cadence. Zero disables
	// the internal loop; the host drives playback by calling Tick.
	TickInterval time.Duration

	// ProgressInterval throttles ANIMATION_PROGRESS events.
	ProgressInterval time.Duration

	// Now is the clock used to measure elapsed real time.
	Now func() time.Time

	// Schedule is used for speech-end and viseme timers.
	Schedule ScheduleFunc
}

// DefaultConfig returns the recommended orchestrator configuration.
func DefaultConfig() Config {
	return Config{
		TickInterval:     33 * time.Millisecond, // ~30 Hz
		ProgressInterval: 100 * time.Millisecond,
	}
}

// Orchestrator owns one loaded timeline and advances its virtual
// clock, emitting typed events on the bus. All methods are safe for
// use from the host loop and bus handlers; event delivery happens
// outside the internal lock.
type Orchestrator struct {
	bus *events.Bus
	cfg Config

	mu       sync.Mutex
	timeline *Timeline
	state    State
	current  time.Duration
	tempo    float64
	loops    int
	reps     int
	sets     int

	currentPhase string
	hasPhase     bool
	executed     map[string]bool
	activeCues   map[string]bool

	lastTick     time.Time
	lastProgress time.Duration
	hasProgress  bool

	// generation invalidates scheduled speech timers across
	// stop/load/seek so a stale timer never emits against a
	// superseded session.
	generation uint64

	completion func()
	loopStop   chan struct{}
}

// NewOrchestrator creates an orchestrator emitting on the given bus.
func NewOrchestrator(bus *events.Bus, cfg Config) *Orchestrator {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Schedule == nil {
		cfg.Schedule = func(d time.Duration, f func()) func() {
			t := time.AfterFunc(d, f)
			return func() { t.Stop() }
		}
	}
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = 100 * time.Millisecond
	}
	return &Orchestrator{
		bus:   bus,
		cfg:   cfg,
		tempo: 1.0,
	}
}

// OnComplete registers the callback invoked exactly once when a
// non-looping timeline plays to its end.
func (o *Orchestrator) OnComplete(f func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.completion = f
}

// Load installs a timeline, discarding any previous session state.
func (o *Orchestrator) Load(tl *Timeline) {
	o.mu.Lock()
	o.stopLocked()
	o.timeline = tl
	o.current = 0
	o.loops = 0
	o.reps = 0
	o.sets = 0
	o.tempo = clampTempo(tl.Tempo)
	o.resetMarkersLocked()
	o.mu.Unlock()

	log.Debug("timeline loaded", "name", tl.Name, "duration", tl.Duration, "loop", tl.Loop)
}

// Reset discards the loaded timeline and all session state.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	o.stopLocked()
	o.timeline = nil
	o.current = 0
	o.loops = 0
	o.reps = 0
	o.sets = 0
	o.tempo = 1.0
	o.resetMarkersLocked()
	o.mu.Unlock()
}

func (o *Orchestrator) resetMarkersLocked() {
	o.executed = make(map[string]bool)
	o.activeCues = make(map[string]bool)
	o.currentPhase = ""
	o.hasPhase = false
	o.lastProgress = 0
	o.hasProgress = false
}

// Play starts playback. Without a loaded timeline it is a no-op.
func (o *Orchestrator) Play() {
	o.mu.Lock()
	if o.timeline == nil || o.state == StatePlaying {
		o.mu.Unlock()
		return
	}
	if o.state == StatePaused {
		o.mu.Unlock()
		o.Resume()
		return
	}

	// A finished run restarts from the top instead of re-emitting
	// completion at the old position.
	if o.current >= o.timeline.Duration {
		o.current = 0
		o.resetMarkersLocked()
	}

	o.state = StatePlaying
	o.lastTick = o.cfg.Now()
	tl := o.timeline
	pending := []events.Event{AnimationStart{
		At:       o.lastTick,
		Timeline: tl.Name,
		Duration: tl.Duration,
	}}
	pending = append(pending, o.evaluateLocked(false)...)
	o.startLoopLocked()
	o.mu.Unlock()

	o.emitAll(pending)
}

// Pause suspends playback. Only valid while playing.
func (o *Orchestrator) Pause() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StatePlaying {
		return
	}
	o.state = StatePaused
	o.stopLoopLocked()
}

// Resume continues paused playback. Only valid while paused.
func (o *Orchestrator) Resume() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StatePaused {
		return
	}
	o.state = StatePlaying
	o.lastTick = o.cfg.Now()
	o.startLoopLocked()
}

// Stop halts playback, rewinds the virtual clock, and invalidates
// pending speech timers.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	o.stopLocked()
	o.current = 0
	o.resetMarkersLocked()
	o.mu.Unlock()
}

// stopLocked clears the playing/paused flags, cancels the tick loop,
// and bumps the generation token.
func (o *Orchestrator) stopLocked() {
	o.state = StateStopped
	o.stopLoopLocked()
	o.generation++
}

// Tick advances the virtual clock by the elapsed real time since the
// previous tick, scaled by tempo, then evaluates all four tracks.
// The host may call it directly when the internal loop is disabled.
func (o *Orchestrator) Tick() {
	o.mu.Lock()
	if o.state != StatePlaying || o.timeline == nil {
		o.mu.Unlock()
		return
	}

	now := o.cfg.Now()
	elapsed := now.Sub(o.lastTick)
	o.lastTick = now
	if elapsed < 0 {
		elapsed = 0
	}

	o.current += time.Duration(float64(elapsed) * o.tempo)

	pending, completed := o.advanceLocked()
	o.mu.Unlock()

	o.emitAll(pending)
	if completed != nil {
		completed()
	}
}

// advanceLocked handles loop wrap or completion, then evaluates the
// tracks at the new position. The returned callback, if any, is the
// completion callback and must be invoked outside the lock.
func (o *Orchestrator) advanceLocked() ([]events.Event, func()) {
	tl := o.timeline
	var pending []events.Event

	if o.current >= tl.Duration {
		if tl.Loop {
			o.current = o.current % tl.Duration
			o.loops++
			// Cues still active at the end of the pass get their
			// falling edge before the wrap.
			for _, cue := range tl.Tracks.Cues {
				if o.activeCues[cue.ID] {
					pending = append(pending, CueClear{At: o.cfg.Now(), CueID: cue.ID})
				}
			}
			// A new pass re-arms every one-shot.
			o.executed = make(map[string]bool)
			o.activeCues = make(map[string]bool)
		} else {
			o.current = tl.Duration
			pending = append(pending, o.evaluateLocked(false)...)
			pending = append(pending, AnimationComplete{At: o.cfg.Now(), Timeline: tl.Name})
			o.stopLocked()
			return pending, o.completion
		}
	}

	pending = append(pending, o.evaluateLocked(false)...)
	pending = append(pending, o.progressLocked()...)
	return pending, nil
}

// Seek jumps the virtual clock to t, clamped to [0, duration]. Track
// state is re-evaluated in a suppressed mode that updates the current
// phase and one-shot markers without firing side effects, so
// scrubbing never replays speech or cues.
func (o *Orchestrator) Seek(t time.Duration) {
	o.mu.Lock()
	if o.timeline == nil {
		o.mu.Unlock()
		return
	}

	if t < 0 {
		t = 0
	}
	if t > o.timeline.Duration {
		t = o.timeline.Duration
	}
	o.current = t

	// Outstanding speech timers belong to the pre-seek position.
	o.generation++

	o.executed = make(map[string]bool)
	o.activeCues = make(map[string]bool)
	pending := o.evaluateLocked(true)
	o.lastProgress = t
	o.hasProgress = true
	o.mu.Unlock()

	o.emitAll(pending)
}

// SetTempo changes the playback speed, clamped to [0.1, 3].
func (o *Orchestrator) SetTempo(tempo float64) {
	o.mu.Lock()
	o.tempo = clampTempo(tempo)
	applied := o.tempo
	o.mu.Unlock()

	o.bus.Emit(TempoChange{At: o.cfg.Now(), Tempo: applied})
}

// CountRep increments the repetition counter fed by the host's motion
// analysis and reports the new total.
func (o *Orchestrator) CountRep() int {
	o.mu.Lock()
	o.reps++
	reps := o.reps
	o.mu.Unlock()

	o.bus.Emit(RepCount{At: o.cfg.Now(), Reps: reps})
	return reps
}

// CompleteSet increments the set counter and reports the new total.
func (o *Orchestrator) CompleteSet() int {
	o.mu.Lock()
	o.sets++
	sets := o.sets
	o.mu.Unlock()

	o.bus.Emit(SetCount{At: o.cfg.Now(), Sets: sets})
	return sets
}

// State returns the playback state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Position returns the virtual clock position.
func (o *Orchestrator) Position() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// Progress returns playback progress in [0, 1], or 0 with no
// timeline.
func (o *Orchestrator) Progress() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.timeline == nil || o.timeline.Duration <= 0 {
		return 0
	}
	return float64(o.current) / float64(o.timeline.Duration)
}

// Tempo returns the current tempo multiplier.
func (o *Orchestrator) Tempo() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.tempo
}

// LoopCount returns how many times a looping timeline has wrapped.
func (o *Orchestrator) LoopCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.loops
}

// CurrentPhase returns the active animation phase name, if any.
func (o *Orchestrator) CurrentPhase() (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.currentPhase, o.hasPhase
}

// evaluateLocked walks all four tracks at the current position and
// returns the events to emit. In suppressed mode one-shot markers and
// the active-cue set are updated without producing events, except
// that phase changes still surface (phase is level state, not a
// one-shot).
func (o *Orchestrator) evaluateLocked(suppressed bool) []events.Event {
	tl := o.timeline
	now := o.cfg.Now()
	var pending []events.Event

	// Animation: transition-edge detection on the containing phase.
	if phase, ok := tl.phaseAt(o.current); ok && (!o.hasPhase || phase.Phase != o.currentPhase) {
		prev := o.currentPhase
		o.currentPhase = phase.Phase
		o.hasPhase = true
		pending = append(pending, PhaseChange{
			At:            now,
			Phase:         phase.Phase,
			PhaseType:     phase.Type,
			PreviousPhase: prev,
			Position:      o.current,
		})
	}

	// Speech: one-shot per (start, phrase); end and visemes are
	// scheduled on wall-clock timers guarded by the generation token.
	for _, item := range tl.Tracks.Speech {
		if o.current < item.effectiveStart() {
			continue
		}
		key := speechKey(item)
		if o.executed[key] {
			continue
		}
		o.executed[key] = true
		if suppressed {
			continue
		}
		pending = append(pending, SpeechStart{At: now, Phrase: item.Phrase, Duration: item.Duration})
		o.scheduleSpeechLocked(item)
	}

	// Cues: rising and falling edges against the active set.
	for _, cue := range tl.Tracks.Cues {
		active := o.current >= cue.Start && o.current < tl.cueEnd(cue)
		switch {
		case active && !o.activeCues[cue.ID]:
			o.activeCues[cue.ID] = true
			if !suppressed {
				pending = append(pending, CueTrigger{
					At:          now,
					CueID:       cue.ID,
					CueType:     cue.Type,
					TargetJoint: cue.TargetJoint,
				})
			}
		case !active && o.activeCues[cue.ID]:
			delete(o.activeCues, cue.ID)
			if !suppressed {
				pending = append(pending, CueClear{At: now, CueID: cue.ID})
			}
		}
	}

	// Generic one-shot events.
	for _, item := range tl.Tracks.Events {
		if o.current < item.Time {
			continue
		}
		key := eventKey(item)
		if o.executed[key] {
			continue
		}
		o.executed[key] = true
		if !suppressed {
			pending = append(pending, GenericEvent{At: now, Name: item.Name, Data: item.Data})
		}
	}

	return pending
}

// scheduleSpeechLocked arms the SPEECH_END and viseme timers for a
// just-started phrase. Timers fire in wall time scaled by the current
// tempo, and check the generation token before emitting so a stop,
// load or seek after scheduling silences them.
func (o *Orchestrator) scheduleSpeechLocked(item SpeechItem) {
	gen := o.generation
	tempo := o.tempo

	for _, v := range item.Visemes {
		viseme := v
		o.cfg.Schedule(scaleDuration(viseme.Offset, tempo), func() {
			if !o.generationAlive(gen) {
				return
			}
			o.bus.Emit(VisemeUpdate{At: o.cfg.Now(), Phrase: item.Phrase, Shape: viseme.Shape})
		})
	}

	o.cfg.Schedule(scaleDuration(item.Duration, tempo), func() {
		if !o.generationAlive(gen) {
			return
		}
		o.bus.Emit(SpeechEnd{At: o.cfg.Now(), Phrase: item.Phrase})
	})
}

func (o *Orchestrator) generationAlive(gen uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.generation == gen
}

// progressLocked emits ANIMATION_PROGRESS at the configured cadence.
func (o *Orchestrator) progressLocked() []events.Event {
	if o.hasProgress && o.current-o.lastProgress < o.cfg.ProgressInterval {
		return nil
	}
	o.lastProgress = o.current
	o.hasProgress = true

	progress := 0.0
	if o.timeline.Duration > 0 {
		progress = float64(o.current) / float64(o.timeline.Duration)
	}
	return []events.Event{AnimationProgress{
		At:       o.cfg.Now(),
		Position: o.current,
		Progress: progress,
		Loop:     o.loops,
	}}
}

// startLoopLocked launches the internal tick loop if configured.
func (o *Orchestrator) startLoopLocked() {
	if o.cfg.TickInterval <= 0 || o.loopStop != nil {
		return
	}
	stop := make(chan struct{})
	o.loopStop = stop

	go func() {
		ticker := time.NewTicker(o.cfg.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				o.Tick()
			}
		}
	}()
}

// stopLoopLocked cancels the pending tick loop.
func (o *Orchestrator) stopLoopLocked() {
	if o.loopStop != nil {
		close(o.loopStop)
		o.loopStop = nil
	}
}

// emitAll delivers pending events in order, outside the lock.
func (o *Orchestrator) emitAll(pending []events.Event) {
	for _, e := range pending {
		o.bus.Emit(e)
	}
}

// scaleDuration converts a timeline duration to wall time at the
// given tempo.
func scaleDuration(d time.Duration, tempo float64) time.Duration {
	if tempo <= 0 {
		return d
	}
	return time.Duration(float64(d) / tempo)
}

func clampTempo(t float64) float64 {
	if t < minTempo {
		return minTempo
	}
	if t > maxTempo {
		return maxTempo
	}
	return t
}

func speechKey(item SpeechItem) string {
	return fmt.Sprintf("speech:%d:%s", item.Start, item.Phrase)
}

func eventKey(item EventItem) string {
	return fmt.Sprintf("event:%d:%s", item.Time, item.Name)
}
