package pose

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Processor converts raw per-frame landmark arrays into temporally
// smoothed, velocity-annotated, confidence-scored landmarks.
//
// A Processor is not safe for concurrent use; run it inside a Worker
// when the host loop must not block on per-frame cost.
type Processor struct {
	config Config

	// Previous processed frame, the smoothing recurrence state.
	previous []ProcessedLandmark

	// Bounded lookback for angular velocity.
	history *frameHistory

	// Previous-step displacement per landmark, for the movement
	// consistency part of the confidence score.
	lastDisplacement []float64
}

// NewProcessor creates a processor with the given configuration.
func NewProcessor(config Config) *Processor {
	return &Processor{
		config:  config,
		history: newFrameHistory(config.HistorySize),
	}
}

// ProcessFrame filters one frame of landmarks. The output always has
// the same length as the input. dt is the elapsed time since the
// previous frame in seconds; non-positive dt yields zero velocity.
func (p *Processor) ProcessFrame(landmarks []Landmark, dt float64) []ProcessedLandmark {
	processed := make([]ProcessedLandmark, len(landmarks))
	displacement := make([]float64, len(landmarks))

	// A skeleton size change means the upstream source switched
	// topology; stale state cannot be smoothed into it.
	if p.previous != nil && len(p.previous) != len(landmarks) {
		p.previous = nil
		p.lastDisplacement = nil
	}

	factor := p.config.SmoothingFactor
	visFactor := factor / 2
	velFactor := p.config.VelocitySmoothing

	for i, lm := range landmarks {
		cur := lm.Position()
		vis := lm.VisibilityOr(1)

		if p.previous == nil {
			processed[i] = ProcessedLandmark{
				Position:   cur,
				Visibility: vis,
				Confidence: confidence(vis, 1),
			}
			continue
		}

		prev := p.previous[i]
		moved := r3.Norm(r3.Sub(cur, prev.Position))

		var pos r3.Vec
		if moved < p.config.JitterThreshold {
			// Below the jitter gate the landmark is treated as
			// stationary; the sub-threshold movement is discarded.
			pos = prev.Position
			moved = 0
		} else {
			pos = r3.Add(r3.Scale(factor, prev.Position), r3.Scale(1-factor, cur))
		}

		smoothedVis := prev.Visibility*visFactor + vis*(1-visFactor)

		var vel r3.Vec
		if dt > 0 {
			raw := r3.Scale(1/dt, r3.Sub(pos, prev.Position))
			vel = r3.Add(r3.Scale(velFactor, prev.Velocity), r3.Scale(1-velFactor, raw))
		}

		consistency := 1.0
		if p.lastDisplacement != nil && i < len(p.lastDisplacement) && p.config.ConsistencyScale > 0 {
			consistency = clamp(1-p.lastDisplacement[i]/p.config.ConsistencyScale, 0, 1)
		}

		processed[i] = ProcessedLandmark{
			Position:   pos,
			Visibility: smoothedVis,
			Velocity:   vel,
			Smoothed:   true,
			Confidence: confidence(smoothedVis, consistency),
		}
		displacement[i] = moved
	}

	p.previous = processed
	p.lastDisplacement = displacement
	p.history.Push(processed)

	return processed
}

// Reset clears the previous-frame state and the history buffer. Call
// between exercises or after a tracking gap so stale data is not
// smoothed into new motion.
func (p *Processor) Reset() {
	p.previous = nil
	p.lastDisplacement = nil
	p.history.Reset()
}

// Configure merges a partial configuration update. Changes take
// effect on the next call.
func (p *Processor) Configure(patch ConfigPatch) {
	p.config = patch.apply(p.config)
}

// Config returns the current configuration.
func (p *Processor) Config() Config {
	return p.config
}

// confidence blends visibility with movement consistency, weighted
// 70/30 toward visibility.
func confidence(visibility, consistency float64) float64 {
	return clamp(visibility*0.7+consistency*0.3, 0, 1)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// normalize returns the unit vector of v, or the zero vector when v
// has no length.
func normalize(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n < 1e-12 {
		return r3.Vec{}
	}
	return r3.Scale(1/n, v)
}

// angleBetweenDeg returns the angle between two vectors in degrees.
func angleBetweenDeg(a, b r3.Vec) float64 {
	dot := r3.Dot(normalize(a), normalize(b))
	return math.Acos(clamp(dot, -1, 1)) * 180 / math.Pi
}
