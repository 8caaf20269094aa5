package biomech

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// SwayConfig tunes the idle sway motion.
type SwayConfig struct {
	Amplitude   float64 // Base lateral amplitude in normalized units
	Frequency   float64 // Base frequency in Hz
	ForwardBias float64 // Forward/back amplitude relative to lateral
}

// DefaultSwayConfig returns a subtle idle sway.
func DefaultSwayConfig() SwayConfig {
	return SwayConfig{
		Amplitude:   0.01,
		Frequency:   0.25,
		ForwardBias: 0.6,
	}
}

// SwayState is the idle sway sample at a point in time.
type SwayState struct {
	Offset   r3.Vec
	Velocity r3.Vec
	Phase    float64 // Phase of the base oscillation in radians
}

// The three sinusoid components: related frequency multiples and
// fixed phase offsets. Determinism matters for reproducible tests, so
// there is no randomness anywhere in the sway path.
var swayComponents = [3]struct {
	freqMul  float64
	ampMul   float64
	phaseOff float64
}{
	{1.0, 1.0, 0},
	{2.3, 0.4, math.Pi / 3},
	{3.7, 0.15, math.Pi / 5},
}

// NaturalSway returns the deterministic idle sway at time t (seconds).
// The offset is a sum of three related sinusoids per axis; the
// velocity is the analytic derivative of the same expression.
func NaturalSway(t float64, cfg SwayConfig) SwayState {
	var offX, offZ, velX, velZ float64

	for _, c := range swayComponents {
		omega := 2 * math.Pi * cfg.Frequency * c.freqMul
		amp := cfg.Amplitude * c.ampMul

		offX += amp * math.Sin(omega*t+c.phaseOff)
		velX += amp * omega * math.Cos(omega*t+c.phaseOff)

		// Forward sway runs at the same frequencies, phase-shifted a
		// quarter cycle so the path traces a slow figure.
		offZ += amp * cfg.ForwardBias * math.Sin(omega*t+c.phaseOff+math.Pi/2)
		velZ += amp * cfg.ForwardBias * omega * math.Cos(omega*t+c.phaseOff+math.Pi/2)
	}

	return SwayState{
		Offset:   r3.Vec{X: offX, Z: offZ},
		Velocity: r3.Vec{X: velX, Z: velZ},
		Phase:    math.Mod(2*math.Pi*cfg.Frequency*t, 2*math.Pi),
	}
}
