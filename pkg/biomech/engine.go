package biomech

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// EngineConfig tunes the stateful balance engine.
type EngineConfig struct {
	Compensation       CompensationConfig
	Sway               SwayConfig
	StabilityThreshold float64 // IsBalanced cutoff on the stability index
}

// DefaultEngineConfig returns the recommended engine configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Compensation:       DefaultCompensationConfig(),
		Sway:               DefaultSwayConfig(),
		StabilityThreshold: 0.5,
	}
}

// BalanceState is the full output of one engine update, handed to the
// host for forwarding to rendering collaborators.
type BalanceState struct {
	Weight       WeightDistribution
	Compensation BalanceCompensation
	Sway         SwayState
	COM          r3.Vec
	COMVelocity  r3.Vec
}

// Engine is the stateful wrapper around the balance functions. It
// tracks the previous center of mass for COM velocity and accumulates
// sway time across updates.
//
// An Engine is owned by a single host loop and is not safe for
// concurrent use.
type Engine struct {
	config EngineConfig

	prevCOM    r3.Vec
	hasPrevCOM bool
	swayTime   float64

	lastWeight WeightDistribution
	hasWeight  bool
}

// NewEngine creates an engine with the given configuration.
func NewEngine(config EngineConfig) *Engine {
	return &Engine{config: config}
}

// Update computes the balance state for one frame. dt is the elapsed
// time in seconds; non-positive dt yields zero COM velocity and does
// not advance sway time.
func (e *Engine) Update(segments SegmentPositions, leftFoot, rightFoot r3.Vec, dt float64) BalanceState {
	com := CenterOfMass(segments)
	weight := ComputeWeightDistribution(com, leftFoot, rightFoot)
	comp := ComputeCompensation(weight, e.config.Compensation)

	var comVel r3.Vec
	if e.hasPrevCOM && dt > 0 {
		comVel = r3.Scale(1/dt, r3.Sub(com, e.prevCOM))
	}
	e.prevCOM = com
	e.hasPrevCOM = true

	if dt > 0 {
		e.swayTime += dt
	}
	sway := NaturalSway(e.swayTime, e.config.Sway)

	e.lastWeight = weight
	e.hasWeight = true

	return BalanceState{
		Weight:       weight,
		Compensation: comp,
		Sway:         sway,
		COM:          com,
		COMVelocity:  comVel,
	}
}

// IsBalanced reports whether the last update's stability index met
// the configured threshold. It is false before the first update.
func (e *Engine) IsBalanced() bool {
	return e.hasWeight && e.lastWeight.StabilityIndex >= e.config.StabilityThreshold
}

// LastWeight returns the weight distribution from the most recent
// update.
func (e *Engine) LastWeight() (WeightDistribution, bool) {
	return e.lastWeight, e.hasWeight
}

// Reset clears the previous-COM state and the sway clock. Call
// between exercises.
func (e *Engine) Reset() {
	e.prevCOM = r3.Vec{}
	e.hasPrevCOM = false
	e.swayTime = 0
	e.lastWeight = WeightDistribution{}
	e.hasWeight = false
}
