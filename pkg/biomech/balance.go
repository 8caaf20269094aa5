package biomech

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// StancePhase classifies which foot currently bears weight.
type StancePhase string

// Stance phases.
const (
	StanceLeft   StancePhase = "left"
	StanceRight  StancePhase = "right"
	StanceDouble StancePhase = "double"
	StanceFlight StancePhase = "flight"
)

// FootPressure is the weight split between the feet. Left and Right
// sum to 1 for any grounded stance.
type FootPressure struct {
	Left  float64
	Right float64
}

// BaseOfSupport describes the support polygon between the feet,
// projected to the ground plane.
type BaseOfSupport struct {
	Center r3.Vec
	Width  float64
	Depth  float64
}

// WeightDistribution is the full balance picture for one update.
type WeightDistribution struct {
	CenterOfMass   r3.Vec
	FootPressure   FootPressure
	StancePhase    StancePhase
	StabilityIndex float64 // 0 = unstable, 1 = perfectly centered
	BaseOfSupport  BaseOfSupport
}

// EulerAngles is a rotation expressed as roll/pitch/yaw in radians.
type EulerAngles struct {
	Roll  float64
	Pitch float64
	Yaw   float64
}

// BalanceCompensation is the postural correction derived from the
// current weight distribution. It is recomputed every update and
// carries no identity of its own.
type BalanceCompensation struct {
	HipShift    r3.Vec
	TrunkLean   EulerAngles
	ArmPosition struct {
		Left  r3.Vec
		Right r3.Vec
	}
}

// Thresholds for stance classification and flight detection.
const (
	singleStancePressure = 0.9
	flightPressureEps    = 1e-3
	flightHeightMin      = 0.05
	maxTrunkLeanRad      = 15 * math.Pi / 180
)

// projectToGround drops a point onto the ground plane (Y = 0).
func projectToGround(v r3.Vec) r3.Vec {
	return r3.Vec{X: v.X, Z: v.Z}
}

// ComputeWeightDistribution projects the center of mass onto the line
// between the feet and derives foot pressures, stance phase and the
// stability index.
func ComputeWeightDistribution(com, leftFoot, rightFoot r3.Vec) WeightDistribution {
	comProj := projectToGround(com)
	leftProj := projectToGround(leftFoot)
	rightProj := projectToGround(rightFoot)

	feetLine := r3.Sub(rightProj, leftProj)
	feetWidth := r3.Norm(feetLine)
	center := r3.Scale(0.5, r3.Add(leftProj, rightProj))

	// Parametrize the projected COM along the foot line: t=0 maps to
	// the left foot, t=1 to the right.
	var t float64
	if feetWidth > 0 {
		toLeft := r3.Sub(leftProj, comProj)
		t = clamp(r3.Dot(r3.Scale(-1, toLeft), feetLine)/(feetWidth*feetWidth), 0, 1)
	} else {
		t = 0.5
	}

	pressure := FootPressure{Left: 1 - t, Right: t}

	var stability float64
	if feetWidth > 0 {
		offset := r3.Norm(r3.Sub(comProj, center))
		stability = clamp(1-offset/(feetWidth/2), 0, 1)
	}

	phase := classifyStance(pressure, com.Y, (leftFoot.Y+rightFoot.Y)/2)

	depth := math.Abs(rightProj.Z - leftProj.Z)

	return WeightDistribution{
		CenterOfMass:   com,
		FootPressure:   pressure,
		StancePhase:    phase,
		StabilityIndex: stability,
		BaseOfSupport: BaseOfSupport{
			Center: center,
			Width:  feetWidth,
			Depth:  depth,
		},
	}
}

// classifyStance picks the stance phase from the pressure split and
// the COM height above the feet.
func classifyStance(p FootPressure, comHeight, footHeight float64) StancePhase {
	switch {
	case p.Left < flightPressureEps && p.Right < flightPressureEps && comHeight-footHeight > flightHeightMin:
		return StanceFlight
	case p.Left > singleStancePressure:
		return StanceLeft
	case p.Right > singleStancePressure:
		return StanceRight
	default:
		return StanceDouble
	}
}

// CompensationConfig tunes how strongly the avatar corrects for
// balance deviation.
type CompensationConfig struct {
	Strength     float64 // Overall compensation gain (0-1)
	ArmSpreadMax float64 // Maximum outward arm offset at zero stability
}

// DefaultCompensationConfig returns moderate compensation suitable
// for most exercises.
func DefaultCompensationConfig() CompensationConfig {
	return CompensationConfig{
		Strength:     0.5,
		ArmSpreadMax: 0.3,
	}
}

// ComputeCompensation derives the postural correction for the given
// weight distribution: hips shift against the COM deviation, the
// trunk leans back along it (capped at 15 degrees), and the arms
// spread outward as stability drops.
func ComputeCompensation(weight WeightDistribution, cfg CompensationConfig) BalanceCompensation {
	deviation := r3.Sub(projectToGround(weight.CenterOfMass), weight.BaseOfSupport.Center)

	var comp BalanceCompensation
	comp.HipShift = r3.Scale(-cfg.Strength, deviation)

	mag := r3.Norm(deviation)
	if mag > 0 {
		lean := math.Min(mag*cfg.Strength*math.Pi, maxTrunkLeanRad)
		dir := r3.Scale(1/mag, deviation)
		// Lean about the axis perpendicular to the planar deviation:
		// lateral deviation rolls the trunk, forward deviation
		// pitches it.
		comp.TrunkLean = EulerAngles{
			Roll:  -lean * dir.X,
			Pitch: lean * dir.Z,
		}
	}

	spread := (1 - weight.StabilityIndex) * cfg.Strength * cfg.ArmSpreadMax
	comp.ArmPosition.Left = r3.Vec{X: -spread}
	comp.ArmPosition.Right = r3.Vec{X: spread}

	return comp
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
