package biomech

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestWeightDistribution_PressuresSumToOne(t *testing.T) {
	left := r3.Vec{X: -0.2}
	right := r3.Vec{X: 0.2}

	for _, comX := range []float64{-0.5, -0.2, -0.1, 0, 0.07, 0.2, 0.5} {
		w := ComputeWeightDistribution(r3.Vec{X: comX, Y: 1}, left, right)
		sum := w.FootPressure.Left + w.FootPressure.Right
		if !floatEquals(sum, 1.0) {
			t.Errorf("com at %v: pressures sum to %v, want 1", comX, sum)
		}
	}
}

func TestWeightDistribution_CenteredCOM(t *testing.T) {
	w := ComputeWeightDistribution(
		r3.Vec{X: 0, Y: 1},
		r3.Vec{X: -0.2},
		r3.Vec{X: 0.2},
	)

	if !floatEquals(w.FootPressure.Left, 0.5) || !floatEquals(w.FootPressure.Right, 0.5) {
		t.Errorf("centered COM pressures: got %+v, want 0.5/0.5", w.FootPressure)
	}
	if !floatEquals(w.StabilityIndex, 1.0) {
		t.Errorf("centered COM stability: got %v, want 1.0", w.StabilityIndex)
	}
	if w.StancePhase != StanceDouble {
		t.Errorf("centered COM stance: got %v, want double", w.StancePhase)
	}
}

func TestWeightDistribution_ShiftedToLeftFoot(t *testing.T) {
	w := ComputeWeightDistribution(
		r3.Vec{X: -0.2, Y: 1}, // Directly over the left foot
		r3.Vec{X: -0.2},
		r3.Vec{X: 0.2},
	)

	if !floatEquals(w.FootPressure.Left, 1.0) {
		t.Errorf("left pressure: got %v, want 1.0", w.FootPressure.Left)
	}
	if w.StancePhase != StanceLeft {
		t.Errorf("stance: got %v, want left", w.StancePhase)
	}
}

func TestWeightDistribution_COMBeyondFootClamps(t *testing.T) {
	w := ComputeWeightDistribution(
		r3.Vec{X: 1.5, Y: 1}, // Far beyond the right foot
		r3.Vec{X: -0.2},
		r3.Vec{X: 0.2},
	)

	if !floatEquals(w.FootPressure.Right, 1.0) {
		t.Errorf("right pressure: got %v, want 1.0 (clamped)", w.FootPressure.Right)
	}
	if !floatEquals(w.StabilityIndex, 0) {
		t.Errorf("stability far outside base: got %v, want 0", w.StabilityIndex)
	}
}

func TestWeightDistribution_CoincidentFeet(t *testing.T) {
	foot := r3.Vec{X: 0.1, Z: 0.1}
	w := ComputeWeightDistribution(r3.Vec{X: 0.1, Y: 1, Z: 0.1}, foot, foot)

	if !floatEquals(w.StabilityIndex, 0) {
		t.Errorf("coincident feet stability: got %v, want 0", w.StabilityIndex)
	}
	sum := w.FootPressure.Left + w.FootPressure.Right
	if !floatEquals(sum, 1.0) {
		t.Errorf("coincident feet pressures sum: got %v, want 1", sum)
	}
}

func TestWeightDistribution_BaseOfSupport(t *testing.T) {
	w := ComputeWeightDistribution(
		r3.Vec{Y: 1},
		r3.Vec{X: -0.15, Z: 0.05},
		r3.Vec{X: 0.15, Z: -0.05},
	)

	if !vecEquals(w.BaseOfSupport.Center, r3.Vec{}) {
		t.Errorf("base center: got %+v, want origin", w.BaseOfSupport.Center)
	}
	wantWidth := math.Sqrt(0.3*0.3 + 0.1*0.1)
	if !floatEquals(w.BaseOfSupport.Width, wantWidth) {
		t.Errorf("base width: got %v, want %v", w.BaseOfSupport.Width, wantWidth)
	}
	if !floatEquals(w.BaseOfSupport.Depth, 0.1) {
		t.Errorf("base depth: got %v, want 0.1", w.BaseOfSupport.Depth)
	}
}

func TestCompensation_CenteredStanceIsNeutral(t *testing.T) {
	w := ComputeWeightDistribution(r3.Vec{Y: 1}, r3.Vec{X: -0.2}, r3.Vec{X: 0.2})
	comp := ComputeCompensation(w, DefaultCompensationConfig())

	if !vecEquals(comp.HipShift, r3.Vec{}) {
		t.Errorf("hip shift at center: got %+v, want zero", comp.HipShift)
	}
	if comp.TrunkLean.Roll != 0 || comp.TrunkLean.Pitch != 0 {
		t.Errorf("trunk lean at center: got %+v, want zero", comp.TrunkLean)
	}
}

func TestCompensation_HipShiftsAgainstDeviation(t *testing.T) {
	cfg := DefaultCompensationConfig()
	w := ComputeWeightDistribution(r3.Vec{X: 0.1, Y: 1}, r3.Vec{X: -0.2}, r3.Vec{X: 0.2})
	comp := ComputeCompensation(w, cfg)

	// Deviation is +0.1 in X; the hips move the other way.
	if !floatEquals(comp.HipShift.X, -0.1*cfg.Strength) {
		t.Errorf("hip shift: got %v, want %v", comp.HipShift.X, -0.1*cfg.Strength)
	}
}

func TestCompensation_TrunkLeanCapped(t *testing.T) {
	cfg := DefaultCompensationConfig()
	cfg.Strength = 1.0

	// Huge deviation: the lean must cap at 15 degrees.
	w := WeightDistribution{
		CenterOfMass:  r3.Vec{X: 10, Y: 1},
		BaseOfSupport: BaseOfSupport{Width: 0.4},
	}
	comp := ComputeCompensation(w, cfg)

	leanMag := math.Hypot(comp.TrunkLean.Roll, comp.TrunkLean.Pitch)
	if leanMag > maxTrunkLeanRad+floatTolerance {
		t.Errorf("trunk lean magnitude: got %v rad, cap is %v rad", leanMag, maxTrunkLeanRad)
	}
}

func TestCompensation_ArmsSpreadSymmetrically(t *testing.T) {
	cfg := DefaultCompensationConfig()
	w := WeightDistribution{StabilityIndex: 0.2, BaseOfSupport: BaseOfSupport{Width: 0.4}}
	comp := ComputeCompensation(w, cfg)

	if !floatEquals(comp.ArmPosition.Left.X, -comp.ArmPosition.Right.X) {
		t.Errorf("arm spread asymmetric: left %v, right %v",
			comp.ArmPosition.Left.X, comp.ArmPosition.Right.X)
	}

	// Lower stability spreads the arms further.
	wStable := WeightDistribution{StabilityIndex: 0.9, BaseOfSupport: BaseOfSupport{Width: 0.4}}
	compStable := ComputeCompensation(wStable, cfg)
	if compStable.ArmPosition.Right.X >= comp.ArmPosition.Right.X {
		t.Error("higher stability should spread arms less")
	}
}
