package pose

import (
	"math"
	"testing"
)

const angleTolerance = 1e-6

// limbFrame builds a full skeleton with the left knee triplet set to
// the given hip, knee and ankle positions.
func limbFrame(hip, knee, ankle [3]float64) []Landmark {
	frame := makeFrame(LandmarkCount, 0.5, 0.5, 0, 1.0)
	frame[LandmarkLeftHip] = Landmark{X: hip[0], Y: hip[1], Z: hip[2], Visibility: vis(1)}
	frame[LandmarkLeftKnee] = Landmark{X: knee[0], Y: knee[1], Z: knee[2], Visibility: vis(1)}
	frame[LandmarkLeftAnkle] = Landmark{X: ankle[0], Y: ankle[1], Z: ankle[2], Visibility: vis(1)}
	return frame
}

func findJoint(t *testing.T, results []JointAngleResult, name string) JointAngleResult {
	t.Helper()
	for _, r := range results {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("joint %q not found in results", name)
	return JointAngleResult{}
}

func TestCalculateJointAngles_StraightLimb(t *testing.T) {
	p := NewProcessor(DefaultConfig())

	// Hip, knee and ankle colinear with the knee in the middle.
	frame := limbFrame([3]float64{0.5, 0.3, 0}, [3]float64{0.5, 0.5, 0}, [3]float64{0.5, 0.7, 0})

	knee := findJoint(t, p.CalculateJointAngles(frame), "leftKnee")
	if math.Abs(knee.Angle-180) > angleTolerance {
		t.Errorf("straight limb angle: got %v, want 180", knee.Angle)
	}
}

func TestCalculateJointAngles_FoldedLimb(t *testing.T) {
	p := NewProcessor(DefaultConfig())

	// Ankle folded back onto the hip direction.
	frame := limbFrame([3]float64{0.5, 0.3, 0}, [3]float64{0.5, 0.5, 0}, [3]float64{0.5, 0.3, 0})

	knee := findJoint(t, p.CalculateJointAngles(frame), "leftKnee")
	if math.Abs(knee.Angle) > angleTolerance {
		t.Errorf("folded limb angle: got %v, want 0", knee.Angle)
	}
}

func TestCalculateJointAngles_RightAngle(t *testing.T) {
	p := NewProcessor(DefaultConfig())

	frame := limbFrame([3]float64{0.5, 0.3, 0}, [3]float64{0.5, 0.5, 0}, [3]float64{0.7, 0.5, 0})

	knee := findJoint(t, p.CalculateJointAngles(frame), "leftKnee")
	if math.Abs(knee.Angle-90) > angleTolerance {
		t.Errorf("right-angle limb: got %v, want 90", knee.Angle)
	}
}

func TestCalculateJointAngles_ConfidenceIsMeanVisibility(t *testing.T) {
	p := NewProcessor(DefaultConfig())

	frame := limbFrame([3]float64{0.5, 0.3, 0}, [3]float64{0.5, 0.5, 0}, [3]float64{0.5, 0.7, 0})
	frame[LandmarkLeftHip].Visibility = vis(0.9)
	frame[LandmarkLeftKnee].Visibility = vis(0.6)
	frame[LandmarkLeftAnkle].Visibility = vis(0.3)

	knee := findJoint(t, p.CalculateJointAngles(frame), "leftKnee")
	if math.Abs(knee.Confidence-0.6) > angleTolerance {
		t.Errorf("confidence: got %v, want 0.6", knee.Confidence)
	}
}

func TestCalculateJointAngles_VelocityZeroWithoutHistory(t *testing.T) {
	p := NewProcessor(DefaultConfig())

	frame := limbFrame([3]float64{0.5, 0.3, 0}, [3]float64{0.5, 0.5, 0}, [3]float64{0.5, 0.7, 0})

	for _, r := range p.CalculateJointAngles(frame) {
		if r.Velocity != 0 {
			t.Errorf("joint %s: velocity without history should be 0, got %v", r.Name, r.Velocity)
		}
	}
}

func TestCalculateJointAngles_VelocityFromBufferedFrame(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SmoothingFactor = 0
	cfg.JitterThreshold = 0
	p := NewProcessor(cfg)

	// Straight limb, then bend the knee to 90 degrees across two
	// processed frames.
	straight := limbFrame([3]float64{0.5, 0.3, 0}, [3]float64{0.5, 0.5, 0}, [3]float64{0.5, 0.7, 0})
	bent := limbFrame([3]float64{0.5, 0.3, 0}, [3]float64{0.5, 0.5, 0}, [3]float64{0.7, 0.5, 0})

	p.ProcessFrame(straight, 1.0/30)
	p.ProcessFrame(bent, 1.0/30)

	knee := findJoint(t, p.CalculateJointAngles(bent), "leftKnee")

	// 90 - 180 = -90 degrees over one nominal frame.
	want := -90 * cfg.NominalFrameRate
	if math.Abs(knee.Velocity-want) > 1e-3 {
		t.Errorf("angular velocity: got %v, want %v", knee.Velocity, want)
	}
}

func TestCalculateJointAngles_ShortArraySkipsJoints(t *testing.T) {
	p := NewProcessor(DefaultConfig())

	// Only the first 17 landmarks: lower-body joints are out of range.
	results := p.CalculateJointAngles(makeFrame(17, 0.5, 0.5, 0, 1.0))

	for _, r := range results {
		if r.Name == "leftKnee" || r.Name == "rightKnee" {
			t.Errorf("joint %s should be skipped for a 17-point array", r.Name)
		}
	}
}

func TestCalculateJointAngles_AnkleUsesFootIndexPoints(t *testing.T) {
	p := NewProcessor(DefaultConfig())

	// Shin vertical, foot pointing straight forward: 90 degrees at
	// each ankle, measured through the foot index landmarks.
	frame := makeFrame(LandmarkCount, 0.5, 0.5, 0, 1.0)
	frame[LandmarkLeftKnee] = Landmark{X: -0.1, Y: 0.5, Z: 0, Visibility: vis(1)}
	frame[LandmarkLeftAnkle] = Landmark{X: -0.1, Y: 0.1, Z: 0, Visibility: vis(1)}
	frame[LandmarkLeftFootIndex] = Landmark{X: -0.1, Y: 0.1, Z: 0.2, Visibility: vis(1)}
	frame[LandmarkRightKnee] = Landmark{X: 0.1, Y: 0.5, Z: 0, Visibility: vis(1)}
	frame[LandmarkRightAnkle] = Landmark{X: 0.1, Y: 0.1, Z: 0, Visibility: vis(1)}
	frame[LandmarkRightFootIndex] = Landmark{X: 0.1, Y: 0.1, Z: 0.2, Visibility: vis(1)}

	results := p.CalculateJointAngles(frame)
	for _, name := range []string{"leftAnkle", "rightAnkle"} {
		ankle := findJoint(t, results, name)
		if math.Abs(ankle.Angle-90) > angleTolerance {
			t.Errorf("%s angle: got %v, want 90", name, ankle.Angle)
		}
	}
}

func TestJointNames_CoversBothSides(t *testing.T) {
	names := JointNames()
	if len(names) != 10 {
		t.Fatalf("joint count: got %d, want 10", len(names))
	}

	seen := make(map[string]bool)
	for _, n := range names {
		seen[n] = true
	}
	for _, want := range []string{"leftKnee", "rightKnee", "leftElbow", "rightElbow", "leftHip", "rightHip"} {
		if !seen[want] {
			t.Errorf("missing joint %q", want)
		}
	}
}
