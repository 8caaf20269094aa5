package biomech

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// groundTolerance is how far above the ground a foot may hover while
// still counting as grounded, absorbing landmark noise.
const groundTolerance = 0.02

// swingThreshold is the height above ground at which a foot is
// considered mid-swing rather than settling.
const swingThreshold = 0.05

// GroundContact describes one foot's relationship to the ground
// plane.
type GroundContact struct {
	Position         r3.Vec
	Normal           r3.Vec
	IsGrounded       bool
	PenetrationDepth float64
}

// ComputeGroundContact evaluates a foot against a flat ground plane
// at the given height.
func ComputeGroundContact(foot r3.Vec, groundHeight float64) GroundContact {
	grounded := groundHeight-foot.Y >= -groundTolerance

	var penetration float64
	if d := groundHeight - foot.Y; d > 0 {
		penetration = d
	}

	pos := foot
	if grounded {
		// Snap a grounded foot onto the plane so IK targets do not
		// sink through it.
		pos.Y = groundHeight
	}

	return GroundContact{
		Position:         pos,
		Normal:           r3.Vec{Y: 1},
		IsGrounded:       grounded,
		PenetrationDepth: penetration,
	}
}

// FootIKTarget returns the vertical IK target for a foot: the ground
// itself when the foot is settling, or a raised step target while the
// foot is mid-swing.
func FootIKTarget(foot r3.Vec, groundHeight, stepHeight float64) r3.Vec {
	target := foot
	if foot.Y-groundHeight < swingThreshold {
		target.Y = groundHeight
	} else {
		target.Y = groundHeight + stepHeight
	}
	return target
}
