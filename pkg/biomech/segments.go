// Package biomech derives balance and postural quantities from
// processed landmark positions: center of mass, weight distribution
// between the feet, compensation vectors, idle sway, and foot ground
// contact.
//
// The package is a library of pure functions plus a small stateful
// Engine wrapper that tracks COM velocity and sway time across
// updates.
package biomech

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Segment names the body segments carrying anthropometric mass.
type Segment string

// Supported body segments.
const (
	SegmentHead          Segment = "head"
	SegmentTrunk         Segment = "trunk"
	SegmentLeftUpperArm  Segment = "leftUpperArm"
	SegmentRightUpperArm Segment = "rightUpperArm"
	SegmentLeftForearm   Segment = "leftForearm"
	SegmentRightForearm  Segment = "rightForearm"
	SegmentLeftHand      Segment = "leftHand"
	SegmentRightHand     Segment = "rightHand"
	SegmentLeftThigh     Segment = "leftThigh"
	SegmentRightThigh    Segment = "rightThigh"
	SegmentLeftShank     Segment = "leftShank"
	SegmentRightShank    Segment = "rightShank"
	SegmentLeftFoot      Segment = "leftFoot"
	SegmentRightFoot     Segment = "rightFoot"
)

// massFractions holds the anthropometric mass fraction of each
// segment, after Dempster. The fractions sum to 1.0.
var massFractions = map[Segment]float64{
	SegmentHead:          0.081,
	SegmentTrunk:         0.497,
	SegmentLeftUpperArm:  0.028,
	SegmentRightUpperArm: 0.028,
	SegmentLeftForearm:   0.016,
	SegmentRightForearm:  0.016,
	SegmentLeftHand:      0.006,
	SegmentRightHand:     0.006,
	SegmentLeftThigh:     0.100,
	SegmentRightThigh:    0.100,
	SegmentLeftShank:     0.0465,
	SegmentRightShank:    0.0465,
	SegmentLeftFoot:      0.0145,
	SegmentRightFoot:     0.0145,
}

// MassFraction returns the anthropometric mass fraction for a
// segment, or 0 for an unknown segment.
func MassFraction(s Segment) float64 {
	return massFractions[s]
}

// TotalMassFraction returns the sum of all segment mass fractions.
// It is 1.0 by construction.
func TotalMassFraction() float64 {
	var total float64
	for _, f := range massFractions {
		total += f
	}
	return total
}

// SegmentPositions maps body segments to their current 3D positions.
type SegmentPositions map[Segment]r3.Vec

// CenterOfMass computes the mass-fraction-weighted centroid of the
// given segments. The sum is divided by the accumulated mass rather
// than assuming 1.0, so a partial segment set stays correct. An empty
// or unknown-only set yields the zero vector.
func CenterOfMass(segments SegmentPositions) r3.Vec {
	var weighted r3.Vec
	var total float64

	for seg, pos := range segments {
		mass := massFractions[seg]
		if mass == 0 {
			continue
		}
		weighted = r3.Add(weighted, r3.Scale(mass, pos))
		total += mass
	}

	if total == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/total, weighted)
}
