package pose

import "gonum.org/v1/gonum/spatial/r3"

// jointDef names a joint and the landmark triplet that defines it:
// the angle is measured at the vertex between the proximal and distal
// bone vectors.
type jointDef struct {
	name     string
	proximal int
	vertex   int
	distal   int
}

// jointTable is the fixed set of joints tracked for the full-body
// skeleton.
var jointTable = []jointDef{
	{"leftElbow", LandmarkLeftShoulder, LandmarkLeftElbow, LandmarkLeftWrist},
	{"rightElbow", LandmarkRightShoulder, LandmarkRightElbow, LandmarkRightWrist},
	{"leftShoulder", LandmarkLeftElbow, LandmarkLeftShoulder, LandmarkLeftHip},
	{"rightShoulder", LandmarkRightElbow, LandmarkRightShoulder, LandmarkRightHip},
	{"leftHip", LandmarkLeftShoulder, LandmarkLeftHip, LandmarkLeftKnee},
	{"rightHip", LandmarkRightShoulder, LandmarkRightHip, LandmarkRightKnee},
	{"leftKnee", LandmarkLeftHip, LandmarkLeftKnee, LandmarkLeftAnkle},
	{"rightKnee", LandmarkRightHip, LandmarkRightKnee, LandmarkRightAnkle},
	{"leftAnkle", LandmarkLeftKnee, LandmarkLeftAnkle, LandmarkLeftFootIndex},
	{"rightAnkle", LandmarkRightKnee, LandmarkRightAnkle, LandmarkRightFootIndex},
}

// JointNames returns the names of all tracked joints in table order.
func JointNames() []string {
	names := make([]string, len(jointTable))
	for i, j := range jointTable {
		names[i] = j.name
	}
	return names
}

// CalculateJointAngles computes the angle at each tracked joint. A
// straight limb reads 180 degrees, a fully folded one 0.
//
// Angular velocity is the finite difference against the previous
// buffered frame at the nominal frame rate; it is 0 when no prior
// frame exists. Joints whose triplet falls outside the input array
// are skipped.
func (p *Processor) CalculateJointAngles(landmarks []Landmark) []JointAngleResult {
	results := make([]JointAngleResult, 0, len(jointTable))

	// The most recent history entry is the frame just processed, so
	// the prior physical frame sits one step further back.
	prevFrame := p.history.FromLatest(1)

	for _, joint := range jointTable {
		if joint.proximal >= len(landmarks) || joint.vertex >= len(landmarks) || joint.distal >= len(landmarks) {
			continue
		}

		prox := landmarks[joint.proximal]
		vert := landmarks[joint.vertex]
		dist := landmarks[joint.distal]

		v1 := r3.Sub(prox.Position(), vert.Position())
		v2 := r3.Sub(dist.Position(), vert.Position())
		angle := angleBetweenDeg(v1, v2)

		conf := (prox.VisibilityOr(1) + vert.VisibilityOr(1) + dist.VisibilityOr(1)) / 3

		var velocity float64
		if prevFrame != nil &&
			joint.proximal < len(prevFrame) && joint.vertex < len(prevFrame) && joint.distal < len(prevFrame) {
			pv1 := r3.Sub(prevFrame[joint.proximal].Position, prevFrame[joint.vertex].Position)
			pv2 := r3.Sub(prevFrame[joint.distal].Position, prevFrame[joint.vertex].Position)
			prevAngle := angleBetweenDeg(pv1, pv2)
			velocity = (angle - prevAngle) * p.config.NominalFrameRate
		}

		results = append(results, JointAngleResult{
			Name:       joint.name,
			Angle:      angle,
			Confidence: conf,
			Velocity:   velocity,
		})
	}

	return results
}
