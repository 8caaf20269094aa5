package pose

// EnsembleInput carries the landmark arrays of up to two independent
// upstream pose sources plus the fusion parameters. Source A's
// skeleton is the base topology; Mapping pairs an index in A with the
// corresponding index in B's skeleton.
type EnsembleInput struct {
	SourceA []Landmark
	SourceB []Landmark
	Mapping map[int]int
	WeightA float64
	WeightB float64
}

// DefaultFusionMap maps the 33-point full-body skeleton (source A)
// onto a 17-keypoint COCO-style skeleton (source B) for the indices
// both topologies share.
var DefaultFusionMap = map[int]int{
	LandmarkNose:          0,
	LandmarkLeftShoulder:  5,
	LandmarkRightShoulder: 6,
	LandmarkLeftElbow:     7,
	LandmarkRightElbow:    8,
	LandmarkLeftWrist:     9,
	LandmarkRightWrist:    10,
	LandmarkLeftHip:       11,
	LandmarkRightHip:      12,
	LandmarkLeftKnee:      13,
	LandmarkRightKnee:     14,
	LandmarkLeftAnkle:     15,
	LandmarkRightAnkle:    16,
}

// FuseEnsemble fuses two independent landmark estimates into one
// skeleton. With a single source present the input is returned
// unchanged; with neither present the result is an empty skeleton.
//
// Fused positions are the weighted average of the two estimates;
// fused visibility is the maximum of the pair. Indices in source A
// with no mapping are left untouched.
func (p *Processor) FuseEnsemble(input EnsembleInput) []Landmark {
	hasA := len(input.SourceA) > 0
	hasB := len(input.SourceB) > 0

	switch {
	case !hasA && !hasB:
		return []Landmark{}
	case hasA && !hasB:
		return input.SourceA
	case !hasA && hasB:
		return input.SourceB
	}

	wa, wb := input.WeightA, input.WeightB
	if wa+wb <= 0 {
		wa, wb = 1, 1
	}

	fused := make([]Landmark, len(input.SourceA))
	copy(fused, input.SourceA)

	for ia, ib := range input.Mapping {
		if ia < 0 || ia >= len(fused) || ib < 0 || ib >= len(input.SourceB) {
			continue
		}
		a := input.SourceA[ia]
		b := input.SourceB[ib]

		fused[ia] = Landmark{
			X: (a.X*wa + b.X*wb) / (wa + wb),
			Y: (a.Y*wa + b.Y*wb) / (wa + wb),
			Z: (a.Z*wa + b.Z*wb) / (wa + wb),
		}

		if a.Visibility != nil || b.Visibility != nil {
			vis := a.VisibilityOr(0)
			if bv := b.VisibilityOr(0); bv > vis {
				vis = bv
			}
			fused[ia].Visibility = &vis
		}
	}

	return fused
}
