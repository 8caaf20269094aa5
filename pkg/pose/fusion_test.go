package pose

import "testing"

func TestFuseEnsemble_SingleSourceUnchanged(t *testing.T) {
	p := NewProcessor(DefaultConfig())

	sourceA := makeFrame(LandmarkCount, 0.4, 0.6, 0.1, 0.8)
	fused := p.FuseEnsemble(EnsembleInput{
		SourceA: sourceA,
		Mapping: DefaultFusionMap,
		WeightA: 1, WeightB: 1,
	})

	if len(fused) != len(sourceA) {
		t.Fatalf("length: got %d, want %d", len(fused), len(sourceA))
	}
	for i := range fused {
		if fused[i].X != sourceA[i].X || fused[i].Y != sourceA[i].Y || fused[i].Z != sourceA[i].Z {
			t.Errorf("landmark %d altered: got %+v, want %+v", i, fused[i], sourceA[i])
		}
	}
}

func TestFuseEnsemble_NoSourcesReturnsEmpty(t *testing.T) {
	p := NewProcessor(DefaultConfig())

	fused := p.FuseEnsemble(EnsembleInput{Mapping: DefaultFusionMap, WeightA: 1, WeightB: 1})
	if fused == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(fused) != 0 {
		t.Errorf("expected empty skeleton, got %d landmarks", len(fused))
	}
}

func TestFuseEnsemble_WeightedAverage(t *testing.T) {
	p := NewProcessor(DefaultConfig())

	sourceA := makeFrame(LandmarkCount, 0.0, 0.0, 0.0, 0.5)
	sourceB := make([]Landmark, 17)
	for i := range sourceB {
		sourceB[i] = Landmark{X: 1.0, Y: 1.0, Z: 1.0, Visibility: vis(0.9)}
	}

	fused := p.FuseEnsemble(EnsembleInput{
		SourceA: sourceA,
		SourceB: sourceB,
		Mapping: DefaultFusionMap,
		WeightA: 3, WeightB: 1,
	})

	// Mapped index: (0*3 + 1*1) / 4 = 0.25.
	nose := fused[LandmarkNose]
	if !floatEquals(nose.X, 0.25) {
		t.Errorf("fused nose X: got %v, want 0.25", nose.X)
	}

	// Fused visibility is the max of the pair.
	if nose.Visibility == nil || !floatEquals(*nose.Visibility, 0.9) {
		t.Errorf("fused visibility: got %v, want 0.9", nose.Visibility)
	}
}

func TestFuseEnsemble_UnmappedIndicesUntouched(t *testing.T) {
	p := NewProcessor(DefaultConfig())

	sourceA := makeFrame(LandmarkCount, 0.2, 0.2, 0.2, 0.5)
	sourceB := make([]Landmark, 17)
	for i := range sourceB {
		sourceB[i] = Landmark{X: 1.0, Y: 1.0, Z: 1.0}
	}

	fused := p.FuseEnsemble(EnsembleInput{
		SourceA: sourceA,
		SourceB: sourceB,
		Mapping: DefaultFusionMap,
		WeightA: 1, WeightB: 1,
	})

	// Heels only exist in the 33-point skeleton; no mapping entry.
	if !floatEquals(fused[LandmarkLeftHeel].X, 0.2) {
		t.Errorf("unmapped landmark altered: got %v, want 0.2", fused[LandmarkLeftHeel].X)
	}
}

func TestFuseEnsemble_ZeroWeightsFallBackToEqual(t *testing.T) {
	p := NewProcessor(DefaultConfig())

	sourceA := makeFrame(LandmarkCount, 0.0, 0.0, 0.0, 1.0)
	sourceB := make([]Landmark, 17)
	for i := range sourceB {
		sourceB[i] = Landmark{X: 1.0, Y: 0, Z: 0}
	}

	fused := p.FuseEnsemble(EnsembleInput{
		SourceA: sourceA,
		SourceB: sourceB,
		Mapping: DefaultFusionMap,
	})

	if !floatEquals(fused[LandmarkNose].X, 0.5) {
		t.Errorf("equal-weight fallback: got %v, want 0.5", fused[LandmarkNose].X)
	}
}

func TestFuseEnsemble_MappingOutOfRangeIgnored(t *testing.T) {
	p := NewProcessor(DefaultConfig())

	sourceA := makeFrame(5, 0.2, 0.2, 0.2, 1.0)
	sourceB := []Landmark{{X: 1, Y: 1, Z: 1}}

	fused := p.FuseEnsemble(EnsembleInput{
		SourceA: sourceA,
		SourceB: sourceB,
		Mapping: map[int]int{0: 0, 3: 9, 40: 0},
		WeightA: 1, WeightB: 1,
	})

	if len(fused) != 5 {
		t.Fatalf("length: got %d, want 5", len(fused))
	}
	if !floatEquals(fused[0].X, 0.6) {
		t.Errorf("valid pair should fuse: got %v, want 0.6", fused[0].X)
	}
	if !floatEquals(fused[3].X, 0.2) {
		t.Errorf("pair with out-of-range B index should be skipped: got %v", fused[3].X)
	}
}
