package spec

import (
	"errors"
	"testing"
)

func TestValidate_RejectsEmptySpec(t *testing.T) {
	t.Parallel()

	var s InstanceSpec
	err := s.Validate()
	if err == nil {
		t.Fatalf("Validate() = nil, want error")
	}
	if !errors.Is(err, ErrUnsatisfiable) {
		t.Fatalf("Validate() = %v, want ErrUnsatisfiable", err)
	}
}

func TestValidate_RejectsNegativeCounts(t *testing.T) {
	t.Parallel()

	s := InstanceSpec{XUD: 2, XLD: -1}
	if err := s.Validate(); !errors.Is(err, ErrUnsatisfiable) {
		t.Fatalf("Validate() = %v, want ErrUnsatisfiable", err)
	}

	s = InstanceSpec{XUD: 2, GG: -3}
	if err := s.Validate(); !errors.Is(err, ErrUnsatisfiable) {
		t.Fatalf("Validate() = %v, want ErrUnsatisfiable", err)
	}
}

func TestValidate_AcceptsSingleLevelSpec(t *testing.T) {
	t.Parallel()

	// Upper-only shapes are legal: the coupled constraints still reference
	// both coupled segments where they are non-empty.
	s := InstanceSpec{XUC: 20, GG: 20}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestSpanWidth(t *testing.T) {
	t.Parallel()

	s := InstanceSpec{XUD: 1, YUD: 2, XUC: 3, YUC: 4, XLD: 5, YLD: 6, XLC: 7, YLC: 8}

	if got := s.SpanWidth(ConUpperDecoupled.Span()); got != 3 {
		t.Fatalf("G_ud span width = %d, want 3", got)
	}
	if got := s.SpanWidth(ConUpperCoupled.Span()); got != 10 {
		t.Fatalf("G_uc span width = %d, want 10", got)
	}
	if got := s.SpanWidth(ConGeneral.Span()); got != 22 {
		t.Fatalf("g_g span width = %d, want 22", got)
	}
	if got := s.TotalVars(); got != 36 {
		t.Fatalf("TotalVars() = %d, want 36", got)
	}
	if got := s.LevelVarCount(LevelUpper); got != 10 {
		t.Fatalf("upper level count = %d, want 10", got)
	}
}

func TestHasCoupled(t *testing.T) {
	t.Parallel()

	if (InstanceSpec{XUD: 3, XLD: 3, GUD: 1}).HasCoupled() {
		t.Fatalf("decoupled spec reported as coupled")
	}
	if !(InstanceSpec{XUD: 3, XLD: 3, GG: 1}).HasCoupled() {
		t.Fatalf("spec with g_g rows reported as decoupled")
	}
	if !(InstanceSpec{XUD: 3, YLC: 1}).HasCoupled() {
		t.Fatalf("spec with y_lc variables reported as decoupled")
	}
}

func TestCategoryMetadata(t *testing.T) {
	t.Parallel()

	if VarXUC.Level() != LevelUpper || VarYLC.Level() != LevelLower {
		t.Fatalf("variable level mapping is wrong")
	}
	if !VarYUC.Binary() || VarXLD.Binary() {
		t.Fatalf("binary flag mapping is wrong")
	}
	if !VarXLC.Coupled() || VarYUD.Coupled() {
		t.Fatalf("coupled flag mapping is wrong")
	}
	if ConUpperDecoupled.Coupled() || !ConGeneral.Coupled() {
		t.Fatalf("constraint coupled mapping is wrong")
	}
	if len(ConGeneral.Segments()) != 2 {
		t.Fatalf("g_g segments = %d, want 2", len(ConGeneral.Segments()))
	}
	if len(ConLowerDecoupled.Segments()) != 1 {
		t.Fatalf("g_ld segments = %d, want 1", len(ConLowerDecoupled.Segments()))
	}
}

func TestObjectiveTermRoles(t *testing.T) {
	t.Parallel()

	upper := 0
	for _, term := range ObjectiveTerms {
		if term.Upper() {
			upper++
		}
	}
	if upper != 3 {
		t.Fatalf("upper objective terms = %d, want 3", upper)
	}
	if got := len(ObjLowerCoupled.Span()); got != 4 {
		t.Fatalf("ff_c span length = %d, want 4", got)
	}
}
