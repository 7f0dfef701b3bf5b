package pmi

import (
	"math"
	"testing"
)

func TestPMIBasic(t *testing.T) {
	calc := NewCalculator(1.0)

	// Strong positive association: co-occur more than expected
	pmi := calc.PMI(8, 10, 10, 20)

	if pmi <= 0 {
		t.Errorf("PMI for strong association should be positive, got %f", pmi)
	}
}

func TestPMIIndependent(t *testing.T) {
	calc := NewCalculator(1.0)

	// A in 50%, B in 50%, co-occur in 25%
	pmi := calc.PMI(25, 50, 50, 100)

	if math.Abs(pmi) > 0.5 {
		t.Errorf("PMI for independent terms should be near 0, got %f", pmi)
	}
}

func TestPMINegative(t *testing.T) {
	calc := NewCalculator(1.0)

	pmi := calc.PMI(5, 50, 50, 100)

	if pmi >= 0 {
		t.Errorf("PMI for anti-correlated terms should be negative, got %f", pmi)
	}
}

func TestPMIZeroDocuments(t *testing.T) {
	calc := NewCalculator(1.0)

	if calc.PMI(0, 0, 0, 0) != 0 {
		t.Error("PMI with zero documents should return 0")
	}
}

func TestPMIEpsilonDefault(t *testing.T) {
	// If epsilon <= 0, should default to 1.0
	calc := NewCalculator(-1.0)

	pmi := calc.PMI(5, 10, 10, 100)

	if math.IsNaN(pmi) {
		t.Error("PMI should not be NaN with negative epsilon (should default to 1.0)")
	}
}

func TestPMISymmetry(t *testing.T) {
	calc := NewCalculator(1.0)

	pmi1 := calc.PMI(10, 20, 15, 100)
	pmi2 := calc.PMI(10, 15, 20, 100)

	if math.Abs(pmi1-pmi2) > 0.0001 {
		t.Errorf("PMI should be symmetric, got %f and %f", pmi1, pmi2)
	}
}

func TestNPMIRange(t *testing.T) {
	calc := NewCalculator(1.0)

	testCases := []struct {
		nAB, nA, nB, N int64
	}{
		{50, 50, 50, 100}, // perfect overlap
		{0, 50, 50, 100},  // no overlap
		{10, 20, 20, 100}, // partial overlap
		{1, 1, 1, 1},      // single document
	}

	for _, tc := range testCases {
		npmi := calc.NPMI(tc.nAB, tc.nA, tc.nB, tc.N)
		if npmi < -1.0 || npmi > 1.0 {
			t.Errorf("NPMI out of range [-1, 1]: %f for case %+v", npmi, tc)
		}
	}
}

func TestNPMINeverCooccur(t *testing.T) {
	calc := NewCalculator(1.0)

	if got := calc.NPMI(0, 10, 10, 100); got != -1 {
		t.Errorf("NPMI for pairs that never co-occur should be -1, got %f", got)
	}
}

func TestNPMIOrdering(t *testing.T) {
	calc := NewCalculator(1.0)

	strong := calc.NPMI(18, 20, 20, 100)
	weak := calc.NPMI(4, 20, 20, 100)

	if strong <= weak {
		t.Errorf("Stronger association should have higher NPMI: %f <= %f", strong, weak)
	}
}
