package params

import (
	"fmt"
	"math"

	"predsim/internal/simerr"
)

// freqSumTolerance is how far the four frequencies may drift from 1 before rescaling.
const freqSumTolerance = 1e-6

// KappaToTiTv converts the HKY transition/transversion rate ratio (kappa) into the
// transition/transversion ratio Seq-Gen expects, given base frequencies.
// Frequencies that do not sum to 1 are rescaled first.
func KappaToTiTv(kappa, piA, piC, piG, piT float64) (float64, error) {
	tot := piA + piC + piG + piT
	if tot == 0 || math.IsNaN(tot) || math.IsInf(tot, 0) {
		return 0, fmt.Errorf("base frequencies sum to %g: %w", tot, simerr.ErrNumericDomain)
	}
	if math.Abs(tot-1.0) > freqSumTolerance {
		piA /= tot
		piC /= tot
		piG /= tot
		piT /= tot
	}
	purines, pyrimidines := piA+piG, piC+piT
	if purines == 0 || pyrimidines == 0 {
		return 0, fmt.Errorf("purine (%g) or pyrimidine (%g) frequency sum is zero: %w",
			purines, pyrimidines, simerr.ErrNumericDomain)
	}
	titv := kappa * (piA*piG + piC*piT) / (purines * pyrimidines)
	if math.IsNaN(titv) || math.IsInf(titv, 0) {
		return 0, fmt.Errorf("ti/tv ratio %g is not finite: %w", titv, simerr.ErrNumericDomain)
	}
	return titv, nil
}
