package morpho

import (
	"github.com/chrissnell/automorph/internal/profile"
	"gonum.org/v1/gonum/floats"
)

// FindCrest locates the dune crest on p. Candidates are the local maxima
// above MHW, and a candidate qualifies when the profile landward of it drops
// by at least params.HeelThreshold before climbing above the peak again.
// A qualifying peak defers to the most seaward candidate within
// params.CrestPct of its elevation.
func FindCrest(p *profile.Profile, params Params) Marker {
	var candidates []int
	for _, pk := range localMaxima(p.Y) {
		if p.Y[pk] > params.MHW {
			candidates = append(candidates, pk)
		}
	}

	if len(candidates) == 0 {
		return markerAt(p, floats.MaxIdx(p.Y))
	}

	tested := candidates
	if !params.ScanAllPeaks {
		tested = candidates[:1]
	}

	crest := tested[0]
	for _, pk := range tested {
		crest = pk
		if backshoreDrop(p.Y, pk, params.HeelThreshold) < params.HeelThreshold {
			continue
		}

		floor := p.Y[pk] * (1 - params.CrestPct)
		for _, c := range candidates {
			if p.Y[c] > floor {
				crest = c
				break
			}
		}
		break
	}

	return markerAt(p, crest)
}

// backshoreDrop walks landward from the peak at pk and returns the last
// elevation drop seen before the walk ended. The walk ends at the landward
// end, when the profile climbs above the peak, or once the drop reaches
// threshold.
func backshoreDrop(y []float64, pk int, threshold float64) float64 {
	drop := 0.0
	for i := pk; i+1 < len(y); i++ {
		if y[i+1] > y[pk] {
			break
		}
		drop = y[pk] - y[i+1]
		if drop >= threshold {
			break
		}
	}
	return drop
}
