package morpho

import (
	"github.com/chrissnell/automorph/internal/profile"
	"gonum.org/v1/gonum/floats"
)

// FindToe locates the dune toe with the stretched sheet method (Mitasova et
// al. 2011): a straight line is stretched from the shoreline to the crest,
// and the toe is the sample lying furthest beneath it. Without a shoreline
// the line starts at the second sample.
func FindToe(p *profile.Profile, shoreline *Shoreline, crest Marker) Marker {
	anchor, anchorY := 1, 0.0
	if shoreline != nil {
		anchor, anchorY = shoreline.Index, shoreline.Y
	} else if p.Len() > 1 {
		anchorY = p.Y[1]
	} else {
		return crest
	}

	lo, hi := anchor, crest.Index
	if lo > hi {
		lo = hi
	}

	diff := make([]float64, p.Len())
	if n := crest.Index - anchor; n > 0 {
		sheet := linspace(make([]float64, n), anchorY, crest.Y)
		for j, v := range sheet {
			diff[anchor+j] = v - p.Y[anchor+j]
		}
	}

	return markerAt(p, argMaxRange(diff, lo, hi))
}

// linspace fills dst with evenly spaced values from start to stop inclusive.
// A single value is start.
func linspace(dst []float64, start, stop float64) []float64 {
	if len(dst) == 1 {
		dst[0] = start
		return dst
	}
	return floats.Span(dst, start, stop)
}
