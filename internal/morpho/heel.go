package morpho

import "github.com/chrissnell/automorph/internal/profile"

// FindHeel walks landward from crest to the dune heel and returns it along
// with the revised crest, the highest sample between the old crest and the
// heel.
func FindHeel(p *profile.Profile, crest Marker, params Params) (heel, revised Marker) {
	last := p.Len() - 1
	if crest.Index >= last {
		return crest, crest
	}

	y := p.Y
	i := crest.Index
	for i < last {
		if y[i+1] < y[i] {
			i++
			continue
		}
		if y[crest.Index]-y[i] >= params.HeelThreshold {
			break
		}
		if flatRatio*y[i+1] >= y[i] {
			break
		}
		i++
	}

	heel = markerAt(p, i)
	revised = crest
	if i > crest.Index {
		revised = markerAt(p, argMaxRange(y, crest.Index, i-1))
	}
	return heel, revised
}
