// Package morpho locates the morphometric features of a cross-shore beach
// and dune profile (shoreline, toe, crest, heel) and integrates the beach
// and dune volumes between them.
package morpho

import (
	"errors"
	"fmt"

	"github.com/chrissnell/automorph/internal/profile"
)

// ErrEmptyProfile is returned for a profile too short to analyze
var ErrEmptyProfile = errors.New("profile has fewer than 2 samples")

// Analyze measures one canonical profile. Features are located seaward to
// landward, with each step reading the markers stored by the ones before it.
func Analyze(p *profile.Profile, params Params) (*Record, error) {
	return AnalyzeNumbered(0, p, params)
}

// AnalyzeNumbered is Analyze for the profile with the given number
func AnalyzeNumbered(number int, p *profile.Profile, params Params) (*Record, error) {
	if p == nil || p.Len() < 2 {
		return nil, fmt.Errorf("profile %d: %w", number, ErrEmptyProfile)
	}

	rec := NewRecord(number)

	rec.SetShoreline(FindShoreline(p, params))
	rec.SetCrest(FindCrest(p, params))

	heel, crest := FindHeel(p, *rec.Crest, params)
	rec.SetHeel(heel)
	rec.SetCrest(crest)

	rec.SetToe(FindToe(p, rec.Shoreline, *rec.Crest))

	rec.SetVolumes(
		DuneVolume(p, *rec.Toe, *rec.Heel),
		BeachVolume(p, rec.Shoreline, *rec.Toe),
		ProfileVolume(p, rec.Shoreline),
	)

	rec.SetOrientation(Orientation(p, rec.Shoreline, *rec.Heel))

	return rec, nil
}
