package features

import "metabot/internal/rts"

// Extractor turns a state into range-annotated features
type Extractor interface {
	// Names lists the feature catalog for a world, in a stable order
	Names(w rts.World) []string
	// RawFeatures computes unnormalized features from player's viewpoint
	RawFeatures(s rts.State, player int) Vector
}

// Normalized extracts features and min-max scales each one onto [0, 1]
func Normalized(e Extractor, s rts.State, player int) Vector {
	v := e.RawFeatures(s, player)
	for _, f := range v {
		f.MinMaxScale()
	}
	return v
}
