package pyramid

// SelectLevel picks the pyramid level to decode for a region of
// width x height level-0 pixels under a pixel budget of maxPixels per
// output side.
//
// The required downsample is the factor at which the region's longest side
// would already fit the budget if read directly. The chosen level is the
// coarsest one whose downsample does not exceed that factor, so the decoded
// block is never less detailed than the output demands and precision loss
// is confined to the final resize. If even level 0 exceeds the factor (the
// region is already smaller than the budget), level 0 is used.
func SelectLevel(width, height int64, maxPixels int, downsamples []float64) LevelChoice {
	longest := width
	if height > longest {
		longest = height
	}
	required := float64(longest) / float64(maxPixels)
	return bestLevelForDownsample(downsamples, required)
}

// bestLevelForDownsample returns the highest-index level whose downsample
// is <= required, falling back to level 0. The downsample table is
// ascending, so the scan stops at the first level that exceeds required.
func bestLevelForDownsample(downsamples []float64, required float64) LevelChoice {
	choice := LevelChoice{Level: 0, Downsample: 1.0}
	if len(downsamples) > 0 {
		choice.Downsample = downsamples[0]
	}
	for i, ds := range downsamples {
		if ds > required {
			break
		}
		choice = LevelChoice{Level: i, Downsample: ds}
	}
	return choice
}
