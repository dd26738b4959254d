package stats

import "github.com/hiel0122/youtuber-analyzer-go/internal/model"

// Comments aggregates per-video comment counts. Zero is overloaded: it means
// both "no comments" and "comments disabled", so min and avg exclude zeros
// while max and total include them.
func Comments(counts []int64) model.CommentStats {
	var cs model.CommentStats
	if len(counts) == 0 {
		return cs
	}

	var nonZero int64
	var nonZeroSum int64
	first := true

	for _, c := range counts {
		cs.Total += c
		if first || c > cs.MaxPerVideo {
			cs.MaxPerVideo = c
		}
		first = false

		if c == 0 {
			continue
		}
		nonZero++
		nonZeroSum += c
		if cs.MinPerVideo == 0 || c < cs.MinPerVideo {
			cs.MinPerVideo = c
		}
	}

	if nonZero > 0 {
		cs.AvgPerVideo = float64(nonZeroSum) / float64(nonZero)
	}
	return cs
}
