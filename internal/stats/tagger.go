package stats

import (
	"sort"
	"strings"

	"github.com/hiel0122/youtuber-analyzer-go/internal/model"
)

// Tagger assigns heuristic tags to a channel from its reconciled dataset.
// Implementations must be deterministic given identical input; beyond that
// the tags carry no correctness guarantee.
type Tagger interface {
	Tags(videos []model.Video, freq model.UploadFrequency) []string
}

// KeywordTagger matches video titles against a fixed topic taxonomy and adds
// upload-cadence and engagement tiers.
type KeywordTagger struct {
	taxonomy map[string][]string
}

// NewKeywordTagger returns a tagger with the default taxonomy.
func NewKeywordTagger() *KeywordTagger {
	return &KeywordTagger{taxonomy: map[string][]string{
		"gaming":    {"gameplay", "playthrough", "speedrun", "gaming", "minecraft", "fortnite"},
		"tech":      {"review", "unboxing", "benchmark", "smartphone", "laptop", "gpu"},
		"education": {"tutorial", "explained", "how to", "course", "lesson", "guide"},
		"music":     {"official video", "official audio", "lyric", "cover", "remix", "live performance"},
		"vlog":      {"vlog", "day in the life", "travel", "routine"},
		"news":      {"breaking", "news", "update", "announcement"},
	}}
}

const taggerMinMatches = 3

func (t *KeywordTagger) Tags(videos []model.Video, freq model.UploadFrequency) []string {
	matches := make(map[string]int)
	for _, v := range videos {
		title := strings.ToLower(v.Title)
		for topic, keywords := range t.taxonomy {
			for _, kw := range keywords {
				if strings.Contains(title, kw) {
					matches[topic]++
					break
				}
			}
		}
	}

	var tags []string
	for topic, n := range matches {
		if n >= taggerMinMatches {
			tags = append(tags, topic)
		}
	}
	sort.Strings(tags)

	tags = append(tags, cadenceTier(freq))
	if tier := engagementTier(videos); tier != "" {
		tags = append(tags, tier)
	}
	return tags
}

func cadenceTier(freq model.UploadFrequency) string {
	switch {
	case freq.PerWeek >= 5:
		return "daily-uploader"
	case freq.PerWeek >= 1:
		return "weekly-uploader"
	case freq.PerMonth >= 1:
		return "monthly-uploader"
	default:
		return "occasional-uploader"
	}
}

// engagementTier buckets the aggregate like/view ratio.
func engagementTier(videos []model.Video) string {
	var views, likes int64
	for _, v := range videos {
		views += v.Views
		likes += v.Likes
	}
	if views == 0 {
		return ""
	}
	rate := float64(likes) / float64(views)
	switch {
	case rate >= 0.05:
		return "high-engagement"
	case rate >= 0.02:
		return "medium-engagement"
	default:
		return "low-engagement"
	}
}
