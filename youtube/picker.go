package youtube

import (
	"math/rand"
	"time"
)

// Picker selects a random video from a candidate list, avoiding videos
// that were delivered recently.
type Picker struct {
	r *rand.Rand
}

// NewPicker creates a picker seeded from the current time.
func NewPicker() *Picker {
	return &Picker{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewPickerWithSeed creates a deterministic picker for tests.
func NewPickerWithSeed(seed int64) *Picker {
	return &Picker{r: rand.New(rand.NewSource(seed))}
}

// Pick returns a uniformly random member of videos whose ID is not in
// exclude. If excluding leaves nothing, the exclusion is dropped and the
// pick is made over the full list, so a channel whose uploads have all
// been delivered starts over rather than going silent.
//
// Returns ErrNoVideos when videos is empty.
func (p *Picker) Pick(videos []VideoInfo, exclude map[string]struct{}) (VideoInfo, error) {
	if len(videos) == 0 {
		return VideoInfo{}, ErrNoVideos
	}

	candidates := videos
	if len(exclude) > 0 {
		filtered := make([]VideoInfo, 0, len(videos))
		for _, v := range videos {
			if _, sent := exclude[v.ID]; !sent {
				filtered = append(filtered, v)
			}
		}
		if len(filtered) > 0 {
			candidates = filtered
		}
	}

	return candidates[p.r.Intn(len(candidates))], nil
}
