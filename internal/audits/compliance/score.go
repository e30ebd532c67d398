package compliance

import "math"

// Score computes the overall compliance score in [0,100]. Met counts 1,
// Partial counts 0.5, anything else counts 0. An empty pillar list scores 0.
// Rounded to one decimal place.
func Score(result Result) float64 {
	total := len(result.Pillars)
	if total == 0 {
		return 0
	}

	credit := 0.0
	for _, p := range result.Pillars {
		switch p.Status {
		case StatusMet:
			credit += 1
		case StatusPartial:
			credit += 0.5
		}
	}

	score := credit / float64(total) * 100
	return math.Round(score*10) / 10
}
