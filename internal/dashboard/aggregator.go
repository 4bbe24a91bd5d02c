package dashboard

import (
	"context"
)

const DefaultFullLength = 40

// Metrics is the learning dashboard payload. Categories without data are
// absent from the score maps.
type Metrics struct {
	Categories       []string           `json:"categories"`
	MyRecentScores   map[string]float64 `json:"my_recent_scores"`
	OverallAvgScores map[string]float64 `json:"overall_avg_scores"`
}

type Aggregator struct {
	src        AttemptSource
	cats       []Category
	fullLength int
}

// NewAggregator uses DefaultCategories when cats is empty and
// DefaultFullLength when fullLength is not positive.
func NewAggregator(src AttemptSource, cats []Category, fullLength int) *Aggregator {
	if len(cats) == 0 {
		cats = DefaultCategories
	}
	if fullLength <= 0 {
		fullLength = DefaultFullLength
	}
	return &Aggregator{src: src, cats: cats, fullLength: fullLength}
}

func (a *Aggregator) Categories() []Category { return a.cats }

func (a *Aggregator) Metrics(ctx context.Context, userID string) (Metrics, error) {
	m := Metrics{
		Categories:       names(a.cats),
		MyRecentScores:   map[string]float64{},
		OverallAvgScores: map[string]float64{},
	}

	latest, err := a.src.LatestBySubject(ctx, userID)
	if err != nil {
		return Metrics{}, err
	}
	newest := map[string]SubjectLatest{}
	for _, r := range latest {
		cat, ok := Classify(a.cats, r.SubjectName)
		if !ok {
			continue
		}
		cur, seen := newest[cat]
		if !seen || r.FinishedAt > cur.FinishedAt || (r.FinishedAt == cur.FinishedAt && r.AttemptID > cur.AttemptID) {
			newest[cat] = r
		}
	}
	for cat, r := range newest {
		m.MyRecentScores[cat] = r.Score100
	}

	totals, err := a.src.FullLengthTotals(ctx, a.fullLength)
	if err != nil {
		return Metrics{}, err
	}
	// averages are weighted by attempt count across the category's subjects
	sums := map[string]float64{}
	counts := map[string]int64{}
	for _, r := range totals {
		cat, ok := Classify(a.cats, r.SubjectName)
		if !ok || r.Attempts <= 0 {
			continue
		}
		sums[cat] += r.ScoreSum
		counts[cat] += r.Attempts
	}
	for cat, n := range counts {
		m.OverallAvgScores[cat] = sums[cat] / float64(n)
	}
	return m, nil
}
