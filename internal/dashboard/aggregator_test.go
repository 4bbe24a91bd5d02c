package dashboard_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-taxexam/internal/attempt"
	"github.com/mind-engage/mindengage-taxexam/internal/dashboard"
	"github.com/mind-engage/mindengage-taxexam/internal/db/dbtest"
	"github.com/mind-engage/mindengage-taxexam/internal/grading"
	"github.com/mind-engage/mindengage-taxexam/internal/users"
)

type fakeSource struct {
	latest []dashboard.SubjectLatest
	totals []dashboard.SubjectTotal
	err    error
}

func (f fakeSource) LatestBySubject(context.Context, string) ([]dashboard.SubjectLatest, error) {
	return f.latest, f.err
}

func (f fakeSource) FullLengthTotals(context.Context, int) ([]dashboard.SubjectTotal, error) {
	return f.totals, f.err
}

func TestClassify(t *testing.T) {
	cases := map[string]string{
		"세법학개론":   "세법학",
		"회계학개론":   "회계학",
		"재정학":     "재정학",
		"상법":      "선택법",
		"민법":      "선택법",
		"행정소송법":   "선택법",
		"TAX1":    "",
		"영어":      "",
	}
	for name, want := range cases {
		got, ok := dashboard.Classify(dashboard.DefaultCategories, name)
		assert.Equal(t, want != "", ok, name)
		assert.Equal(t, want, got, name)
	}

	first := []dashboard.Category{{Name: "a", Match: []string{"법"}}, {Name: "b", Match: []string{"세법"}}}
	got, _ := dashboard.Classify(first, "세법학")
	assert.Equal(t, "a", got)
}

func TestMetricsFromSource(t *testing.T) {
	src := fakeSource{
		latest: []dashboard.SubjectLatest{
			{SubjectCode: "TAX1", SubjectName: "세법학개론", AttemptID: 2, Score100: 40, FinishedAt: 100},
			{SubjectCode: "TAX2", SubjectName: "세법학각론", AttemptID: 3, Score100: 70, FinishedAt: 100},
			{SubjectCode: "CIVIL", SubjectName: "민법", AttemptID: 1, Score100: 55, FinishedAt: 90},
			{SubjectCode: "ENG", SubjectName: "영어", AttemptID: 9, Score100: 99, FinishedAt: 200},
		},
		totals: []dashboard.SubjectTotal{
			{SubjectCode: "TAX1", SubjectName: "세법학개론", ScoreSum: 125, Attempts: 2},
			{SubjectCode: "ACC", SubjectName: "회계학개론", ScoreSum: 60, Attempts: 1},
			{SubjectCode: "EMPTY", SubjectName: "재정학", ScoreSum: 0, Attempts: 0},
		},
	}
	m, err := dashboard.NewAggregator(src, nil, 0).Metrics(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"재정학", "회계학", "세법학", "선택법"}, m.Categories)
	assert.Equal(t, map[string]float64{"세법학": 70, "선택법": 55}, m.MyRecentScores)
	assert.Equal(t, map[string]float64{"세법학": 62.5, "회계학": 60}, m.OverallAvgScores)

	_, err = dashboard.NewAggregator(fakeSource{err: errors.New("boom")}, nil, 0).Metrics(context.Background(), "u1")
	assert.Error(t, err)
}

func TestMetricsFromDatabase(t *testing.T) {
	ctx := context.Background()
	dbh := dbtest.Open(t)
	dbtest.SeedQuestion(t, dbh, 2024, "TAX1", "세법학개론", 1, "1")
	rec := attempt.NewRecorder(dbh, users.NewStore())
	year := 2024

	record := func(user, subject string, total, answered, correct int, score float64) {
		t.Helper()
		_, err := rec.RecordAttempt(ctx, attempt.Record{
			UserID: user, ExamYear: &year, SubjectCode: subject,
			Result: grading.Result{Mode: grading.ModeMock, Total: total, Answered: answered, Correct: correct, Score100: score},
		})
		require.NoError(t, err)
	}
	record("u1", "TAX1", 40, 40, 20, 50)
	record("u1", "TAX1", 40, 30, 30, 75)
	record("u2", "TAX1", 40, 40, 40, 100)
	record("u1", "CIVIL", 10, 10, 5, 50)

	m, err := dashboard.NewAggregator(dashboard.NewSQLSource(dbh), nil, 40).Metrics(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"세법학": 75}, m.MyRecentScores)
	assert.Equal(t, map[string]float64{"세법학": 75}, m.OverallAvgScores)

	custom := []dashboard.Category{{Name: "민사", Match: []string{"CIVIL"}}}
	m, err = dashboard.NewAggregator(dashboard.NewSQLSource(dbh), custom, 10).Metrics(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"민사"}, m.Categories)
	assert.Equal(t, map[string]float64{"민사": 50}, m.MyRecentScores)
	assert.Equal(t, map[string]float64{"민사": 50}, m.OverallAvgScores)
}

func TestCategoryAverageIsWeightedAcrossSubjects(t *testing.T) {
	ctx := context.Background()
	dbh := dbtest.Open(t)
	dbtest.SeedQuestion(t, dbh, 2024, "TAX1", "세법학개론", 1, "1")
	dbtest.SeedQuestion(t, dbh, 2024, "TAX2", "세법학각론", 1, "1")
	rec := attempt.NewRecorder(dbh, users.NewStore())
	year := 2024

	record := func(user, subject string, score float64) {
		t.Helper()
		_, err := rec.RecordAttempt(ctx, attempt.Record{
			UserID: user, ExamYear: &year, SubjectCode: subject,
			Result: grading.Result{Mode: grading.ModeMock, Total: 40, Answered: 40, Correct: 20, Score100: score},
		})
		require.NoError(t, err)
	}
	record("u1", "TAX1", 40)
	record("u2", "TAX1", 60)
	record("u2", "TAX1", 80)
	record("u1", "TAX2", 100)

	src := dashboard.NewSQLSource(dbh)
	totals, err := src.FullLengthTotals(ctx, 40)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, dashboard.SubjectTotal{SubjectCode: "TAX1", SubjectName: "세법학개론", ScoreSum: 180, Attempts: 3}, totals[0])

	latest, err := src.LatestBySubject(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, 80.0, latest[0].Score100)

	m, err := dashboard.NewAggregator(src, nil, 40).Metrics(ctx, "u1")
	require.NoError(t, err)
	// (40+60+80+100)/4, not the mean of the two subject means
	assert.Equal(t, map[string]float64{"세법학": 70}, m.OverallAvgScores)
	assert.Equal(t, map[string]float64{"세법학": 100}, m.MyRecentScores)
}
