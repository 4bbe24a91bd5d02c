package grading

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAnswer(t *testing.T) {
	cases := map[string]string{
		"":                   "",
		"   ":                "",
		"  3  (1-2)":         "3",
		"3 1-2":              "3",
		"2 2024년도 세무사":       "2",
		"4   2023 년도 1차":     "4",
		"보류":                 "보류",
		"5번":                 "5",
		"6":                  "6",
		"정답 없음  (1 - 3)":     "정답 없음",
		"모두 정답\n\t2025년도 기준": "모두 정답",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeAnswer(in), "input %q", in)
	}
}

func TestNormalizeAnswerDeterministic(t *testing.T) {
	for _, in := range []string{"  3  (1-2)", "보류", "2 2024년도 세무사"} {
		first := NormalizeAnswer(in)
		for i := 0; i < 5; i++ {
			require.Equal(t, first, NormalizeAnswer(in))
		}
		// normalized output is a fixed point
		assert.Equal(t, first, NormalizeAnswer(first))
	}
}

func TestNormalizeOX(t *testing.T) {
	assert.Equal(t, "O", NormalizeOX(" o "))
	assert.Equal(t, "X", NormalizeOX("x"))
	assert.Equal(t, "", NormalizeOX("  "))
	assert.True(t, IsOX("O"))
	assert.False(t, IsOX("o"))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(0, 0, 1))
	assert.Equal(t, 50.0, Percent(1, 2, 1))
	assert.Equal(t, 33.3, Percent(1, 3, 1))
	assert.Equal(t, 33.33, Percent(1, 3, 2))
	assert.Equal(t, 66.7, Percent(2, 3, 1))
	assert.Equal(t, 66.67, Percent(2, 3, 2))
	// half-up at the boundary: 1/16 = 6.25%
	assert.Equal(t, 6.3, Percent(1, 16, 1))
	assert.Equal(t, 6.25, Percent(1, 16, 2))
	assert.Equal(t, 100.0, Percent(40, 40, 1))
}

func TestScoreMock(t *testing.T) {
	items := []Item{
		{ID: 1, ExamYear: 2024, SubjectCode: "TAX1", QuestionNoExam: 1, Key: "1"},
		{ID: 2, ExamYear: 2024, SubjectCode: "TAX1", QuestionNoExam: 2, Key: "3 (1-2)"},
	}
	res, err := NewScorer().Score(ModeMock, items, map[int64]string{1: "1", 2: "2"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 2, res.Answered)
	assert.Equal(t, 1, res.Correct)
	assert.Equal(t, 50.0, res.Score100)
	assert.Equal(t, 50.0, res.ScorePercent)
	require.Len(t, res.Details, 2)
	assert.Equal(t, "3", res.Details[1].Correct)
	assert.Equal(t, "2", res.Details[1].Selected)
	assert.False(t, res.Details[1].IsCorrect)
}

func TestScoreMockTrimsAndIgnoresUnknownIDs(t *testing.T) {
	items := []Item{{ID: 10, Key: "4"}, {ID: 11, Key: "2"}}
	res, err := NewScorer().Score(ModeMock, items, map[int64]string{10: " 4 ", 99: "1", 11: "   "})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Answered)
	assert.Equal(t, 1, res.Correct)
	assert.Equal(t, 50.0, res.Score100)
}

func TestScoreMockEmptyOfficialNeverMatchesEmptySubmission(t *testing.T) {
	res, err := NewScorer().Score(ModeMock, []Item{{ID: 1, Key: ""}}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Answered)
	assert.Equal(t, 0, res.Correct)
}

func TestScoreOX(t *testing.T) {
	items := []Item{{ID: 1, Key: "O"}}
	res, err := NewScorer().Score(ModeOX, items, map[int64]string{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 0, res.Answered)
	assert.Equal(t, 0, res.Correct)
	assert.Equal(t, 0.0, res.Score100)

	res, err = NewScorer().Score(ModeOX, []Item{{ID: 1, Key: "o"}, {ID: 2, Key: ""}}, map[int64]string{1: " o", 2: "X"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Answered)
	assert.Equal(t, 1, res.Correct)
	assert.Equal(t, "O", res.Details[0].Selected)
	assert.False(t, res.Details[1].IsCorrect)
}

func TestScoreEmptySetIsNotFound(t *testing.T) {
	_, err := NewScorer().Score(ModeMock, nil, map[int64]string{1: "1"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = NewScorer().Score(ModeOX, []Item{}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScoreUnknownMode(t *testing.T) {
	_, err := NewScorer().Score(Mode("essay"), []Item{{ID: 1}}, nil)
	assert.Error(t, err)
}

func TestScoreInvariants(t *testing.T) {
	keys := []string{"1", "2", "3", "4", "5", "3 (1-2)", "보류"}
	subs := []string{"", "1", "2", "3", "4", "5", "보류"}
	for total := 1; total <= 7; total++ {
		items := make([]Item, total)
		answers := map[int64]string{}
		for i := 0; i < total; i++ {
			items[i] = Item{ID: int64(i + 1), Key: keys[i%len(keys)]}
			answers[int64(i+1)] = subs[(i*3+total)%len(subs)]
		}
		res, err := NewScorer().Score(ModeMock, items, answers)
		require.NoError(t, err)
		assert.LessOrEqual(t, 0, res.Correct)
		assert.LessOrEqual(t, res.Correct, res.Answered)
		assert.LessOrEqual(t, res.Answered, res.Total)
		want := math.Round(float64(res.Correct)/float64(res.Total)*1000) / 10
		assert.InDelta(t, want, res.Score100, 1e-9)
	}
}
