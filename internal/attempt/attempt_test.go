package attempt

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-taxexam/internal/bank"
	"github.com/mind-engage/mindengage-taxexam/internal/db/dbtest"
	"github.com/mind-engage/mindengage-taxexam/internal/grading"
	"github.com/mind-engage/mindengage-taxexam/internal/users"
)

type fixture struct {
	db  *sql.DB
	svc *Service
	rec *Recorder
	q1  int64
	q2  int64
	ox1 int64
	ox2 int64
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dbh := dbtest.Open(t)
	q1 := dbtest.SeedQuestion(t, dbh, 2024, "TAX1", "세법학개론", 1, "3 (1-2)")
	q2 := dbtest.SeedQuestion(t, dbh, 2024, "TAX1", "세법학개론", 2, "1")
	ox1 := dbtest.SeedOX(t, dbh, q1, 2024, "TAX1", 1, 1, "O", true)
	ox2 := dbtest.SeedOX(t, dbh, q1, 2024, "TAX1", 1, 2, "X", true)
	rec := NewRecorder(dbh, users.NewStore())
	svc := NewService(bank.NewSQLStore(dbh), grading.NewScorer(), rec)
	return fixture{db: dbh, svc: svc, rec: rec, q1: q1, q2: q2, ox1: ox1, ox2: ox2}
}

func count(t *testing.T, dbh *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, dbh.QueryRow(query, args...).Scan(&n))
	return n
}

func TestSubmitMockRecordsAttempt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sub, err := f.svc.SubmitMock(ctx, MockSubmission{
		UserID: "u1", ExamYear: 2024, SubjectCode: "TAX1",
		Answers:         map[int64]string{f.q1: "3", f.q2: "2", 9999: "1"},
		DurationSeconds: -5,
	})
	require.NoError(t, err)
	assert.Positive(t, sub.AttemptID)
	assert.Equal(t, 2, sub.Total)
	assert.Equal(t, 2, sub.Answered)
	assert.Equal(t, 1, sub.Correct)
	assert.Equal(t, 50.0, sub.Score100)
	assert.Equal(t, 50.0, sub.ScorePercent)

	attempts, err := f.rec.ListAttempts(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, 0, attempts[0].DurationSeconds)
	require.NotNil(t, attempts[0].ExamYear)
	assert.Equal(t, 2024, *attempts[0].ExamYear)

	answers, err := f.rec.ListAnswers(ctx, sub.AttemptID)
	require.NoError(t, err)
	require.Len(t, answers, 2)
	assert.Equal(t, "question", answers[0].ItemKind)
	require.NotNil(t, answers[0].QuestionBankID)
	assert.Equal(t, f.q1, *answers[0].QuestionBankID)
	assert.Nil(t, answers[0].OXItemID)
	assert.True(t, answers[0].IsCorrect)
	assert.Equal(t, "3", answers[0].CorrectAnswer)
	assert.False(t, answers[1].IsCorrect)

	scores, err := f.rec.ListSubjectRecentScores(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, 1, scores[0].AttemptsCount)
	assert.Equal(t, "세법학개론", scores[0].SubjectName)
	assert.Equal(t, grading.ModeMock, scores[0].Mode)
}

func TestSubmitOX(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sub, err := f.svc.SubmitOX(ctx, OXSubmission{
		UserID: "u1", SubjectCode: "TAX1",
		Answers: map[int64]string{f.ox1: " o ", f.ox2: ""},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, sub.Total)
	assert.Equal(t, 1, sub.Answered)
	assert.Equal(t, 1, sub.Correct)
	assert.Equal(t, 50.0, sub.Score100)

	answers, err := f.rec.ListAnswers(ctx, sub.AttemptID)
	require.NoError(t, err)
	require.Len(t, answers, 2)
	assert.Equal(t, "ox_item", answers[0].ItemKind)
	require.NotNil(t, answers[0].OXItemID)
	assert.Equal(t, f.ox1, *answers[0].OXItemID)
	require.NotNil(t, answers[0].ChoiceNo)
	assert.Equal(t, 1, *answers[0].ChoiceNo)

	attempts, err := f.rec.ListAttempts(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Nil(t, attempts[0].ExamYear)

	stats, err := f.rec.OXItemStats(ctx, "u1", "TAX1")
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, 100.0, stats[0].Accuracy)
	assert.Equal(t, 0.0, stats[1].Accuracy)
}

func TestSubmitEmptyBankIsNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.SubmitMock(ctx, MockSubmission{UserID: "u1", ExamYear: 1999, SubjectCode: "TAX1"})
	require.ErrorIs(t, err, grading.ErrNotFound)
	_, err = f.svc.SubmitOX(ctx, OXSubmission{UserID: "u1", SubjectCode: "NONE"})
	require.ErrorIs(t, err, grading.ErrNotFound)

	assert.Zero(t, count(t, f.db, `SELECT COUNT(*) FROM user_exam_attempts`))
	assert.Zero(t, count(t, f.db, `SELECT COUNT(*) FROM app_users`))
}

func TestSequentialAttemptsRollup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.svc.SubmitMock(ctx, MockSubmission{UserID: "u1", ExamYear: 2024, SubjectCode: "TAX1",
		Answers: map[int64]string{f.q1: "3", f.q2: "1"}})
	require.NoError(t, err)
	second, err := f.svc.SubmitMock(ctx, MockSubmission{UserID: "u1", ExamYear: 2024, SubjectCode: "TAX1",
		Answers: map[int64]string{f.q1: "1"}})
	require.NoError(t, err)
	assert.Greater(t, second.AttemptID, first.AttemptID)

	scores, err := f.rec.ListSubjectRecentScores(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, 2, scores[0].AttemptsCount)
	assert.Equal(t, second.AttemptID, scores[0].LastAttemptID)
	assert.Equal(t, 0.0, scores[0].LastScore100)

	stats, err := f.rec.MockQuestionStats(ctx, "u1", 2024, "TAX1")
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, f.q1, stats[0].ItemID)
	assert.Equal(t, 2, stats[0].SolvedCount)
	assert.Equal(t, 1, stats[0].CorrectCount)
	assert.Equal(t, 50.0, stats[0].Accuracy)
}

func TestConcurrentAttemptsCountEveryAttempt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	const n = 12

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.SubmitMock(ctx, MockSubmission{UserID: "u1", ExamYear: 2024, SubjectCode: "TAX1",
				Answers: map[int64]string{f.q1: "3"}})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	scores, err := f.rec.ListSubjectRecentScores(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, n, scores[0].AttemptsCount)
	assert.Equal(t, n, count(t, f.db, `SELECT COUNT(*) FROM user_exam_attempts WHERE user_id = $1`, "u1"))
}

func TestRecordAttemptRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	year := 2024

	// the answer row points at a question that does not exist
	_, err := f.rec.RecordAttempt(ctx, Record{
		UserID: "u1", ExamYear: &year, SubjectCode: "TAX1",
		Result: grading.Result{Mode: grading.ModeMock, Total: 1, Answered: 1, Correct: 1, Score100: 100,
			Details: []grading.Detail{{ItemID: 424242, ExamYear: 2024, SubjectCode: "TAX1", QuestionNoExam: 1, Selected: "1", Correct: "1", IsCorrect: true}}},
	})
	require.Error(t, err)

	assert.Zero(t, count(t, f.db, `SELECT COUNT(*) FROM user_exam_attempts`))
	assert.Zero(t, count(t, f.db, `SELECT COUNT(*) FROM user_exam_attempt_answers`))
	assert.Zero(t, count(t, f.db, `SELECT COUNT(*) FROM user_subject_recent_scores`))
	assert.Zero(t, count(t, f.db, `SELECT COUNT(*) FROM app_users`))
}

func TestRecordAttemptRejectsInconsistentCounts(t *testing.T) {
	f := newFixture(t)
	_, err := f.rec.RecordAttempt(context.Background(), Record{
		UserID: "u1", SubjectCode: "TAX1",
		Result: grading.Result{Mode: grading.ModeMock, Total: 1, Answered: 2, Correct: 1},
	})
	require.ErrorIs(t, err, ErrInvalidRecord)

	_, err = f.rec.RecordAttempt(context.Background(), Record{
		UserID: "u1", SubjectCode: "TAX1",
		Result: grading.Result{Mode: "essay", Total: 1},
	})
	require.ErrorIs(t, err, ErrInvalidRecord)
}

func TestRecordSurvivesCallerCancellation(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sub, err := f.svc.record(ctx, Record{
		UserID: "u1", SubjectCode: "TAX1",
		Result: grading.Result{Mode: grading.ModeOX, Total: 1, Answered: 1, Correct: 1, Score100: 100},
	})
	require.NoError(t, err)
	assert.Positive(t, sub.AttemptID)
}

func TestRebuildMatchesIncrementalRollup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for i, user := range []string{"u1", "u2", "u1", "u1", "u2"} {
		ans := map[int64]string{f.q1: "3"}
		if i%2 == 1 {
			ans[f.q2] = "1"
		}
		_, err := f.svc.SubmitMock(ctx, MockSubmission{UserID: user, ExamYear: 2024, SubjectCode: "TAX1", Answers: ans})
		require.NoError(t, err)
	}
	_, err := f.svc.SubmitOX(ctx, OXSubmission{UserID: "u1", SubjectCode: "TAX1", Answers: map[int64]string{f.ox1: "O"}})
	require.NoError(t, err)

	before := map[string][]SubjectRecentScore{}
	for _, u := range []string{"u1", "u2"} {
		before[u], err = f.rec.ListSubjectRecentScores(ctx, u)
		require.NoError(t, err)
	}

	n, err := f.rec.RebuildRecentScores(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	for _, u := range []string{"u1", "u2"} {
		after, err := f.rec.ListSubjectRecentScores(ctx, u)
		require.NoError(t, err)
		assert.ElementsMatch(t, before[u], after, "user %s", u)
	}
}

func TestRecordTimeoutOption(t *testing.T) {
	s := NewService(nil, nil, nil, WithRecordTimeout(3*time.Second), WithRecordTimeout(-1))
	assert.Equal(t, 3*time.Second, s.recordTimeout)
	assert.NotNil(t, s.scorer)
}
