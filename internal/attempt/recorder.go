package attempt

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mind-engage/mindengage-taxexam/internal/db"
	"github.com/mind-engage/mindengage-taxexam/internal/grading"
	"github.com/mind-engage/mindengage-taxexam/internal/users"
)

var ErrInvalidRecord = errors.New("invalid attempt record")

// Recorder persists attempts, their answers and the per-subject rollup.
type Recorder struct {
	db    *sql.DB
	users *users.Store
	now   func() time.Time
}

func NewRecorder(d *sql.DB, u *users.Store) *Recorder {
	if u == nil {
		u = users.NewStore()
	}
	return &Recorder{db: d, users: u, now: time.Now}
}

func validate(rec Record) error {
	r := rec.Result
	switch {
	case rec.UserID == "":
		return fmt.Errorf("%w: empty user id", ErrInvalidRecord)
	case rec.SubjectCode == "":
		return fmt.Errorf("%w: empty subject code", ErrInvalidRecord)
	case !r.Mode.Valid():
		return fmt.Errorf("%w: mode %q", ErrInvalidRecord, r.Mode)
	case r.Correct < 0 || r.Correct > r.Answered || r.Answered > r.Total:
		return fmt.Errorf("%w: counts %d/%d/%d", ErrInvalidRecord, r.Correct, r.Answered, r.Total)
	}
	return nil
}

// RecordAttempt writes the attempt, its answer rows and the rollup update in
// one transaction and returns the new attempt id. Nothing is committed on
// error.
func (r *Recorder) RecordAttempt(ctx context.Context, rec Record) (int64, error) {
	if err := validate(rec); err != nil {
		return 0, err
	}
	res := rec.Result
	now := r.now().Unix()
	duration := rec.DurationSeconds
	if duration < 0 {
		duration = 0
	}

	var attemptID int64
	err := db.WithTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		if err := r.users.Ensure(ctx, tx, rec.UserID, ""); err != nil {
			return err
		}

		if err := tx.QueryRowContext(ctx, `
			INSERT INTO user_exam_attempts (
				user_id, mode, exam_year, subject_code, total_questions, answered_questions,
				correct_count, score_100, duration_seconds, started_at, finished_at, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$11)
			RETURNING id`,
			rec.UserID, string(res.Mode), db.NullInt(rec.ExamYear), rec.SubjectCode, res.Total, res.Answered,
			res.Correct, res.Score100, duration, nullString(rec.StartedAt), now).Scan(&attemptID); err != nil {
			return fmt.Errorf("insert attempt: %w", err)
		}

		if len(res.Details) > 0 {
			stmt, err := tx.PrepareContext(ctx, `
				INSERT INTO user_exam_attempt_answers (
					attempt_id, item_kind, question_bank_id, ox_item_id, exam_year, subject_code,
					question_no_exam, choice_no, selected_answer, correct_answer, is_correct, created_at)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`)
			if err != nil {
				return fmt.Errorf("prepare answers: %w", err)
			}
			defer stmt.Close()

			kind := res.Mode.ItemKind()
			for _, d := range res.Details {
				var questionID, oxID any
				if res.Mode == grading.ModeOX {
					oxID = d.ItemID
				} else {
					questionID = d.ItemID
				}
				year := d.ExamYear
				if year == 0 && rec.ExamYear != nil {
					year = *rec.ExamYear
				}
				subject := d.SubjectCode
				if subject == "" {
					subject = rec.SubjectCode
				}
				if _, err := stmt.ExecContext(ctx, attemptID, kind, questionID, oxID, year, subject,
					d.QuestionNoExam, db.NullInt(d.ChoiceNo), d.Selected, d.Correct, db.BoolInt(d.IsCorrect), now); err != nil {
					return fmt.Errorf("insert answer for item %d: %w", d.ItemID, err)
				}
			}
		}

		// attempts_count must be incremented by the conflict clause itself.
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_subject_recent_scores (
				user_id, subject_code, mode, last_attempt_id, last_exam_year,
				last_score_100, attempts_count, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,1,$7)
			ON CONFLICT (user_id, subject_code, mode) DO UPDATE SET
				last_attempt_id = excluded.last_attempt_id,
				last_exam_year = excluded.last_exam_year,
				last_score_100 = excluded.last_score_100,
				attempts_count = user_subject_recent_scores.attempts_count + 1,
				updated_at = excluded.updated_at`,
			rec.UserID, rec.SubjectCode, string(res.Mode), attemptID, db.NullInt(rec.ExamYear),
			res.Score100, now); err != nil {
			return fmt.Errorf("update recent score: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("record attempt: %w", err)
	}
	return attemptID, nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// ListSubjectRecentScores returns the user's rollup rows, most recently
// updated first.
func (r *Recorder) ListSubjectRecentScores(ctx context.Context, userID string) ([]SubjectRecentScore, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.user_id, s.subject_code, COALESCE(m.subject_name, s.subject_code), s.mode,
		       s.last_attempt_id, s.last_exam_year, s.last_score_100, s.attempts_count, s.updated_at
		FROM user_subject_recent_scores s
		LEFT JOIN (
			SELECT subject_code, MAX(subject_name) AS subject_name
			FROM exam_question_bank GROUP BY subject_code
		) m ON m.subject_code = s.subject_code
		WHERE s.user_id = $1
		ORDER BY s.updated_at DESC, s.last_attempt_id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list recent scores: %w", err)
	}
	defer rows.Close()

	out := []SubjectRecentScore{}
	for rows.Next() {
		s, err := scanRecentScore(rows)
		if err != nil {
			return nil, fmt.Errorf("list recent scores: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanRecentScore(rows *sql.Rows) (SubjectRecentScore, error) {
	var s SubjectRecentScore
	var mode string
	var year sql.NullInt64
	if err := rows.Scan(&s.UserID, &s.SubjectCode, &s.SubjectName, &mode, &s.LastAttemptID,
		&year, &s.LastScore100, &s.AttemptsCount, &s.UpdatedAt); err != nil {
		return SubjectRecentScore{}, err
	}
	s.Mode = grading.Mode(mode)
	s.LastExamYear = db.IntPtr(year)
	return s, nil
}

// RebuildRecentScores recomputes the rollup table from the attempt log.
func (r *Recorder) RebuildRecentScores(ctx context.Context) (int64, error) {
	var n int64
	err := db.WithTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_subject_recent_scores`); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO user_subject_recent_scores (
				user_id, subject_code, mode, last_attempt_id, last_exam_year,
				last_score_100, attempts_count, updated_at)
			SELECT user_id, subject_code, mode, id, exam_year, score_100, n, finished_at
			FROM (
				SELECT id, user_id, subject_code, mode, exam_year, score_100, finished_at,
				       ROW_NUMBER() OVER (PARTITION BY user_id, subject_code, mode
				                          ORDER BY finished_at DESC, id DESC) AS rn,
				       COUNT(*) OVER (PARTITION BY user_id, subject_code, mode) AS n
				FROM user_exam_attempts
			) ranked
			WHERE rn = 1`)
		if err != nil {
			return err
		}
		n, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("rebuild recent scores: %w", err)
	}
	return n, nil
}

// MockQuestionStats returns per-question solve counts for one exam paper.
func (r *Recorder) MockQuestionStats(ctx context.Context, userID string, examYear int, subjectCode string) ([]ItemStat, error) {
	return r.itemStats(ctx, `
		SELECT a.question_bank_id, COUNT(*),
		       COALESCE(SUM(CASE WHEN a.is_correct = 1 THEN 1 ELSE 0 END), 0)
		FROM user_exam_attempt_answers a
		JOIN user_exam_attempts t ON t.id = a.attempt_id
		WHERE a.item_kind = 'question' AND t.user_id = $1
		  AND a.exam_year = $2 AND a.subject_code = $3
		  AND a.question_bank_id IS NOT NULL
		GROUP BY a.question_bank_id
		ORDER BY a.question_bank_id`, userID, examYear, subjectCode)
}

// OXItemStats returns per-OX-item solve counts for one subject.
func (r *Recorder) OXItemStats(ctx context.Context, userID, subjectCode string) ([]ItemStat, error) {
	return r.itemStats(ctx, `
		SELECT a.ox_item_id, COUNT(*),
		       COALESCE(SUM(CASE WHEN a.is_correct = 1 THEN 1 ELSE 0 END), 0)
		FROM user_exam_attempt_answers a
		JOIN user_exam_attempts t ON t.id = a.attempt_id
		WHERE a.item_kind = 'ox_item' AND t.user_id = $1
		  AND a.subject_code = $2
		  AND a.ox_item_id IS NOT NULL
		GROUP BY a.ox_item_id
		ORDER BY a.ox_item_id`, userID, subjectCode)
}

func (r *Recorder) itemStats(ctx context.Context, query string, args ...any) ([]ItemStat, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("item stats: %w", err)
	}
	defer rows.Close()

	out := []ItemStat{}
	for rows.Next() {
		var s ItemStat
		if err := rows.Scan(&s.ItemID, &s.SolvedCount, &s.CorrectCount); err != nil {
			return nil, fmt.Errorf("item stats: %w", err)
		}
		s.Accuracy = grading.Percent(s.CorrectCount, s.SolvedCount, 1)
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListAttempts returns a user's attempts, newest first.
func (r *Recorder) ListAttempts(ctx context.Context, userID string, limit int) ([]Attempt, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, mode, exam_year, subject_code, total_questions, answered_questions,
		       correct_count, score_100, duration_seconds, started_at, finished_at, created_at
		FROM user_exam_attempts
		WHERE user_id = $1
		ORDER BY finished_at DESC, id DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	out := []Attempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("list attempts: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAttempt(rows *sql.Rows) (Attempt, error) {
	var a Attempt
	var mode string
	var year sql.NullInt64
	var started sql.NullString
	if err := rows.Scan(&a.ID, &a.UserID, &mode, &year, &a.SubjectCode, &a.TotalQuestions,
		&a.AnsweredQuestions, &a.CorrectCount, &a.Score100, &a.DurationSeconds, &started,
		&a.FinishedAt, &a.CreatedAt); err != nil {
		return Attempt{}, err
	}
	a.Mode = grading.Mode(mode)
	a.ExamYear = db.IntPtr(year)
	if started.Valid {
		s := started.String
		a.StartedAt = &s
	}
	return a, nil
}

// ListAnswers returns the answer rows of one attempt in insertion order.
func (r *Recorder) ListAnswers(ctx context.Context, attemptID int64) ([]Answer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, attempt_id, item_kind, question_bank_id, ox_item_id, exam_year, subject_code,
		       question_no_exam, choice_no, selected_answer, correct_answer, is_correct, created_at
		FROM user_exam_attempt_answers
		WHERE attempt_id = $1
		ORDER BY id`, attemptID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	out := []Answer{}
	for rows.Next() {
		var a Answer
		var qid, oxid, choice sql.NullInt64
		var correct int
		if err := rows.Scan(&a.ID, &a.AttemptID, &a.ItemKind, &qid, &oxid, &a.ExamYear, &a.SubjectCode,
			&a.QuestionNoExam, &choice, &a.SelectedAnswer, &a.CorrectAnswer, &correct, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("list answers: %w", err)
		}
		if qid.Valid {
			a.QuestionBankID = &qid.Int64
		}
		if oxid.Valid {
			a.OXItemID = &oxid.Int64
		}
		a.ChoiceNo = db.IntPtr(choice)
		a.IsCorrect = correct != 0
		out = append(out, a)
	}
	return out, rows.Err()
}
