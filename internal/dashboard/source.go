package dashboard

import (
	"context"
	"database/sql"
	"fmt"
)

// SubjectLatest is a user's most recent mock attempt in one subject.
type SubjectLatest struct {
	SubjectCode string
	SubjectName string
	AttemptID   int64
	Score100    float64
	FinishedAt  int64
}

// SubjectTotal sums the full-length mock scores of one subject over all users.
type SubjectTotal struct {
	SubjectCode string
	SubjectName string
	ScoreSum    float64
	Attempts    int64
}

// AttemptSource reads mock attempts already reduced per subject, so result
// size follows the number of subjects rather than attempts.
type AttemptSource interface {
	// LatestBySubject returns one row per subject the user has a mock
	// attempt in: the newest by (finished_at, id).
	LatestBySubject(ctx context.Context, userID string) ([]SubjectLatest, error)
	// FullLengthTotals returns per-subject sums and counts over every user's
	// mock attempts that answered all fullLength questions.
	FullLengthTotals(ctx context.Context, fullLength int) ([]SubjectTotal, error)
}

type SQLSource struct {
	db *sql.DB
}

func NewSQLSource(db *sql.DB) *SQLSource { return &SQLSource{db: db} }

const subjectNames = `
	LEFT JOIN (
		SELECT subject_code, MAX(subject_name) AS subject_name
		FROM exam_question_bank GROUP BY subject_code
	) m ON m.subject_code = a.subject_code`

func (s *SQLSource) LatestBySubject(ctx context.Context, userID string) ([]SubjectLatest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT subject_code, subject_name, id, score_100, finished_at
		FROM (
			SELECT a.id, a.subject_code, COALESCE(m.subject_name, a.subject_code) AS subject_name,
			       a.score_100, a.finished_at,
			       ROW_NUMBER() OVER (PARTITION BY a.subject_code
			                          ORDER BY a.finished_at DESC, a.id DESC) AS rn
			FROM user_exam_attempts a`+subjectNames+`
			WHERE a.user_id = $1 AND a.mode = 'mock'
		) ranked
		WHERE rn = 1
		ORDER BY subject_code`, userID)
	if err != nil {
		return nil, fmt.Errorf("dashboard latest scores: %w", err)
	}
	defer rows.Close()

	var out []SubjectLatest
	for rows.Next() {
		var r SubjectLatest
		if err := rows.Scan(&r.SubjectCode, &r.SubjectName, &r.AttemptID, &r.Score100, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("dashboard latest scores: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLSource) FullLengthTotals(ctx context.Context, fullLength int) ([]SubjectTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.subject_code, COALESCE(m.subject_name, a.subject_code),
		       SUM(a.score_100), COUNT(*)
		FROM user_exam_attempts a`+subjectNames+`
		WHERE a.mode = 'mock' AND a.total_questions = $1 AND a.answered_questions = $1
		GROUP BY a.subject_code, m.subject_name
		ORDER BY a.subject_code`, fullLength)
	if err != nil {
		return nil, fmt.Errorf("dashboard totals: %w", err)
	}
	defer rows.Close()

	var out []SubjectTotal
	for rows.Next() {
		var r SubjectTotal
		if err := rows.Scan(&r.SubjectCode, &r.SubjectName, &r.ScoreSum, &r.Attempts); err != nil {
			return nil, fmt.Errorf("dashboard totals: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
