package bank

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

const questionColumns = `id, exam_year, subject_code, subject_name, question_no_exam, question_no_subject,
	question_text, choices_json, service_answer, explanation_text, updated_at`

func scanQuestion(r rowScanner) (Question, error) {
	var q Question
	var choices string
	if err := r.Scan(&q.ID, &q.ExamYear, &q.SubjectCode, &q.SubjectName, &q.QuestionNoExam,
		&q.QuestionNoSubject, &q.QuestionText, &choices, &q.ServiceAnswer, &q.ExplanationText, &q.UpdatedAt); err != nil {
		return Question{}, err
	}
	if err := json.Unmarshal([]byte(choices), &q.Choices); err != nil {
		return Question{}, fmt.Errorf("question %d: decode choices: %w", q.ID, err)
	}
	return q, nil
}

const oxColumns = `o.id, o.question_bank_id, o.exam_year, o.subject_code,
	COALESCE(q.subject_name, o.subject_code), o.question_no_exam, o.choice_no, o.choice_text,
	o.choice_explanation_text, o.expected_ox, o.judge_reason, o.judge_confidence, o.is_ox_eligible`

func scanOXItem(r rowScanner) (OXItem, error) {
	var o OXItem
	var eligible int
	if err := r.Scan(&o.ID, &o.QuestionBankID, &o.ExamYear, &o.SubjectCode, &o.SubjectName,
		&o.QuestionNoExam, &o.ChoiceNo, &o.ChoiceText, &o.ChoiceExplanationText, &o.ExpectedOX,
		&o.JudgeReason, &o.JudgeConfidence, &eligible); err != nil {
		return OXItem{}, err
	}
	o.Eligible = eligible != 0
	return o, nil
}

// ListMockOptions counts bank questions per (year, subject), newest year first.
func (s *SQLStore) ListMockOptions(ctx context.Context) ([]MockOption, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT exam_year, subject_code, subject_name,
		       COUNT(*) AS total_questions,
		       COALESCE(SUM(CASE WHEN service_answer <> '' THEN 1 ELSE 0 END), 0) AS answered_questions
		FROM exam_question_bank
		GROUP BY exam_year, subject_code, subject_name
		ORDER BY exam_year DESC, subject_name`)
	if err != nil {
		return nil, fmt.Errorf("list mock options: %w", err)
	}
	defer rows.Close()

	var out []MockOption
	for rows.Next() {
		var o MockOption
		if err := rows.Scan(&o.ExamYear, &o.SubjectCode, &o.SubjectName, &o.TotalQuestions, &o.AnsweredQuestions); err != nil {
			return nil, fmt.Errorf("list mock options: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// GetMockQuestions returns one paper ordered by question number.
func (s *SQLStore) GetMockQuestions(ctx context.Context, examYear int, subjectCode string) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+questionColumns+`
		FROM exam_question_bank
		WHERE exam_year = $1 AND subject_code = $2
		ORDER BY question_no_exam, id`, examYear, subjectCode)
	if err != nil {
		return nil, fmt.Errorf("get mock questions: %w", err)
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("get mock questions: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// GetOXQuestions returns the eligible OX items of a subject across all years.
func (s *SQLStore) GetOXQuestions(ctx context.Context, subjectCode string) ([]OXItem, error) {
	return s.queryOX(ctx, `SELECT `+oxColumns+`
		FROM exam_choice_ox_bank o
		LEFT JOIN exam_question_bank q ON q.id = o.question_bank_id
		WHERE o.subject_code = $1 AND o.is_ox_eligible = 1
		ORDER BY o.exam_year DESC, o.question_no_exam, o.choice_no, o.id`, subjectCode)
}

// GetOXCandidates is GetOXQuestions limited to one exam year.
func (s *SQLStore) GetOXCandidates(ctx context.Context, examYear int, subjectCode string) ([]OXItem, error) {
	return s.queryOX(ctx, `SELECT `+oxColumns+`
		FROM exam_choice_ox_bank o
		LEFT JOIN exam_question_bank q ON q.id = o.question_bank_id
		WHERE o.exam_year = $1 AND o.subject_code = $2 AND o.is_ox_eligible = 1
		ORDER BY o.question_no_exam, o.choice_no, o.id`, examYear, subjectCode)
}

func (s *SQLStore) queryOX(ctx context.Context, query string, args ...any) ([]OXItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get ox items: %w", err)
	}
	defer rows.Close()

	var out []OXItem
	for rows.Next() {
		o, err := scanOXItem(rows)
		if err != nil {
			return nil, fmt.Errorf("get ox items: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ListOXSubjectOptions counts eligible OX items per subject.
func (s *SQLStore) ListOXSubjectOptions(ctx context.Context) ([]OXSubjectOption, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.subject_code,
		       COALESCE(MAX(q.subject_name), o.subject_code) AS subject_name,
		       COUNT(*) AS total_items
		FROM exam_choice_ox_bank o
		LEFT JOIN exam_question_bank q ON q.id = o.question_bank_id
		WHERE o.is_ox_eligible = 1
		GROUP BY o.subject_code
		ORDER BY subject_name`)
	if err != nil {
		return nil, fmt.Errorf("list ox options: %w", err)
	}
	defer rows.Close()

	var out []OXSubjectOption
	for rows.Next() {
		var o OXSubjectOption
		if err := rows.Scan(&o.SubjectCode, &o.SubjectName, &o.TotalItems); err != nil {
			return nil, fmt.Errorf("list ox options: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// GetExplanation returns the raw stored answer; callers normalize it.
func (s *SQLStore) GetExplanation(ctx context.Context, questionID int64) (Explanation, error) {
	var e Explanation
	err := s.db.QueryRowContext(ctx, `
		SELECT id, exam_year, subject_code, subject_name, question_no_exam, question_text,
		       CASE WHEN service_answer <> '' THEN service_answer ELSE official_answer END,
		       explanation_text
		FROM exam_question_bank WHERE id = $1`, questionID).
		Scan(&e.ID, &e.ExamYear, &e.SubjectCode, &e.SubjectName, &e.QuestionNoExam,
			&e.QuestionText, &e.CorrectAnswer, &e.ExplanationText)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Explanation{}, ErrQuestionNotFound
		}
		return Explanation{}, fmt.Errorf("get explanation: %w", err)
	}
	return e, nil
}
