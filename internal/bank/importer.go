package bank

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mind-engage/mindengage-taxexam/internal/db"
	"github.com/mind-engage/mindengage-taxexam/internal/grading"
)

// BuildResult summarizes one service-bank build.
type BuildResult struct {
	RunID         string `json:"run_id"`
	QuestionCount int    `json:"question_count"`
	OXItemCount   int    `json:"ox_item_count"`
	SkippedRows   int    `json:"skipped_rows"`
}

// SourceQuestion is one row of the authoring database, before dedup.
type SourceQuestion struct {
	ExamYear          int
	BookletType       string
	SubjectName       string
	SubjectCode       string
	QuestionNoExam    int
	QuestionNoSubject int
	QuestionText      string
	ChoicesJSON       string
	OfficialAnswer    string
	ServiceAnswer     string
	ExplanationText   string
}

// SourceOXItem is one eligible OX row of the authoring database.
type SourceOXItem struct {
	ExamYear              int
	SubjectCode           string
	QuestionNoExam        int
	ChoiceNo              int
	ChoiceText            string
	ChoiceExplanationText string
	ExpectedOX            string
	JudgeReason           string
}

// Importer builds the service question bank from an authoring database.
type Importer struct {
	source *sql.DB
	target *sql.DB
	log    zerolog.Logger
	now    func() time.Time

	// Overwrite clears the target bank before inserting.
	Overwrite bool
}

func NewImporter(source, target *sql.DB, log zerolog.Logger) *Importer {
	return &Importer{source: source, target: target, log: log, now: time.Now, Overwrite: true}
}

func (im *Importer) Build(ctx context.Context) (BuildResult, error) {
	res := BuildResult{RunID: uuid.NewString()}
	log := im.log.With().Str("run_id", res.RunID).Logger()

	srcQuestions, err := readSourceQuestions(ctx, im.source)
	if err != nil {
		return res, err
	}
	srcOX, err := readSourceOXItems(ctx, im.source)
	if err != nil {
		return res, err
	}

	questions, skippedQ := pickQuestions(srcQuestions)
	oxItems, skippedOX := pickOXItems(srcOX, questions)
	res.SkippedRows = skippedQ + skippedOX
	log.Info().
		Int("source_questions", len(srcQuestions)).
		Int("source_ox_items", len(srcOX)).
		Int("picked_questions", questions.Len()).
		Int("picked_ox_items", oxItems.Len()).
		Msg("bank build: source read")

	now := im.now().Unix()
	err = db.WithTx(ctx, im.target, nil, func(tx *sql.Tx) error {
		if im.Overwrite {
			if _, err := tx.ExecContext(ctx, `DELETE FROM exam_choice_ox_bank`); err != nil {
				return fmt.Errorf("clear ox bank: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM exam_question_bank`); err != nil {
				return fmt.Errorf("clear question bank: %w", err)
			}
		}

		ids := make(map[QuestionKey]int64, questions.Len())
		for _, k := range questions.Keys() {
			q, _ := questions.Get(k)
			choices, err := json.Marshal(q.Choices)
			if err != nil {
				return err
			}
			var id int64
			if err := tx.QueryRowContext(ctx, `
				INSERT INTO exam_question_bank (
					exam_year, booklet_type, subject_name, subject_code, question_no_exam,
					question_no_subject, question_text, choices_json, official_answer,
					service_answer, explanation_text, updated_at)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
				RETURNING id`,
				q.ExamYear, BookletType, q.SubjectName, q.SubjectCode, q.QuestionNoExam,
				q.QuestionNoSubject, q.QuestionText, string(choices), q.official,
				q.ServiceAnswer, q.ExplanationText, now).Scan(&id); err != nil {
				return fmt.Errorf("insert question %v: %w", k, err)
			}
			ids[k] = id
		}

		for _, o := range oxItems.Items() {
			parent := ids[QuestionKey{ExamYear: o.ExamYear, SubjectCode: o.SubjectCode, QuestionNoExam: o.QuestionNoExam}]
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO exam_choice_ox_bank (
					question_bank_id, exam_year, subject_code, question_no_exam, choice_no,
					choice_text, choice_explanation_text, is_ox_eligible, expected_ox,
					judge_reason, judge_confidence, updated_at)
				VALUES ($1,$2,$3,$4,$5,$6,$7,1,$8,$9,'service_import',$10)`,
				parent, o.ExamYear, o.SubjectCode, o.QuestionNoExam, o.ChoiceNo,
				o.ChoiceText, o.ChoiceExplanationText, o.ExpectedOX, o.JudgeReason, now); err != nil {
				return fmt.Errorf("insert ox item %d/%s/%d/%d: %w", o.ExamYear, o.SubjectCode, o.QuestionNoExam, o.ChoiceNo, err)
			}
		}
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("bank build: %w", err)
	}

	res.QuestionCount = questions.Len()
	res.OXItemCount = oxItems.Len()
	log.Info().Int("questions", res.QuestionCount).Int("ox_items", res.OXItemCount).
		Int("skipped", res.SkippedRows).Msg("bank build: done")
	return res, nil
}

// pickedQuestion keeps the raw official answer alongside the cleaned record.
type pickedQuestion struct {
	Question
	official string
}

// pickQuestions dedups source rows (first seen wins per QuestionKey) and
// drops rows without a usable answer or with fewer than two choices.
// Rows must already be in source priority order.
func pickQuestions(rows []SourceQuestion) (*Accumulator[QuestionKey, pickedQuestion], int) {
	acc := NewAccumulator[QuestionKey, pickedQuestion]()
	skipped := 0
	for _, r := range rows {
		key := QuestionKey{ExamYear: r.ExamYear, SubjectCode: r.SubjectCode, QuestionNoExam: r.QuestionNoExam}
		if acc.Has(key) {
			continue
		}
		raw := r.ServiceAnswer
		if strings.TrimSpace(raw) == "" {
			raw = r.OfficialAnswer
		}
		answer := grading.NormalizeAnswer(raw)
		if answer == "" {
			skipped++
			continue
		}
		var choices []string
		if err := json.Unmarshal([]byte(r.ChoicesJSON), &choices); err != nil || len(choices) < 2 {
			skipped++
			continue
		}
		name := r.SubjectName
		if name == "" {
			name = r.SubjectCode
		}
		acc.Add(key, pickedQuestion{
			Question: Question{
				ExamYear:          r.ExamYear,
				SubjectCode:       r.SubjectCode,
				SubjectName:       name,
				QuestionNoExam:    r.QuestionNoExam,
				QuestionNoSubject: r.QuestionNoSubject,
				QuestionText:      r.QuestionText,
				Choices:           choices,
				ServiceAnswer:     answer,
				ExplanationText:   r.ExplanationText,
			},
			official: r.OfficialAnswer,
		})
	}
	return acc, skipped
}

// pickOXItems dedups OX rows per OXKey, keeping only rows with a recognized
// O/X value whose parent question was picked.
func pickOXItems(rows []SourceOXItem, parents *Accumulator[QuestionKey, pickedQuestion]) (*Accumulator[OXKey, SourceOXItem], int) {
	acc := NewAccumulator[OXKey, SourceOXItem]()
	skipped := 0
	for _, r := range rows {
		r.ExpectedOX = grading.NormalizeOX(r.ExpectedOX)
		if !grading.IsOX(r.ExpectedOX) {
			skipped++
			continue
		}
		qk := QuestionKey{ExamYear: r.ExamYear, SubjectCode: r.SubjectCode, QuestionNoExam: r.QuestionNoExam}
		if !parents.Has(qk) {
			skipped++
			continue
		}
		if r.ChoiceExplanationText == "" {
			r.ChoiceExplanationText = r.JudgeReason
		}
		acc.Add(OXKey{QuestionKey: qk, ChoiceNo: r.ChoiceNo}, r)
	}
	return acc, skipped
}

func readSourceQuestions(ctx context.Context, src *sql.DB) ([]SourceQuestion, error) {
	rows, err := src.QueryContext(ctx, `
		SELECT exam_year, booklet_type, subject_name, subject_code, question_no_exam,
		       question_no_subject, question_text, choices_json, official_answer,
		       service_answer, explanation_text
		FROM exam_question_bank
		ORDER BY exam_year, subject_code, question_no_exam,
		         CASE booklet_type WHEN 'A' THEN 0 WHEN 'B' THEN 1 ELSE 9 END,
		         id`)
	if err != nil {
		return nil, fmt.Errorf("read source questions: %w", err)
	}
	defer rows.Close()

	var out []SourceQuestion
	for rows.Next() {
		var r SourceQuestion
		var booklet, name, text, choices, official, service, explanation sql.NullString
		var noSubject sql.NullInt64
		if err := rows.Scan(&r.ExamYear, &booklet, &name, &r.SubjectCode, &r.QuestionNoExam,
			&noSubject, &text, &choices, &official, &service, &explanation); err != nil {
			return nil, fmt.Errorf("read source questions: %w", err)
		}
		r.BookletType = booklet.String
		r.SubjectName = name.String
		r.QuestionNoSubject = int(noSubject.Int64)
		r.QuestionText = text.String
		r.ChoicesJSON = choices.String
		if r.ChoicesJSON == "" {
			r.ChoicesJSON = "[]"
		}
		r.OfficialAnswer = official.String
		r.ServiceAnswer = service.String
		r.ExplanationText = explanation.String
		out = append(out, r)
	}
	return out, rows.Err()
}

func readSourceOXItems(ctx context.Context, src *sql.DB) ([]SourceOXItem, error) {
	rows, err := src.QueryContext(ctx, `
		SELECT exam_year, subject_code, question_no_exam, choice_no, choice_text,
		       choice_explanation_text, expected_ox, judge_reason
		FROM exam_choice_ox_bank
		WHERE is_ox_eligible = 1
		ORDER BY exam_year, subject_code, question_no_exam, choice_no, id`)
	if err != nil {
		return nil, fmt.Errorf("read source ox items: %w", err)
	}
	defer rows.Close()

	var out []SourceOXItem
	for rows.Next() {
		var r SourceOXItem
		var text, explanation, expected, reason sql.NullString
		if err := rows.Scan(&r.ExamYear, &r.SubjectCode, &r.QuestionNoExam, &r.ChoiceNo,
			&text, &explanation, &expected, &reason); err != nil {
			return nil, fmt.Errorf("read source ox items: %w", err)
		}
		r.ChoiceText = text.String
		r.ChoiceExplanationText = explanation.String
		r.ExpectedOX = expected.String
		r.JudgeReason = reason.String
		out = append(out, r)
	}
	return out, rows.Err()
}
