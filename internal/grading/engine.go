package grading

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when there is nothing to score for the requested
// key. It is never turned into a 0/0 score.
var ErrNotFound = errors.New("no questions to score")

// Mode selects the scoring strategy.
type Mode string

const (
	ModeMock Mode = "mock"
	ModeOX   Mode = "ox"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool { return m == ModeMock || m == ModeOX }

// ItemKind tags an answer row with what it points at.
func (m Mode) ItemKind() string {
	if m == ModeOX {
		return "ox_item"
	}
	return "question"
}

// Item is the minimal view of a bank item needed for grading. Display
// fields are carried through to the detail for client review.
type Item struct {
	ID             int64
	ExamYear       int
	SubjectCode    string
	SubjectName    string
	QuestionNoExam int
	ChoiceNo       *int
	Key            string // official answer (mock) or expected O/X

	Prompt      string
	Choices     []string
	Explanation string
}

// Detail is the graded outcome of one item.
type Detail struct {
	ItemID         int64    `json:"id"`
	ExamYear       int      `json:"exam_year"`
	SubjectCode    string   `json:"subject_code"`
	SubjectName    string   `json:"subject_name,omitempty"`
	QuestionNoExam int      `json:"question_no_exam"`
	ChoiceNo       *int     `json:"choice_no,omitempty"`
	Selected       string   `json:"selected_answer"`
	Correct        string   `json:"correct_answer"`
	IsCorrect      bool     `json:"is_correct"`
	Prompt         string   `json:"question_text,omitempty"`
	Choices        []string `json:"choices,omitempty"`
	Explanation    string   `json:"explanation_text,omitempty"`
}

// Result is the aggregate outcome of one submission.
type Result struct {
	Mode         Mode     `json:"mode"`
	Total        int      `json:"total_questions"`
	Answered     int      `json:"answered_questions"`
	Correct      int      `json:"correct_count"`
	Score100     float64  `json:"score_100"`
	ScorePercent float64  `json:"score_percent"`
	Details      []Detail `json:"details"`
}

// Strategy grades a single response against an answer key.
type Strategy interface {
	Grade(key, response string) (selected, correct string, ok bool)
}

// Scorer routes by mode to the correct Strategy.
type Scorer struct {
	strategies map[Mode]Strategy
}

// NewScorer installs the built-in strategies.
func NewScorer() *Scorer {
	return &Scorer{
		strategies: map[Mode]Strategy{
			ModeMock: mcqSingleStrategy{},
			ModeOX:   oxStrategy{},
		},
	}
}

// Score grades items in order against answers keyed by item id. Answers for
// ids outside items are ignored.
func (s *Scorer) Score(mode Mode, items []Item, answers map[int64]string) (Result, error) {
	st, ok := s.strategies[mode]
	if !ok {
		return Result{}, fmt.Errorf("grading: unknown mode %q", mode)
	}
	if len(items) == 0 {
		return Result{}, ErrNotFound
	}
	res := Result{Mode: mode, Total: len(items), Details: make([]Detail, 0, len(items))}
	for _, it := range items {
		selected, correct, isCorrect := st.Grade(it.Key, answers[it.ID])
		if selected != "" {
			res.Answered++
		}
		if isCorrect {
			res.Correct++
		}
		res.Details = append(res.Details, Detail{
			ItemID:         it.ID,
			ExamYear:       it.ExamYear,
			SubjectCode:    it.SubjectCode,
			SubjectName:    it.SubjectName,
			QuestionNoExam: it.QuestionNoExam,
			ChoiceNo:       it.ChoiceNo,
			Selected:       selected,
			Correct:        correct,
			IsCorrect:      isCorrect,
			Prompt:         it.Prompt,
			Choices:        it.Choices,
			Explanation:    it.Explanation,
		})
	}
	res.Score100 = Percent(res.Correct, res.Total, 1)
	res.ScorePercent = Percent(res.Correct, res.Total, 2)
	return res, nil
}

// ScoreMock grades single-choice questions.
func (s *Scorer) ScoreMock(items []Item, answers map[int64]string) (Result, error) {
	return s.Score(ModeMock, items, answers)
}

// ScoreOX grades O/X statements.
func (s *Scorer) ScoreOX(items []Item, answers map[int64]string) (Result, error) {
	return s.Score(ModeOX, items, answers)
}

// --- Strategies ---

type mcqSingleStrategy struct{}

func (mcqSingleStrategy) Grade(key, response string) (string, string, bool) {
	selected := strings.TrimSpace(response)
	correct := NormalizeAnswer(key)
	return selected, correct, selected != "" && selected == correct
}

type oxStrategy struct{}

func (oxStrategy) Grade(key, response string) (string, string, bool) {
	selected := NormalizeOX(response)
	expected := NormalizeOX(key)
	return selected, expected, selected != "" && expected != "" && selected == expected
}

// Percent returns part/whole*100 rounded half-up to the given number of
// decimal places, computed in integers so .x5 boundaries are exact.
// A non-positive whole yields 0.
func Percent(part, whole, places int) float64 {
	if whole <= 0 {
		return 0
	}
	scale := int64(1)
	for i := 0; i < places; i++ {
		scale *= 10
	}
	num := int64(part) * 100 * scale
	den := int64(whole)
	q := (2*num + den) / (2 * den)
	return float64(q) / float64(scale)
}
