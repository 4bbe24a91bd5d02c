package bank

import "github.com/mind-engage/mindengage-taxexam/internal/grading"

// BookletType is the only booklet the service deployment serves.
const BookletType = "A"

// Question is one multiple-choice exam question.
type Question struct {
	ID                int64    `json:"id"`
	ExamYear          int      `json:"exam_year"`
	SubjectCode       string   `json:"subject_code"`
	SubjectName       string   `json:"subject_name"`
	QuestionNoExam    int      `json:"question_no_exam"`
	QuestionNoSubject int      `json:"question_no_subject"`
	QuestionText      string   `json:"question_text"`
	Choices           []string `json:"choices"`
	ServiceAnswer     string   `json:"service_answer,omitempty"`
	ExplanationText   string   `json:"explanation_text,omitempty"`
	UpdatedAt         int64    `json:"updated_at,omitempty"`
}

// Redacted strips the answer key and explanation before serving to takers.
func (q Question) Redacted() Question {
	q.ServiceAnswer = ""
	q.ExplanationText = ""
	return q
}

// GradingItem is the scorer's view of the question.
func (q Question) GradingItem() grading.Item {
	return grading.Item{
		ID:             q.ID,
		ExamYear:       q.ExamYear,
		SubjectCode:    q.SubjectCode,
		SubjectName:    q.SubjectName,
		QuestionNoExam: q.QuestionNoExam,
		Key:            q.ServiceAnswer,
		Prompt:         q.QuestionText,
		Choices:        q.Choices,
		Explanation:    q.ExplanationText,
	}
}

// OXItem is a true/false assertion derived from one choice of a question.
type OXItem struct {
	ID                    int64  `json:"id"`
	QuestionBankID        int64  `json:"question_bank_id"`
	ExamYear              int    `json:"exam_year"`
	SubjectCode           string `json:"subject_code"`
	SubjectName           string `json:"subject_name"`
	QuestionNoExam        int    `json:"question_no_exam"`
	ChoiceNo              int    `json:"choice_no"`
	ChoiceText            string `json:"choice_text"`
	ChoiceExplanationText string `json:"choice_explanation_text"`
	ExpectedOX            string `json:"expected_ox"`
	JudgeReason           string `json:"judge_reason"`
	JudgeConfidence       string `json:"judge_confidence,omitempty"`
	Eligible              bool   `json:"-"`
}

// GradingItem is the scorer's view of the OX item.
func (o OXItem) GradingItem() grading.Item {
	choice := o.ChoiceNo
	return grading.Item{
		ID:             o.ID,
		ExamYear:       o.ExamYear,
		SubjectCode:    o.SubjectCode,
		SubjectName:    o.SubjectName,
		QuestionNoExam: o.QuestionNoExam,
		ChoiceNo:       &choice,
		Key:            o.ExpectedOX,
		Prompt:         o.ChoiceText,
		Explanation:    o.ChoiceExplanationText,
	}
}

// MockOption is a (year, subject) combination with answer coverage counts.
type MockOption struct {
	ExamYear          int    `json:"exam_year"`
	SubjectCode       string `json:"subject_code"`
	SubjectName       string `json:"subject_name"`
	TotalQuestions    int    `json:"total_questions"`
	AnsweredQuestions int    `json:"answered_questions"`
}

// Eligible reports whether every question in the combination has an answer.
func (o MockOption) Eligible() bool {
	return o.TotalQuestions > 0 && o.AnsweredQuestions >= o.TotalQuestions
}

// EligibleOptions keeps only the quiz-ready options.
func EligibleOptions(opts []MockOption) []MockOption {
	out := make([]MockOption, 0, len(opts))
	for _, o := range opts {
		if o.Eligible() {
			out = append(out, o)
		}
	}
	return out
}

// OXSubjectOption summarizes how many eligible OX items a subject has.
type OXSubjectOption struct {
	SubjectCode string `json:"subject_code"`
	SubjectName string `json:"subject_name"`
	TotalItems  int    `json:"total_items"`
}

// Explanation is the review view of a single bank question.
type Explanation struct {
	ID              int64  `json:"id"`
	ExamYear        int    `json:"exam_year"`
	SubjectCode     string `json:"subject_code"`
	SubjectName     string `json:"subject_name"`
	QuestionNoExam  int    `json:"question_no_exam"`
	QuestionText    string `json:"question_text"`
	CorrectAnswer   string `json:"correct_answer"`
	ExplanationText string `json:"explanation_text"`
}
