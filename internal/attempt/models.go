package attempt

import "github.com/mind-engage/mindengage-taxexam/internal/grading"

// Attempt is one finished quiz run. Rows are append-only.
type Attempt struct {
	ID                int64        `json:"id"`
	UserID            string       `json:"user_id"`
	Mode              grading.Mode `json:"mode"`
	ExamYear          *int         `json:"exam_year"`
	SubjectCode       string       `json:"subject_code"`
	TotalQuestions    int          `json:"total_questions"`
	AnsweredQuestions int          `json:"answered_questions"`
	CorrectCount      int          `json:"correct_count"`
	Score100          float64      `json:"score_100"`
	DurationSeconds   int          `json:"duration_seconds"`
	StartedAt         *string      `json:"started_at"`
	FinishedAt        int64        `json:"finished_at"`
	CreatedAt         int64        `json:"created_at"`
}

// Answer is one graded item of an attempt.
type Answer struct {
	ID             int64  `json:"id"`
	AttemptID      int64  `json:"attempt_id"`
	ItemKind       string `json:"item_kind"`
	QuestionBankID *int64 `json:"question_bank_id"`
	OXItemID       *int64 `json:"ox_item_id"`
	ExamYear       int    `json:"exam_year"`
	SubjectCode    string `json:"subject_code"`
	QuestionNoExam int    `json:"question_no_exam"`
	ChoiceNo       *int   `json:"choice_no"`
	SelectedAnswer string `json:"selected_answer"`
	CorrectAnswer  string `json:"correct_answer"`
	IsCorrect      bool   `json:"is_correct"`
	CreatedAt      int64  `json:"created_at"`
}

// Record is what the recorder persists for one submission.
type Record struct {
	UserID          string
	ExamYear        *int
	SubjectCode     string
	StartedAt       *string
	DurationSeconds int
	Result          grading.Result
}

// SubjectRecentScore is the per (user, subject, mode) rollup row.
type SubjectRecentScore struct {
	UserID        string       `json:"user_id"`
	SubjectCode   string       `json:"subject_code"`
	SubjectName   string       `json:"subject_name"`
	Mode          grading.Mode `json:"mode"`
	LastAttemptID int64        `json:"last_attempt_id"`
	LastExamYear  *int         `json:"last_exam_year"`
	LastScore100  float64      `json:"last_score_100"`
	AttemptsCount int          `json:"attempts_count"`
	UpdatedAt     int64        `json:"updated_at"`
}

// ItemStat is a user's history on one bank item.
type ItemStat struct {
	ItemID       int64   `json:"item_id"`
	SolvedCount  int     `json:"solved_count"`
	CorrectCount int     `json:"correct_count"`
	Accuracy     float64 `json:"accuracy"`
}
