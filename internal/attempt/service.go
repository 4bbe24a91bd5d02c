package attempt

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mind-engage/mindengage-taxexam/internal/bank"
	"github.com/mind-engage/mindengage-taxexam/internal/grading"
)

const defaultRecordTimeout = 10 * time.Second

// MockSubmission is a user's answers to one (year, subject) paper, keyed by
// question id.
type MockSubmission struct {
	UserID          string
	ExamYear        int
	SubjectCode     string
	Answers         map[int64]string
	StartedAt       *string
	DurationSeconds int
}

// OXSubmission is a user's O/X answers for one subject, keyed by OX item id.
type OXSubmission struct {
	UserID          string
	SubjectCode     string
	Answers         map[int64]string
	StartedAt       *string
	DurationSeconds int
}

// Submission is a scored and recorded attempt.
type Submission struct {
	AttemptID int64 `json:"attempt_id"`
	grading.Result
}

// Service ties the bank, the scorer and the recorder together.
type Service struct {
	bank          bank.Store
	scorer        *grading.Scorer
	recorder      *Recorder
	log           zerolog.Logger
	recordTimeout time.Duration
}

type Option func(*Service)

func WithLogger(l zerolog.Logger) Option { return func(s *Service) { s.log = l } }

// WithRecordTimeout bounds how long a recording transaction may run after
// the caller has gone away.
func WithRecordTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.recordTimeout = d
		}
	}
}

func NewService(b bank.Store, scorer *grading.Scorer, rec *Recorder, opts ...Option) *Service {
	if scorer == nil {
		scorer = grading.NewScorer()
	}
	s := &Service{bank: b, scorer: scorer, recorder: rec, log: zerolog.Nop(), recordTimeout: defaultRecordTimeout}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ScoreMockSubmission grades a paper without recording it.
func (s *Service) ScoreMockSubmission(ctx context.Context, examYear int, subjectCode string, answers map[int64]string) (grading.Result, error) {
	qs, err := s.bank.GetMockQuestions(ctx, examYear, subjectCode)
	if err != nil {
		return grading.Result{}, err
	}
	items := make([]grading.Item, 0, len(qs))
	for _, q := range qs {
		items = append(items, q.GradingItem())
	}
	res, err := s.scorer.ScoreMock(items, answers)
	if err != nil {
		return grading.Result{}, fmt.Errorf("mock %d/%s: %w", examYear, subjectCode, err)
	}
	return res, nil
}

// ScoreOXSubmission grades an OX run without recording it.
func (s *Service) ScoreOXSubmission(ctx context.Context, subjectCode string, answers map[int64]string) (grading.Result, error) {
	ox, err := s.bank.GetOXQuestions(ctx, subjectCode)
	if err != nil {
		return grading.Result{}, err
	}
	items := make([]grading.Item, 0, len(ox))
	for _, o := range ox {
		items = append(items, o.GradingItem())
	}
	res, err := s.scorer.ScoreOX(items, answers)
	if err != nil {
		return grading.Result{}, fmt.Errorf("ox %s: %w", subjectCode, err)
	}
	return res, nil
}

func (s *Service) SubmitMock(ctx context.Context, sub MockSubmission) (Submission, error) {
	res, err := s.ScoreMockSubmission(ctx, sub.ExamYear, sub.SubjectCode, sub.Answers)
	if err != nil {
		return Submission{}, err
	}
	year := sub.ExamYear
	return s.record(ctx, Record{
		UserID:          sub.UserID,
		ExamYear:        &year,
		SubjectCode:     sub.SubjectCode,
		StartedAt:       sub.StartedAt,
		DurationSeconds: sub.DurationSeconds,
		Result:          res,
	})
}

func (s *Service) SubmitOX(ctx context.Context, sub OXSubmission) (Submission, error) {
	res, err := s.ScoreOXSubmission(ctx, sub.SubjectCode, sub.Answers)
	if err != nil {
		return Submission{}, err
	}
	return s.record(ctx, Record{
		UserID:          sub.UserID,
		SubjectCode:     sub.SubjectCode,
		StartedAt:       sub.StartedAt,
		DurationSeconds: sub.DurationSeconds,
		Result:          res,
	})
}

// record ignores caller cancellation and is bounded by recordTimeout.
func (s *Service) record(ctx context.Context, rec Record) (Submission, error) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.recordTimeout)
	defer cancel()

	id, err := s.recorder.RecordAttempt(rctx, rec)
	if err != nil {
		s.log.Error().Err(err).
			Str("user_id", rec.UserID).
			Str("subject_code", rec.SubjectCode).
			Str("mode", string(rec.Result.Mode)).
			Msg("record attempt failed")
		return Submission{}, err
	}
	s.log.Info().
		Int64("attempt_id", id).
		Str("user_id", rec.UserID).
		Str("subject_code", rec.SubjectCode).
		Str("mode", string(rec.Result.Mode)).
		Int("correct", rec.Result.Correct).
		Int("total", rec.Result.Total).
		Float64("score_100", rec.Result.Score100).
		Msg("attempt recorded")
	return Submission{AttemptID: id, Result: rec.Result}, nil
}
