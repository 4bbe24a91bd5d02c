package bank

import (
	"context"
	"errors"
)

var ErrQuestionNotFound = errors.New("question not found")

// Store is the read side of the question bank. Writes only happen through
// the Importer.
type Store interface {
	ListMockOptions(ctx context.Context) ([]MockOption, error)
	GetMockQuestions(ctx context.Context, examYear int, subjectCode string) ([]Question, error)
	GetOXQuestions(ctx context.Context, subjectCode string) ([]OXItem, error)
	// GetOXCandidates is the year-scoped variant kept for the legacy endpoint.
	GetOXCandidates(ctx context.Context, examYear int, subjectCode string) ([]OXItem, error)

	ListOXSubjectOptions(ctx context.Context) ([]OXSubjectOption, error)
	GetExplanation(ctx context.Context, questionID int64) (Explanation, error)
}
