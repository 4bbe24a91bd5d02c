package notes

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-taxexam/internal/db/dbtest"
)

type clock struct{ t int64 }

func (c *clock) now() time.Time {
	c.t++
	return time.Unix(c.t, 0)
}

func newTestStore(t *testing.T) (*Store, context.Context) {
	t.Helper()
	dbh := dbtest.Open(t)
	dbtest.SeedQuestion(t, dbh, 2024, "TAX1", "세법학개론", 1, "3")
	s := NewStore(dbh, nil)
	c := &clock{t: 1000}
	s.now = c.now
	return s, context.Background()
}

func TestNotesAndFavoritesMerge(t *testing.T) {
	s, ctx := newTestStore(t)
	q1 := Ref{UserID: "u1", ExamYear: 2024, SubjectCode: "TAX1", QuestionNoExam: 1}
	q2 := Ref{UserID: "u1", ExamYear: 2023, SubjectCode: "ACC", QuestionNoExam: 7}

	require.NoError(t, s.UpsertNote(ctx, Note{Ref: q1, State: "wrong", Memo: "m", Tags: []string{"vat"}}))
	require.NoError(t, s.UpsertFavorite(ctx, Favorite{Ref: q2, Color: "red"}))
	require.NoError(t, s.UpsertNote(ctx, Note{Ref: q1, State: "review", Memo: "m2"}))

	list, err := s.ListNotes(ctx, "u1", Filter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "review", list[0].State)
	assert.Equal(t, "m2", list[0].Memo)
	assert.Equal(t, []string{}, list[0].Tags)
	assert.Equal(t, "세법학개론", list[0].SubjectName)
	assert.Equal(t, "3", list[0].ServiceAnswer)
	require.NotNil(t, list[0].LastReviewedAt)
	assert.Equal(t, "favorite_red", list[1].State)
	assert.Empty(t, list[1].SubjectName)
	assert.Nil(t, list[1].LastReviewedAt)

	year := 2023
	list, err = s.ListNotes(ctx, "u1", Filter{ExamYear: &year})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ACC", list[0].SubjectCode)

	list, err = s.ListNotes(ctx, "u1", Filter{SubjectCode: "TAX1"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = s.ListNotes(ctx, "someone-else", Filter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeleteNoteWithStatePrefix(t *testing.T) {
	s, ctx := newTestStore(t)
	ref := Ref{UserID: "u1", ExamYear: 2024, SubjectCode: "TAX1", QuestionNoExam: 1}
	require.NoError(t, s.UpsertNote(ctx, Note{Ref: ref, State: "wrong_answer"}))

	n, err := s.DeleteNote(ctx, ref, "review")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.DeleteNote(ctx, ref, "wrong")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, s.UpsertFavorite(ctx, Favorite{Ref: ref}))
	n, err = s.DeleteFavorite(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestChoiceVisibilityUpsert(t *testing.T) {
	s, ctx := newTestStore(t)
	ref := Ref{UserID: "u1", ExamYear: 2024, SubjectCode: "TAX1", QuestionNoExam: 1}

	require.NoError(t, s.SetChoiceVisibility(ctx, ref, 3, true))
	require.NoError(t, s.SetChoiceVisibility(ctx, ref, 1, true))
	require.NoError(t, s.SetChoiceVisibility(ctx, ref, 3, false))

	vis, err := s.GetChoiceVisibility(ctx, "u1", 2024, "TAX1")
	require.NoError(t, err)
	require.Len(t, vis, 2)
	assert.Equal(t, 1, vis[0].ChoiceNo)
	assert.True(t, vis[0].Hidden)
	assert.Equal(t, 3, vis[1].ChoiceNo)
	assert.False(t, vis[1].Hidden)
}
