package bank_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-taxexam/internal/bank"
	"github.com/mind-engage/mindengage-taxexam/internal/db/dbtest"
)

func TestSQLStore_MockQuestionsOrderedAndOptions(t *testing.T) {
	ctx := context.Background()
	dbh := dbtest.Open(t)
	dbtest.SeedQuestion(t, dbh, 2024, "TAX1", "세법학개론", 2, "3 (1-2)")
	dbtest.SeedQuestion(t, dbh, 2024, "TAX1", "세법학개론", 1, "1")
	dbtest.SeedQuestion(t, dbh, 2023, "ACC", "회계학개론", 1, "")
	st := bank.NewSQLStore(dbh)

	qs, err := st.GetMockQuestions(ctx, 2024, "TAX1")
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, 1, qs[0].QuestionNoExam)
	assert.Equal(t, 2, qs[1].QuestionNoExam)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, qs[0].Choices)
	assert.Equal(t, "3 (1-2)", qs[1].ServiceAnswer)

	none, err := st.GetMockQuestions(ctx, 2020, "TAX1")
	require.NoError(t, err)
	assert.Empty(t, none)

	opts, err := st.ListMockOptions(ctx)
	require.NoError(t, err)
	require.Len(t, opts, 2)
	assert.Equal(t, 2024, opts[0].ExamYear)
	assert.Equal(t, 2, opts[0].TotalQuestions)
	assert.Equal(t, 2, opts[0].AnsweredQuestions)
	assert.Equal(t, 0, opts[1].AnsweredQuestions)

	eligible := bank.EligibleOptions(opts)
	require.Len(t, eligible, 1)
	assert.Equal(t, "TAX1", eligible[0].SubjectCode)
}

func TestSQLStore_OXQueries(t *testing.T) {
	ctx := context.Background()
	dbh := dbtest.Open(t)
	q24 := dbtest.SeedQuestion(t, dbh, 2024, "TAX1", "세법학개론", 1, "1")
	q23 := dbtest.SeedQuestion(t, dbh, 2023, "TAX1", "세법학개론", 5, "2")
	dbtest.SeedOX(t, dbh, q24, 2024, "TAX1", 1, 2, "O", true)
	dbtest.SeedOX(t, dbh, q24, 2024, "TAX1", 1, 1, "X", true)
	dbtest.SeedOX(t, dbh, q24, 2024, "TAX1", 1, 3, "O", false)
	dbtest.SeedOX(t, dbh, q23, 2023, "TAX1", 5, 1, "O", true)
	st := bank.NewSQLStore(dbh)

	items, err := st.GetOXQuestions(ctx, "TAX1")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, 2024, items[0].ExamYear)
	assert.Equal(t, 1, items[0].ChoiceNo)
	assert.Equal(t, 2, items[1].ChoiceNo)
	assert.Equal(t, 2023, items[2].ExamYear)
	assert.Equal(t, "세법학개론", items[0].SubjectName)
	for _, it := range items {
		assert.True(t, it.Eligible)
	}

	cands, err := st.GetOXCandidates(ctx, 2023, "TAX1")
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, 5, cands[0].QuestionNoExam)

	subjects, err := st.ListOXSubjectOptions(ctx)
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, 3, subjects[0].TotalItems)
}

func TestSQLStore_Explanation(t *testing.T) {
	ctx := context.Background()
	dbh := dbtest.Open(t)
	id := dbtest.SeedQuestion(t, dbh, 2024, "TAX1", "세법학개론", 1, "4 2024년도")
	st := bank.NewSQLStore(dbh)

	e, err := st.GetExplanation(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "4 2024년도", e.CorrectAnswer)
	assert.Equal(t, "explanation", e.ExplanationText)

	_, err = st.GetExplanation(ctx, id+100)
	assert.ErrorIs(t, err, bank.ErrQuestionNotFound)
}

func TestQuestionRedacted(t *testing.T) {
	q := bank.Question{ID: 1, ServiceAnswer: "3", ExplanationText: "because"}
	r := q.Redacted()
	assert.Empty(t, r.ServiceAnswer)
	assert.Empty(t, r.ExplanationText)
	assert.Equal(t, "3", q.ServiceAnswer)
}
