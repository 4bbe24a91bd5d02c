// Package dbtest opens throwaway SQLite databases with the service schema
// applied, for package tests.
package dbtest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-taxexam/internal/db"
)

// Open returns a schema-initialized SQLite database backed by a temp file.
func Open(t *testing.T) *sql.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?mode=rwc&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbh.Close() })
	return dbh
}

// SeedQuestion inserts one bank question and returns its id.
func SeedQuestion(t *testing.T, dbh *sql.DB, year int, subjectCode, subjectName string, no int, answer string) int64 {
	t.Helper()
	var id int64
	err := dbh.QueryRow(`INSERT INTO exam_question_bank
		(exam_year, subject_name, subject_code, question_no_exam, question_no_subject,
		 question_text, choices_json, official_answer, service_answer, explanation_text, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11) RETURNING id`,
		year, subjectName, subjectCode, no, no,
		"question text", `["a","b","c","d","e"]`, answer, answer, "explanation", 1).Scan(&id)
	require.NoError(t, err)
	return id
}

// SeedOX inserts one OX item under a bank question and returns its id.
func SeedOX(t *testing.T, dbh *sql.DB, questionID int64, year int, subjectCode string, no, choiceNo int, expected string, eligible bool) int64 {
	t.Helper()
	var id int64
	err := dbh.QueryRow(`INSERT INTO exam_choice_ox_bank
		(question_bank_id, exam_year, subject_code, question_no_exam, choice_no, choice_text,
		 is_ox_eligible, expected_ox, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id`,
		questionID, year, subjectCode, no, choiceNo, "choice text", db.BoolInt(eligible), expected, 1).Scan(&id)
	require.NoError(t, err)
	return id
}
