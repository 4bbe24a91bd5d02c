package notes

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mind-engage/mindengage-taxexam/internal/db"
	"github.com/mind-engage/mindengage-taxexam/internal/users"
)

// FavoriteStatePrefix marks favorites when merged into the note list.
const FavoriteStatePrefix = "favorite_"

// Ref addresses one bank question for a user.
type Ref struct {
	UserID         string `json:"user_id"`
	ExamYear       int    `json:"exam_year"`
	SubjectCode    string `json:"subject_code"`
	QuestionNoExam int    `json:"question_no_exam"`
}

type Note struct {
	Ref
	State  string   `json:"state"`
	Memo   string   `json:"memo"`
	Tags   []string `json:"tags"`
	Source string   `json:"source"`
}

type Favorite struct {
	Ref
	Color  string   `json:"color"`
	Memo   string   `json:"memo"`
	Tags   []string `json:"tags"`
	Source string   `json:"source"`
}

// Entry is a note or favorite joined with its bank question.
type Entry struct {
	ID              int64    `json:"id"`
	UserID          string   `json:"user_id"`
	ExamYear        int      `json:"exam_year"`
	SubjectCode     string   `json:"subject_code"`
	SubjectName     string   `json:"subject_name"`
	QuestionNoExam  int      `json:"question_no_exam"`
	State           string   `json:"state"`
	Memo            string   `json:"memo"`
	Tags            []string `json:"tags"`
	Source          string   `json:"source"`
	QuestionText    string   `json:"question_text"`
	ServiceAnswer   string   `json:"service_answer"`
	ExplanationText string   `json:"explanation_text"`
	CreatedAt       int64    `json:"created_at"`
	UpdatedAt       int64    `json:"updated_at"`
	LastReviewedAt  *int64   `json:"last_reviewed_at"`
}

// Filter narrows ListNotes; zero values mean "any".
type Filter struct {
	ExamYear    *int
	SubjectCode string
}

type Visibility struct {
	QuestionNoExam int   `json:"question_no_exam"`
	ChoiceNo       int   `json:"choice_no"`
	Hidden         bool  `json:"hidden"`
	UpdatedAt      int64 `json:"updated_at"`
}

type Store struct {
	db    *sql.DB
	users *users.Store
	now   func() time.Time
}

func NewStore(d *sql.DB, u *users.Store) *Store {
	if u == nil {
		u = users.NewStore()
	}
	return &Store{db: d, users: u, now: time.Now}
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeTags(s string) []string {
	out := []string{}
	if s == "" {
		return out
	}
	_ = json.Unmarshal([]byte(s), &out)
	return out
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func (s *Store) UpsertNote(ctx context.Context, n Note) error {
	tags, err := encodeTags(n.Tags)
	if err != nil {
		return err
	}
	now := s.now().Unix()
	return db.WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		if err := s.users.Ensure(ctx, tx, n.UserID, ""); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO bank_user_notes (
				user_id, exam_year, subject_code, question_no_exam,
				state, memo, tags, source, created_at, updated_at, last_reviewed_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9,$9)
			ON CONFLICT (user_id, exam_year, subject_code, question_no_exam) DO UPDATE SET
				state = excluded.state,
				memo = excluded.memo,
				tags = excluded.tags,
				source = excluded.source,
				updated_at = excluded.updated_at,
				last_reviewed_at = excluded.last_reviewed_at`,
			n.UserID, n.ExamYear, n.SubjectCode, n.QuestionNoExam,
			n.State, n.Memo, tags, orDefault(n.Source, "mock"), now)
		if err != nil {
			return fmt.Errorf("upsert note: %w", err)
		}
		return nil
	})
}

// DeleteNote removes the user's note on a question. A non-empty statePrefix
// restricts the delete to notes whose state starts with it.
func (s *Store) DeleteNote(ctx context.Context, ref Ref, statePrefix string) (int64, error) {
	query := `DELETE FROM bank_user_notes
		WHERE user_id = $1 AND exam_year = $2 AND subject_code = $3 AND question_no_exam = $4`
	args := []any{ref.UserID, ref.ExamYear, ref.SubjectCode, ref.QuestionNoExam}
	if statePrefix != "" {
		query += ` AND state LIKE $5`
		args = append(args, statePrefix+"%")
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete note: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) UpsertFavorite(ctx context.Context, f Favorite) error {
	tags, err := encodeTags(f.Tags)
	if err != nil {
		return err
	}
	now := s.now().Unix()
	return db.WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		if err := s.users.Ensure(ctx, tx, f.UserID, ""); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO bank_user_favorites (
				user_id, exam_year, subject_code, question_no_exam,
				color, memo, tags, source, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9)
			ON CONFLICT (user_id, exam_year, subject_code, question_no_exam) DO UPDATE SET
				color = excluded.color,
				memo = excluded.memo,
				tags = excluded.tags,
				source = excluded.source,
				updated_at = excluded.updated_at`,
			f.UserID, f.ExamYear, f.SubjectCode, f.QuestionNoExam,
			orDefault(f.Color, "yellow"), f.Memo, tags, orDefault(f.Source, "mock"), now)
		if err != nil {
			return fmt.Errorf("upsert favorite: %w", err)
		}
		return nil
	})
}

func (s *Store) DeleteFavorite(ctx context.Context, ref Ref) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bank_user_favorites
		WHERE user_id = $1 AND exam_year = $2 AND subject_code = $3 AND question_no_exam = $4`,
		ref.UserID, ref.ExamYear, ref.SubjectCode, ref.QuestionNoExam)
	if err != nil {
		return 0, fmt.Errorf("delete favorite: %w", err)
	}
	return res.RowsAffected()
}

// ListNotes returns notes and favorites together, newest first. Favorites
// carry state "favorite_<color>".
func (s *Store) ListNotes(ctx context.Context, userID string, f Filter) ([]Entry, error) {
	where, args := filterClause("n", userID, f)
	noteRows, err := s.db.QueryContext(ctx, `
		SELECT n.id, n.user_id, n.exam_year, n.subject_code, COALESCE(b.subject_name, ''),
		       n.question_no_exam, n.state, n.memo, n.tags, n.source,
		       COALESCE(b.question_text, ''), COALESCE(b.service_answer, ''), COALESCE(b.explanation_text, ''),
		       n.created_at, n.updated_at, n.last_reviewed_at
		FROM bank_user_notes n
		LEFT JOIN exam_question_bank b
		  ON b.exam_year = n.exam_year AND b.subject_code = n.subject_code
		 AND b.question_no_exam = n.question_no_exam
		WHERE `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	out, err := collect(noteRows, scanNote)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	where, args = filterClause("f", userID, f)
	favRows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.user_id, f.exam_year, f.subject_code, COALESCE(b.subject_name, ''),
		       f.question_no_exam, f.color, f.memo, f.tags, f.source,
		       COALESCE(b.question_text, ''), COALESCE(b.service_answer, ''), COALESCE(b.explanation_text, ''),
		       f.created_at, f.updated_at
		FROM bank_user_favorites f
		LEFT JOIN exam_question_bank b
		  ON b.exam_year = f.exam_year AND b.subject_code = f.subject_code
		 AND b.question_no_exam = f.question_no_exam
		WHERE `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	favs, err := collect(favRows, scanFavorite)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	out = append(out, favs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt > out[j].UpdatedAt })
	return out, nil
}

func filterClause(alias, userID string, f Filter) (string, []any) {
	where := alias + ".user_id = $1"
	args := []any{userID}
	if f.ExamYear != nil {
		args = append(args, *f.ExamYear)
		where += fmt.Sprintf(" AND %s.exam_year = $%d", alias, len(args))
	}
	if f.SubjectCode != "" {
		args = append(args, f.SubjectCode)
		where += fmt.Sprintf(" AND %s.subject_code = $%d", alias, len(args))
	}
	return where + fmt.Sprintf(" ORDER BY %[1]s.updated_at DESC, %[1]s.id DESC", alias), args
}

func collect(rows *sql.Rows, scan func(*sql.Rows) (Entry, error)) ([]Entry, error) {
	defer rows.Close()
	out := []Entry{}
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanNote(rows *sql.Rows) (Entry, error) {
	var e Entry
	var tags string
	var reviewed sql.NullInt64
	if err := rows.Scan(&e.ID, &e.UserID, &e.ExamYear, &e.SubjectCode, &e.SubjectName,
		&e.QuestionNoExam, &e.State, &e.Memo, &tags, &e.Source,
		&e.QuestionText, &e.ServiceAnswer, &e.ExplanationText,
		&e.CreatedAt, &e.UpdatedAt, &reviewed); err != nil {
		return Entry{}, err
	}
	e.Tags = decodeTags(tags)
	if reviewed.Valid {
		e.LastReviewedAt = &reviewed.Int64
	}
	return e, nil
}

func scanFavorite(rows *sql.Rows) (Entry, error) {
	var e Entry
	var color, tags string
	if err := rows.Scan(&e.ID, &e.UserID, &e.ExamYear, &e.SubjectCode, &e.SubjectName,
		&e.QuestionNoExam, &color, &e.Memo, &tags, &e.Source,
		&e.QuestionText, &e.ServiceAnswer, &e.ExplanationText,
		&e.CreatedAt, &e.UpdatedAt); err != nil {
		return Entry{}, err
	}
	e.State = FavoriteStatePrefix + color
	e.Tags = decodeTags(tags)
	return e, nil
}

// SetChoiceVisibility records whether the user hides one choice of a question.
func (s *Store) SetChoiceVisibility(ctx context.Context, ref Ref, choiceNo int, hidden bool) error {
	now := s.now().Unix()
	return db.WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		if err := s.users.Ensure(ctx, tx, ref.UserID, ""); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO user_choice_visibility (
				user_id, exam_year, subject_code, question_no_exam, choice_no, hidden, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			ON CONFLICT (user_id, exam_year, subject_code, question_no_exam, choice_no) DO UPDATE SET
				hidden = excluded.hidden,
				updated_at = excluded.updated_at`,
			ref.UserID, ref.ExamYear, ref.SubjectCode, ref.QuestionNoExam, choiceNo, db.BoolInt(hidden), now)
		if err != nil {
			return fmt.Errorf("set choice visibility: %w", err)
		}
		return nil
	})
}

func (s *Store) GetChoiceVisibility(ctx context.Context, userID string, examYear int, subjectCode string) ([]Visibility, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT question_no_exam, choice_no, hidden, updated_at
		FROM user_choice_visibility
		WHERE user_id = $1 AND exam_year = $2 AND subject_code = $3
		ORDER BY question_no_exam, choice_no`, userID, examYear, subjectCode)
	if err != nil {
		return nil, fmt.Errorf("get choice visibility: %w", err)
	}
	defer rows.Close()

	out := []Visibility{}
	for rows.Next() {
		var v Visibility
		var hidden int
		if err := rows.Scan(&v.QuestionNoExam, &v.ChoiceNo, &hidden, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("get choice visibility: %w", err)
		}
		v.Hidden = hidden != 0
		out = append(out, v)
	}
	return out, rows.Err()
}
