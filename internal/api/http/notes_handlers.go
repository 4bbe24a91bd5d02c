package http

import (
	"net/http"
	"strings"

	"github.com/mind-engage/mindengage-taxexam/internal/notes"
)

type refRequest struct {
	UserID         string `json:"user_id"`
	ExamYear       int    `json:"exam_year"`
	SubjectCode    string `json:"subject_code"`
	QuestionNoExam int    `json:"question_no_exam"`
}

func (q refRequest) ref(r *http.Request) (notes.Ref, bool) {
	ref := notes.Ref{
		UserID:         userID(r, q.UserID),
		ExamYear:       q.ExamYear,
		SubjectCode:    strings.TrimSpace(q.SubjectCode),
		QuestionNoExam: q.QuestionNoExam,
	}
	return ref, ref.ExamYear != 0 && ref.SubjectCode != "" && ref.QuestionNoExam > 0
}

// POST /api/bank-notes
func UpsertNoteHandler(st *notes.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			refRequest
			State  string   `json:"state"`
			Memo   string   `json:"memo"`
			Tags   []string `json:"tags"`
			Source string   `json:"source"`
		}
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, "bad json")
			return
		}
		ref, ok := req.ref(r)
		if !ok {
			badRequest(w, "exam_year, subject_code and question_no_exam are required")
			return
		}
		if req.State == "" {
			req.State = "wrong"
		}
		if err := st.UpsertNote(r.Context(), notes.Note{Ref: ref, State: req.State, Memo: req.Memo, Tags: req.Tags, Source: req.Source}); err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// GET /api/bank-notes?exam_year=&subject_code=
func ListNotesHandler(st *notes.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f notes.Filter
		if y, ok := requiredInt(r, "exam_year"); ok {
			f.ExamYear = &y
		}
		f.SubjectCode = strings.TrimSpace(r.URL.Query().Get("subject_code"))
		list, err := st.ListNotes(r.Context(), userID(r, ""), f)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, list)
	}
}

// POST /api/bank-notes/delete
func DeleteNoteHandler(st *notes.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			refRequest
			StatePrefix string `json:"state_prefix"`
		}
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, "bad json")
			return
		}
		ref, ok := req.ref(r)
		if !ok {
			badRequest(w, "exam_year, subject_code and question_no_exam are required")
			return
		}
		n, err := st.DeleteNote(r.Context(), ref, req.StatePrefix)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": n})
	}
}

// POST /api/favorites
func UpsertFavoriteHandler(st *notes.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			refRequest
			Color  string   `json:"color"`
			Memo   string   `json:"memo"`
			Tags   []string `json:"tags"`
			Source string   `json:"source"`
		}
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, "bad json")
			return
		}
		ref, ok := req.ref(r)
		if !ok {
			badRequest(w, "exam_year, subject_code and question_no_exam are required")
			return
		}
		if err := st.UpsertFavorite(r.Context(), notes.Favorite{Ref: ref, Color: req.Color, Memo: req.Memo, Tags: req.Tags, Source: req.Source}); err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// POST /api/favorites/delete
func DeleteFavoriteHandler(st *notes.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refRequest
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, "bad json")
			return
		}
		ref, ok := req.ref(r)
		if !ok {
			badRequest(w, "exam_year, subject_code and question_no_exam are required")
			return
		}
		n, err := st.DeleteFavorite(r.Context(), ref)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": n})
	}
}

// GET /api/choice-visibility?exam_year=&subject_code=
func GetChoiceVisibilityHandler(st *notes.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, ok := requiredInt(r, "exam_year")
		subject := strings.TrimSpace(r.URL.Query().Get("subject_code"))
		if !ok || subject == "" {
			badRequest(w, "exam_year and subject_code are required")
			return
		}
		vis, err := st.GetChoiceVisibility(r.Context(), userID(r, ""), year, subject)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, vis)
	}
}

// POST /api/choice-visibility
func SetChoiceVisibilityHandler(st *notes.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			refRequest
			ChoiceNo int   `json:"choice_no"`
			Hidden   *bool `json:"hidden"`
		}
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, "bad json")
			return
		}
		ref, ok := req.ref(r)
		if !ok || req.ChoiceNo <= 0 {
			badRequest(w, "exam_year, subject_code, question_no_exam and choice_no are required")
			return
		}
		hidden := true
		if req.Hidden != nil {
			hidden = *req.Hidden
		}
		if err := st.SetChoiceVisibility(r.Context(), ref, req.ChoiceNo, hidden); err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}
