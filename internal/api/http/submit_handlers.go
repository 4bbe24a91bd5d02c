package http

import (
	"net/http"
	"strings"

	"github.com/mind-engage/mindengage-taxexam/internal/attempt"
)

type mockSubmitRequest struct {
	ExamYear        int              `json:"exam_year"`
	SubjectCode     string           `json:"subject_code"`
	Answers         map[int64]string `json:"answers"`
	UserID          string           `json:"user_id"`
	StartedAt       *string          `json:"started_at"`
	DurationSeconds int              `json:"duration_seconds"`
}

type mockSubmitResponse struct {
	ExamYear    int    `json:"exam_year"`
	SubjectCode string `json:"subject_code"`
	attempt.Submission
}

// POST /api/mock/submit
func MockSubmitHandler(svc *attempt.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req mockSubmitRequest
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, "bad json")
			return
		}
		req.SubjectCode = strings.TrimSpace(req.SubjectCode)
		if req.SubjectCode == "" || req.ExamYear == 0 {
			badRequest(w, "exam_year and subject_code are required")
			return
		}
		sub, err := svc.SubmitMock(r.Context(), attempt.MockSubmission{
			UserID:          userID(r, req.UserID),
			ExamYear:        req.ExamYear,
			SubjectCode:     req.SubjectCode,
			Answers:         req.Answers,
			StartedAt:       req.StartedAt,
			DurationSeconds: req.DurationSeconds,
		})
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, mockSubmitResponse{ExamYear: req.ExamYear, SubjectCode: req.SubjectCode, Submission: sub})
	}
}

type oxSubmitRequest struct {
	SubjectCode     string           `json:"subject_code"`
	Answers         map[int64]string `json:"answers"`
	UserID          string           `json:"user_id"`
	StartedAt       *string          `json:"started_at"`
	DurationSeconds int              `json:"duration_seconds"`
}

type oxSubmitResponse struct {
	SubjectCode string `json:"subject_code"`
	attempt.Submission
}

// POST /api/ox/submit
func OXSubmitHandler(svc *attempt.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req oxSubmitRequest
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, "bad json")
			return
		}
		req.SubjectCode = strings.TrimSpace(req.SubjectCode)
		if req.SubjectCode == "" {
			badRequest(w, "subject_code is required")
			return
		}
		sub, err := svc.SubmitOX(r.Context(), attempt.OXSubmission{
			UserID:          userID(r, req.UserID),
			SubjectCode:     req.SubjectCode,
			Answers:         req.Answers,
			StartedAt:       req.StartedAt,
			DurationSeconds: req.DurationSeconds,
		})
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, oxSubmitResponse{SubjectCode: req.SubjectCode, Submission: sub})
	}
}
