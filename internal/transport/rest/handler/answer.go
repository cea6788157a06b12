package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"cyberqa/internal/logger"
	"cyberqa/internal/model"
	"cyberqa/internal/service"
	"cyberqa/internal/storage"
	"cyberqa/internal/transport/rest/middleware"
)

// AnswerHandler handles answer submission and the review workflow endpoints
type AnswerHandler struct {
	answerSvc *service.AnswerService
	store     *storage.LocalStore
	log       *logger.Logger
}

func NewAnswerHandler(answerSvc *service.AnswerService, store *storage.LocalStore, log *logger.Logger) *AnswerHandler {
	return &AnswerHandler{answerSvc: answerSvc, store: store, log: log}
}

// SubmitAnswerRequest is the JSON request body for answer submission
type SubmitAnswerRequest struct {
	Content string   `json:"content"`
	Images  []string `json:"images"`
}

// VerifyAnswerRequest is the request body for the verify endpoint
type VerifyAnswerRequest struct {
	Status        model.AnswerStatus `json:"status"`
	XPEarned      *int               `json:"xpEarned"`
	AdminComments *string            `json:"adminComments"`
}

// SuggestChangesRequest is the request body for the suggest endpoint
type SuggestChangesRequest struct {
	AdminComments string `json:"adminComments"`
}

// Submit handles POST /api/answers/{questionId}. The body is either JSON or
// a multipart form with an optional "image" file.
func (h *AnswerHandler) Submit(w http.ResponseWriter, r *http.Request) {
	questionID := mux.Vars(r)["questionId"]
	submitter := middleware.Principal(r.Context())

	var req SubmitAnswerRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid multipart form")
			return
		}
		req.Content = r.FormValue("content")

		if files := r.MultipartForm.File["image"]; len(files) > 0 {
			ref, err := h.store.Save(storage.ScopeAnswers, questionID, files[0])
			if err != nil {
				if errors.Is(err, storage.ErrUnsupportedType) {
					writeError(w, http.StatusBadRequest, err.Error())
					return
				}
				writeAppError(w, h.log, err)
				return
			}
			req.Images = []string{ref}
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	answer, err := h.answerSvc.Submit(r.Context(), submitter, questionID, req.Content, req.Images)
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, answer)
}

// Verify handles PUT /api/answers/{id}/verify
func (h *AnswerHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	answer, err := h.answerSvc.Verify(
		r.Context(),
		middleware.Principal(r.Context()),
		mux.Vars(r)["id"],
		req.Status,
		req.XPEarned,
		req.AdminComments,
	)
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

// Suggest handles PUT /api/answers/{id}/suggest
func (h *AnswerHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req SuggestChangesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	answer, err := h.answerSvc.SuggestChanges(
		r.Context(),
		middleware.Principal(r.Context()),
		mux.Vars(r)["id"],
		req.AdminComments,
	)
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

// Resubmit handles PUT /api/answers/{id}/resubmit
func (h *AnswerHandler) Resubmit(w http.ResponseWriter, r *http.Request) {
	var req SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	answer, err := h.answerSvc.Resubmit(
		r.Context(),
		middleware.Principal(r.Context()),
		mux.Vars(r)["id"],
		req.Content,
		req.Images,
	)
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Answer resubmitted",
		"answer":  answer,
	})
}

// Pending handles GET /api/answers/pending
func (h *AnswerHandler) Pending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.answerSvc.PendingReview(r.Context(), middleware.Principal(r.Context()))
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, pending)
}

// Mine handles GET /api/answers/user
func (h *AnswerHandler) Mine(w http.ResponseWriter, r *http.Request) {
	answers, err := h.answerSvc.ListMine(r.Context(), middleware.Principal(r.Context()))
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, answers)
}

// ByQuestion handles GET /api/answers/question/{questionId}
func (h *AnswerHandler) ByQuestion(w http.ResponseWriter, r *http.Request) {
	answers, err := h.answerSvc.ListForQuestion(r.Context(), mux.Vars(r)["questionId"])
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, answers)
}
