package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"cyberqa/internal/logger"
	"cyberqa/internal/model"
	"cyberqa/internal/service"
	"cyberqa/internal/storage"
	"cyberqa/internal/transport/rest/middleware"
)

const maxUploadFiles = 10

// QuestionHandler handles the question catalog endpoints
type QuestionHandler struct {
	questionSvc *service.QuestionService
	store       *storage.LocalStore
	log         *logger.Logger
}

func NewQuestionHandler(questionSvc *service.QuestionService, store *storage.LocalStore, log *logger.Logger) *QuestionHandler {
	return &QuestionHandler{questionSvc: questionSvc, store: store, log: log}
}

// QuestionRequest is the request body for creating or updating a question
type QuestionRequest struct {
	QuestionText   string             `json:"questionText"`
	Type           model.QuestionType `json:"type"`
	CipherType     string             `json:"cipherType"`
	Difficulty     model.Difficulty   `json:"difficulty"`
	Tags           model.TagList      `json:"tags"`
	ExpectedAnswer string             `json:"expectedAnswer"`
	TestCases      []model.TestCase   `json:"testCases"`
	Source         string             `json:"source"`
	Images         []string           `json:"images"`
}

func (req *QuestionRequest) toInput() *service.QuestionInput {
	return &service.QuestionInput{
		QuestionText:   req.QuestionText,
		Type:           req.Type,
		CipherType:     req.CipherType,
		Difficulty:     req.Difficulty,
		Tags:           req.Tags,
		ExpectedAnswer: req.ExpectedAnswer,
		TestCases:      req.TestCases,
		Source:         req.Source,
		Images:         req.Images,
	}
}

// List handles GET /api/questions
func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := service.CatalogFilter{
		Type:       q.Get("type"),
		Difficulty: q.Get("difficulty"),
		Solved:     q.Get("solved"),
	}
	if tags := q.Get("tags"); tags != "" {
		filter.Tags = strings.Split(tags, ",")
	}

	page := parseIntQuery(q.Get("page"), 1)
	limit := parseIntQuery(q.Get("limit"), 10)

	result, err := h.questionSvc.List(r.Context(), filter, page, limit)
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Get handles GET /api/questions/{id}
func (h *QuestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	question, err := h.questionSvc.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

// Create handles POST /api/questions
func (h *QuestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	question, err := h.questionSvc.Create(r.Context(), middleware.Principal(r.Context()), req.toInput())
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, question)
}

// Update handles PUT /api/questions/{id}
func (h *QuestionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	question, err := h.questionSvc.Update(r.Context(), middleware.Principal(r.Context()), mux.Vars(r)["id"], req.toInput())
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

// Delete handles DELETE /api/questions/{id}
func (h *QuestionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.questionSvc.Delete(r.Context(), middleware.Principal(r.Context()), mux.Vars(r)["id"]); err != nil {
		writeAppError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Question deleted"})
}

// UploadImages handles POST /api/questions/upload-images. Each upload batch
// gets its own scope key so concurrent uploads never collide.
func (h *QuestionHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "No files uploaded")
		return
	}
	if len(files) > maxUploadFiles {
		files = files[:maxUploadFiles]
	}

	scopeKey := storage.NewScopeKey()
	imageURLs := make([]string, 0, len(files))
	for _, fh := range files {
		ref, err := h.store.Save(storage.ScopeQuestions, scopeKey, fh)
		if err != nil {
			if errors.Is(err, storage.ErrUnsupportedType) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeAppError(w, h.log, err)
			return
		}
		imageURLs = append(imageURLs, ref)
	}

	writeJSON(w, http.StatusOK, map[string][]string{"imageUrls": imageURLs})
}

func parseIntQuery(raw string, defaultVal int64) int64 {
	if raw == "" {
		return defaultVal
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		return defaultVal
	}
	return n
}
