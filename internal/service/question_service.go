package service

import (
	"context"
	"strings"

	"cyberqa/internal/apperr"
	"cyberqa/internal/model"
	"cyberqa/internal/repository"
)

const defaultPageLimit = 10

// CatalogFilter is a question listing request as it arrives from the
// transport layer. Solved partitions questions by whether any answer
// referencing them is verified.
type CatalogFilter struct {
	Type       string
	Difficulty string
	Tags       []string
	Solved     string // "", "solved", "unsolved"
}

// QuestionInput carries the writable fields for create and update
type QuestionInput struct {
	QuestionText   string
	Type           model.QuestionType
	CipherType     string
	Difficulty     model.Difficulty
	Tags           []string
	ExpectedAnswer string
	TestCases      []model.TestCase
	Source         string
	Images         []string
}

// QuestionService manages the question catalog
type QuestionService struct {
	questions repository.QuestionRepository
	answers   repository.AnswerRepository
}

func NewQuestionService(questions repository.QuestionRepository, answers repository.AnswerRepository) *QuestionService {
	return &QuestionService{questions: questions, answers: answers}
}

// List returns one page of the catalog. Pages are 1-indexed; totalPages is
// ceil(count/limit).
func (s *QuestionService) List(ctx context.Context, filter CatalogFilter, page, limit int64) (*model.QuestionPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}

	repoFilter := model.QuestionFilter{
		Type:       filter.Type,
		Difficulty: filter.Difficulty,
		Tags:       model.NormalizeTags(filter.Tags),
	}

	switch filter.Solved {
	case "solved", "unsolved":
		solvedIDs, err := s.answers.VerifiedQuestionIDs(ctx)
		if err != nil {
			return nil, apperr.Persistence(err, "failed to compute solved questions")
		}
		if filter.Solved == "solved" {
			repoFilter.IncludeIDs = solvedIDs
		} else {
			repoFilter.ExcludeIDs = solvedIDs
		}
	}

	questions, total, err := s.questions.List(ctx, repoFilter, page, limit)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to list questions")
	}

	totalPages := (total + limit - 1) / limit
	return &model.QuestionPage{Questions: questions, TotalPages: totalPages}, nil
}

// Get fetches one question by id
func (s *QuestionService) Get(ctx context.Context, id string) (*model.Question, error) {
	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to fetch question")
	}
	if question == nil {
		return nil, apperr.NotFound("Question not found")
	}
	return question, nil
}

// Create adds a question to the catalog; admin only
func (s *QuestionService) Create(ctx context.Context, actor *model.Account, input *QuestionInput) (*model.Question, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Authorization("Admin access required")
	}
	if err := validateQuestionInput(input); err != nil {
		return nil, err
	}

	question := &model.Question{
		QuestionText:   strings.TrimSpace(input.QuestionText),
		Type:           input.Type,
		CipherType:     input.CipherType,
		Difficulty:     input.Difficulty,
		Tags:           model.NormalizeTags(input.Tags),
		ExpectedAnswer: input.ExpectedAnswer,
		TestCases:      input.TestCases,
		Source:         input.Source,
		Images:         input.Images,
	}
	if question.TestCases == nil {
		question.TestCases = []model.TestCase{}
	}
	if question.Images == nil {
		question.Images = []string{}
	}

	if err := s.questions.Create(ctx, question); err != nil {
		return nil, apperr.Persistence(err, "failed to create question")
	}
	return question, nil
}

// Update replaces the mutable fields of a question; admin only
func (s *QuestionService) Update(ctx context.Context, actor *model.Account, id string, input *QuestionInput) (*model.Question, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Authorization("Admin access required")
	}
	if err := validateQuestionInput(input); err != nil {
		return nil, err
	}

	upd := &model.QuestionUpdate{
		QuestionText:   strings.TrimSpace(input.QuestionText),
		Type:           input.Type,
		CipherType:     input.CipherType,
		Difficulty:     input.Difficulty,
		Tags:           model.NormalizeTags(input.Tags),
		ExpectedAnswer: input.ExpectedAnswer,
		TestCases:      input.TestCases,
		Source:         input.Source,
		Images:         input.Images,
	}
	if upd.TestCases == nil {
		upd.TestCases = []model.TestCase{}
	}
	if upd.Images == nil {
		upd.Images = []string{}
	}

	matched, err := s.questions.Update(ctx, id, upd)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to update question")
	}
	if !matched {
		return nil, apperr.NotFound("Question not found")
	}

	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to fetch question")
	}
	return question, nil
}

// Delete removes a question; admin only
func (s *QuestionService) Delete(ctx context.Context, actor *model.Account, id string) error {
	if !actor.IsAdmin() {
		return apperr.Authorization("Admin access required")
	}

	deleted, err := s.questions.Delete(ctx, id)
	if err != nil {
		return apperr.Persistence(err, "failed to delete question")
	}
	if !deleted {
		return apperr.NotFound("Question not found")
	}
	return nil
}

func validateQuestionInput(input *QuestionInput) error {
	if strings.TrimSpace(input.QuestionText) == "" || input.Type == "" || input.Difficulty == "" {
		return apperr.Validation("Question text, type, and difficulty are required")
	}
	if !input.Type.Valid() {
		return apperr.Validation("Unknown question type %q", input.Type)
	}
	if !input.Difficulty.Valid() {
		return apperr.Validation("Unknown difficulty %q", input.Difficulty)
	}
	return nil
}
