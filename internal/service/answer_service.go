package service

import (
	"context"
	"strings"

	"cyberqa/internal/apperr"
	"cyberqa/internal/config"
	"cyberqa/internal/model"
	"cyberqa/internal/repository"
)

// AnswerService is the verification workflow engine. Answers move
// pending -> verified | rejected, and back to pending on resubmission.
// Verification and the XP/wallet credit commit as one transaction.
type AnswerService struct {
	answers  repository.AnswerRepository
	accounts repository.AccountRepository
	question repository.QuestionRepository
	tx       repository.TxRunner

	xpPerCredit    int
	defaultXPAward int
}

func NewAnswerService(
	answers repository.AnswerRepository,
	accounts repository.AccountRepository,
	questions repository.QuestionRepository,
	tx repository.TxRunner,
	cfg *config.Config,
) *AnswerService {
	return &AnswerService{
		answers:        answers,
		accounts:       accounts,
		question:       questions,
		tx:             tx,
		xpPerCredit:    cfg.XPPerCredit,
		defaultXPAward: cfg.DefaultXPAward,
	}
}

// Submit creates a pending answer for an existing question
func (s *AnswerService) Submit(ctx context.Context, submitter *model.Account, questionID, content string, images []string) (*model.Answer, error) {
	questionID = strings.TrimSpace(questionID)
	if questionID == "" || strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("Question id and content are required")
	}

	question, err := s.question.GetByID(ctx, questionID)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to fetch question")
	}
	if question == nil {
		return nil, apperr.NotFound("Question not found")
	}

	if images == nil {
		images = []string{}
	}
	answer := &model.Answer{
		QuestionID:         questionID,
		AccountID:          submitter.ID,
		Content:            content,
		Images:             images,
		Status:             model.AnswerStatusPending,
		XPEarned:           0,
		VerificationMethod: model.VerificationManual,
		AdminComments:      "",
	}
	if err := s.answers.Create(ctx, answer); err != nil {
		return nil, apperr.Persistence(err, "failed to create answer")
	}
	return answer, nil
}

// Verify settles an answer as verified or rejected. A verified outcome
// awards XP and credits the submitter's wallet atomically with the status
// write; the transaction guarantees the answer is never verified with an
// uncredited account. Re-verifying a settled answer is a conflict, as is
// verifying a second answer of a question that already has one.
func (s *AnswerService) Verify(ctx context.Context, reviewer *model.Account, answerID string, outcome model.AnswerStatus, xp *int, comments *string) (*model.Answer, error) {
	if !reviewer.IsAdmin() {
		return nil, apperr.Authorization("Admin access required")
	}
	if outcome != model.AnswerStatusVerified && outcome != model.AnswerStatusRejected {
		return nil, apperr.Validation("Status must be verified or rejected")
	}
	if xp != nil && *xp < 0 {
		return nil, apperr.Validation("xpEarned must not be negative")
	}

	var reviewed *model.Answer
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		answer, err := s.answers.GetByID(ctx, answerID)
		if err != nil {
			return apperr.Persistence(err, "failed to fetch answer")
		}
		if answer == nil {
			return apperr.NotFound("Answer not found")
		}
		if answer.Status == model.AnswerStatusVerified {
			return apperr.Conflict("Answer is already verified")
		}

		if outcome == model.AnswerStatusVerified {
			taken, err := s.answers.HasVerifiedForQuestion(ctx, answer.QuestionID)
			if err != nil {
				return apperr.Persistence(err, "failed to check question answers")
			}
			if taken {
				return apperr.Conflict("Question already has a verified answer")
			}

			award := s.defaultXPAward
			if xp != nil {
				award = *xp
			}

			matched, err := s.answers.MarkVerified(ctx, answerID, award)
			if err != nil {
				return apperr.Persistence(err, "failed to update answer")
			}
			if !matched {
				return apperr.Conflict("Answer was modified concurrently")
			}

			credited, err := s.accounts.Credit(ctx, answer.AccountID, award, float64(award)/float64(s.xpPerCredit))
			if err != nil {
				return apperr.Persistence(err, "failed to credit account")
			}
			if !credited {
				return apperr.Persistence(nil, "submitting account no longer exists")
			}

			answer.Status = model.AnswerStatusVerified
			answer.XPEarned = award
		} else {
			matched, err := s.answers.MarkRejected(ctx, answerID, comments)
			if err != nil {
				return apperr.Persistence(err, "failed to update answer")
			}
			if !matched {
				return apperr.Conflict("Answer was modified concurrently")
			}

			answer.Status = model.AnswerStatusRejected
			answer.XPEarned = 0
			if comments != nil {
				answer.AdminComments = *comments
			}
		}

		answer.VerificationMethod = model.VerificationManual
		reviewed = answer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reviewed, nil
}

// SuggestChanges rejects an answer with feedback so the submitter can
// revise it. Calling it again with the same feedback is a no-op on state.
func (s *AnswerService) SuggestChanges(ctx context.Context, reviewer *model.Account, answerID, comments string) (*model.Answer, error) {
	if !reviewer.IsAdmin() {
		return nil, apperr.Authorization("Admin access required")
	}

	answer, err := s.answers.GetByID(ctx, answerID)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to fetch answer")
	}
	if answer == nil {
		return nil, apperr.NotFound("Answer not found")
	}
	if answer.Status == model.AnswerStatusVerified {
		return nil, apperr.Conflict("Answer is already verified")
	}

	matched, err := s.answers.MarkRejected(ctx, answerID, &comments)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to update answer")
	}
	if !matched {
		return nil, apperr.Conflict("Answer was modified concurrently")
	}

	answer.Status = model.AnswerStatusRejected
	answer.XPEarned = 0
	answer.VerificationMethod = model.VerificationManual
	answer.AdminComments = comments
	return answer, nil
}

// Resubmit lets the original submitter return a rejected (or still pending)
// answer to review with new content. Prior feedback is cleared; the stored
// image list is kept unless new images are supplied.
func (s *AnswerService) Resubmit(ctx context.Context, submitter *model.Account, answerID, content string, images []string) (*model.Answer, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("Content is required")
	}

	answer, err := s.answers.GetByID(ctx, answerID)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to fetch answer")
	}
	if answer == nil {
		return nil, apperr.NotFound("Answer not found")
	}
	if answer.AccountID != submitter.ID {
		return nil, apperr.Authorization("You can only resubmit your own answers")
	}
	if answer.Status == model.AnswerStatusVerified {
		return nil, apperr.Conflict("Answer is already verified")
	}

	matched, err := s.answers.MarkResubmitted(ctx, answerID, content, images)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to update answer")
	}
	if !matched {
		return nil, apperr.Conflict("Answer was modified concurrently")
	}

	answer.Content = content
	answer.Status = model.AnswerStatusPending
	answer.AdminComments = ""
	if len(images) > 0 {
		answer.Images = images
	}
	return answer, nil
}

// PendingReview lists pending answers joined with their question and the
// submitter's username, for the admin review console.
func (s *AnswerService) PendingReview(ctx context.Context, reviewer *model.Account) ([]*model.PendingAnswer, error) {
	if !reviewer.IsAdmin() {
		return nil, apperr.Authorization("Admin access required")
	}

	answers, err := s.answers.ListByStatus(ctx, model.AnswerStatusPending)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to list pending answers")
	}
	if len(answers) == 0 {
		return []*model.PendingAnswer{}, nil
	}

	questionIDs := make([]string, 0, len(answers))
	accountIDs := make([]string, 0, len(answers))
	seenQ := map[string]bool{}
	seenA := map[string]bool{}
	for _, a := range answers {
		if !seenQ[a.QuestionID] {
			seenQ[a.QuestionID] = true
			questionIDs = append(questionIDs, a.QuestionID)
		}
		if !seenA[a.AccountID] {
			seenA[a.AccountID] = true
			accountIDs = append(accountIDs, a.AccountID)
		}
	}

	questions, err := s.question.GetByIDs(ctx, questionIDs)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to load questions")
	}
	accounts, err := s.accounts.GetByIDs(ctx, accountIDs)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to load accounts")
	}

	pending := make([]*model.PendingAnswer, 0, len(answers))
	for _, a := range answers {
		entry := &model.PendingAnswer{Answer: a, Question: questions[a.QuestionID]}
		if account := accounts[a.AccountID]; account != nil {
			entry.Username = account.Username
		}
		pending = append(pending, entry)
	}
	return pending, nil
}

// ListMine returns the caller's own answers
func (s *AnswerService) ListMine(ctx context.Context, submitter *model.Account) ([]*model.Answer, error) {
	answers, err := s.answers.ListByAccount(ctx, submitter.ID)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to list answers")
	}
	return answers, nil
}

// ListForQuestion returns every answer referencing a question
func (s *AnswerService) ListForQuestion(ctx context.Context, questionID string) ([]*model.Answer, error) {
	answers, err := s.answers.ListByQuestion(ctx, questionID)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to list answers")
	}
	return answers, nil
}
