package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cyberqa/internal/model"
)

// In-memory repository fakes mirroring the Mongo repositories' semantics,
// including the conditional status transitions.

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*model.Account
	seq      int
	failWith error
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: map[string]*model.Account{}}
}

func (r *fakeAccountRepo) Create(_ context.Context, account *model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if account.ID == "" {
		r.seq++
		account.ID = fmt.Sprintf("acct-%d", r.seq)
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}
	r.accounts[account.ID] = account
	return nil
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id string) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accounts[id], nil
}

func (r *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) GetByUsername(_ context.Context, username string) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Username == username {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) GetByIDs(_ context.Context, ids []string) (map[string]*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byID := map[string]*model.Account{}
	for _, id := range ids {
		if a, ok := r.accounts[id]; ok {
			byID[id] = a
		}
	}
	return byID, nil
}

func (r *fakeAccountRepo) Credit(_ context.Context, id string, xp int, wallet float64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return false, r.failWith
	}
	a, ok := r.accounts[id]
	if !ok {
		return false, nil
	}
	a.XP += xp
	a.Wallet += wallet
	return true, nil
}

func (r *fakeAccountRepo) EnsureIndexes(context.Context) error { return nil }

type fakeQuestionRepo struct {
	mu        sync.Mutex
	questions map[string]*model.Question
	order     []string
	seq       int
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{questions: map[string]*model.Question{}}
}

func (r *fakeQuestionRepo) Create(_ context.Context, question *model.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if question.ID == "" {
		r.seq++
		question.ID = fmt.Sprintf("q-%d", r.seq)
	}
	now := time.Now()
	if question.CreatedAt.IsZero() {
		question.CreatedAt = now
	}
	question.UpdatedAt = now
	r.questions[question.ID] = question
	r.order = append(r.order, question.ID)
	return nil
}

func (r *fakeQuestionRepo) GetByID(_ context.Context, id string) (*model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.questions[id], nil
}

func (r *fakeQuestionRepo) GetByIDs(_ context.Context, ids []string) (map[string]*model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byID := map[string]*model.Question{}
	for _, id := range ids {
		if q, ok := r.questions[id]; ok {
			byID[id] = q
		}
	}
	return byID, nil
}

func (r *fakeQuestionRepo) Update(_ context.Context, id string, upd *model.QuestionUpdate) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.questions[id]
	if !ok {
		return false, nil
	}
	q.QuestionText = upd.QuestionText
	q.Type = upd.Type
	q.CipherType = upd.CipherType
	q.Difficulty = upd.Difficulty
	q.Tags = upd.Tags
	q.ExpectedAnswer = upd.ExpectedAnswer
	q.TestCases = upd.TestCases
	q.Source = upd.Source
	q.Images = upd.Images
	q.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeQuestionRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.questions[id]; !ok {
		return false, nil
	}
	delete(r.questions, id)
	for i, qid := range r.order {
		if qid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (r *fakeQuestionRepo) List(_ context.Context, filter model.QuestionFilter, page, limit int64) ([]*model.Question, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := []*model.Question{}
	for _, id := range r.order {
		q := r.questions[id]
		if filter.Type != "" && string(q.Type) != filter.Type {
			continue
		}
		if filter.Difficulty != "" && string(q.Difficulty) != filter.Difficulty {
			continue
		}
		if !hasAllTags(q.Tags, filter.Tags) {
			continue
		}
		if filter.IncludeIDs != nil && !containsID(filter.IncludeIDs, q.ID) {
			continue
		}
		if filter.ExcludeIDs != nil && containsID(filter.ExcludeIDs, q.ID) {
			continue
		}
		matched = append(matched, q)
	}

	total := int64(len(matched))
	start := (page - 1) * limit
	if start >= total {
		return []*model.Question{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func hasAllTags(tags, wanted []string) bool {
	for _, want := range wanted {
		found := false
		for _, tag := range tags {
			if tag == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

type fakeAnswerRepo struct {
	mu      sync.Mutex
	answers map[string]*model.Answer
	order   []string
	seq     int
}

func newFakeAnswerRepo() *fakeAnswerRepo {
	return &fakeAnswerRepo{answers: map[string]*model.Answer{}}
}

func (r *fakeAnswerRepo) Create(_ context.Context, answer *model.Answer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if answer.ID == "" {
		r.seq++
		answer.ID = fmt.Sprintf("ans-%d", r.seq)
	}
	now := time.Now()
	if answer.CreatedAt.IsZero() {
		answer.CreatedAt = now
	}
	answer.UpdatedAt = now
	stored := *answer
	r.answers[answer.ID] = &stored
	r.order = append(r.order, answer.ID)
	return nil
}

func (r *fakeAnswerRepo) GetByID(_ context.Context, id string) (*model.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.answers[id]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (r *fakeAnswerRepo) ListByAccount(_ context.Context, accountID string) ([]*model.Answer, error) {
	return r.list(func(a *model.Answer) bool { return a.AccountID == accountID })
}

func (r *fakeAnswerRepo) ListByQuestion(_ context.Context, questionID string) ([]*model.Answer, error) {
	return r.list(func(a *model.Answer) bool { return a.QuestionID == questionID })
}

func (r *fakeAnswerRepo) ListByStatus(_ context.Context, status model.AnswerStatus) ([]*model.Answer, error) {
	return r.list(func(a *model.Answer) bool { return a.Status == status })
}

func (r *fakeAnswerRepo) list(match func(*model.Answer) bool) ([]*model.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []*model.Answer{}
	for _, id := range r.order {
		if a := r.answers[id]; match(a) {
			copied := *a
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *fakeAnswerRepo) MarkVerified(_ context.Context, id string, xp int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.answers[id]
	if !ok || a.Status == model.AnswerStatusVerified {
		return false, nil
	}
	a.Status = model.AnswerStatusVerified
	a.XPEarned = xp
	a.VerificationMethod = model.VerificationManual
	a.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeAnswerRepo) MarkRejected(_ context.Context, id string, comments *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.answers[id]
	if !ok || a.Status == model.AnswerStatusVerified {
		return false, nil
	}
	a.Status = model.AnswerStatusRejected
	a.XPEarned = 0
	a.VerificationMethod = model.VerificationManual
	if comments != nil {
		a.AdminComments = *comments
	}
	a.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeAnswerRepo) MarkResubmitted(_ context.Context, id string, content string, images []string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.answers[id]
	if !ok || a.Status == model.AnswerStatusVerified {
		return false, nil
	}
	a.Content = content
	a.Status = model.AnswerStatusPending
	a.AdminComments = ""
	if len(images) > 0 {
		a.Images = images
	}
	a.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeAnswerRepo) VerifiedQuestionIDs(context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]bool{}
	ids := []string{}
	for _, id := range r.order {
		a := r.answers[id]
		if a.Status == model.AnswerStatusVerified && !seen[a.QuestionID] {
			seen[a.QuestionID] = true
			ids = append(ids, a.QuestionID)
		}
	}
	return ids, nil
}

func (r *fakeAnswerRepo) HasVerifiedForQuestion(_ context.Context, questionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.answers {
		if a.QuestionID == questionID && a.Status == model.AnswerStatusVerified {
			return true, nil
		}
	}
	return false, nil
}

// fakeTxRunner runs the function directly; rollback behavior belongs to the
// Mongo driver and is out of scope for these tests.
type fakeTxRunner struct{}

func (fakeTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeSessionCache struct {
	mu       sync.Mutex
	sessions map[string]string
}

func newFakeSessionCache() *fakeSessionCache {
	return &fakeSessionCache{sessions: map[string]string{}}
}

func (c *fakeSessionCache) Put(_ context.Context, tokenID, accountID string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[tokenID] = accountID
	return nil
}

func (c *fakeSessionCache) Get(_ context.Context, tokenID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions[tokenID], nil
}

func (c *fakeSessionCache) Delete(_ context.Context, tokenID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, tokenID)
	return nil
}

var errStorageDown = errors.New("storage down")
