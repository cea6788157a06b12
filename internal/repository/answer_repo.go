package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"cyberqa/internal/model"
)

// reviewable are the states a review action may transition out of. Writes are
// conditional on the current status so concurrent reviewers serialize: the
// loser matches zero documents.
var reviewable = []model.AnswerStatus{model.AnswerStatusPending, model.AnswerStatusRejected}

type AnswerRepository interface {
	Create(ctx context.Context, answer *model.Answer) error
	GetByID(ctx context.Context, id string) (*model.Answer, error)
	ListByAccount(ctx context.Context, accountID string) ([]*model.Answer, error)
	ListByQuestion(ctx context.Context, questionID string) ([]*model.Answer, error)
	ListByStatus(ctx context.Context, status model.AnswerStatus) ([]*model.Answer, error)

	// MarkVerified moves a pending or rejected answer to verified with the
	// awarded XP. Reports whether the conditional write matched.
	MarkVerified(ctx context.Context, id string, xp int) (bool, error)

	// MarkRejected moves a pending or rejected answer to rejected, zeroing
	// XP; admin comments are set only when non-nil.
	MarkRejected(ctx context.Context, id string, comments *string) (bool, error)

	// MarkResubmitted returns a non-verified answer to pending with new
	// content and cleared comments. Images are replaced only when non-empty.
	MarkResubmitted(ctx context.Context, id string, content string, images []string) (bool, error)

	// VerifiedQuestionIDs lists the distinct question ids that have at least
	// one verified answer ("solved" questions).
	VerifiedQuestionIDs(ctx context.Context) ([]string, error)
	HasVerifiedForQuestion(ctx context.Context, questionID string) (bool, error)
}

type answerRepository struct {
	collection *mongo.Collection
}

func NewAnswerRepository(db *mongo.Database) AnswerRepository {
	return &answerRepository{
		collection: db.Collection("answers"),
	}
}

func (r *answerRepository) Create(ctx context.Context, answer *model.Answer) error {
	if answer.ID == "" {
		answer.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now()
	if answer.CreatedAt.IsZero() {
		answer.CreatedAt = now
	}
	answer.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, answer)
	return err
}

func (r *answerRepository) GetByID(ctx context.Context, id string) (*model.Answer, error) {
	var answer model.Answer
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&answer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &answer, nil
}

func (r *answerRepository) ListByAccount(ctx context.Context, accountID string) ([]*model.Answer, error) {
	return r.find(ctx, bson.M{"userId": accountID})
}

func (r *answerRepository) ListByQuestion(ctx context.Context, questionID string) ([]*model.Answer, error) {
	return r.find(ctx, bson.M{"questionId": questionID})
}

func (r *answerRepository) ListByStatus(ctx context.Context, status model.AnswerStatus) ([]*model.Answer, error) {
	return r.find(ctx, bson.M{"status": status})
}

func (r *answerRepository) find(ctx context.Context, filter bson.M) ([]*model.Answer, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	answers := []*model.Answer{}
	if err = cursor.All(ctx, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *answerRepository) MarkVerified(ctx context.Context, id string, xp int) (bool, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": bson.M{"$in": reviewable}},
		bson.M{"$set": bson.M{
			"status":             model.AnswerStatusVerified,
			"xpEarned":           xp,
			"verificationMethod": model.VerificationManual,
			"updatedAt":          time.Now(),
		}},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (r *answerRepository) MarkRejected(ctx context.Context, id string, comments *string) (bool, error) {
	set := bson.M{
		"status":             model.AnswerStatusRejected,
		"xpEarned":           0,
		"verificationMethod": model.VerificationManual,
		"updatedAt":          time.Now(),
	}
	if comments != nil {
		set["adminComments"] = *comments
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": bson.M{"$in": reviewable}},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (r *answerRepository) MarkResubmitted(ctx context.Context, id string, content string, images []string) (bool, error) {
	set := bson.M{
		"content":       content,
		"status":        model.AnswerStatusPending,
		"adminComments": "",
		"updatedAt":     time.Now(),
	}
	if len(images) > 0 {
		set["images"] = images
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": bson.M{"$in": reviewable}},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (r *answerRepository) VerifiedQuestionIDs(ctx context.Context) ([]string, error) {
	values, err := r.collection.Distinct(ctx, "questionId", bson.M{"status": model.AnswerStatusVerified})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *answerRepository) HasVerifiedForQuestion(ctx context.Context, questionID string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"questionId": questionID,
		"status":     model.AnswerStatusVerified,
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
