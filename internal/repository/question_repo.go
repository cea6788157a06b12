package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cyberqa/internal/model"
)

type QuestionRepository interface {
	Create(ctx context.Context, question *model.Question) error
	GetByID(ctx context.Context, id string) (*model.Question, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*model.Question, error)

	// Update applies the allow-listed field set. Reports whether the
	// question existed.
	Update(ctx context.Context, id string, upd *model.QuestionUpdate) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)

	// List returns one page of questions matching the filter plus the total
	// match count. Pages are 1-indexed.
	List(ctx context.Context, filter model.QuestionFilter, page, limit int64) ([]*model.Question, int64, error)
}

type questionRepository struct {
	collection *mongo.Collection
}

func NewQuestionRepository(db *mongo.Database) QuestionRepository {
	return &questionRepository{
		collection: db.Collection("questions"),
	}
}

func (r *questionRepository) Create(ctx context.Context, question *model.Question) error {
	if question.ID == "" {
		question.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now()
	if question.CreatedAt.IsZero() {
		question.CreatedAt = now
	}
	question.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, question)
	return err
}

func (r *questionRepository) GetByID(ctx context.Context, id string) (*model.Question, error) {
	var question model.Question
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&question)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*model.Question, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questions []*model.Question
	if err = cursor.All(ctx, &questions); err != nil {
		return nil, err
	}

	byID := make(map[string]*model.Question, len(questions))
	for _, question := range questions {
		byID[question.ID] = question
	}
	return byID, nil
}

func (r *questionRepository) Update(ctx context.Context, id string, upd *model.QuestionUpdate) (bool, error) {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"questionText":   upd.QuestionText,
			"type":           upd.Type,
			"cipherType":     upd.CipherType,
			"difficulty":     upd.Difficulty,
			"tags":           upd.Tags,
			"expectedAnswer": upd.ExpectedAnswer,
			"testCases":      upd.TestCases,
			"source":         upd.Source,
			"images":         upd.Images,
			"updatedAt":      time.Now(),
		},
	})
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (r *questionRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

func (r *questionRepository) List(ctx context.Context, filter model.QuestionFilter, page, limit int64) ([]*model.Question, int64, error) {
	query := bson.M{}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.Difficulty != "" {
		query["difficulty"] = filter.Difficulty
	}
	if len(filter.Tags) > 0 {
		query["tags"] = bson.M{"$all": filter.Tags}
	}
	if filter.IncludeIDs != nil {
		query["_id"] = bson.M{"$in": filter.IncludeIDs}
	} else if filter.ExcludeIDs != nil {
		query["_id"] = bson.M{"$nin": filter.ExcludeIDs}
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSkip((page - 1) * limit).
		SetLimit(limit).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	questions := []*model.Question{}
	if err = cursor.All(ctx, &questions); err != nil {
		return nil, 0, err
	}

	return questions, total, nil
}
