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

type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id string) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	GetByUsername(ctx context.Context, username string) (*model.Account, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*model.Account, error)

	// Credit increments the account's XP and wallet in one write. Reports
	// whether a matching account existed.
	Credit(ctx context.Context, id string, xp int, wallet float64) (bool, error)

	EnsureIndexes(ctx context.Context) error
}

type accountRepository struct {
	collection *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) AccountRepository {
	return &accountRepository{
		collection: db.Collection("accounts"),
	}
}

func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	if account.ID == "" {
		account.ID = primitive.NewObjectID().Hex()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, account)
	return err
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*model.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *accountRepository) findOne(ctx context.Context, filter bson.M) (*model.Account, error) {
	var account model.Account
	err := r.collection.FindOne(ctx, filter).Decode(&account)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*model.Account, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var accounts []*model.Account
	if err = cursor.All(ctx, &accounts); err != nil {
		return nil, err
	}

	byID := make(map[string]*model.Account, len(accounts))
	for _, account := range accounts {
		byID[account.ID] = account
	}
	return byID, nil
}

func (r *accountRepository) Credit(ctx context.Context, id string, xp int, wallet float64) (bool, error) {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"xp": xp, "wallet": wallet},
	})
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (r *accountRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}
