package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pagemark/readsync/domain"
	serrors "github.com/pagemark/readsync/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// UserRepository is the MongoDB implementation of domain.UserRepository.
type UserRepository struct {
	users *mongo.Collection
}

func NewUserRepository(ctx context.Context, db *mongo.Database) (*UserRepository, error) {
	repo := &UserRepository{
		users: db.Collection(UsersCollectionName),
	}

	_, err := repo.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "github_uid", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, err
	}

	return repo, nil
}

// UpsertByGithubUID creates the user on first sign-in, or refreshes the
// profile fields and last-login time on every later one. The unique index on
// github_uid makes concurrent first sign-ins converge on a single row.
func (r *UserRepository) UpsertByGithubUID(ctx context.Context, githubUID, username, avatarURL string) (*domain.User, error) {
	now := time.Now().UTC()

	filter := bson.M{"github_uid": githubUID}
	update := bson.M{
		"$set": bson.M{
			"username":      username,
			"avatar_url":    avatarURL,
			"last_login_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":        uuid.NewString(),
			"github_uid": githubUID,
			"created_at": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var user domain.User
	if err := r.users.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, serrors.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

var _ domain.UserRepository = (*UserRepository)(nil)
