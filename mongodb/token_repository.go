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

// TokenRepository is the MongoDB implementation of domain.TokenRepository.
type TokenRepository struct {
	tokens *mongo.Collection
}

func NewTokenRepository(ctx context.Context, db *mongo.Database) (*TokenRepository, error) {
	repo := &TokenRepository{
		tokens: db.Collection(UserTokensCollectionName),
	}

	_, err := repo.tokens.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
	})
	if err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *TokenRepository) SaveToken(ctx context.Context, token *domain.UserToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.IssuedAt.IsZero() {
		token.IssuedAt = time.Now().UTC()
	}

	_, err := r.tokens.InsertOne(ctx, token)
	return err
}

func (r *TokenRepository) GetTokenByValue(ctx context.Context, value string) (*domain.UserToken, error) {
	var token domain.UserToken
	err := r.tokens.FindOne(ctx, bson.M{"token": value}).Decode(&token)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, serrors.ErrTokenNotFound
		}
		return nil, err
	}
	return &token, nil
}

func (r *TokenRepository) RevokeToken(ctx context.Context, userID, value string) (bool, error) {
	filter := bson.M{
		"token":      value,
		"user_id":    userID,
		"revoked_at": bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{"revoked_at": time.Now().UTC()}}

	result, err := r.tokens.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}

	return result.ModifiedCount > 0, nil
}

// RevokeAllTokens stamps every unrevoked token of the user with a single
// revocation time, then reads back exactly the rows carrying that stamp. The
// stamp is truncated to milliseconds because that is the precision BSON
// stores, and the read-back filter matches on equality.
func (r *TokenRepository) RevokeAllTokens(ctx context.Context, userID string) ([]string, error) {
	revokedAt := time.Now().UTC().Truncate(time.Millisecond)

	filter := bson.M{
		"user_id":    userID,
		"revoked_at": bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{"revoked_at": revokedAt}}

	if _, err := r.tokens.UpdateMany(ctx, filter, update); err != nil {
		return nil, err
	}

	cursor, err := r.tokens.Find(ctx, bson.M{"user_id": userID, "revoked_at": revokedAt})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var revoked []*domain.UserToken
	if err := cursor.All(ctx, &revoked); err != nil {
		return nil, err
	}

	values := make([]string, 0, len(revoked))
	for _, token := range revoked {
		values = append(values, token.Token)
	}

	return values, nil
}

// PurgeExpiredTokens deletes token rows past their expiry. Validity already
// excludes them, so deletion is pure storage hygiene.
func (r *TokenRepository) PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.tokens.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": now.UTC()}})
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}

var _ domain.TokenRepository = (*TokenRepository)(nil)
