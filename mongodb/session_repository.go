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

// AuthSessionRepository is the MongoDB implementation of
// domain.AuthSessionRepository.
type AuthSessionRepository struct {
	sessions *mongo.Collection
}

func NewAuthSessionRepository(ctx context.Context, db *mongo.Database) (*AuthSessionRepository, error) {
	repo := &AuthSessionRepository{
		sessions: db.Collection(AuthSessionsCollectionName),
	}

	// session_token and state are the two lookup keys; state uniqueness is
	// what rejects a generator collision at insert time.
	_, err := repo.sessions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "state", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "expires_at", Value: 1}},
		},
	})
	if err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *AuthSessionRepository) CreateSession(ctx context.Context, session *domain.AuthSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	_, err := r.sessions.InsertOne(ctx, session)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return serrors.ErrStateCollision
		}
		return err
	}

	return nil
}

func (r *AuthSessionRepository) GetSessionByToken(ctx context.Context, sessionToken string) (*domain.AuthSession, error) {
	return r.findOne(ctx, bson.M{"session_token": sessionToken})
}

func (r *AuthSessionRepository) GetSessionByState(ctx context.Context, state string) (*domain.AuthSession, error) {
	return r.findOne(ctx, bson.M{"state": state})
}

func (r *AuthSessionRepository) findOne(ctx context.Context, filter bson.M) (*domain.AuthSession, error) {
	var session domain.AuthSession
	err := r.sessions.FindOne(ctx, filter).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, serrors.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// TransitionSession is the system's single concurrency-control primitive: one
// conditional UpdateOne whose filter pins the currently stored status to a
// valid predecessor of newStatus. A racing writer that lands first makes the
// filter miss, and the loser sees false rather than clobbering the row.
func (r *AuthSessionRepository) TransitionSession(ctx context.Context, sessionID string, newStatus domain.SessionStatus, userID string) (bool, error) {
	predecessors := domain.TransitionPredecessors(newStatus)
	if len(predecessors) == 0 {
		return false, nil
	}

	filter := bson.M{
		"_id":    sessionID,
		"status": bson.M{"$in": predecessors},
	}

	set := bson.M{"status": newStatus}
	if userID != "" {
		set["user_id"] = userID
	}
	if newStatus == domain.SessionStatusAuthorized || newStatus == domain.SessionStatusCompleted {
		set["completed_at"] = time.Now().UTC()
	}

	result, err := r.sessions.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, err
	}

	return result.ModifiedCount > 0, nil
}

// SweepExpiredSessions bulk-expires every live session past its deadline. The
// filter only matches sessions that are already logically dead, so the sweep
// is safe to run concurrently with everything else.
func (r *AuthSessionRepository) SweepExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{
		"status":     bson.M{"$in": []domain.SessionStatus{domain.SessionStatusPending, domain.SessionStatusAuthorized}},
		"expires_at": bson.M{"$lte": now.UTC()},
	}
	update := bson.M{"$set": bson.M{"status": domain.SessionStatusExpired}}

	result, err := r.sessions.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}

	return result.ModifiedCount, nil
}

var _ domain.AuthSessionRepository = (*AuthSessionRepository)(nil)
