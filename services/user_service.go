package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/pagemark/readsync/domain"
	"github.com/pagemark/readsync/internal/provider"
)

// UserService owns user accounts keyed by their GitHub identity.
type UserService struct {
	repo domain.UserRepository
}

func NewUserService(repo domain.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// UpsertFromProfile creates or refreshes the account for a provider profile
// and stamps the sign-in time.
func (u *UserService) UpsertFromProfile(ctx context.Context, profile *provider.Profile) (*domain.User, error) {
	user, err := u.repo.UpsertByGithubUID(ctx, profile.ExternalID, profile.Username, profile.AvatarURL)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", user.ID).
		Str("github_uid", user.GithubUID).
		Msg("user signed in")

	return user, nil
}

// GetByID fetches a user row.
func (u *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return u.repo.GetUserByID(ctx, id)
}
