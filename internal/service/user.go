package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"inkpress/internal/model"
	"inkpress/internal/repository"
)

// UserService handles business logic for user operations.
type UserService struct {
	repo       repository.UserRepository
	followRepo repository.FollowRepository
}

func NewUserService(repo repository.UserRepository, followRepo repository.FollowRepository) *UserService {
	return &UserService{
		repo:       repo,
		followRepo: followRepo,
	}
}

// Register creates a new user account with optional avatar metadata.
// Username and email uniqueness are checked up front so the caller can
// map each conflict to a distinct message.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if req.Username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if req.Email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, fmt.Errorf("password is required")
	}
	if (req.AvatarURL == nil) != (req.AvatarKey == nil) {
		return nil, fmt.Errorf("avatar_url and avatar_key must both be provided or both omitted")
	}

	exists, err := s.repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, model.ErrUsernameExists
	}

	exists, err = s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, model.ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:       req.Username,
		Email:          req.Email,
		PasswordHashed: string(hashedPassword),
		AvatarURL:      req.AvatarURL,
		AvatarKey:      req.AvatarKey,
	}
	if req.FullName != "" {
		user.FullName = &req.FullName
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("[UserService] Register OK: user_id=%d username=%s", user.ID, user.Username)
	return user, nil
}

// Login authenticates a user by username or email plus password.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	user, err := s.repo.GetByUID(ctx, strings.TrimSpace(req.UID))
	if err != nil {
		// Don't reveal whether the account exists.
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetProfile retrieves a user's profile with live counts and the
// viewer's follow status.
//
// The existence check, counts and follow status are separate queries:
// the lookup fails fast with 404, and a follow-status failure degrades
// to false instead of blocking the profile.
func (s *UserService) GetProfile(ctx context.Context, username string, viewerID *int64) (*model.ProfileResponse, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	counts, err := s.repo.Counts(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	isFollowing := false
	if viewerID != nil && *viewerID != user.ID {
		following, err := s.followRepo.Exists(ctx, *viewerID, user.ID)
		if err != nil {
			log.Printf("[UserService] Follow check FAILED: viewer_id=%d target_id=%d error=%v",
				*viewerID, user.ID, err)
		} else {
			isFollowing = following
		}
	}

	return &model.ProfileResponse{
		User:        user,
		UserCounts:  *counts,
		IsFollowing: isFollowing,
	}, nil
}

// Search finds users whose username or full name matches the query,
// ordered by username. A blank query is rejected rather than listing
// everyone.
func (s *UserService) Search(ctx context.Context, query string, pageNumber, pageSize int, viewerID *int64) (*model.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, model.ErrEmptyQuery
	}
	if pageNumber <= 0 {
		pageNumber = 1
	}

	offset := (pageNumber - 1) * pageSize
	users, err := s.repo.Search(ctx, query, pageSize, offset)
	if err != nil {
		return nil, err
	}

	if viewerID != nil && len(users) > 0 {
		userIDs := make([]int64, len(users))
		for i, u := range users {
			userIDs[i] = u.ID
		}
		following, err := s.followRepo.CheckFollows(ctx, *viewerID, userIDs)
		if err != nil {
			log.Printf("[UserService] Batch follow check FAILED: viewer_id=%d error=%v", *viewerID, err)
		} else {
			for i := range users {
				users[i].IsFollowing = following[users[i].ID]
			}
		}
	}

	return &model.SearchResponse{
		Users:      users,
		PageNumber: pageNumber,
		PageSize:   pageSize,
	}, nil
}
