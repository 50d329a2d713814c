package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"inkpress/internal/config"
	"inkpress/internal/model"
)

func authConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret",
		AccessTokenMaxAge:  900,
		RefreshTokenMaxAge: 2592000,
	}
}

func TestGenerateTokenPair(t *testing.T) {
	var stored *model.RefreshToken
	repo := &mockRefreshTokenRepo{
		ReplaceFn: func(ctx context.Context, token *model.RefreshToken) error {
			stored = token
			return nil
		},
	}

	svc := NewAuthService(repo, &mockUserRepo{}, authConfig())

	pair, err := svc.GenerateTokenPair(context.Background(), 7, "alice")
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}

	if pair.ExpiresIn != 900 {
		t.Errorf("expires_in = %d, want 900", pair.ExpiresIn)
	}
	if stored == nil {
		t.Fatal("refresh token not persisted")
	}
	if stored.TokenHash == pair.RefreshToken {
		t.Error("refresh token must be stored hashed, not raw")
	}
	if len(stored.TokenHash) != 64 {
		t.Errorf("token hash length = %d, want 64 hex chars", len(stored.TokenHash))
	}

	// The access token must verify and carry identity claims.
	token, err := jwt.Parse(pair.AccessToken, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("access token invalid: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["user_id"].(float64) != 7 {
		t.Errorf("user_id claim = %v, want 7", claims["user_id"])
	}
	if claims["username"].(string) != "alice" {
		t.Errorf("username claim = %v, want alice", claims["username"])
	}
}

func TestRefreshTokensRotates(t *testing.T) {
	// A fake single-slot store with overwrite semantics.
	var activeHash string
	repo := &mockRefreshTokenRepo{
		ReplaceFn: func(ctx context.Context, token *model.RefreshToken) error {
			activeHash = token.TokenHash
			return nil
		},
		FindByTokenHashFn: func(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
			if tokenHash != activeHash {
				return nil, model.ErrRefreshTokenNotFound
			}
			return &model.RefreshToken{
				UserID:    7,
				TokenHash: tokenHash,
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil
		},
	}
	userRepo := &mockUserRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Username: "alice"}, nil
		},
	}

	svc := NewAuthService(repo, userRepo, authConfig())

	first, err := svc.GenerateTokenPair(context.Background(), 7, "alice")
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}

	second, userID, err := svc.RefreshTokens(context.Background(), first.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshTokens: %v", err)
	}
	if userID != 7 {
		t.Errorf("userID = %d, want 7", userID)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Error("refresh must issue a new token")
	}

	// The replaced token can no longer be used.
	if _, _, err := svc.RefreshTokens(context.Background(), first.RefreshToken); !errors.Is(err, model.ErrRefreshTokenNotFound) {
		t.Errorf("old token err = %v, want ErrRefreshTokenNotFound", err)
	}

	// The new token still works.
	if _, _, err := svc.RefreshTokens(context.Background(), second.RefreshToken); err != nil {
		t.Errorf("new token should refresh: %v", err)
	}
}

func TestRefreshTokensExpired(t *testing.T) {
	repo := &mockRefreshTokenRepo{
		FindByTokenHashFn: func(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
			return &model.RefreshToken{
				UserID:    7,
				ExpiresAt: time.Now().Add(-time.Minute),
			}, nil
		},
	}

	svc := NewAuthService(repo, &mockUserRepo{}, authConfig())

	if _, _, err := svc.RefreshTokens(context.Background(), "stale"); !errors.Is(err, model.ErrRefreshTokenExpired) {
		t.Errorf("err = %v, want ErrRefreshTokenExpired", err)
	}
}

func TestRevokeRefreshToken(t *testing.T) {
	var deletedHash string
	repo := &mockRefreshTokenRepo{
		DeleteByTokenHashFn: func(ctx context.Context, tokenHash string) error {
			deletedHash = tokenHash
			return nil
		},
	}

	svc := NewAuthService(repo, &mockUserRepo{}, authConfig())

	if err := svc.RevokeRefreshToken(context.Background(), "raw-token"); err != nil {
		t.Fatalf("RevokeRefreshToken: %v", err)
	}
	if deletedHash == "raw-token" || deletedHash == "" {
		t.Errorf("revocation must use the hash, got %q", deletedHash)
	}
}
