package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/david/grant-curator/internal/models"
)

var (
	ErrContributorExists = errors.New("contributor already exists")
	ErrInvalidCreds      = errors.New("invalid credentials")

	jwtSecretOnce    sync.Once
	jwtSecretRuntime []byte
	jwtSecretErr     error
)

func jwtSecretFromEnv() ([]byte, error) {
	jwtSecretOnce.Do(func() {
		secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
		if secret != "" {
			jwtSecretRuntime = []byte(secret)
			return
		}

		buf := make([]byte, 48)
		if _, err := rand.Read(buf); err != nil {
			jwtSecretErr = fmt.Errorf("failed to generate JWT fallback secret: %w", err)
			return
		}

		jwtSecretRuntime = []byte(base64.RawURLEncoding.EncodeToString(buf))
		log.Print("JWT_SECRET is not set; using ephemeral in-memory fallback secret")
	})

	if jwtSecretErr != nil {
		return nil, jwtSecretErr
	}
	if len(jwtSecretRuntime) == 0 {
		return nil, errors.New("JWT secret unavailable")
	}

	return jwtSecretRuntime, nil
}

type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

func (s *Service) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	var exists bool
	err := s.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM contributors WHERE email = $1)", req.Email).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrContributorExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing failed: %w", err)
	}

	var contributor models.Contributor
	err = s.db.QueryRow(ctx, `
		INSERT INTO contributors (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, email, is_admin, created_at
	`, req.Email, string(hash)).Scan(&contributor.ID, &contributor.Email, &contributor.IsAdmin, &contributor.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert failed: %w", err)
	}

	token, err := generateToken(contributor.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, Contributor: contributor}, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var contributor models.Contributor
	err := s.db.QueryRow(ctx, `
		SELECT id, email, password_hash, is_admin, created_at
		FROM contributors WHERE email = $1
	`, req.Email).Scan(
		&contributor.ID, &contributor.Email, &contributor.PasswordHash, &contributor.IsAdmin, &contributor.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrInvalidCreds
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(contributor.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCreds
	}

	token, err := generateToken(contributor.ID)
	if err != nil {
		return nil, err
	}

	// Clear hash before returning
	contributor.PasswordHash = ""
	return &AuthResponse{Token: token, Contributor: contributor}, nil
}

func (s *Service) GetContributor(ctx context.Context, id uuid.UUID) (*models.Contributor, error) {
	var contributor models.Contributor
	err := s.db.QueryRow(ctx, `
		SELECT id, email, is_admin, created_at
		FROM contributors WHERE id = $1
	`, id).Scan(&contributor.ID, &contributor.Email, &contributor.IsAdmin, &contributor.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &contributor, nil
}

func generateToken(contributorID uuid.UUID) (string, error) {
	secretKey, err := jwtSecretFromEnv()
	if err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"sub": contributorID.String(),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey)
}
