package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"todo_backend/internal/feature/auth/domain/entity"
	"todo_backend/internal/shared/apperror"
)

// mockUserRepository is a mock implementation of the UserRepository interface.
// Unset funcs fall back to an in-memory user list.
type mockUserRepository struct {
	users []*entity.User

	CreateFunc                func(ctx context.Context, user *entity.User) error
	FindByEmailFunc           func(ctx context.Context, email string) (*entity.User, error)
	FindByUsernameFunc        func(ctx context.Context, username string) (*entity.User, error)
	FindByUsernameOrEmailFunc func(ctx context.Context, identifier string) (*entity.User, error)
	FindByIDFunc              func(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

func (m *mockUserRepository) find(match func(u *entity.User) bool) (*entity.User, error) {
	for _, u := range m.users {
		if match(u) {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

// Create is the mock implementation of the Create method.
func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return ErrEmailAlreadyExists
		}
		if u.Username == user.Username {
			return ErrUsernameTaken
		}
	}
	stored := *user
	m.users = append(m.users, &stored)
	return nil
}

// FindByEmail is the mock implementation of the FindByEmail method.
func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return m.find(func(u *entity.User) bool { return u.Email == email })
}

// FindByUsername is the mock implementation of the FindByUsername method.
func (m *mockUserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	if m.FindByUsernameFunc != nil {
		return m.FindByUsernameFunc(ctx, username)
	}
	return m.find(func(u *entity.User) bool { return u.Username == username })
}

// FindByUsernameOrEmail is the mock implementation of the FindByUsernameOrEmail method.
func (m *mockUserRepository) FindByUsernameOrEmail(ctx context.Context, identifier string) (*entity.User, error) {
	if m.FindByUsernameOrEmailFunc != nil {
		return m.FindByUsernameOrEmailFunc(ctx, identifier)
	}
	return m.find(func(u *entity.User) bool { return u.Username == identifier || u.Email == identifier })
}

// FindByID is the mock implementation of the FindByID method.
func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return m.find(func(u *entity.User) bool { return u.ID == id })
}

// bcryptHasher is a minimal-cost hasher for testing.
type bcryptHasher struct {
	hashCalls int
}

func (h *bcryptHasher) Hash(plaintext string) (string, error) {
	h.hashCalls++
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.MinCost)
	return string(b), err
}

func (h *bcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// mockTokenService is a mock implementation of the TokenService interface.
// Tokens are the subject's string form prefixed with "token-".
type mockTokenService struct {
	GenerateTokenFunc func(subject uuid.UUID) (string, time.Time, error)
	ValidateFunc      func(token string) (uuid.UUID, error)
}

func (m *mockTokenService) GenerateToken(subject uuid.UUID) (string, time.Time, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(subject)
	}
	return "token-" + subject.String(), time.Now().Add(30 * time.Minute), nil
}

func (m *mockTokenService) Validate(token string) (uuid.UUID, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(token)
	}
	id, err := uuid.Parse(strings.TrimPrefix(token, "token-"))
	if err != nil {
		return uuid.Nil, errors.New("invalid token")
	}
	return id, nil
}

func (m *mockTokenService) TTL() time.Duration { return 30 * time.Minute }

func newTestUsecase(repo *mockUserRepository) (*authUsecase, *bcryptHasher) {
	hasher := &bcryptHasher{}
	return NewAuthUsecase(repo, hasher, &mockTokenService{}), hasher
}

func TestAuthUsecase_Register(t *testing.T) {
	t.Run("successful registration", func(t *testing.T) {
		repo := &mockUserRepository{}
		uc, _ := newTestUsecase(repo)
		first := "Alice"

		user, err := uc.Register(context.Background(), RegisterInput{
			Email: "alice@example.com", Password: "secret123", FirstName: &first,
		})

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, &first, user.FirstName)
		assert.NotEqual(t, "secret123", user.PasswordHash)
		assert.NotContains(t, user.PasswordHash, "secret123")
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
		assert.Len(t, repo.users, 1)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		repo := &mockUserRepository{}
		uc, _ := newTestUsecase(repo)

		_, err := uc.Register(context.Background(), RegisterInput{Email: "alice@example.com", Password: "secret123"})
		require.NoError(t, err)

		_, err = uc.Register(context.Background(), RegisterInput{Email: "alice@example.com", Password: "other-password"})

		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
		assert.ErrorIs(t, err, apperror.ErrConflict)
		assert.Len(t, repo.users, 1)
	})

	t.Run("pre-check hit skips hashing", func(t *testing.T) {
		repo := &mockUserRepository{users: []*entity.User{{ID: uuid.New(), Email: "alice@example.com", Username: "alice"}}}
		uc, hasher := newTestUsecase(repo)
		callsAfterInit := hasher.hashCalls

		_, err := uc.Register(context.Background(), RegisterInput{Email: "alice@example.com", Password: "secret123"})

		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
		assert.Equal(t, callsAfterInit, hasher.hashCalls, "password must not be hashed")
	})

	t.Run("shared local-part gets a numeric suffix", func(t *testing.T) {
		repo := &mockUserRepository{}
		uc, _ := newTestUsecase(repo)

		emails := []string{"a@x.com", "a@y.com", "a@z.com"}
		var usernames []string
		for _, email := range emails {
			user, err := uc.Register(context.Background(), RegisterInput{Email: email, Password: "password123"})
			require.NoError(t, err)
			usernames = append(usernames, user.Username)
		}

		assert.Equal(t, []string{"a", "a1", "a2"}, usernames)
	})

	t.Run("username race retries with next suffix", func(t *testing.T) {
		repo := &mockUserRepository{}
		// 事前チェックでは空いているが、挿入時には他の登録に取られている状況を再現する
		calls := 0
		repo.CreateFunc = func(ctx context.Context, user *entity.User) error {
			calls++
			if calls == 1 {
				assert.Equal(t, "bob", user.Username)
				return ErrUsernameTaken
			}
			repo.users = append(repo.users, user)
			return nil
		}
		uc, _ := newTestUsecase(repo)

		user, err := uc.Register(context.Background(), RegisterInput{Email: "bob@example.com", Password: "password123"})

		require.NoError(t, err)
		assert.Equal(t, "bob1", user.Username)
		assert.Equal(t, 2, calls)
	})

	t.Run("email conflict on insert is authoritative", func(t *testing.T) {
		repo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, user *entity.User) error { return ErrEmailAlreadyExists },
		}
		uc, _ := newTestUsecase(repo)

		_, err := uc.Register(context.Background(), RegisterInput{Email: "carol@example.com", Password: "password123"})

		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	})

	t.Run("storage failure propagates", func(t *testing.T) {
		expectedErr := errors.New("database error")
		repo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, user *entity.User) error { return expectedErr },
		}
		uc, _ := newTestUsecase(repo)

		_, err := uc.Register(context.Background(), RegisterInput{Email: "dave@example.com", Password: "password123"})

		assert.ErrorIs(t, err, expectedErr)
		assert.Nil(t, apperror.Kind(err))
	})

	t.Run("invalid input is rejected before storage access", func(t *testing.T) {
		tests := []struct {
			name        string
			input       RegisterInput
			expectedErr error
		}{
			{"missing email", RegisterInput{Email: "", Password: "password123"}, ErrInvalidEmail},
			{"no at sign", RegisterInput{Email: "alice.example.com", Password: "password123"}, ErrInvalidEmail},
			{"empty local part", RegisterInput{Email: "@example.com", Password: "password123"}, ErrInvalidEmail},
			{"display name form", RegisterInput{Email: "Alice <alice@example.com>", Password: "password123"}, ErrInvalidEmail},
			{"short password", RegisterInput{Email: "alice@example.com", Password: "short"}, ErrWeakPassword},
			{"long password", RegisterInput{Email: "alice@example.com", Password: strings.Repeat("a", 73)}, ErrPasswordTooLong},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				touched := false
				repo := &mockUserRepository{
					FindByEmailFunc: func(ctx context.Context, email string) (*entity.User, error) {
						touched = true
						return nil, ErrUserNotFound
					},
				}
				uc, _ := newTestUsecase(repo)

				_, err := uc.Register(context.Background(), tt.input)

				assert.ErrorIs(t, err, tt.expectedErr)
				assert.ErrorIs(t, err, apperror.ErrInvalidInput)
				assert.False(t, touched, "storage must not be accessed")
			})
		}
	})
}

func TestAuthUsecase_Login(t *testing.T) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	testUser := &entity.User{
		ID:           uuid.New(),
		Email:        "test@example.com",
		Username:     "test",
		PasswordHash: string(hashedPassword),
	}

	t.Run("successful login by email", func(t *testing.T) {
		uc, _ := newTestUsecase(&mockUserRepository{users: []*entity.User{testUser}})

		token, err := uc.Login(context.Background(), "test@example.com", "password123")

		require.NoError(t, err)
		assert.Equal(t, "token-"+testUser.ID.String(), token.AccessToken)
		assert.Equal(t, "bearer", token.TokenType)
		assert.Equal(t, 30*time.Minute, token.ExpiresIn)
	})

	t.Run("successful login by username", func(t *testing.T) {
		uc, _ := newTestUsecase(&mockUserRepository{users: []*entity.User{testUser}})

		token, err := uc.Login(context.Background(), "test", "password123")

		require.NoError(t, err)
		assert.NotEmpty(t, token.AccessToken)
	})

	t.Run("unknown user and wrong password fail identically", func(t *testing.T) {
		uc, _ := newTestUsecase(&mockUserRepository{users: []*entity.User{testUser}})

		_, unknownErr := uc.Login(context.Background(), "nobody@example.com", "password123")
		_, wrongErr := uc.Login(context.Background(), "test@example.com", "wrong-password")

		assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
		assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
		assert.Equal(t, unknownErr.Error(), wrongErr.Error())
		assert.ErrorIs(t, unknownErr, apperror.ErrUnauthenticated)
	})

	t.Run("unknown user still runs a hash comparison", func(t *testing.T) {
		uc, _ := newTestUsecase(&mockUserRepository{})
		assert.NotEmpty(t, uc.dummyHash)

		_, err := uc.Login(context.Background(), "nobody", "password123")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("storage failure is not reported as bad credentials", func(t *testing.T) {
		expectedErr := errors.New("connection refused")
		uc, _ := newTestUsecase(&mockUserRepository{
			FindByUsernameOrEmailFunc: func(ctx context.Context, identifier string) (*entity.User, error) {
				return nil, expectedErr
			},
		})

		_, err := uc.Login(context.Background(), "test@example.com", "password123")

		assert.ErrorIs(t, err, expectedErr)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("token generation failure", func(t *testing.T) {
		hasher := &bcryptHasher{}
		tokens := &mockTokenService{
			GenerateTokenFunc: func(subject uuid.UUID) (string, time.Time, error) {
				return "", time.Time{}, errors.New("failed to sign token")
			},
		}
		uc := NewAuthUsecase(&mockUserRepository{users: []*entity.User{testUser}}, hasher, tokens)

		_, err := uc.Login(context.Background(), "test@example.com", "password123")

		require.Error(t, err)
		assert.Equal(t, "failed to generate token: failed to sign token", err.Error())
	})
}

func TestAuthUsecase_ResolveFromToken(t *testing.T) {
	testUser := &entity.User{ID: uuid.New(), Email: "test@example.com", Username: "test"}

	t.Run("valid token resolves the user", func(t *testing.T) {
		uc, _ := newTestUsecase(&mockUserRepository{users: []*entity.User{testUser}})

		user, err := uc.ResolveFromToken(context.Background(), "token-"+testUser.ID.String())

		require.NoError(t, err)
		assert.Equal(t, testUser.ID, user.ID)
	})

	t.Run("invalid token", func(t *testing.T) {
		uc, _ := newTestUsecase(&mockUserRepository{users: []*entity.User{testUser}})

		_, err := uc.ResolveFromToken(context.Background(), "garbage")

		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
	})

	t.Run("dangling subject is unauthenticated", func(t *testing.T) {
		uc, _ := newTestUsecase(&mockUserRepository{users: []*entity.User{testUser}})

		_, err := uc.ResolveFromToken(context.Background(), "token-"+uuid.NewString())

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("storage failure propagates", func(t *testing.T) {
		expectedErr := errors.New("connection refused")
		uc, _ := newTestUsecase(&mockUserRepository{
			FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*entity.User, error) { return nil, expectedErr },
		})

		_, err := uc.ResolveFromToken(context.Background(), "token-"+testUser.ID.String())

		assert.ErrorIs(t, err, expectedErr)
	})
}

func TestUsernameCandidate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "alice", usernameCandidate("alice", 0))
	assert.Equal(t, "alice1", usernameCandidate("alice", 1))
	assert.Equal(t, "alice12", usernameCandidate("alice", 12))
	assert.Equal(t, "alice", usernameBase("alice@example.com"))
	assert.Equal(t, "first.last", usernameBase("first.last@example.com"))
}
