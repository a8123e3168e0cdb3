package services_test

import (
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"lapak/internal/models"
	"lapak/internal/repositories"
	"lapak/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestMain(m *testing.M) {
	log.SetOutput(os.Stdout)
	code := m.Run()
	os.Exit(code)
}

func TestAuthService_Register(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, "test_jwt_secret")

	// Successful registration hashes the password before persisting.
	mockRepo.On("GetByUsername", "alice").Return(nil, repositories.ErrUserNotFound).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		created := args.Get(0).(*models.User)
		assert.Equal(t, "alice", created.Username)
		assert.NotEqual(t, "password123", created.Password, "plaintext password must never be stored")
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("password123")))
	}).Return(nil).Once()

	user, err := authService.Register("alice", "password123")
	assert.NoError(t, err)
	assert.NotNil(t, user)
	mockRepo.AssertExpectations(t)

	// Registering a taken username fails and never reaches Create.
	mockRepo.On("GetByUsername", "alice").Return(&models.User{ID: "1", Username: "alice"}, nil).Once()
	user, err = authService.Register("alice", "otherpassword")
	assert.ErrorIs(t, err, services.ErrUsernameTaken)
	assert.Nil(t, user)
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNumberOfCalls(t, "Create", 1)

	// A storage failure during the lookup propagates instead of being
	// mistaken for "username free".
	mockRepo.On("GetByUsername", "bob").Return(nil, fmt.Errorf("connection lost")).Once()
	_, err = authService.Register("bob", "password123")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrUsernameTaken)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, "test_jwt_secret")

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		ID:       "user-123",
		Username: "alice",
		Password: string(hashedPassword),
	}

	// Successful login returns the user.
	mockRepo.On("GetByUsername", "alice").Return(user, nil).Once()
	got, err := authService.Login("alice", "password123")
	assert.NoError(t, err)
	assert.Equal(t, "user-123", got.ID)
	mockRepo.AssertExpectations(t)

	// Wrong password and unknown username yield the same error.
	mockRepo.On("GetByUsername", "alice").Return(user, nil).Once()
	_, err = authService.Login("alice", "wrongpassword")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	mockRepo.On("GetByUsername", "nobody").Return(nil, repositories.ErrUserNotFound).Once()
	_, err = authService.Login("nobody", "password123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Tokens(t *testing.T) {
	mockRepo := new(MockUserRepository)
	testJWTSecret := "test_jwt_secret"
	authService := services.NewAuthService(mockRepo, testJWTSecret)

	user := &models.User{ID: "user-123", Username: "alice"}

	tokenString, err := authService.IssueToken(user)
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	// The issued token round-trips through validation.
	claims, err := authService.ValidateToken(tokenString)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", claims["user_id"])
	assert.Equal(t, "alice", claims["username"])

	// Garbage is rejected.
	_, err = authService.ValidateToken("invalid.token.string")
	assert.Error(t, err)

	// An expired token is rejected.
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  "user-123",
		"username": "alice",
		"exp":      time.Now().Add(-time.Hour).Unix(),
	})
	expiredString, _ := expired.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredString)
	assert.Error(t, err)

	// A token signed with a different secret is rejected.
	other := services.NewAuthService(mockRepo, "other_secret")
	otherToken, _ := other.IssueToken(user)
	_, err = authService.ValidateToken(otherToken)
	assert.Error(t, err)
}
