package services

import (
	"context"
	cryptorand "crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"golang.org/x/crypto/argon2"

	"github.com/daftari/backend/internal/models"
	"github.com/daftari/backend/internal/storages"
)

type AuthService struct {
	store     storages.Storage
	redis     *redis.Client
	validator *validator.Validate
	logger    *logrus.Logger
}

// RegisterRequest represents the signup payload
// @Description Registration request structure
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32" example:"samira"`
	Password string `json:"password" validate:"required,min=4" example:"password123"`
}

// LoginRequest represents the login payload
// @Description Login request structure
type LoginRequest struct {
	Username string `json:"username" validate:"required" example:"samira"`
	Password string `json:"password" validate:"required" example:"password123"`
}

// AuthResponse represents the authentication response
// @Description Authentication response structure
type AuthResponse struct {
	Token string      `json:"token"` // JWT token
	User  models.User `json:"user"`  // User information, password omitted
}

func NewAuthService(store storages.Storage, redisClient *redis.Client, log *logrus.Logger) *AuthService {
	return &AuthService{
		store:     store,
		redis:     redisClient,
		validator: validator.New(),
		logger:    log,
	}
}

// Register handles user signup
// @Summary Register a new user
// @Description Create a ledger account with a unique username
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration request"
// @Success 200 {object} AuthResponse "Registration successful"
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 409 {object} ErrorResponse "Username already exists"
// @Router /auth/register [post]
func (s *AuthService) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	// Usernames are compared lower-cased: "Samira" and "samira" are the
	// same account.
	username := strings.ToLower(strings.TrimSpace(req.Username))

	existing, err := s.store.GetUserByUsername(r.Context(), username)
	if err != nil {
		s.logger.WithError(err).Error("username lookup failed")
		SendErrorResponse(w, "Failed to create user", http.StatusInternalServerError, nil)
		return
	}
	if existing != nil {
		SendErrorResponse(w, "Username already exists", http.StatusConflict, nil)
		return
	}

	digest, err := hashPassword(req.Password)
	if err != nil {
		s.logger.WithError(err).Error("password hashing failed")
		SendErrorResponse(w, "An internal error occurred", http.StatusInternalServerError, nil)
		return
	}

	user := models.User{
		ID:       uuid.NewString(),
		Username: username,
		Password: digest,
	}

	if err := s.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, models.ErrUsernameTaken) {
			SendErrorResponse(w, "Username already exists", http.StatusConflict, nil)
			return
		}
		s.logger.WithError(err).Error("user creation failed")
		SendErrorResponse(w, "Failed to create user", http.StatusInternalServerError, nil)
		return
	}

	token, err := generateJWT(user.ID)
	if err != nil {
		s.logger.WithError(err).Error("jwt generation failed")
		SendErrorResponse(w, "Failed to generate token", http.StatusInternalServerError, nil)
		return
	}

	s.logger.WithField("user_id", user.ID).Info("user registered")
	SendJSON(w, http.StatusOK, AuthResponse{Token: token, User: user.Public()})
}

// Login handles user authentication
// @Summary Login user
// @Description Authenticate with username and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} AuthResponse "Login successful"
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (s *AuthService) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))

	user, err := s.store.GetUserByUsername(r.Context(), username)
	if err != nil {
		s.logger.WithError(err).Error("username lookup failed")
		SendErrorResponse(w, "An internal error occurred", http.StatusInternalServerError, nil)
		return
	}
	if user == nil || !verifyPassword(req.Password, user.Password) {
		SendErrorResponse(w, "Invalid credentials", http.StatusUnauthorized, nil)
		return
	}

	token, err := generateJWT(user.ID)
	if err != nil {
		s.logger.WithError(err).Error("jwt generation failed")
		SendErrorResponse(w, "Failed to generate token", http.StatusInternalServerError, nil)
		return
	}

	s.logger.WithField("user_id", user.ID).Info("user logged in")
	SendJSON(w, http.StatusOK, AuthResponse{Token: token, User: user.Public()})
}

// Logout handles user logout
// @Summary Logout user
// @Description Revoke the presented token
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string "Logout successful"
// @Router /auth/logout [post]
func (s *AuthService) Logout(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("Authorization")
	if strings.HasPrefix(token, "Bearer ") {
		token = strings.TrimPrefix(token, "Bearer ")

		if s.redis != nil {
			ctx := context.Background()
			expiry := time.Duration(jwtExpiryHours()) * time.Hour
			if err := s.redis.Set(ctx, "denylist:"+token, "1", expiry).Err(); err != nil {
				s.logger.WithError(err).Warn("failed to denylist token")
			}
		}
	}

	SendJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// GetAccount returns the authenticated user's profile
// @Summary Get account
// @Description Get the authenticated user's account information
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User "Account details"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /auth/account [get]
func (s *AuthService) GetAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	user, err := s.store.GetUser(r.Context(), userID)
	if err != nil {
		s.logger.WithError(err).Error("user lookup failed")
		SendErrorResponse(w, "Failed to fetch user details", http.StatusInternalServerError, nil)
		return
	}
	if user == nil {
		SendErrorResponse(w, "User not found", http.StatusNotFound, nil)
		return
	}

	SendJSON(w, http.StatusOK, user.Public())
}

func jwtExpiryHours() int {
	if hours := viper.GetInt("jwt.expiry_hours"); hours > 0 {
		return hours
	}
	return 72
}

func generateJWT(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Duration(jwtExpiryHours()) * time.Hour).Unix(),
	})

	return token.SignedString([]byte(viper.GetString("jwt.secret_key")))
}

type argonParams struct {
	time    uint32
	memory  uint32
	threads uint8
	keyLen  uint32
	saltLen int
}

func argonConfig() argonParams {
	p := argonParams{
		time:    uint32(viper.GetInt("argon2.time")),
		memory:  uint32(viper.GetInt("argon2.memory")),
		threads: uint8(viper.GetInt("argon2.threads")),
		keyLen:  uint32(viper.GetInt("argon2.key_length")),
		saltLen: viper.GetInt("argon2.salt_length"),
	}
	if p.time == 0 {
		p.time = 1
	}
	if p.memory == 0 {
		p.memory = 64 * 1024
	}
	if p.threads == 0 {
		p.threads = 4
	}
	if p.keyLen == 0 {
		p.keyLen = 32
	}
	if p.saltLen == 0 {
		p.saltLen = 16
	}
	return p
}

func hashPassword(password string) (string, error) {
	p := argonConfig()

	salt := make([]byte, p.saltLen)
	if _, err := cryptorand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen)
	return fmt.Sprintf("%s$%s",
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(hash)), nil
}

func verifyPassword(password, digest string) bool {
	parts := strings.Split(digest, "$")
	if len(parts) != 2 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}
	hash, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}

	p := argonConfig()
	computed := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, uint32(len(hash)))
	return subtle.ConstantTimeCompare(hash, computed) == 1
}
