package services

import (
	"context"
	cryptorand "crypto/rand"
	"crypto/subtle"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/crypto/argon2"

	"github.com/openledger/finance-api/internal/repository"
)

type UserService struct {
	users     *repository.UserRepository
	validator *ValidationHelper
}

// RegisterRequest is the payload for creating a user.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=2,max=50"`
	Password string `json:"password" validate:"required,min=6"`
}

func NewUserService(db *sql.DB) *UserService {
	viper.SetDefault("argon2.time", 1)
	viper.SetDefault("argon2.memory", 64*1024)
	viper.SetDefault("argon2.threads", 4)
	viper.SetDefault("argon2.key_length", 32)
	viper.SetDefault("argon2.salt_length", 16)

	return &UserService{
		users:     repository.NewUserRepository(db),
		validator: NewValidationHelper(),
	}
}

// Authenticate verifies a username/password pair against the user store.
// It satisfies the basic-auth middleware's CredentialStore.
func (s *UserService) Authenticate(ctx context.Context, username, password string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("authenticate %q: %w", username, err)
	}
	if !verifyPassword(password, user.Password) {
		return errors.New("invalid credentials")
	}
	return nil
}

// Register creates a new user with a hashed password.
func (s *UserService) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if isFormEncoded(r) {
		if err := r.ParseForm(); err != nil {
			SendValidationErrors(w, map[string]string{"request": "Invalid request body."})
			return
		}
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
	} else if err := decodeJSON(w, r, &req); err != nil {
		SendValidationErrors(w, map[string]string{"request": "Invalid request body."})
		return
	}

	if err := s.validator.ValidateStruct(&req); err != nil {
		SendValidationErrors(w, fieldErrors(err))
		return
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		log.Printf("[USER] Password hashing failed for %s: %v", req.Username, err)
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	id, err := s.users.Create(r.Context(), req.Username, hashed)
	if err != nil {
		if errors.Is(err, repository.ErrConstraint) {
			SendValidationErrors(w, map[string]string{"username": "Username already exists."})
			return
		}
		log.Printf("[USER] Failed to create user %s: %v", req.Username, err)
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	log.Printf("[USER] Created user %d (%s)", id, req.Username)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Successfully added User",
		"user_id": id,
	})
}

// ListUsers returns all users ordered by username. Password hashes are
// never serialized.
func (s *UserService) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		log.Printf("[USER] Failed to list users: %v", err)
		http.Error(w, "Failed to fetch users", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": users,
	})
}

// Bootstrap seeds the configured admin user when the users table is empty,
// so a fresh deployment can authenticate at all.
func (s *UserService) Bootstrap(ctx context.Context) error {
	count, err := s.users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	username := viper.GetString("admin.username")
	password := viper.GetString("admin.password")
	if username == "" || password == "" {
		log.Println("[USER] No admin credentials configured, skipping bootstrap")
		return nil
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return err
	}
	id, err := s.users.Create(ctx, username, hashed)
	if err != nil {
		return err
	}
	log.Printf("[USER] Bootstrapped admin user %d (%s)", id, username)
	return nil
}

func hashPassword(password string) (string, error) {
	salt := make([]byte, viper.GetInt("argon2.salt_length"))
	if _, err := cryptorand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt,
		uint32(viper.GetInt("argon2.time")),
		uint32(viper.GetInt("argon2.memory")),
		uint8(viper.GetInt("argon2.threads")),
		uint32(viper.GetInt("argon2.key_length")))
	return fmt.Sprintf("%s$%s", base64.StdEncoding.EncodeToString(salt), base64.StdEncoding.EncodeToString(hash)), nil
}

func verifyPassword(password, hashedPassword string) bool {
	parts := strings.Split(hashedPassword, "$")
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

	computedHash := argon2.IDKey([]byte(password), salt,
		uint32(viper.GetInt("argon2.time")),
		uint32(viper.GetInt("argon2.memory")),
		uint8(viper.GetInt("argon2.threads")),
		uint32(len(hash)))
	return subtle.ConstantTimeCompare(hash, computedHash) == 1
}
