package account

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"

	"github.com/Annany2002/db-bakery/internal/apperror"
	"github.com/Annany2002/db-bakery/internal/sanitize"
)

// argon2id parameters for a self-hosted dashboard on modest hardware.
// These follow OWASP recommendations: memory=64MB, iterations=3,
// parallelism=4.
const (
	argonTime    = 3
	argonMemory  = 64 * 1024 // 64 MB in KiB
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

// Service implements credential verification and account creation over
// the user repository. It satisfies session.Verifier: a wrong password,
// an unknown email, or a duplicate registration are rejections
// (false, nil); only repository failures are errors.
type Service struct {
	repo Repository
}

// NewService creates an account service over the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// VerifyCredentials checks an email/password pair against the stored
// argon2id hash. Unknown emails and wrong passwords are indistinguishable
// to the caller.
func (s *Service) VerifyCredentials(ctx context.Context, email, password string) (bool, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == 404 {
			return false, nil
		}
		return false, fmt.Errorf("finding user: %w", err)
	}

	return verifyPassword(password, user.PasswordHash), nil
}

// CreateAccount registers a new user. A duplicate email is a rejection,
// not a fault. The display name has any markup stripped before it is
// persisted.
func (s *Service) CreateAccount(ctx context.Context, name, email, password string) (bool, error) {
	normalized := normalizeEmail(email)

	// Check uniqueness before doing expensive hashing.
	exists, err := s.repo.EmailExists(ctx, normalized)
	if err != nil {
		return false, fmt.Errorf("checking email: %w", err)
	}
	if exists {
		return false, nil
	}

	hash, err := hashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{
		ID:           uuid.NewString(),
		Email:        normalized,
		DisplayName:  sanitize.DisplayName(name),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return false, fmt.Errorf("creating user: %w", err)
	}

	slog.Info("account created",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return true, nil
}

// normalizeEmail lowercases and trims an email so lookups and uniqueness
// checks agree regardless of how the operator typed it.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// --- Password Hashing (argon2id) ---

// hashPassword creates an argon2id hash of the given password. The output
// format is: $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
// This format is compatible with most argon2 libraries and allows self-
// contained verification without separate salt storage.
func hashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	// Encode to the standard PHC string format.
	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads, b64Salt, b64Hash)

	return encoded, nil
}

// verifyPassword checks a plaintext password against an argon2id hash
// string. Returns true if the password matches.
func verifyPassword(password, encodedHash string) bool {
	// Parse the encoded hash to extract parameters, salt, and hash.
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return false
	}

	var memory uint32
	var iterations uint32
	var parallelism uint8
	_, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism)
	if err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}

	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	// Compute the hash of the provided password with the same parameters.
	computedHash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expectedHash)))

	// Constant-time comparison to prevent timing attacks.
	return subtle.ConstantTimeCompare(expectedHash, computedHash) == 1
}
