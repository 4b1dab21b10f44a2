package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/hadir-app/hadir-api/internal/models"
	"github.com/hadir-app/hadir-api/internal/repository"
)

const (
	credentialPrefix  = "STD-"
	credentialLength  = 8
	credentialCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// How many fresh draws to attempt before giving up on a free
	// credential. With a 36^8 space a single retry is already rare.
	credentialMaxAttempts = 5
)

// CredentialService issues and resolves the opaque QR credentials that
// identify students during scan-based check-in. A credential is a bare
// unique string with no signature or expiry; regeneration overwrites
// in place and the old string stops resolving immediately.
type CredentialService interface {
	Issue(ctx context.Context) (string, error)
	Resolve(ctx context.Context, code string) (models.User, error)
	Regenerate(ctx context.Context, studentID uint) (models.User, error)
}

type credentialService struct {
	users  repository.UserRepository
	logger zerolog.Logger
}

// NewCredentialService constructs a CredentialService.
func NewCredentialService(users repository.UserRepository, logger zerolog.Logger) CredentialService {
	return &credentialService{
		users:  users,
		logger: logger.With().Str("component", "credential_service").Logger(),
	}
}

// Issue draws a fresh STD-XXXXXXXX credential, retrying on the rare
// collision with an already-issued code. The unique column on the
// users table remains the final backstop.
func (s *credentialService) Issue(ctx context.Context) (string, error) {
	for attempt := 0; attempt < credentialMaxAttempts; attempt++ {
		code, err := randomCredential()
		if err != nil {
			return "", err
		}

		taken, err := s.users.FieldTaken(ctx, "qr_code", code, 0)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}

		s.logger.Warn().Int("attempt", attempt+1).Msg("credential collision, retrying")
	}

	return "", fmt.Errorf("failed to issue a unique credential after %d attempts", credentialMaxAttempts)
}

func (s *credentialService) Resolve(ctx context.Context, code string) (models.User, error) {
	user, err := s.users.GetByQRCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrCredentialNotFound
		}
		return models.User{}, err
	}

	return user, nil
}

func (s *credentialService) Regenerate(ctx context.Context, studentID uint) (models.User, error) {
	user, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrStudentNotFound
		}
		return models.User{}, err
	}

	if !user.IsStudent() {
		return models.User{}, ErrStudentNotFound
	}

	code, err := s.Issue(ctx)
	if err != nil {
		return models.User{}, err
	}

	user.QRCode = &code
	if err := s.users.Update(ctx, &user); err != nil {
		return models.User{}, err
	}

	s.logger.Info().Uint("student_id", user.ID).Msg("qr credential regenerated")

	return user, nil
}

func randomCredential() (string, error) {
	buf := make([]byte, credentialLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	code := make([]byte, credentialLength)
	for i, b := range buf {
		code[i] = credentialCharset[int(b)%len(credentialCharset)]
	}

	return credentialPrefix + string(code), nil
}
