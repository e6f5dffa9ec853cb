package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/hireloop/seeker/internal/gateway"
	"github.com/hireloop/seeker/internal/model"
	"github.com/hireloop/seeker/internal/session"
)

// AuthService handles phone-based onboarding: OTP request, OTP verification
// and local session persistence.
type AuthService struct {
	api   *gateway.Client
	store *session.Store
	log   zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(api *gateway.Client, store *session.Store, log zerolog.Logger) *AuthService {
	return &AuthService{api: api, store: store, log: log}
}

// RequestOTP asks the backend to send a one-time code to the given phone
// number. Non-production backends may return the code inline (no SMS gateway);
// it is passed through for dev tooling and empty otherwise.
func (s *AuthService) RequestOTP(ctx context.Context, phone string) (string, error) {
	body := map[string]string{"phone": phone}
	var data struct {
		DebugCode string `json:"debug_code"`
	}
	if err := s.api.Post(ctx, "/auth/otp/request", body, &data); err != nil {
		return "", err
	}
	return data.DebugCode, nil
}

// VerifyOTP exchanges a phone/code pair for a bearer token, derives the
// session expiry from the token claims and persists the session locally.
func (s *AuthService) VerifyOTP(ctx context.Context, phone, code string) (*model.Session, error) {
	body := map[string]string{"phone": phone, "code": code}

	var data struct {
		Token string     `json:"token"`
		User  model.User `json:"user"`
	}
	if err := s.api.Post(ctx, "/auth/otp/verify", body, &data); err != nil {
		return nil, err
	}

	sess := &model.Session{
		Token:  data.Token,
		UserID: data.User.ID,
		Phone:  data.User.Phone,
		Name:   data.User.Name,
	}

	// The token is decoded without signature verification: the client has no
	// secret and only needs the subject and expiry claims.
	if claims, err := decodeClaims(data.Token); err == nil {
		if sess.UserID == "" {
			sess.UserID = claims.Subject
		}
		if claims.ExpiresAt != nil {
			sess.ExpiresAt = claims.ExpiresAt.Time
		}
	} else {
		s.log.Warn().Err(err).Msg("Token claims unreadable, assuming default expiry")
	}
	if sess.ExpiresAt.IsZero() {
		sess.ExpiresAt = time.Now().Add(sessionTTL)
	}

	if err := s.store.Save(sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return sess, nil
}

// Current returns the locally persisted session, or nil when logged out
// or expired.
func (s *AuthService) Current() (*model.Session, error) {
	sess, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.Expired() {
		return nil, nil
	}
	return sess, nil
}

// Logout discards the local session. The backend keeps no server-side
// session state for seekers.
func (s *AuthService) Logout() error {
	return s.store.Clear()
}

func decodeClaims(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// sessionTTL is a fallback expiry applied when the token carries no exp claim.
const sessionTTL = 24 * time.Hour
