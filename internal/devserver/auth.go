package devserver

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// contextKeyUserID is the Gin context key for the authenticated user id.
	contextKeyUserID = "user_id"

	otpTTL = 5 * time.Minute
)

// Claims extends JWT standard claims with the seeker's phone number.
type Claims struct {
	jwt.RegisteredClaims
	Phone string `json:"phone"`
}

// generateOTP returns a random 6-digit code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// hashOTP stores codes hash-only, same as the production backend does.
func (s *Server) hashOTP(code string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(code), s.cfg.BcryptCost)
}

func checkOTP(hash []byte, code string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(code)) == nil
}

// generateToken creates an HS256 JWT for the given user.
func (s *Server) generateToken(userID, phone string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		Phone: phone,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// validateToken parses and verifies a bearer token.
func (s *Server) validateToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// requireAuth validates the bearer token and stores the user id on the
// context.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ""
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
				tokenStr = parts[1]
			}
		}
		if tokenStr == "" {
			abortFail(c, http.StatusUnauthorized, ErrTokenRequired)
			return
		}

		claims, err := s.validateToken(tokenStr)
		if err != nil {
			abortFail(c, http.StatusUnauthorized, ErrTokenInvalid)
			return
		}

		c.Set(contextKeyUserID, claims.Subject)
		c.Next()
	}
}

// userID retrieves the authenticated user id from the Gin context.
func userID(c *gin.Context) string {
	return c.GetString(contextKeyUserID)
}
