package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/machinehub/payments-api/internal/domain"
)

// Claims represents the JWT claims accepted by the service.
type Claims struct {
	jwt.RegisteredClaims
	Type string `json:"type,omitempty"`
}

// RevocationStore looks up revoked token IDs. fiber.Storage satisfies it.
// Get returns nil, nil when the key is absent.
type RevocationStore interface {
	Get(key string) ([]byte, error)
}

// Config holds verifier settings. Issuer and Audience are checked only when set.
type Config struct {
	Secret   string
	Issuer   string
	Audience string
	Leeway   time.Duration
}

// JWTVerifier validates HS256 bearer tokens issued by the identity provider.
type JWTVerifier struct {
	config  Config
	revoked RevocationStore
	log     *zap.Logger
}

// NewJWTVerifier creates a verifier. revoked may be nil.
func NewJWTVerifier(cfg Config, revoked RevocationStore, log *zap.Logger) (*JWTVerifier, error) {
	if cfg.Secret == "" {
		return nil, errors.New("auth: secret is required")
	}

	log.Info("JWT verifier initialized",
		zap.String("issuer", cfg.Issuer),
		zap.String("audience", cfg.Audience),
		zap.Bool("revocation_check", revoked != nil),
	)

	return &JWTVerifier{
		config:  cfg,
		revoked: revoked,
		log:     log,
	}, nil
}

// VerifyToken parses and validates a token and returns the caller it names.
// Every failure is reported as domain.ErrUnauthenticated.
func (v *JWTVerifier) VerifyToken(ctx context.Context, tokenString string) (*domain.Caller, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.config.Leeway),
	}
	if v.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.config.Issuer))
	}
	if v.config.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.config.Audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(v.config.Secret), nil
	}, opts...)
	if err != nil {
		v.log.Debug("token validation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%w: invalid token claims", domain.ErrUnauthenticated)
	}
	if claims.Type != "" && claims.Type != "access" {
		return nil, fmt.Errorf("%w: %s token used as access token", domain.ErrUnauthenticated, claims.Type)
	}

	if v.isRevoked(claims.ID) {
		v.log.Info("revoked token presented",
			zap.String("subject", claims.Subject),
			zap.String("jti", claims.ID),
		)
		return nil, fmt.Errorf("%w: token revoked", domain.ErrUnauthenticated)
	}

	return &domain.Caller{UserID: claims.Subject}, nil
}

// IssueToken signs an access token for subject. Used by local tooling;
// production tokens come from the identity provider.
func (v *JWTVerifier) IssueToken(subject string, ttl time.Duration) (string, error) {
	return SignToken(v.config, subject, ttl)
}

// SignToken creates an HS256 access token for subject valid for ttl.
func SignToken(cfg Config, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		Type: "access",
	}
	if cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{cfg.Audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// RevokedKey is the storage key marking token jti as revoked.
func RevokedKey(jti string) string {
	return "revoked_token:" + jti
}

func (v *JWTVerifier) isRevoked(jti string) bool {
	if v.revoked == nil || jti == "" {
		return false
	}
	val, err := v.revoked.Get(RevokedKey(jti))
	if err != nil {
		// Storage outages must not lock every caller out.
		v.log.Warn("revocation lookup failed", zap.String("jti", jti), zap.Error(err))
		return false
	}
	return len(val) > 0
}
