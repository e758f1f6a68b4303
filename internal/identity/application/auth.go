package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	projects "github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	sharedApplication "github.com/felixgeelhaar/patentdesk/internal/shared/application"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AdminRole is the app_metadata role that marks the practitioner.
const AdminRole = "admin"

// ErrInvalidToken is returned for tokens that fail signature or claim checks.
var ErrInvalidToken = errors.New("invalid access token")

// AppMetadata is the server-controlled part of a Supabase token.
type AppMetadata struct {
	Role string `json:"role,omitempty"`
}

// Claims are the claims patentdesk reads from an access token.
type Claims struct {
	Email       string      `json:"email"`
	AppMetadata AppMetadata `json:"app_metadata"`
	jwt.RegisteredClaims
}

// ClientFinder resolves a signed-in email to a client record.
type ClientFinder interface {
	FindByEmail(ctx context.Context, email string) (*projects.Client, error)
}

// Authenticator turns HS256 bearer tokens into actors.
type Authenticator struct {
	secret  []byte
	clients ClientFinder
	logger  *slog.Logger
}

// NewAuthenticator creates an authenticator for tokens signed with secret.
func NewAuthenticator(secret string, clients ClientFinder, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{secret: []byte(secret), clients: clients, logger: logger}
}

// Enabled reports whether a signing secret is configured.
func (a *Authenticator) Enabled() bool {
	return len(a.secret) > 0
}

// Authenticate verifies token and resolves the caller. Admin tokens map
// the subject to the actor id; client tokens map to the client record
// with the token's email. A client without a record gets a nil id and
// therefore owns nothing.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (sharedApplication.Actor, error) {
	if !a.Enabled() {
		return sharedApplication.Actor{}, sharedApplication.ErrUnauthenticated
	}
	if token == "" {
		return sharedApplication.Actor{}, sharedApplication.ErrUnauthenticated
	}

	claims, err := a.parse(token)
	if err != nil {
		return sharedApplication.Actor{}, err
	}

	if claims.AppMetadata.Role == AdminRole {
		id, err := uuid.Parse(claims.Subject)
		if err != nil {
			return sharedApplication.Actor{}, fmt.Errorf("%w: subject is not a uuid", ErrInvalidToken)
		}
		return sharedApplication.Actor{UserID: id, Role: sharedApplication.RoleAdmin, Email: claims.Email}, nil
	}

	email, err := projects.NormalizeEmail(claims.Email)
	if err != nil {
		return sharedApplication.Actor{}, fmt.Errorf("%w: missing email", ErrInvalidToken)
	}
	actor := sharedApplication.Actor{Role: sharedApplication.RoleClient, Email: email}

	client, err := a.clients.FindByEmail(ctx, email)
	switch {
	case err == nil:
		actor.UserID = client.ID()
	case projects.IsNotFound(err):
		a.logger.Debug("no client record for signed-in user", "email", email)
	default:
		return sharedApplication.Actor{}, fmt.Errorf("failed to resolve client: %w", err)
	}
	return actor, nil
}

func (a *Authenticator) parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IssueToken signs a token for claims. It backs local tooling and tests;
// production tokens come from the identity provider.
func (a *Authenticator) IssueToken(subject, email string, admin bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if admin {
		claims.AppMetadata.Role = AdminRole
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ExtractToken returns the bearer token of r, or "".
func ExtractToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
