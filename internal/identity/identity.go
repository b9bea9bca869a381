// Package identity is the account and session service behind the
// storefront: email/password accounts, signed session tokens, revocation
// and a change notification stream.
package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/models"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/session"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/store"
)

const (
	MinPasswordLen = 6
	issuer         = "olas-kitchen"
)

var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrEmailTaken         = errors.New("user already registered")
	ErrInvalidEmail       = errors.New("please enter a valid email address")
	ErrWeakPassword       = fmt.Errorf("password should be at least %d characters", MinPasswordLen)
	ErrInvalidName        = errors.New("full name must be between 2 and 100 characters")
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// UserStore is the persistence the service needs. CreateUser reports an
// existing email with store.ErrDuplicate.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User, profile *models.Profile) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

var _ session.IdentityClient = (*Service)(nil)

type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Seq   uint64 `json:"seq"`
	jwt.RegisteredClaims
}

type Service struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	events *Broadcaster
	seq    atomic.Uint64
}

func NewService(users UserStore, secret []byte, ttl time.Duration) *Service {
	s := &Service{
		users:  users,
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
		events: NewBroadcaster(),
	}
	// Tokens outlive the process, so sequence numbers start from the clock
	// to stay ahead of any seq baked into a token issued before a restart.
	s.seq.Store(uint64(time.Now().UnixNano()))
	return s
}

func (s *Service) nextSeq() uint64 { return s.seq.Add(1) }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) SignUp(ctx context.Context, email, password, fullName string) (*session.Session, error) {
	email = normalizeEmail(email)
	fullName = strings.TrimSpace(fullName)
	if !emailRegex.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if len(password) < MinPasswordLen {
		return nil, ErrWeakPassword
	}
	if n := len([]rune(fullName)); n < 2 || n > 100 {
		return nil, ErrInvalidName
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	profile := &models.Profile{UserID: user.ID, FullName: fullName, Email: email}
	if err := s.users.CreateUser(ctx, user, profile); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.issue(session.Identity{UserID: user.ID, Email: email, FullName: fullName})
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*session.Session, error) {
	u, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	name := ""
	if p, err := s.users.GetProfile(ctx, u.ID); err == nil && p != nil {
		name = p.FullName
	}
	return s.issue(session.Identity{UserID: u.ID, Email: u.Email, FullName: name})
}

func (s *Service) issue(id session.Identity) (*session.Session, error) {
	now := s.now()
	seq := s.nextSeq()
	claims := &Claims{
		Email: id.Email,
		Name:  id.FullName,
		Seq:   seq,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.UserID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	sess := &session.Session{
		AccessToken: signed,
		TokenID:     claims.ID,
		User:        id,
		ExpiresAt:   claims.ExpiresAt.Time,
		Seq:         seq,
	}
	s.events.Publish(session.Event{Kind: session.EventSignedIn, TokenID: sess.TokenID, Seq: seq, Session: sess})
	return sess, nil
}

func (s *Service) parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// CurrentSession returns the session behind token, or nil when the token is
// malformed, expired or revoked.
func (s *Service) CurrentSession(ctx context.Context, token string) (*session.Session, error) {
	if token == "" {
		return nil, nil
	}
	claims, err := s.parse(token)
	if err != nil {
		return nil, nil
	}
	revoked, err := s.users.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, nil
	}
	return &session.Session{
		AccessToken: token,
		TokenID:     claims.ID,
		User:        session.Identity{UserID: claims.Subject, Email: claims.Email, FullName: claims.Name},
		ExpiresAt:   claims.ExpiresAt.Time,
		Seq:         claims.Seq,
	}, nil
}

// SignOut revokes the token. Unknown or already expired tokens are a no-op.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}
	if err := s.users.RevokeToken(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.events.Publish(session.Event{Kind: session.EventSignedOut, TokenID: claims.ID, Seq: s.nextSeq()})
	return nil
}

func (s *Service) Subscribe(fn func(session.Event)) func() {
	return s.events.Subscribe(fn)
}
