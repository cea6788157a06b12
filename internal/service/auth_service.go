package service

import (
	"context"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"cyberqa/internal/apperr"
	"cyberqa/internal/cache"
	"cyberqa/internal/config"
	"cyberqa/internal/model"
	"cyberqa/internal/repository"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Session is an issued token together with the account it belongs to
type Session struct {
	Token   string
	Account *model.Account
}

// AuthService handles registration, login, and session resolution. Tokens
// are HS256 JWTs whose token id must also be present in the Redis allowlist,
// so logout revokes a token before its expiry.
type AuthService struct {
	accounts  repository.AccountRepository
	sessions  cache.SessionCache
	validate  *validator.Validate
	jwtSecret []byte
	ttl       time.Duration
}

func NewAuthService(accounts repository.AccountRepository, sessions cache.SessionCache, cfg *config.Config) *AuthService {
	v := validator.New()
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRegex.MatchString(fl.Field().String())
	})

	return &AuthService{
		accounts:  accounts,
		sessions:  sessions,
		validate:  v,
		jwtSecret: []byte(cfg.JWTSecret),
		ttl:       cfg.SessionTTL,
	}
}

// Register creates an account and logs it in
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*Session, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, apperr.Validation("Username, email, and password are required")
	}
	if err := s.validate.Struct(req); err != nil {
		if !usernameRegex.MatchString(req.Username) {
			return nil, apperr.Validation("Username can only contain alphanumeric characters, underscores, or hyphens")
		}
		return nil, apperr.Validation("Invalid registration fields")
	}

	if existing, err := s.accounts.GetByEmail(ctx, req.Email); err != nil {
		return nil, apperr.Persistence(err, "failed to check email")
	} else if existing != nil {
		return nil, apperr.Validation("Email already exists")
	}
	if existing, err := s.accounts.GetByUsername(ctx, req.Username); err != nil {
		return nil, apperr.Persistence(err, "failed to check username")
	} else if existing != nil {
		return nil, apperr.Validation("Username already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to hash password")
	}

	account := &model.Account{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, apperr.Persistence(err, "failed to create account")
	}

	return s.issueSession(ctx, account)
}

// Login checks credentials and issues a session
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to look up account")
	}
	if account == nil {
		return nil, apperr.Validation("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Validation("Invalid credentials")
	}

	return s.issueSession(ctx, account)
}

// ResolveSession maps a bearer token back to its account. The token must
// parse, be unexpired, and still be present in the allowlist.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*model.Account, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil, apperr.Authentication("Unauthorized")
	}

	accountID, err := s.sessions.Get(ctx, claims.TokenID)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to check session")
	}
	if accountID == "" || accountID != claims.AccountID {
		return nil, apperr.Authentication("Unauthorized")
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to load account")
	}
	if account == nil {
		return nil, apperr.Authentication("Unauthorized")
	}
	return account, nil
}

// Logout revokes the session behind the token
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.parseToken(token)
	if err != nil {
		return apperr.Authentication("Unauthorized")
	}
	if err := s.sessions.Delete(ctx, claims.TokenID); err != nil {
		return apperr.Persistence(err, "failed to delete session")
	}
	return nil
}

func (s *AuthService) issueSession(ctx context.Context, account *model.Account) (*Session, error) {
	tokenID := uuid.New().String()
	claims := &model.SessionClaims{
		AccountID: account.ID,
		TokenID:   tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to sign session token")
	}

	if err := s.sessions.Put(ctx, tokenID, account.ID, s.ttl); err != nil {
		return nil, apperr.Persistence(err, "failed to store session")
	}

	return &Session{Token: signed, Account: account}, nil
}

func (s *AuthService) parseToken(tokenString string) (*model.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*model.SessionClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
