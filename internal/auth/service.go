package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"peopledesk.org/internal/ids"
)

const (
	defaultIssuer     = "peopledesk"
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Claims is the signed claim set carried by both token kinds.
type Claims struct {
	EmployeeID string `json:"emp_id"`
	Email      string `json:"email"`
	Name       string `json:"emp_name"`
	TokenType  string `json:"token_type"`
	jwt.RegisteredClaims
}

// Service issues and verifies tokens and owns the refresh rotation flow.
// Secrets and expiries come in through options at construction time; there
// is no ambient configuration lookup.
type Service struct {
	store EmployeeStore
	now   func() time.Time

	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service) error

// WithAccessSecret sets the HS256 secret for access tokens.
func WithAccessSecret(secret string) ServiceOption {
	return func(s *Service) error {
		if strings.TrimSpace(secret) == "" {
			return errors.New("auth: access secret is required")
		}
		s.accessSecret = []byte(secret)
		return nil
	}
}

// WithRefreshSecret sets the HS256 secret for refresh tokens. It may equal
// the access secret; the token_type claim keeps the two kinds apart.
func WithRefreshSecret(secret string) ServiceOption {
	return func(s *Service) error {
		if strings.TrimSpace(secret) == "" {
			return errors.New("auth: refresh secret is required")
		}
		s.refreshSecret = []byte(secret)
		return nil
	}
}

// WithIssuer overrides the token issuer claim.
func WithIssuer(issuer string) ServiceOption {
	return func(s *Service) error {
		if v := strings.TrimSpace(issuer); v != "" {
			s.issuer = v
		}
		return nil
	}
}

// WithAccessTTL configures access token lifetime.
func WithAccessTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) error {
		if ttl > 0 {
			s.accessTTL = ttl
		}
		return nil
	}
}

// WithRefreshTTL configures refresh token lifetime.
func WithRefreshTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) error {
		if ttl > 0 {
			s.refreshTTL = ttl
		}
		return nil
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) error {
		if fn != nil {
			s.now = fn
		}
		return nil
	}
}

// NewService constructs Service. Access and refresh secrets are mandatory.
func NewService(store EmployeeStore, opts ...ServiceOption) (*Service, error) {
	svc := &Service{
		store:      store,
		now:        time.Now,
		issuer:     defaultIssuer,
		accessTTL:  defaultAccessTTL,
		refreshTTL: defaultRefreshTTL,
	}
	for _, opt := range opts {
		if err := opt(svc); err != nil {
			return nil, err
		}
	}
	if len(svc.accessSecret) == 0 || len(svc.refreshSecret) == 0 {
		return nil, errors.New("auth: token secrets are not configured")
	}
	return svc, nil
}

// RegisterInput carries the caller-supplied fields of a new employee.
type RegisterInput struct {
	Number      string
	Name        string
	Email       string
	Password    string
	Type        string
	Designation string
	Department  string
	Phone       string
}

// Register creates a new employee with a hashed password.
func (s *Service) Register(ctx context.Context, in RegisterInput, avatarURL string) (*Employee, error) {
	in.Name = strings.TrimSpace(strings.ToLower(in.Name))
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Number == "" || in.Name == "" || in.Email == "" || in.Password == "" ||
		in.Type == "" || in.Designation == "" || in.Department == "" || in.Phone == "" {
		return nil, fmt.Errorf("%w: all employee fields are required", ErrInvalidInput)
	}
	if avatarURL == "" {
		return nil, fmt.Errorf("%w: avatar is required", ErrInvalidInput)
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	emp := &Employee{
		ID:           ids.New(),
		Number:       in.Number,
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Type:         in.Type,
		Designation:  in.Designation,
		Department:   in.Department,
		Phone:        in.Phone,
		AvatarURL:    avatarURL,
	}
	if err := s.store.Create(ctx, emp); err != nil {
		return nil, err
	}
	clean := emp.Sanitized()
	return &clean, nil
}

// Login authenticates by name or email and issues a fresh token pair.
// Issuing the refresh token overwrites the one stored on the employee row,
// so any previously issued refresh token stops renewing.
func (s *Service) Login(ctx context.Context, nameOrEmail, password string) (TokenPair, *Employee, error) {
	nameOrEmail = strings.TrimSpace(strings.ToLower(nameOrEmail))
	if nameOrEmail == "" || password == "" {
		return TokenPair{}, nil, fmt.Errorf("%w: name or email and password are required", ErrInvalidInput)
	}
	emp, err := s.store.FindByEmail(ctx, nameOrEmail)
	if errors.Is(err, ErrNotFound) {
		emp, err = s.store.FindByName(ctx, nameOrEmail)
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return TokenPair{}, nil, ErrUnauthorized
		}
		return TokenPair{}, nil, err
	}
	if err := VerifyPassword(emp.PasswordHash, password); err != nil {
		return TokenPair{}, nil, ErrUnauthorized
	}
	pair, err := s.issuePair(ctx, emp)
	if err != nil {
		return TokenPair{}, nil, err
	}
	clean := emp.Sanitized()
	return pair, &clean, nil
}

// VerifyAccess validates an access token by signature and expiry alone.
func (s *Service) VerifyAccess(token string) (*Claims, error) {
	return s.verify(token, tokenTypeAccess, s.accessSecret)
}

// Renew rotates the refresh token and returns a fresh pair. It fails with
// ErrUnauthorized when the token is missing, does not verify, or no longer
// matches the value stored on the employee record (stale or rotated).
// Concurrent renewals for one employee are last-writer-wins: the loser's
// pair fails its stored-equality check on the next use.
func (s *Service) Renew(ctx context.Context, refreshToken string) (TokenPair, *Employee, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return TokenPair{}, nil, ErrUnauthorized
	}
	claims, err := s.verify(refreshToken, tokenTypeRefresh, s.refreshSecret)
	if err != nil {
		return TokenPair{}, nil, ErrUnauthorized
	}
	emp, err := s.store.Find(ctx, claims.EmployeeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return TokenPair{}, nil, ErrUnauthorized
		}
		return TokenPair{}, nil, err
	}
	if emp.RefreshToken == "" || emp.RefreshToken != refreshToken {
		return TokenPair{}, nil, ErrUnauthorized
	}
	pair, err := s.issuePair(ctx, emp)
	if err != nil {
		return TokenPair{}, nil, err
	}
	clean := emp.Sanitized()
	return pair, &clean, nil
}

// Logout clears the stored refresh token, making any outstanding refresh
// token permanently unrenewable even while still signature-valid.
func (s *Service) Logout(ctx context.Context, employeeID string) error {
	if employeeID == "" {
		return ErrUnauthorized
	}
	return s.store.SetRefreshToken(ctx, employeeID, "")
}

// Directory lists all employees, sanitized of credential material.
func (s *Service) Directory(ctx context.Context) ([]Employee, error) {
	emps, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Employee, 0, len(emps))
	for _, emp := range emps {
		out = append(out, emp.Sanitized())
	}
	return out, nil
}

// ChangePassword verifies the current password, stores a new hash and
// clears the stored refresh token so existing sessions must log in again.
func (s *Service) ChangePassword(ctx context.Context, employeeID, current, next string) error {
	if current == "" || next == "" {
		return fmt.Errorf("%w: current and new password are required", ErrInvalidInput)
	}
	if current == next {
		return fmt.Errorf("%w: new password must differ from the current one", ErrInvalidInput)
	}
	emp, err := s.store.Find(ctx, employeeID)
	if err != nil {
		return err
	}
	if err := VerifyPassword(emp.PasswordHash, current); err != nil {
		return ErrUnauthorized
	}
	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePassword(ctx, emp.ID, hash); err != nil {
		return err
	}
	return s.store.SetRefreshToken(ctx, emp.ID, "")
}

func (s *Service) issuePair(ctx context.Context, emp *Employee) (TokenPair, error) {
	now := s.now().UTC()
	accessExp := now.Add(s.accessTTL)
	refreshExp := now.Add(s.refreshTTL)

	access, err := s.sign(emp, tokenTypeAccess, s.accessSecret, now, accessExp)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(emp, tokenTypeRefresh, s.refreshSecret, now, refreshExp)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.store.SetRefreshToken(ctx, emp.ID, refresh); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *Service) sign(emp *Employee, tokenType string, secret []byte, now, exp time.Time) (string, error) {
	claims := Claims{
		EmployeeID: emp.ID,
		Email:      emp.Email,
		Name:       emp.Name,
		TokenType:  tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   emp.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *Service) verify(token, wantType string, secret []byte) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != wantType {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.EmployeeID) == "" || strings.TrimSpace(claims.Email) == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
