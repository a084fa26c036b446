package auth

import "context"

// EmployeeStore describes persistence operations required by the auth
// subsystem and the authorization middleware.
type EmployeeStore interface {
	Create(ctx context.Context, emp *Employee) error
	Find(ctx context.Context, id string) (*Employee, error)
	FindByEmail(ctx context.Context, email string) (*Employee, error)
	FindByName(ctx context.Context, name string) (*Employee, error)
	// SetRefreshToken overwrites the stored refresh token; an empty value
	// clears it, invalidating any outstanding refresh token.
	SetRefreshToken(ctx context.Context, id, token string) error
	// UpdatePassword stores a new hash; it is a no-op when the hash is
	// unchanged.
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	List(ctx context.Context) ([]*Employee, error)
}
