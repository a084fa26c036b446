package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"peopledesk.org/internal/ids"
)

var _ EmployeeStore = (*PGEmployeeStore)(nil)

const employeeColumns = `id, emp_number, name, email, password_hash, emp_type, designation, department, phone, avatar_url, coalesce(refresh_token, ''), created_at, updated_at`

// PGEmployeeStore implements EmployeeStore using PostgreSQL.
type PGEmployeeStore struct {
	db *sql.DB
}

func NewPGEmployeeStore(db *sql.DB) *PGEmployeeStore {
	return &PGEmployeeStore{db: db}
}

func (s *PGEmployeeStore) Create(ctx context.Context, emp *Employee) error {
	if emp.ID == "" {
		emp.ID = ids.New()
	}
	_, err := s.db.ExecContext(ctx,
		`insert into employees(id, emp_number, name, email, password_hash, emp_type, designation, department, phone, avatar_url)
		 values($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		emp.ID, emp.Number, emp.Name, emp.Email, emp.PasswordHash,
		emp.Type, emp.Designation, emp.Department, emp.Phone, emp.AvatarURL,
	)
	if err != nil && isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return err
}

func (s *PGEmployeeStore) Find(ctx context.Context, id string) (*Employee, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+employeeColumns+` from employees where id=$1`, id)
	return scanEmployee(row)
}

func (s *PGEmployeeStore) FindByEmail(ctx context.Context, email string) (*Employee, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+employeeColumns+` from employees where email=$1`, email)
	return scanEmployee(row)
}

func (s *PGEmployeeStore) FindByName(ctx context.Context, name string) (*Employee, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+employeeColumns+` from employees where name=$1`, name)
	return scanEmployee(row)
}

func (s *PGEmployeeStore) SetRefreshToken(ctx context.Context, id, token string) error {
	var value any
	if token != "" {
		value = token
	}
	res, err := s.db.ExecContext(ctx,
		`update employees set refresh_token=$2, updated_at=now() where id=$1`, id, value)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PGEmployeeStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	// Unchanged hash is a deliberate no-op skip.
	res, err := s.db.ExecContext(ctx,
		`update employees set password_hash=$2, updated_at=now() where id=$1 and password_hash <> $2`,
		id, passwordHash)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var exists bool
		if err := s.db.QueryRowContext(ctx,
			`select exists(select 1 from employees where id=$1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
	}
	return nil
}

func (s *PGEmployeeStore) List(ctx context.Context) ([]*Employee, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+employeeColumns+` from employees order by created_at asc, id asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, emp)
	}
	return res, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*Employee, error) {
	var emp Employee
	err := row.Scan(
		&emp.ID, &emp.Number, &emp.Name, &emp.Email, &emp.PasswordHash,
		&emp.Type, &emp.Designation, &emp.Department, &emp.Phone,
		&emp.AvatarURL, &emp.RefreshToken, &emp.CreatedAt, &emp.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &emp, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	// pgx surfaces SQLSTATE 23505 in the error text for database/sql users.
	return err != nil && strings.Contains(err.Error(), "23505")
}
