package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var employeeRowColumns = []string{
	"id", "emp_number", "name", "email", "password_hash", "emp_type",
	"designation", "department", "phone", "avatar_url", "refresh_token",
	"created_at", "updated_at",
}

func employeeRow(id string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(employeeRowColumns).AddRow(
		id, "EMP-1", "alice stone", "alice@example.com", "hash", "full-time",
		"engineer", "platform", "+1-555-0100", "https://media.local/a.png", "",
		now, now,
	)
}

func TestPGEmployeeStoreCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	store := NewPGEmployeeStore(db)
	mock.ExpectExec("insert into employees").
		WithArgs(sqlmock.AnyArg(), "EMP-1", "alice stone", "alice@example.com", "hash",
			"full-time", "engineer", "platform", "+1-555-0100", "https://media.local/a.png").
		WillReturnResult(sqlmock.NewResult(0, 1))

	emp := &Employee{
		Number: "EMP-1", Name: "alice stone", Email: "alice@example.com",
		PasswordHash: "hash", Type: "full-time", Designation: "engineer",
		Department: "platform", Phone: "+1-555-0100", AvatarURL: "https://media.local/a.png",
	}
	if err := store.Create(context.Background(), emp); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if emp.ID == "" {
		t.Fatalf("expected generated id")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGEmployeeStoreCreateUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	store := NewPGEmployeeStore(db)
	mock.ExpectExec("insert into employees").
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "employees_email_idx" (SQLSTATE 23505)`))

	err = store.Create(context.Background(), &Employee{Email: "alice@example.com"})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestPGEmployeeStoreFind(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	store := NewPGEmployeeStore(db)
	mock.ExpectQuery("select .* from employees where id=").
		WithArgs("emp-1").
		WillReturnRows(employeeRow("emp-1"))

	emp, err := store.Find(context.Background(), "emp-1")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if emp.ID != "emp-1" || emp.Email != "alice@example.com" {
		t.Fatalf("unexpected employee: %+v", emp)
	}

	mock.ExpectQuery("select .* from employees where id=").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(employeeRowColumns))
	if _, err := store.Find(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGEmployeeStoreSetRefreshToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	store := NewPGEmployeeStore(db)
	mock.ExpectExec("update employees set refresh_token").
		WithArgs("emp-1", "token-abc").
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := store.SetRefreshToken(context.Background(), "emp-1", "token-abc"); err != nil {
		t.Fatalf("SetRefreshToken: %v", err)
	}

	// Clearing stores NULL.
	mock.ExpectExec("update employees set refresh_token").
		WithArgs("emp-1", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := store.SetRefreshToken(context.Background(), "emp-1", ""); err != nil {
		t.Fatalf("SetRefreshToken clear: %v", err)
	}

	mock.ExpectExec("update employees set refresh_token").
		WithArgs("missing", "token-abc").
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := store.SetRefreshToken(context.Background(), "missing", "token-abc"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGEmployeeStoreUpdatePassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	store := NewPGEmployeeStore(db)
	mock.ExpectExec("update employees set password_hash").
		WithArgs("emp-1", "new-hash").
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := store.UpdatePassword(context.Background(), "emp-1", "new-hash"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}

	// Unchanged hash affects no rows but the employee exists, so no error.
	mock.ExpectExec("update employees set password_hash").
		WithArgs("emp-1", "same-hash").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("select exists").
		WithArgs("emp-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	if err := store.UpdatePassword(context.Background(), "emp-1", "same-hash"); err != nil {
		t.Fatalf("UpdatePassword unchanged: %v", err)
	}

	mock.ExpectExec("update employees set password_hash").
		WithArgs("missing", "new-hash").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("select exists").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	if err := store.UpdatePassword(context.Background(), "missing", "new-hash"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGEmployeeStoreList(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	store := NewPGEmployeeStore(db)
	rows := employeeRow("emp-1")
	now := time.Now().UTC()
	rows.AddRow("emp-2", "EMP-2", "bob reed", "bob@example.com", "hash", "contract",
		"qa", "platform", "+1-555-0101", "https://media.local/b.png", "", now, now)
	mock.ExpectQuery("select .* from employees order by created_at").
		WillReturnRows(rows)

	list, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[1].Name != "bob reed" {
		t.Fatalf("unexpected list: %+v", list)
	}
}
