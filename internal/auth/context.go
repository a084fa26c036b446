package auth

import "context"

type ctxKey string

const employeeKey ctxKey = "auth_employee"

// ContextWithEmployee stores the authenticated (sanitized) employee in the
// context.
func ContextWithEmployee(ctx context.Context, emp Employee) context.Context {
	return context.WithValue(ctx, employeeKey, emp.Sanitized())
}

// EmployeeFromContext extracts the authenticated employee from the context.
func EmployeeFromContext(ctx context.Context) (Employee, bool) {
	emp, ok := ctx.Value(employeeKey).(Employee)
	if !ok || emp.ID == "" {
		return Employee{}, false
	}
	return emp, true
}

// EmployeeIDFromContext returns just the authenticated employee id.
func EmployeeIDFromContext(ctx context.Context) (string, bool) {
	emp, ok := EmployeeFromContext(ctx)
	if !ok {
		return "", false
	}
	return emp.ID, true
}
