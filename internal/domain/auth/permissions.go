package auth

import "context"

const (
	RoleAdmin  = "payroll_admin"
	RoleViewer = "payroll_viewer"
)

const (
	PermPayrollRead   = "payroll.read"
	PermPayrollWrite  = "payroll.write"
	PermPayrollRun    = "payroll.run"
	PermPayrollFields = "payroll.fields"
)

var RolePermissions = map[string][]string{
	RoleViewer: {
		PermPayrollRead,
	},
	RoleAdmin: {
		PermPayrollRead,
		PermPayrollWrite,
		PermPayrollRun,
		PermPayrollFields,
	},
}

// StaticPermissions answers permission checks from RolePermissions.
type StaticPermissions struct{}

func (StaticPermissions) HasPermission(_ context.Context, role, permission string) (bool, error) {
	for _, granted := range RolePermissions[role] {
		if granted == permission {
			return true, nil
		}
	}
	return false, nil
}
