package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Field names a user attribute that appears on profile and directory forms.
type Field string

const (
	FieldName       Field = "name"
	FieldEmail      Field = "email"
	FieldPhone      Field = "phone"
	FieldAddress    Field = "address"
	FieldCompany    Field = "company"
	FieldDepartment Field = "department"
	FieldSalary     Field = "salary"
	FieldRole       Field = "role"
	FieldStatus     Field = "status"
	FieldPassword   Field = "password"
)

// Capability is what a role may do with one field.
type Capability struct {
	Visible  bool
	Editable bool
}

var (
	rw     = Capability{Visible: true, Editable: true}
	ro     = Capability{Visible: true}
	hidden = Capability{}
)

// fieldCapabilities is consulted by every form the portal serves.
var fieldCapabilities = map[Role]map[Field]Capability{
	RoleAdmin: {
		FieldName: rw, FieldEmail: rw, FieldPhone: rw, FieldAddress: rw,
		FieldCompany: rw, FieldDepartment: rw, FieldSalary: rw,
		FieldRole: rw, FieldStatus: rw, FieldPassword: rw,
	},
	RoleEmployee: {
		FieldName: rw, FieldEmail: rw, FieldPhone: rw, FieldAddress: rw,
		FieldCompany: hidden, FieldDepartment: ro, FieldSalary: ro,
		FieldRole: ro, FieldStatus: ro, FieldPassword: rw,
	},
	RoleClient: {
		FieldName: rw, FieldEmail: rw, FieldPhone: rw, FieldAddress: rw,
		FieldCompany: ro, FieldDepartment: hidden, FieldSalary: hidden,
		FieldRole: ro, FieldStatus: ro, FieldPassword: rw,
	},
}

// FieldCapability returns the capability of role on field. Unknown pairs
// are neither visible nor editable.
func FieldCapability(role Role, field Field) Capability {
	return fieldCapabilities[role][field]
}

// FieldEditable reports whether role may change field.
func FieldEditable(role Role, field Field) bool {
	return FieldCapability(role, field).Editable
}

// FieldVisible reports whether role may see field.
func FieldVisible(role Role, field Field) bool {
	return FieldCapability(role, field).Visible
}

// FieldCapabilities returns the full table row for role, keyed by field name.
func FieldCapabilities(role Role) map[Field]Capability {
	row := fieldCapabilities[role]
	out := make(map[Field]Capability, len(row))
	for f, c := range row {
		out[f] = c
	}
	return out
}

// CheckEditable returns ErrFieldLocked naming every field in changed that
// role may not edit.
func CheckEditable(role Role, changed []Field) error {
	var locked []string
	for _, f := range changed {
		if !FieldEditable(role, f) {
			locked = append(locked, string(f))
		}
	}
	if len(locked) == 0 {
		return nil
	}
	sort.Strings(locked)
	return fmt.Errorf("%w: %s", ErrFieldLocked, strings.Join(locked, ", "))
}
