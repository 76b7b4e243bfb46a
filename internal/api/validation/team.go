package validation

import (
	"github.com/workflex/workflex/internal/permission"
)

// CreateTeamRequest mirrors the fields needed for create team validation.
type CreateTeamRequest struct {
	Name        string
	Description string
}

const maxDescriptionLength = 2000

// ValidateCreateTeamRequest validates the fields of a create team request.
func ValidateCreateTeamRequest(req CreateTeamRequest) []FieldError {
	errs := validateName("name", req.Name)
	if len(req.Description) > maxDescriptionLength {
		errs = append(errs, FieldError{Field: "description", Message: "description must be at most 2000 characters"})
	}
	return errs
}

// UpdateTeamRequest mirrors the optional fields of a team update.
type UpdateTeamRequest struct {
	Name        *string
	Description *string
}

// ValidateUpdateTeamRequest validates the fields present in a team update.
func ValidateUpdateTeamRequest(req UpdateTeamRequest) []FieldError {
	var errs []FieldError
	if req.Name == nil && req.Description == nil {
		errs = append(errs, FieldError{Field: "body", Message: "at least one of name or description is required"})
		return errs
	}
	if req.Name != nil {
		errs = append(errs, validateName("name", *req.Name)...)
	}
	if req.Description != nil && len(*req.Description) > maxDescriptionLength {
		errs = append(errs, FieldError{Field: "description", Message: "description must be at most 2000 characters"})
	}
	return errs
}

// InviteRequest mirrors the fields needed for invite validation.
type InviteRequest struct {
	Email string
	Role  string
}

// ValidateInviteRequest validates an invite. Owner cannot be offered.
func ValidateInviteRequest(req InviteRequest) []FieldError {
	errs := validateEmail(req.Email)
	errs = append(errs, validateAssignableRole(req.Role)...)
	return errs
}

// ValidateRoleRequest validates a role change. Owner is syntactically valid
// here; whether it may be assigned is decided by the team service.
func ValidateRoleRequest(role string) []FieldError {
	if role == "" {
		return []FieldError{{Field: "role", Message: "role is required"}}
	}
	if _, err := permission.ParseRole(role); err != nil {
		return []FieldError{{Field: "role", Message: "role must be one of owner, admin, manager, member, guest"}}
	}
	return nil
}

func validateAssignableRole(role string) []FieldError {
	if role == "" {
		return []FieldError{{Field: "role", Message: "role is required"}}
	}
	r, err := permission.ParseRole(role)
	if err != nil || r == permission.RoleOwner {
		return []FieldError{{Field: "role", Message: "role must be one of admin, manager, member, guest"}}
	}
	return nil
}
