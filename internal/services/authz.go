package services

import "github.com/google/uuid"

// Caller is the authenticated identity behind a request.
type Caller struct {
	UserID     uuid.UUID
	Privileged bool
}

// Authorize is the single access rule for per-user data: callers may act on
// their own records, privileged callers on anyone's.
func Authorize(caller Caller, targetUserID uuid.UUID) error {
	if caller.Privileged || caller.UserID == targetUserID {
		return nil
	}
	return &ForbiddenError{Message: "Access denied: cannot access another user's records"}
}

// RequirePrivileged guards operations reserved for administrators.
func RequirePrivileged(caller Caller) error {
	if caller.Privileged {
		return nil
	}
	return &ForbiddenError{Message: "Admin access required"}
}

// RequireSelf limits an operation to the owner of the records; privilege does
// not widen it. Payment details are the only such data.
func RequireSelf(caller Caller, targetUserID uuid.UUID) error {
	if caller.UserID != uuid.Nil && caller.UserID == targetUserID {
		return nil
	}
	return &ForbiddenError{Message: "Access denied: only the account owner may view this"}
}
