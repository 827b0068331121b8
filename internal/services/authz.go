package services

import "vibeconnect/internal/domain"

// The authorization gate applied before every mutating engine operation.
// ErrUnauthenticated (no identity) is signalled distinctly from
// ErrForbidden (identity present, role insufficient) so the delivery
// layer can map them to 401 and 403.

func requireAuthenticated(caller *domain.Identity) error {
	if caller == nil || caller.UserID == "" {
		return domain.ErrUnauthenticated
	}
	return nil
}

func requireAdmin(caller *domain.Identity) error {
	if err := requireAuthenticated(caller); err != nil {
		return err
	}
	if caller.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return nil
}
