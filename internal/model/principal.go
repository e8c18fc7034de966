package model

import (
	"fmt"
	"strconv"
)

// Principal is an authenticated identity.
type Principal struct {
	ID       int64
	Role     Role
	TenantID *int64
}

// Subject returns the principal id encoded for the "sub" claim.
func (p Principal) Subject() string {
	return strconv.FormatInt(p.ID, 10)
}

// ParseSubject decodes a "sub" claim into a principal id.
func ParseSubject(sub string) (int64, error) {
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid subject %q: %w", sub, err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid subject %q", sub)
	}
	return id, nil
}
