package service

import (
	"strconv"
)

// Viewer is the identity a read is performed for. The zero value is anonymous.
type Viewer struct {
	UserID uint
}

// Anonymous returns a viewer without an identity.
func Anonymous() Viewer {
	return Viewer{}
}

func (v Viewer) IsAuthenticated() bool {
	return v.UserID != 0
}

// ParseRecipesLimit reads the recipes_limit query value. Absent, non-numeric
// or negative values mean no limit.
func ParseRecipesLimit(raw string) *int {
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}
