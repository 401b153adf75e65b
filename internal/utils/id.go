package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a random peer identifier: 32 upper-case hex digits.
func NewID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}
