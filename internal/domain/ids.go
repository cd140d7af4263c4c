package domain

import "github.com/google/uuid"

// NewID returns a random 128-bit identifier
func NewID() string {
	return uuid.NewString()
}
