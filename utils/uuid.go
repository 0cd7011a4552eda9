package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a new unique, time-ordered identifier string
func GenerateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
