package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a new random auction or bid identifier
func GenerateID() string {
	return uuid.NewString()
}

// canonical 8-4-4-4-12 text form
const idLength = 36

// ValidID reports whether id has the shape GenerateID produces. Stores with a
// UUID-typed key use it to answer "not found" without a round trip.
func ValidID(id string) bool {
	return len(id) == idLength && uuid.Validate(id) == nil
}
