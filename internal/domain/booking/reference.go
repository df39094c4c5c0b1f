package booking

import (
	"strings"

	"github.com/google/uuid"
)

const referencePrefix = "RMY-"

// NewReference generates a human-shareable booking code. The random part
// carries enough entropy that collisions are negligible; the unique index
// on the store catches the astronomically unlikely rest.
func NewReference() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return referencePrefix + raw[:10]
}
