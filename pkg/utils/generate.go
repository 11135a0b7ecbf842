package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateTicketCode returns a 32 lowercase hex character token built from a random UUID.
// The code is printed on the ticket and used as the QR payload.
func GenerateTicketCode() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
