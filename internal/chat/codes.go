package chat

import (
	"github.com/renteazy/renteazy-server/internal/models"
	"github.com/renteazy/renteazy-server/pkg/crypto"
)

// GenerateInviteCode returns a 6-character room code sampled uniformly
// from [A-Z0-9]
func GenerateInviteCode() (string, error) {
	return crypto.GenerateCode(models.RoomCodeAlphabet, models.RoomCodeLength)
}
