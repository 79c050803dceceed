package domain

import (
	"time"

	"github.com/google/uuid"
)

// Team represents a club with its six bounded strength attributes.
// Attributes are fixed for the duration of a season; only an explicit
// admin edit may change them.
type Team struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name" validate:"required,min=2,max=64"`
	Attack      int       `json:"attack" validate:"min=1,max=100"`
	Defense     int       `json:"defense" validate:"min=1,max=100"`
	SeekerSkill int       `json:"seeker_skill" validate:"min=1,max=100"`
	ChaserSkill int       `json:"chaser_skill" validate:"min=1,max=100"`
	KeeperSkill int       `json:"keeper_skill" validate:"min=1,max=100"`
	BeaterSkill int       `json:"beater_skill" validate:"min=1,max=100"`
	CreatedAt   time.Time `json:"created_at"`
}
