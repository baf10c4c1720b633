package chat

import "time"

// Session captures one anonymous counseling conversation. State lives in
// memory only and is discarded when the process exits.
type Session struct {
	ID        string    `json:"id"`
	PersonaID string    `json:"personaId"`
	CreatedAt time.Time `json:"createdAt"`
}
