package notifications

import "time"

// Type clasifica el evento que originó la notificación.
type Type string

const (
	TypeMatchFound     Type = "match_found"
	TypeMatchConfirmed Type = "match_confirmed"
	TypeMatchRejected  Type = "match_rejected"
	TypeMatchResolved  Type = "match_resolved"
)

// Notification es el registro que el engine encola para el inbox del
// usuario. El transporte (push/WebSocket/email) es externo: acá solo se
// persiste el registro.
type Notification struct {
	ID              string
	RecipientUserID string

	// MatchID es una back-reference débil (puede quedar vacía).
	MatchID string

	Type    Type
	Title   string
	Message string

	IsRead    bool
	ReadAt    *time.Time
	CreatedAt time.Time
}
