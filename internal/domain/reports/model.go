package reports

import "time"

// PetType define los tipos de mascota soportados.
// @Enum dog, cat, bird, rabbit, hamster, other
type PetType string

const (
	PetTypeDog     PetType = "dog"
	PetTypeCat     PetType = "cat"
	PetTypeBird    PetType = "bird"
	PetTypeRabbit  PetType = "rabbit"
	PetTypeHamster PetType = "hamster"
	PetTypeOther   PetType = "other"
)

// Size define el tamaño de la mascota (escala ordenada small < medium < large).
// @Enum small, medium, large
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// Status define el ciclo de vida de un reporte.
// active -> matched (vía confirmación de match) -> resolved.
// El owner puede resolver directamente desde cualquier estado no-resolved.
type Status string

const (
	StatusActive   Status = "active"
	StatusMatched  Status = "matched"
	StatusResolved Status = "resolved"
)

// Kind distingue reportes de mascota perdida vs encontrada.
type Kind string

const (
	KindLost  Kind = "lost"
	KindFound Kind = "found"
)

// LostReport representa un reporte de mascota perdida, creado por su dueño.
type LostReport struct {
	ID          string
	OwnerUserID string

	PetName string
	PetType PetType
	Breed   string
	Color   string // opcional, mejora el matching
	Size    Size   // opcional

	Description      string
	LastSeenLocation string
	LastSeenDate     time.Time // solo fecha (YYYY-MM-DD)

	Status Status

	CreatedAt  time.Time
	UpdatedAt  time.Time
	ResolvedAt *time.Time
}

// FoundReport representa un reporte de mascota encontrada, creado por cualquier usuario.
type FoundReport struct {
	ID             string
	ReporterUserID string

	PetType PetType
	Breed   string // opcional (si es identificable)
	Color   string // opcional
	Size    Size   // opcional

	Description   string
	LocationFound string
	DateFound     time.Time // solo fecha

	ContactEmail string
	ContactPhone string

	Status Status

	CreatedAt  time.Time
	UpdatedAt  time.Time
	ResolvedAt *time.Time
}
