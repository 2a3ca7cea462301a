package matching

import (
	"fmt"
	"strings"

	"pet-lost-found/internal/domain/reports"
)

// Attribute identifica cada dimensión comparada.
type Attribute string

const (
	AttrPetType  Attribute = "pet_type"
	AttrBreed    Attribute = "breed"
	AttrColor    Attribute = "color"
	AttrSize     Attribute = "size"
	AttrLocation Attribute = "location"
	AttrDate     Attribute = "date"
)

// AttributeScore es el sub-score de un atributo: 0..Weight.
// Present indica que ambos reportes aportan el dato; los atributos ausentes
// no penalizan (su peso se redistribuye en la normalización).
type AttributeScore struct {
	Attribute Attribute
	Score     float64
	Weight    float64
	Present   bool
	Reason    string // vacío si el atributo no aportó puntaje
}

// Breakdown es el resultado crudo de comparar dos reportes.
// TypeMismatch veta el par completo: score global 0, sin razones.
type Breakdown struct {
	TypeMismatch bool
	Scores       []AttributeScore
}

// CompareAttributes compara los atributos de un lost report contra un found
// report. Puro y determinista: mismo input, mismo output.
func CompareAttributes(lost reports.LostReport, found reports.FoundReport) Breakdown {
	// Tipo de mascota: si no coincide, el par queda descalificado.
	if lost.PetType == "" || lost.PetType != found.PetType {
		return Breakdown{TypeMismatch: true}
	}

	scores := make([]AttributeScore, 0, 6)

	scores = append(scores, AttributeScore{
		Attribute: AttrPetType,
		Score:     weightPetType,
		Weight:    weightPetType,
		Present:   true,
		Reason:    fmt.Sprintf("Same pet type: %s", lost.PetType),
	})

	scores = append(scores, compareText(AttrBreed, weightBreed, lost.Breed, found.Breed, "Breed"))
	scores = append(scores, compareText(AttrColor, weightColor, lost.Color, found.Color, "Color"))
	scores = append(scores, compareSize(lost.Size, found.Size))
	scores = append(scores, compareLocation(lost.LastSeenLocation, found.LocationFound))
	scores = append(scores, compareDates(lost, found))

	return Breakdown{Scores: scores}
}

// compareText aplica el esquema exact/substring para breed y color:
// igualdad (case-insensitive) = peso completo; contención en cualquier
// dirección = medio peso; si no, 0.
func compareText(attr Attribute, weight float64, lostVal, foundVal, label string) AttributeScore {
	a := strings.ToLower(strings.TrimSpace(lostVal))
	b := strings.ToLower(strings.TrimSpace(foundVal))

	out := AttributeScore{Attribute: attr, Weight: weight}
	if a == "" || b == "" {
		return out // ausente: no penaliza
	}
	out.Present = true

	switch {
	case a == b:
		out.Score = weight
		out.Reason = fmt.Sprintf("%s matches: %s", label, strings.TrimSpace(foundVal))
	case strings.Contains(a, b) || strings.Contains(b, a):
		out.Score = weight / 2
		out.Reason = fmt.Sprintf("%s partially matches: %s / %s",
			label, strings.TrimSpace(lostVal), strings.TrimSpace(foundVal))
	}
	return out
}

var sizeRank = map[reports.Size]int{
	reports.SizeSmall:  1,
	reports.SizeMedium: 2,
	reports.SizeLarge:  3,
}

// compareSize: igual = peso completo, tamaño adyacente en la escala
// small < medium < large = medio peso.
func compareSize(lostSize, foundSize reports.Size) AttributeScore {
	out := AttributeScore{Attribute: AttrSize, Weight: weightSize}

	la, aok := sizeRank[lostSize]
	fb, bok := sizeRank[foundSize]
	if !aok || !bok {
		return out
	}
	out.Present = true

	diff := la - fb
	if diff < 0 {
		diff = -diff
	}
	switch diff {
	case 0:
		out.Score = weightSize
		out.Reason = fmt.Sprintf("Same size: %s", lostSize)
	case 1:
		out.Score = weightSize / 2
		out.Reason = fmt.Sprintf("Similar size: %s / %s", lostSize, foundSize)
	}
	return out
}

// compareLocation es una heurística de texto pura (sin geocoding):
// contención case-insensitive en cualquier dirección.
func compareLocation(lastSeen, locationFound string) AttributeScore {
	a := strings.ToLower(strings.TrimSpace(lastSeen))
	b := strings.ToLower(strings.TrimSpace(locationFound))

	out := AttributeScore{Attribute: AttrLocation, Weight: weightLocation}
	if a == "" || b == "" {
		return out
	}
	out.Present = true

	if strings.Contains(a, b) || strings.Contains(b, a) {
		out.Score = weightLocation
		out.Reason = fmt.Sprintf("Location overlap: %s / %s",
			strings.TrimSpace(lastSeen), strings.TrimSpace(locationFound))
	}
	return out
}

// compareDates mapea la diferencia absoluta de días a un score que decae
// linealmente: 0 días = peso completo, dateWindowDays o más = 0.
// Una mascota "encontrada" antes de perderse se puntúa por distancia
// absoluta, sin penalización extra.
func compareDates(lost reports.LostReport, found reports.FoundReport) AttributeScore {
	out := AttributeScore{Attribute: AttrDate, Weight: weightDate}
	if lost.LastSeenDate.IsZero() || found.DateFound.IsZero() {
		return out
	}
	out.Present = true

	days := int(found.DateFound.Sub(lost.LastSeenDate).Hours() / 24)
	absDays := days
	if absDays < 0 {
		absDays = -absDays
	}
	if absDays >= dateWindowDays {
		return out
	}

	out.Score = weightDate * (1 - float64(absDays)/float64(dateWindowDays))
	switch {
	case days == 0:
		out.Reason = "Found the same day it was last seen"
	case days > 0:
		out.Reason = fmt.Sprintf("Found %d day(s) after last seen", days)
	default:
		out.Reason = fmt.Sprintf("Found %d day(s) before the reported loss date", -days)
	}
	return out
}
