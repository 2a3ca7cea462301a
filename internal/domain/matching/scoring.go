package matching

import (
	"math"
	"sort"

	"pet-lost-found/internal/domain/reports"
)

// Tabla de pesos del scoring. Son constantes tunables; deben sumar 100
// cuando todos los atributos opcionales están presentes, de modo que dos
// reportes idénticos puntúen exactamente 100 (hay un test que lo valida).
// Los atributos ausentes (p.ej. sin color) no suman su peso al denominador:
// el peso restante se redistribuye proporcionalmente en la normalización.
const (
	weightPetType  = 30.0
	weightBreed    = 20.0
	weightColor    = 20.0
	weightSize     = 10.0
	weightLocation = 10.0
	weightDate     = 10.0

	// Ventana de proximidad de fechas: el score de fecha decae linealmente
	// hasta 0 a los 30 días de distancia.
	dateWindowDays = 30

	// MinMatchScore es el umbral mínimo para crear un Match.
	MinMatchScore = 40.0

	// MaxCandidatesPerReport acota el fan-out de matches creados por un
	// reporte disparador (top-N por score).
	MaxCandidatesPerReport = 10
)

// Result es la salida del scoring: score normalizado 0-100 y razones
// legibles ordenadas por contribución descendente.
type Result struct {
	Score   float64
	Reasons []string
}

// Score compara y normaliza. Veto de tipo: score 0 y sin razones.
func Score(lost reports.LostReport, found reports.FoundReport) Result {
	bd := CompareAttributes(lost, found)
	if bd.TypeMismatch {
		return Result{}
	}

	var got, possible float64
	contributing := make([]AttributeScore, 0, len(bd.Scores))
	for _, as := range bd.Scores {
		if !as.Present {
			continue
		}
		got += as.Score
		possible += as.Weight
		if as.Score > 0 {
			contributing = append(contributing, as)
		}
	}
	if possible == 0 {
		return Result{}
	}

	// Orden estable: contribución desc; los empates conservan el orden
	// fijo de atributos del comparator, así el resultado es determinista.
	sort.SliceStable(contributing, func(i, j int) bool {
		return contributing[i].Score > contributing[j].Score
	})

	reasons := make([]string, 0, len(contributing))
	for _, as := range contributing {
		reasons = append(reasons, as.Reason)
	}

	score := got / possible * 100
	// redondeo a 2 decimales para serialización estable
	score = math.Round(score*100) / 100

	return Result{Score: score, Reasons: reasons}
}
