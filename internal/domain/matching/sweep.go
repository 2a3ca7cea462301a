package matching

import (
	"context"
	"time"

	"pet-lost-found/internal/platform/logger"
)

// Sweeper corre Sweep() a intervalos fijos para atrapar matches tardíos
// (p.ej. un reporte que volvió a active). Es opcional: el camino principal
// es el recompute inline al crear reportes.
type Sweeper struct {
	svc      *Service
	interval time.Duration
	log      logger.Logger
}

func NewSweeper(svc *Service, interval time.Duration, log logger.Logger) *Sweeper {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Sweeper{svc: svc, interval: interval, log: log}
}

// Run bloquea hasta que el ctx se cancele. Pensado para un goroutine
// lanzado desde main.
func (s *Sweeper) Run(ctx context.Context) {
	s.log.Info("match sweeper started", map[string]any{"interval": s.interval.String()})

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("match sweeper stopped", nil)
			return
		case <-ticker.C:
			created, err := s.svc.Sweep(ctx)
			if err != nil {
				s.log.Error("sweep failed", map[string]any{"error": err.Error()})
				continue
			}
			if created > 0 {
				s.log.Info("sweep created matches", map[string]any{"created": created})
			}
		}
	}
}
