// Package llm - Exklusiver Zugriff auf die Engine
package llm

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/semaphore"
)

// Guard besitzt die Engine und laesst hoechstens einen Generierungsaufruf
// gleichzeitig zu. Weitere Aufrufer warten in der Reihenfolge ihres Eintreffens.
type Guard struct {
	sem    *semaphore.Weighted
	engine Engine
}

// NewGuard uebernimmt e
func NewGuard(e Engine) *Guard {
	return &Guard{
		sem:    semaphore.NewWeighted(1),
		engine: e,
	}
}

// Do fuehrt fn mit exklusivem Zugriff auf die Engine aus. Nur das Warten auf
// den Zugriff beachtet ctx; fn selbst laeuft ohne Timeout bis zum Ende.
func (g *Guard) Do(ctx context.Context, fn func(Engine) error) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Info("aborting completion request due to client closing the connection")
		} else {
			slog.Error("Failed to acquire semaphore", "error", err)
		}
		return err
	}
	defer g.sem.Release(1)

	return fn(g.engine)
}
