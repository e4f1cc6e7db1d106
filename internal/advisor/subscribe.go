package advisor

import (
	"context"
	"errors"

	"github.com/MikeSquared-Agency/Admit/internal/hermes"
)

var ErrNoHermes = errors.New("hermes not configured")

// ListenForReloads reloads the catalog whenever a reload request arrives on
// hermes. A rejected catalog is logged and the current tree is kept.
func (a *Advisor) ListenForReloads(ctx context.Context) error {
	if a.hermes == nil {
		return ErrNoHermes
	}
	return a.hermes.Subscribe(hermes.SubjectCatalogReloadRequested, func(_ string, _ []byte) {
		if ctx.Err() != nil {
			return
		}
		if _, err := a.Reload(ctx); err != nil {
			a.logger.Error("requested catalog reload failed", "error", err)
		}
	})
}
