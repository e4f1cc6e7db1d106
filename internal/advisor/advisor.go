package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MikeSquared-Agency/Admit/internal/catalog"
	"github.com/MikeSquared-Agency/Admit/internal/eligibility"
	"github.com/MikeSquared-Agency/Admit/internal/hermes"
	"github.com/MikeSquared-Agency/Admit/internal/metrics"
	"github.com/MikeSquared-Agency/Admit/internal/scoring"
	"github.com/MikeSquared-Agency/Admit/internal/store"
	"github.com/MikeSquared-Agency/Admit/internal/subject"
	"github.com/MikeSquared-Agency/Admit/internal/summary"
)

var (
	ErrCatalogNotLoaded   = errors.New("catalog not loaded")
	ErrUnknownInstitution = errors.New("unknown institution")
)

// Policy holds the tunable rules applied on top of the core calculations.
type Policy struct {
	Exclusions              subject.Exclusions
	AlmostEligibleGap       int
	Bands                   []summary.Band
	MatchOnInstitutionScale bool
}

func DefaultPolicy() Policy {
	return Policy{
		Exclusions:        subject.DefaultExclusions(),
		AlmostEligibleGap: eligibility.DefaultAlmostEligibleGap,
		Bands:             summary.DefaultBands(),
	}
}

// Snapshot is one published catalog tree.
type Snapshot struct {
	Institutions []catalog.Institution
	Report       catalog.Report
	LoadedAt     time.Time
}

// invalidator is implemented by sources that cache, so a reload reads through.
type invalidator interface {
	Invalidate(ctx context.Context) error
}

// Advisor serves scoring and eligibility over the current catalog. Readers
// never block on a reload: the tree is swapped as a whole.
type Advisor struct {
	source  store.CatalogSource
	scorer  *scoring.Scorer
	policy  Policy
	hermes  hermes.Client
	metrics metrics.Recorder
	logger  *slog.Logger

	reloadMu sync.Mutex
	current  atomic.Pointer[Snapshot]
}

// New creates an Advisor. h may be nil to disable event publishing.
func New(source store.CatalogSource, policy Policy, h hermes.Client, m metrics.Recorder, logger *slog.Logger) *Advisor {
	if m == nil {
		m = metrics.Nop{}
	}
	return &Advisor{
		source:  source,
		scorer:  scoring.NewDefaultScorer(policy.Exclusions),
		policy:  policy,
		hermes:  h,
		metrics: m,
		logger:  logger,
	}
}

func (a *Advisor) Policy() Policy { return a.policy }

// Snapshot returns the published tree, or nil before the first successful reload.
func (a *Advisor) Snapshot() *Snapshot { return a.current.Load() }

// Reload loads and validates the catalog and publishes it. On fatal issues
// the previous tree stays in place and the report is returned with an error
// wrapping catalog.ErrCatalogIntegrity. Concurrent reloads run one at a time.
func (a *Advisor) Reload(ctx context.Context) (catalog.Report, error) {
	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()

	if inv, ok := a.source.(invalidator); ok {
		if err := inv.Invalidate(ctx); err != nil {
			a.logger.Warn("catalog cache invalidation failed", "error", err)
		}
	}

	ds, err := a.source.Load(ctx)
	if err != nil {
		return catalog.Report{}, fmt.Errorf("load catalog: %w", err)
	}

	report := catalog.ValidateWithCeiling(ds, a.ceiling)
	fatal, warnings := report.Fatal(), report.Warnings()
	for _, w := range warnings {
		a.logger.Warn("catalog issue", "code", w.Code, "program_id", w.ProgramID, "institution_id", w.InstitutionID, "message", w.Message)
	}

	if len(fatal) > 0 {
		msgs := make([]string, 0, len(fatal))
		for _, f := range fatal {
			a.logger.Error("catalog issue", "code", f.Code, "program_id", f.ProgramID, "institution_id", f.InstitutionID, "message", f.Message)
			msgs = append(msgs, f.Message)
		}
		a.metrics.CatalogReloaded(false, len(fatal), len(warnings))
		a.publish(hermes.SubjectCatalogRejected, hermes.CatalogRejectedEvent{
			FatalIssues: msgs,
			Timestamp:   time.Now().UTC(),
		})
		return report, report.Err()
	}

	snap := &Snapshot{
		Institutions: catalog.Build(ds),
		Report:       report,
		LoadedAt:     time.Now().UTC(),
	}
	a.current.Store(snap)
	a.metrics.CatalogReloaded(true, 0, len(warnings))

	a.logger.Info("catalog published",
		"institutions", len(snap.Institutions),
		"programs", len(ds.Programs),
		"warnings", len(warnings),
	)
	a.publish(hermes.SubjectCatalogReloaded, hermes.CatalogReloadedEvent{
		Institutions: len(snap.Institutions),
		Programs:     len(ds.Programs),
		Warnings:     len(warnings),
		Timestamp:    snap.LoadedAt,
	})
	return report, nil
}

// Validate loads the catalog and reports on it without publishing.
func (a *Advisor) Validate(ctx context.Context) (catalog.Report, error) {
	ds, err := a.source.Load(ctx)
	if err != nil {
		return catalog.Report{}, fmt.Errorf("load catalog: %w", err)
	}
	return catalog.ValidateWithCeiling(ds, a.ceiling), nil
}

// ceiling is the highest score a student is matched with at inst under the
// current policy.
func (a *Advisor) ceiling(inst catalog.InstitutionRef) int {
	if a.policy.MatchOnInstitutionScale && a.scorer.UsesCustomScoring(inst.ID) {
		return a.scorer.MaxScore(inst.ID)
	}
	return scoring.StandardMaxScore
}

func (a *Advisor) Institutions() ([]catalog.Institution, error) {
	snap := a.current.Load()
	if snap == nil {
		return nil, ErrCatalogNotLoaded
	}
	return snap.Institutions, nil
}

func (a *Advisor) Institution(id string) (catalog.Institution, error) {
	insts, err := a.Institutions()
	if err != nil {
		return catalog.Institution{}, err
	}
	for _, inst := range insts {
		if inst.ID == id {
			return inst, nil
		}
	}
	return catalog.Institution{}, fmt.Errorf("%w: %s", ErrUnknownInstitution, id)
}

// selectInstitutions returns the requested institutions in catalog order, or
// all of them when ids is empty.
func (a *Advisor) selectInstitutions(ids []string) ([]catalog.Institution, error) {
	snap := a.current.Load()
	if snap == nil {
		return nil, ErrCatalogNotLoaded
	}
	if len(ids) == 0 {
		return snap.Institutions, nil
	}

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []catalog.Institution
	for _, inst := range snap.Institutions {
		if want[inst.ID] {
			out = append(out, inst)
			delete(want, inst.ID)
		}
	}
	for _, id := range ids {
		if want[id] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownInstitution, id)
		}
	}
	return out, nil
}

func (a *Advisor) publish(subj string, event interface{}) {
	if a.hermes == nil {
		return
	}
	if err := a.hermes.Publish(subj, event); err != nil {
		a.logger.Warn("publish failed", "subject", subj, "error", err)
	}
}
