// Package app wires the per-group sync pipeline and drives many groups with
// safe parallelism.
package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/freqsync/freqsync/internal/config"
	"github.com/freqsync/freqsync/internal/delta"
	"github.com/freqsync/freqsync/internal/domain"
	"github.com/freqsync/freqsync/internal/executor"
	"github.com/freqsync/freqsync/internal/snapshot"
	"github.com/freqsync/freqsync/internal/state"
	"github.com/freqsync/freqsync/internal/target"
	"github.com/freqsync/freqsync/internal/targetmap"
	"github.com/freqsync/freqsync/internal/utils"
)

// Phase tracks where a group's sync currently is.
type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseLoading       Phase = "loading"
	PhaseDeltaComputed Phase = "delta_computed"
	PhaseSkipped       Phase = "skipped"
	PhaseExecuting     Phase = "executing"
	PhasePersisted     Phase = "persisted"
	PhaseFailed        Phase = "failed"
)

// Options contains options for creating an Orchestrator
type Options struct {
	Config     *config.Config
	Verbose    bool
	DryRun     bool
	Date       string
	DatabaseID string // overrides the target map for every group

	// Target overrides adapter construction, for tests.
	Target domain.Target
}

// Orchestrator sequences resolve → load → fetch → delta → execute → persist
// for each group.
type Orchestrator struct {
	cfg     *config.Config
	opts    Options
	logger  *utils.Logger
	store   *state.Store
	targets *targetmap.Map
	adapter domain.Target
}

// GroupResult is the outcome of syncing one group.
type GroupResult struct {
	Group      string
	DatabaseID string
	Phase      Phase
	Stats      domain.Stats
	Err        error
	Duration   time.Duration
}

// NewOrchestrator creates a new orchestrator with the given configuration
func NewOrchestrator(opts Options) (*Orchestrator, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logLevel := cfg.Logging.Level
	if opts.Verbose {
		logLevel = "debug"
	}
	logger := utils.NewLogger(utils.LoggerOptions{
		Level:   logLevel,
		Format:  cfg.Logging.Format,
		Verbose: opts.Verbose,
	})

	targets, err := targetmap.Load(utils.ExpandPath(cfg.Snapshots.TargetMap))
	if err != nil {
		// A database id override works without any map file.
		if opts.DatabaseID == "" {
			return nil, err
		}
		targets, _ = targetmap.LoadFromBytes([]byte("{}"), ".json")
	}

	adapter := opts.Target
	if adapter == nil {
		kind, err := target.ParseKind(cfg.Target.Kind)
		if err != nil {
			return nil, err
		}
		adapter, err = target.New(kind, target.Options{
			Token:      cfg.Target.Token,
			BaseURL:    cfg.Target.BaseURL,
			Timeout:    cfg.Target.Timeout,
			MaxRetries: cfg.Target.MaxRetries,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
	}

	return &Orchestrator{
		cfg:     cfg,
		opts:    opts,
		logger:  logger,
		store:   state.NewStore(logger),
		targets: targets,
		adapter: adapter,
	}, nil
}

// Close releases the remote adapter.
func (o *Orchestrator) Close() error {
	if o.adapter != nil {
		return o.adapter.Close()
	}
	return nil
}

// ResolveDatabaseID resolves the database id for a group without syncing it.
func (o *Orchestrator) ResolveDatabaseID(group string) (string, error) {
	return o.targets.Resolve(group, o.opts.DatabaseID)
}

// RunGroup syncs a single group end to end.
func (o *Orchestrator) RunGroup(ctx context.Context, group string) GroupResult {
	start := time.Now()
	log := o.logger.WithGroup(group)
	result := GroupResult{Group: group, Phase: PhaseIdle}

	fail := func(err error) GroupResult {
		result.Phase = PhaseFailed
		result.Err = err
		result.Stats.Errors++
		result.Duration = time.Since(start)
		log.Error().Err(err).Msg("Group sync failed")
		return result
	}

	result.Phase = PhaseLoading

	databaseID, err := o.targets.Resolve(group, o.opts.DatabaseID)
	if err != nil {
		return fail(domain.NewConfigError(group, err))
	}
	result.DatabaseID = databaseID

	dateDir, err := snapshot.ResolveDir(utils.ExpandPath(o.cfg.Snapshots.Root), group, o.opts.Date)
	if err != nil {
		return fail(err)
	}
	log.Info().Str("snapshot_dir", dateDir).Msg("Using snapshot")

	doc, err := snapshot.Load(dateDir)
	if err != nil {
		return fail(err)
	}
	log.Info().Int("records", len(doc.Records)).Str("checksum", doc.Checksum).Msg("Loaded master document")

	previous, err := o.store.Load(dateDir)
	if err != nil && !errors.Is(err, state.ErrStateNotFound) &&
		!errors.Is(err, state.ErrVersionMismatch) && !errors.Is(err, state.ErrStateCorrupted) {
		return fail(err)
	}
	if previous != nil {
		log.Debug().Time("last_uploaded_at", previous.LastUploadedAt).Msg("Found previous upload state")
	}

	// Checksum fast path needs no remote scan at all.
	if previous != nil && previous.MasterChecksum == doc.Checksum {
		result.Phase = PhaseSkipped
		result.Stats.Skipped = len(doc.Records)
		result.Duration = time.Since(start)
		log.Info().Msg("Checksum match, no changes detected")
		return result
	}

	remote, err := o.adapter.FetchExisting(ctx, databaseID, group)
	if err != nil {
		return fail(err)
	}
	log.Info().Int("existing", len(remote)).Msg("Fetched existing records")

	operations := delta.Compute(doc, previous, remote)
	result.Phase = PhaseDeltaComputed

	if len(operations) == 0 {
		result.Phase = PhaseSkipped
		result.Stats.Skipped = len(doc.Records)
		result.Duration = time.Since(start)
		log.Info().Msg("No changes needed")
		return result
	}

	log.Info().
		Int("operations", len(operations)).
		Bool("dry_run", o.opts.DryRun).
		Msg("Delta computed")

	result.Phase = PhaseExecuting

	if !o.opts.DryRun {
		if err := o.adapter.EnsureSchema(ctx, databaseID, categoricalValues(operations)); err != nil {
			// Dependent operations will fail on their own; the run goes on.
			log.Warn().Err(err).Msg("Schema ensure incomplete")
		}
	}

	exec := executor.New(executor.Options{
		Concurrency:  o.cfg.Concurrency.Operations,
		ChunkSize:    o.cfg.Concurrency.ChunkSize,
		ChunkDelay:   o.cfg.Concurrency.ChunkDelay,
		DryRun:       o.opts.DryRun,
		ShowProgress: !o.opts.Verbose && !o.opts.DryRun,
	}, log)

	stats := exec.Execute(ctx, operations, func(ctx context.Context, op domain.Operation) error {
		if op.Action == domain.ActionCreate {
			return o.adapter.Create(ctx, databaseID, op.Properties)
		}
		return o.adapter.Update(ctx, op.RemoteID, op.Properties)
	})
	result.Stats = stats

	if stats.Errors > 0 {
		log.Warn().Int("errors", stats.Errors).Msg("Some operations failed")
	}

	if o.opts.DryRun {
		result.Duration = time.Since(start)
		log.Info().Str("stats", stats.String()).Msg("Dry-run complete")
		return result
	}

	if err := o.store.Save(dateDir, state.Build(doc, stats, o.adapter.Name(), databaseID)); err != nil {
		return fail(fmt.Errorf("failed to persist upload state: %w", err))
	}

	result.Phase = PhasePersisted
	result.Duration = time.Since(start)
	log.Info().
		Str("stats", stats.String()).
		Dur("duration", result.Duration).
		Msg("Upload complete")
	return result
}

// RunGroups syncs many groups. Groups resolving to the same database run
// strictly sequentially relative to each other; distinct databases run under
// a bounded worker pool. A group's setup failure never aborts its siblings.
func (o *Orchestrator) RunGroups(ctx context.Context, groups []string) []GroupResult {
	start := time.Now()
	o.logger.Info().
		Int("groups", len(groups)).
		Bool("dry_run", o.opts.DryRun).
		Msg("Starting sync")

	// Bucket groups by database id, keeping input order inside each bucket.
	type bucket struct {
		databaseID string
		groups     []string
	}
	var buckets []bucket
	bucketIdx := make(map[string]int)
	var unresolved []GroupResult

	for _, group := range groups {
		databaseID, err := o.targets.Resolve(group, o.opts.DatabaseID)
		if err != nil {
			o.logger.Warn().Str("group", group).Err(err).Msg("Could not resolve database id")
			unresolved = append(unresolved, GroupResult{
				Group: group,
				Phase: PhaseFailed,
				Err:   domain.NewConfigError(group, err),
				Stats: domain.Stats{Errors: 1},
			})
			continue
		}
		idx, ok := bucketIdx[databaseID]
		if !ok {
			idx = len(buckets)
			bucketIdx[databaseID] = idx
			buckets = append(buckets, bucket{databaseID: databaseID})
		}
		buckets[idx].groups = append(buckets[idx].groups, group)
		if len(buckets[idx].groups) == 2 {
			o.logger.Warn().
				Str("database_id", databaseID).
				Msg("Multiple groups share one database, syncing them sequentially")
		}
	}

	resultsPerBucket := make([][]GroupResult, len(buckets))
	indexed := make([]int, len(buckets))
	for i := range buckets {
		indexed[i] = i
	}

	utils.ParallelForEach(ctx, indexed, o.cfg.Concurrency.Groups, func(ctx context.Context, idx int) error {
		for _, group := range buckets[idx].groups {
			resultsPerBucket[idx] = append(resultsPerBucket[idx], o.RunGroup(ctx, group))
		}
		return nil
	})

	results := unresolved
	for _, bucketResults := range resultsPerBucket {
		results = append(results, bucketResults...)
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Group < results[j].Group })

	var totals domain.Stats
	failed := 0
	for _, r := range results {
		totals.Add(r.Stats)
		if r.Phase == PhaseFailed {
			failed++
		}
		o.logger.Info().
			Str("group", r.Group).
			Str("phase", string(r.Phase)).
			Str("stats", r.Stats.String()).
			Msg("Group summary")
	}

	o.logger.Info().
		Str("totals", totals.String()).
		Int("failed_groups", failed).
		Dur("total_duration", time.Since(start)).
		Msg("Sync completed")

	return results
}

// FailedGroups counts results that ended in the Failed phase. Operation-level
// errors inside a completed group do not count; only a group that could not
// run at all fails the process.
func FailedGroups(results []GroupResult) int {
	failed := 0
	for _, r := range results {
		if r.Phase == PhaseFailed {
			failed++
		}
	}
	return failed
}

// categoricalValues collects the select options referenced by the pending
// operations, keyed by field name, so the schema can be extended in one bulk
// call per field.
func categoricalValues(operations []domain.Operation) map[string][]string {
	seen := make(map[string]map[string]bool)
	add := func(field, value string) {
		if value == "" {
			return
		}
		if seen[field] == nil {
			seen[field] = make(map[string]bool)
		}
		seen[field][value] = true
	}

	for _, op := range operations {
		for _, prop := range op.Properties.Properties() {
			switch v := prop.Value.(type) {
			case domain.SelectValue:
				add(prop.Name, v.Option)
			case domain.MultiSelectValue:
				for _, opt := range v.Options {
					add(prop.Name, opt)
				}
			}
		}
	}

	out := make(map[string][]string, len(seen))
	for field, values := range seen {
		list := make([]string, 0, len(values))
		for value := range values {
			list = append(list, value)
		}
		sort.Strings(list)
		out[field] = list
	}
	return out
}
