/* api.go
 * This file contains the public methods for interacting with the importer. The CLI, the Discord bot and the HTTP
 * server should only call the functions in this file, not the sub packages for parsing, storage and caching
 * Authors: Zachary Bower
 */

package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"tournament-importer/api/cache"
	"tournament-importer/api/config"
	"tournament-importer/api/external"
	"tournament-importer/api/importer"
	"tournament-importer/api/metrics"
	"tournament-importer/api/profile"
	"tournament-importer/api/shared"
	"tournament-importer/api/store"
	"tournament-importer/api/workbook"
)

// ErrNoStore is returned by record queries when no database is configured
var ErrNoStore = errors.New("no record store configured")

// Fetcher downloads remote workbooks
type Fetcher interface {
	FetchWorkbook(ctx context.Context, url string) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

// FetchWorkbook calls f(ctx, url)
func (f FetcherFunc) FetchWorkbook(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// API provides methods for importing workbooks and reading the stored tournament records
type API struct {
	Registry *profile.Registry
	// Store may be nil, records are then parsed but not persisted
	Store store.Interface
	// Cache may be nil
	Cache   cache.Cache
	Fetcher Fetcher
	Metrics *metrics.Metrics
	// Notifier receives the diagnostics of every parse, may be nil
	Notifier shared.Notifier
	Logger   *slog.Logger
	// SheetFilter is applied to imports that do not name a filter of their own
	SheetFilter string

	closers []func(context.Context) error
}

// NewAPI creates a new API instance with the provided configuration
// Preconditions: Receives a configuration with a MongoDB URI
// Postconditions: Returns the API with its store, cache, registry and metrics set up, or an error
func NewAPI(ctx context.Context, cfg config.Config, logger *slog.Logger) (*API, error) {
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is required")
	}
	registry, err := LoadRegistry(cfg.ProfilesFile)
	if err != nil {
		return nil, err
	}

	s, err := store.NewStore(ctx, cfg.MongoDB, cfg.MongoURI)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		logger.Warn("failed to create indexes", "error", err)
	}

	a := &API{
		Registry:    registry,
		Store:       s,
		Fetcher:     external.NewClient(30 * time.Second),
		Metrics:     metrics.New(),
		Logger:      logger,
		SheetFilter: cfg.SheetFilter,
	}
	a.closers = append(a.closers, s.Client.Disconnect)

	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("failed to initialize cache: %w", err)
		}
		a.Cache = rc
		a.closers = append(a.closers, func(context.Context) error { return rc.Close() })
	} else {
		a.Cache = cache.NewMemory(cfg.CacheTTL)
	}
	return a, nil
}

// LoadRegistry returns the built-in profiles, extended or overridden by the profiles of a YAML file when path is set
func LoadRegistry(path string) (*profile.Registry, error) {
	registry, err := profile.Builtin()
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := registry.LoadFile(path); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return registry, nil
}

// Close releases the store and cache connections
func (a *API) Close(ctx context.Context) error {
	var errs []error
	for _, closeFn := range a.closers {
		errs = append(errs, closeFn(ctx))
	}
	return errors.Join(errs...)
}

func (a *API) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

// ImportWorkbook parses a workbook and stores the resulting record. An unchanged workbook imported with the same sheet
// filter is served from the cache
// Preconditions: Receives the workbook's source (file name or URL, for the import log), its bytes and a sheet filter
// ("" uses the API's default filter)
// Postconditions: Returns the record and its diagnostics. Returns an error when the workbook cannot be decoded or
// identified, or the record cannot be stored; the diagnostics gathered so far are returned with it
func (a *API) ImportWorkbook(ctx context.Context, source string, data []byte, sheetFilter string) (ImportResult, error) {
	if sheetFilter == "" {
		sheetFilter = a.SheetFilter
	}
	digest := cache.Digest(data, sheetFilter)
	log := store.ImportLog{Source: source, Digest: digest, SheetFilter: sheetFilter}
	logger := a.logger().With("source", source, "digest", digest[:12])

	if a.Cache != nil {
		entry, ok, err := a.Cache.Get(ctx, digest)
		if err != nil {
			logger.Warn("cache lookup failed", "error", err)
		}
		if ok {
			result := ImportResult{Record: entry.Record, Diagnostics: entry.Diagnostics, Cached: true, Digest: digest}
			a.Metrics.ObserveImport(entry.Organization, metrics.OutcomeCached, 0, entry.Record, entry.Diagnostics)
			log.Cached = true
			a.saveImport(ctx, log, result)
			logger.Info("import served from cache", "tournamentId", entry.Record.TournamentID)
			return result, nil
		}
	}

	start := time.Now()
	wb, err := workbook.DecodeBytes(data)
	if err != nil {
		a.Metrics.ObserveImport("", metrics.OutcomeFailed, time.Since(start), shared.TournamentRecord{}, nil)
		log.Error = err.Error()
		a.saveImport(ctx, log, ImportResult{})
		return ImportResult{Digest: digest}, fmt.Errorf("failed to decode workbook: %w", err)
	}

	record, diagnostics, err := importer.Parse(wb, importer.Options{
		Registry:    a.Registry,
		SheetFilter: sheetFilter,
		Notifier:    a.Notifier,
		Logger:      logger,
	})
	result := ImportResult{Record: record, Diagnostics: diagnostics, Digest: digest}
	if err != nil {
		a.Metrics.ObserveImport("", metrics.OutcomeFailed, time.Since(start), record, diagnostics)
		log.Error = err.Error()
		a.saveImport(ctx, log, result)
		return result, err
	}

	if a.Store != nil {
		if err := a.Store.SaveRecord(ctx, record); err != nil {
			return result, err
		}
	}
	if a.Cache != nil {
		entry := cache.Entry{Organization: record.Organization, Record: record, Diagnostics: diagnostics}
		if err := a.Cache.Set(ctx, digest, entry); err != nil {
			logger.Warn("cache write failed", "error", err)
		}
	}
	a.Metrics.ObserveImport(record.Organization, metrics.OutcomeParsed, time.Since(start), record, diagnostics)
	a.saveImport(ctx, log, result)
	return result, nil
}

// saveImport writes the import log. A failure is logged, it never fails the import
func (a *API) saveImport(ctx context.Context, log store.ImportLog, result ImportResult) {
	if a.Store == nil {
		return
	}
	log.TournamentID = result.Record.TournamentID
	log.Organization = result.Record.Organization
	log.Diagnostics = result.Diagnostics
	if log.Diagnostics == nil {
		log.Diagnostics = []shared.Diagnostic{}
	}
	if err := a.Store.SaveImport(ctx, log); err != nil {
		a.logger().Warn("failed to save import log", "error", err)
	}
}

// ImportFromURL downloads a workbook and imports it
func (a *API) ImportFromURL(ctx context.Context, url string, sheetFilter string) (ImportResult, error) {
	if a.Fetcher == nil {
		return ImportResult{}, fmt.Errorf("no workbook fetcher configured")
	}
	data, err := a.Fetcher.FetchWorkbook(ctx, url)
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to fetch workbook: %w", err)
	}
	return a.ImportWorkbook(ctx, url, data, sheetFilter)
}

// GetRecord returns a stored tournament record
func (a *API) GetRecord(ctx context.Context, tournamentID string) (shared.TournamentRecord, error) {
	if a.Store == nil {
		return shared.TournamentRecord{}, ErrNoStore
	}
	return a.Store.GetRecord(ctx, tournamentID)
}

// ListRecords returns a summary of every stored tournament record
func (a *API) ListRecords(ctx context.Context) ([]store.RecordSummary, error) {
	if a.Store == nil {
		return nil, ErrNoStore
	}
	return a.Store.ListRecords(ctx)
}

// ListImports returns the import history of a tournament
func (a *API) ListImports(ctx context.Context, tournamentID string) ([]store.ImportLog, error) {
	if a.Store == nil {
		return nil, ErrNoStore
	}
	return a.Store.ListImports(ctx, tournamentID)
}

// Profiles lists the registered organizations in registration order
func (a *API) Profiles() []ProfileInfo {
	organizations := a.Registry.Organizations()
	infos := make([]ProfileInfo, 0, len(organizations))
	for _, org := range organizations {
		t, ok := a.Registry.Lookup(org)
		if !ok {
			continue
		}
		info := ProfileInfo{Organization: t.Organization, SheetNamePatterns: t.SheetNamePatterns,
			MustContainSheetNames: t.MustContainSheetNames}
		if t.Profile != nil {
			info.Supported = true
			info.ProviderID = t.Profile.ProviderID
		}
		infos = append(infos, info)
	}
	return infos
}

// FindProfiles returns the organizations matching a partial or misspelt name
func (a *API) FindProfiles(query string) []string {
	return a.Registry.Find(query)
}
