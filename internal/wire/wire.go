// Package wire provides dependency injection for the TreeWarden application.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"io"
	"log"
	"os"
	"sync"

	"go.uber.org/zap"

	cliadapter "github.com/example/treewarden/internal/adapters/cli"
	"github.com/example/treewarden/internal/adapters/osmapi"
	"github.com/example/treewarden/internal/adapters/overpass"
	"github.com/example/treewarden/internal/adapters/sqlite"
	"github.com/example/treewarden/internal/app"
	"github.com/example/treewarden/internal/config"
	"github.com/example/treewarden/internal/core/validation"
	"github.com/example/treewarden/internal/db"
	"github.com/example/treewarden/internal/logger"
	"github.com/example/treewarden/internal/ports/primary"
)

var (
	cfg     *config.Config
	cfgDir  string
	cfgOnce sync.Once

	store             *app.EntityStore
	patchService      primary.PatchService
	fetchService      primary.FetchService
	treeService       primary.TreeService
	validationService primary.ValidationService
	changesetService  primary.ChangesetService
	submitService     primary.SubmitService
	logService        primary.LogService
	once              sync.Once
)

// Config returns the loaded configuration.
func Config() *config.Config {
	cfgOnce.Do(loadConfig)
	return cfg
}

// SaveConfig writes the configuration back to the state directory.
func SaveConfig() error {
	cfgOnce.Do(loadConfig)
	return config.SaveConfig(cfgDir, cfg)
}

// Store returns the singleton entity store.
func Store() *app.EntityStore {
	once.Do(initServices)
	return store
}

// PatchService returns the singleton PatchService instance.
func PatchService() primary.PatchService {
	once.Do(initServices)
	return patchService
}

// FetchService returns the singleton FetchService instance.
func FetchService() primary.FetchService {
	once.Do(initServices)
	return fetchService
}

// TreeService returns the singleton TreeService instance.
func TreeService() primary.TreeService {
	once.Do(initServices)
	return treeService
}

// ValidationService returns the singleton ValidationService instance.
func ValidationService() primary.ValidationService {
	once.Do(initServices)
	return validationService
}

// ChangesetService returns the singleton ChangesetService instance.
func ChangesetService() primary.ChangesetService {
	once.Do(initServices)
	return changesetService
}

// SubmitService returns the singleton SubmitService instance.
func SubmitService() primary.SubmitService {
	once.Do(initServices)
	return submitService
}

// LogService returns the singleton LogService instance.
func LogService() primary.LogService {
	once.Do(initServices)
	return logService
}

func loadConfig() {
	logger.Initialize()

	dir, err := config.Dir()
	if err != nil {
		log.Fatalf("failed to locate state directory: %v", err)
	}
	loaded, err := config.LoadConfig(dir)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfgDir, cfg = dir, loaded
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	conf := Config()

	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Secondary adapters
	slotRepo := sqlite.NewPatchSlotRepository(database)
	editLogRepo := sqlite.NewEditLogRepository(database)
	geodata := overpass.NewClient(conf.OverpassURL, conf.Fetch.Timeout(), conf.Fetch.MaxResponseBytes, logger.For(logger.ComponentOverpass))
	osm := osmapi.NewClient(conf.OSMAPIURL, conf.AccessToken, conf.Fetch.Timeout(), logger.For(logger.ComponentOSMAPI))

	store = app.NewEntityStore()

	patches, err := app.NewPatchService(context.Background(), slotRepo, editLogRepo, logger.For(logger.ComponentPatches))
	if err != nil {
		log.Fatalf("failed to load patches: %v", err)
	}
	store.TrackPatches(patches.State())
	patchService = patches

	scheduler := app.NewFetchScheduler(geodata, store, conf.Fetch, logger.For(logger.ComponentScheduler))
	fetchService = scheduler

	engine := validation.NewEngine()
	treeService = app.NewTreeService(store, patches, &engine)
	validationService = app.NewValidationService(store, patches, &engine)

	changesets := app.NewChangesetService(store, patches, logger.For(logger.ComponentChangeset))
	changesetService = changesets

	orchestrator := app.NewUploadOrchestrator(osm, logger.For(logger.ComponentUpload))
	submitService = app.NewSubmitService(changesets, patches, scheduler, orchestrator, logger.For(logger.ComponentSubmit))

	logService = app.NewLogService(editLogRepo)

	zap.S().Debugw("services wired", "config_dir", cfgDir, "overpass", conf.OverpassURL, "osm_api", conf.OSMAPIURL)
}

// TreeAdapter returns a new TreeAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func TreeAdapter() *cliadapter.TreeAdapter {
	return TreeAdapterWithOutput(os.Stdout)
}

// TreeAdapterWithOutput returns a new TreeAdapter writing to the given output.
func TreeAdapterWithOutput(out io.Writer) *cliadapter.TreeAdapter {
	once.Do(initServices)
	return cliadapter.NewTreeAdapter(treeService, validationService, out)
}

// PatchAdapter returns a new PatchAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func PatchAdapter() *cliadapter.PatchAdapter {
	return PatchAdapterWithOutput(os.Stdout)
}

// PatchAdapterWithOutput returns a new PatchAdapter writing to the given output.
func PatchAdapterWithOutput(out io.Writer) *cliadapter.PatchAdapter {
	once.Do(initServices)
	return cliadapter.NewPatchAdapter(patchService, out)
}
