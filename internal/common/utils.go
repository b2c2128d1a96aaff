package common

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/bjulian5/portsync/internal/cache"
	"github.com/bjulian5/portsync/internal/classify"
	"github.com/bjulian5/portsync/internal/config"
	"github.com/bjulian5/portsync/internal/engine"
	"github.com/bjulian5/portsync/internal/fetch"
	"github.com/bjulian5/portsync/internal/followup"
	"github.com/bjulian5/portsync/internal/gh"
	"github.com/bjulian5/portsync/internal/git"
	"github.com/bjulian5/portsync/internal/logging"
	"github.com/bjulian5/portsync/internal/release"
	"github.com/bjulian5/portsync/internal/ui"
)

// GenerateRunID generates a 16-character hex id for one invocation
func GenerateRunID() string {
	u := uuid.New()
	hexStr := strings.ReplaceAll(u.String(), "-", "")
	return hexStr[:16]
}

// Clients holds everything a command needs for one invocation
type Clients struct {
	Config     *config.Config
	Logger     zerolog.Logger
	RunID      string
	GH         *gh.Client
	Store      *cache.Store
	Classifier *classify.Classifier
}

// InitClients loads configuration and builds the shared clients.
// Commands that talk to GitHub pass remote=true and fail without a token.
// Returns an error that is suitable for use in PreRunE hooks
func InitClients(remote bool) (*Clients, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		ui.Error("Invalid configuration")
		return nil, err
	}
	if remote {
		if err := cfg.RequireToken(); err != nil {
			ui.Error("Set GITHUB_TOKEN to a token with access to the board and both repositories")
			return nil, err
		}
	}

	runID := GenerateRunID()
	logger, err := logging.New(cfg.LogLevel, runID)
	if err != nil {
		return nil, err
	}

	classifier, err := classify.New(cfg.Vocabulary.Classify)
	if err != nil {
		return nil, fmt.Errorf("classifier initialization failed: %w", err)
	}

	vocab := cfg.Vocabulary
	store := cache.NewStore(afero.NewOsFs(), cfg.CachePath, vocab.Cache.Version, vocab.Cache.InitialWatermark, logger)

	return &Clients{
		Config:     cfg,
		Logger:     logger,
		RunID:      runID,
		GH:         gh.NewClient(cfg.Token, cfg.PageSize),
		Store:      store,
		Classifier: classifier,
	}, nil
}

// SourceRepo returns the repository whose merges are tracked
func (c *Clients) SourceRepo() gh.Repo {
	return gh.Repo{Owner: c.Config.Vocabulary.Source.Owner, Name: c.Config.Vocabulary.Source.Name}
}

// Comparer picks the local clone when one is configured, otherwise GitHub
func (c *Clients) Comparer() (release.Comparer, error) {
	if c.Config.RepoPath == "" {
		return release.RemoteComparer{Client: c.GH, Repo: c.SourceRepo()}, nil
	}
	repo, err := git.Open(c.Config.RepoPath)
	if err != nil {
		return nil, err
	}
	c.Logger.Info().Str("path", repo.Path()).Msg("using local clone for release attribution")
	return repo, nil
}

// SyncOperations wires a sync run
func (c *Clients) SyncOperations() (*engine.SyncOperations, error) {
	comparer, err := c.Comparer()
	if err != nil {
		return nil, err
	}
	vocab := c.Config.Vocabulary

	fetcher := fetch.NewFetcher(c.GH, c.Store, fetch.Options{
		Repo:                c.SourceRepo(),
		MainBranch:          vocab.Source.MainBranch,
		FileRefetchAttempts: c.Config.FileRefetchAttempts,
	}, c.Logger)

	return &engine.SyncOperations{
		Fetcher:    fetcher,
		Classifier: c.Classifier,
		Attributor: release.NewAttributor(comparer, vocab.Release.Markers, c.Logger),
		Board:      c.GH,
		Vocabulary: vocab,
		DryRun:     c.Config.DryRun,
		Logger:     c.Logger,
	}, nil
}

// Filer wires a follow-up filing pass
func (c *Clients) Filer() *followup.Filer {
	return followup.NewFiler(c.GH, c.Config.Vocabulary, followup.Options{
		DryRun: c.Config.DryRun,
		Limit:  c.Config.Limit,
	}, c.Logger)
}
