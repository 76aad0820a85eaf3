package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"gwi.com/induction-assistant/internal/auth"
	"gwi.com/induction-assistant/internal/config"
	"gwi.com/induction-assistant/internal/core"
	"gwi.com/induction-assistant/internal/logger"
	"gwi.com/induction-assistant/internal/store"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "induction-assistant",
		Short:         "HR induction Q&A assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile != "" {
				return os.Setenv("CONFIG_FILE", cfgFile)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "YAML config file path")

	root.AddCommand(newServeCmd(), newSeedCmd(), newAskCmd())
	return root
}

// app holds the wired retrieval core shared by the commands.
type app struct {
	cfg       *config.Config
	logger    zerolog.Logger
	knowledge *store.KnowledgeStore
	settings  *store.SettingsStore
	sessions  *store.SessionStore
	assistant *core.AssistantService
	auth      *auth.Authenticator

	closers []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn().Err(err).Msg("Error during shutdown")
		}
	}
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logger.New(cfg.LogLevel, cfg.LogFormat), nil
}

func openRepository(cfg *config.Config, log zerolog.Logger) (store.Repository, func() error, error) {
	switch strings.ToLower(cfg.KnowledgeBackend) {
	case config.BackendSQLite:
		repo, err := store.NewSQLiteRepository(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		return repo, repo.Close, nil
	default:
		repo, err := store.NewJSONRepository(cfg.KnowledgeBasePath, logger.Component(log, "json_repo"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open knowledge base directory: %w", err)
		}
		return repo, func() error { return nil }, nil
	}
}

func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: log}

	repo, closeRepo, err := openRepository(cfg, log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeRepo)

	a.knowledge = store.NewKnowledgeStore(repo, cfg.FixedQACategory, logger.Component(log, "knowledge"))
	if err := a.knowledge.Load(ctx); err != nil {
		// Serve with an empty snapshot; the next reload may succeed.
		log.Error().Err(err).Msg("Initial knowledge base load failed")
	}
	a.settings = store.NewSettingsStore()
	a.sessions = store.NewSessionStore()

	generator, err := core.NewGenerator(ctx, cfg, logger.Component(log, "generator"))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize generator: %w", err)
	}
	a.closers = append(a.closers, generator.Close)

	cache, err := core.NewAnswerCache(ctx, cfg, logger.Component(log, "cache"))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize answer cache: %w", err)
	}
	a.closers = append(a.closers, cache.Close)

	matcher := core.NewMatcher(a.knowledge, a.settings, core.MatcherOptions{
		Threshold:      cfg.SimilarityThreshold,
		TopK:           cfg.TopK,
		ContextResults: cfg.ContextResults,
	}, logger.Component(log, "matcher"))
	composer := core.NewComposer(generator, cache, cfg.LLMTimeout, logger.Component(log, "composer"))
	a.assistant = core.NewAssistantService(matcher, composer, a.sessions, logger.Component(log, "assistant"))

	a.auth = auth.NewAuthenticator(cfg.JWTSecret, cfg.AdminUsername, cfg.AdminPassword, cfg.AdminPasswordHash)

	snap := a.knowledge.Snapshot()
	log.Info().
		Int("categories", len(snap.Categories())).
		Int("records", snap.Size()).
		Str("backend", cfg.KnowledgeBackend).
		Str("llm_provider", cfg.LLMProvider).
		Msg("Assistant initialized")
	return a, nil
}
