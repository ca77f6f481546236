package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/inbox-crm/internal/crm"
	"github.com/sells-group/inbox-crm/internal/extract"
	"github.com/sells-group/inbox-crm/internal/fixture"
	"github.com/sells-group/inbox-crm/internal/store"
	anthropicpkg "github.com/sells-group/inbox-crm/pkg/anthropic"
	geminipkg "github.com/sells-group/inbox-crm/pkg/gemini"
)

// crmEnv holds the initialized store and CRM service needed by the
// commands. Callers should defer env.Close().
type crmEnv struct {
	Store  store.Store
	CRM    *crm.Service
	gemini geminipkg.Client // non-nil only when the gemini provider is active
}

// Close releases resources held by the environment.
func (e *crmEnv) Close() {
	if e.gemini != nil {
		_ = e.gemini.Close()
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initCRM sets up the store, seeds demo data, builds the extraction
// service for the configured AI provider, and wires the CRM controller.
func initCRM(ctx context.Context) (*crmEnv, error) {
	st, err := initStore()
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	if cfg.Fixtures.Seed {
		if err := seedFixtures(ctx, st); err != nil {
			_ = st.Close()
			return nil, err
		}
	}

	env := &crmEnv{Store: st}

	analyzer, err := initAnalyzer(ctx, env)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	env.CRM = crm.New(st, analyzer)
	return env, nil
}

// initStore builds the collection backend selected by store.driver.
func initStore() (store.Store, error) {
	switch cfg.Store.Driver {
	case "memory":
		return store.NewMemory(), nil
	case "sqlite":
		st, err := store.NewSQLite(cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, eris.New("unsupported store driver: " + cfg.Store.Driver)
	}
}

// seedFixtures loads the demo dataset, from file if configured and the
// embedded copy otherwise.
func seedFixtures(ctx context.Context, st store.Store) error {
	var (
		ds  *fixture.Dataset
		err error
	)
	if cfg.Fixtures.Path != "" {
		ds, err = fixture.LoadFile(cfg.Fixtures.Path)
	} else {
		ds, err = fixture.Default()
	}
	if err != nil {
		return eris.Wrap(err, "load fixtures")
	}
	if err := fixture.Seed(ctx, st, ds); err != nil {
		return eris.Wrap(err, "seed fixtures")
	}
	zap.L().Debug("demo data seeded",
		zap.Int("contacts", len(ds.Contacts)),
		zap.Int("deals", len(ds.Deals)),
		zap.Int("emails", len(ds.Emails)),
	)
	return nil
}

// initAnalyzer builds the extraction service for the configured AI
// provider. A missing API key yields an unconfigured service: analysis
// requests then fail with extract.ErrNotConfigured instead of at startup.
func initAnalyzer(ctx context.Context, env *crmEnv) (*extract.Service, error) {
	switch cfg.AI.Provider {
	case "anthropic":
		if cfg.AI.Anthropic.Key == "" {
			zap.L().Warn("INBOXCRM_AI_ANTHROPIC_KEY not set, AI analysis disabled")
			return extract.NewService(nil), nil
		}
		client := anthropicpkg.NewClient(cfg.AI.Anthropic.Key)
		return extract.NewService(extract.AnthropicCompleter{
			Client:    client,
			Model:     cfg.AI.Anthropic.Model,
			MaxTokens: cfg.AI.Anthropic.MaxTokens,
		}), nil

	case "gemini":
		if cfg.AI.Gemini.Key == "" {
			zap.L().Warn("INBOXCRM_AI_GEMINI_KEY not set, AI analysis disabled")
			return extract.NewService(nil), nil
		}
		client, err := geminipkg.NewClient(ctx, cfg.AI.Gemini.Key, cfg.AI.Gemini.Model)
		if err != nil {
			return nil, eris.Wrap(err, "init gemini client")
		}
		env.gemini = client
		return extract.NewService(extract.GeminiCompleter{Client: client}), nil

	default:
		return nil, eris.New("unsupported ai provider: " + cfg.AI.Provider)
	}
}
