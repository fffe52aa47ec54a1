package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Fenix-Okami/language-learning-anki-generator/internal/cache"
	"github.com/Fenix-Okami/language-learning-anki-generator/internal/common"
	"github.com/Fenix-Okami/language-learning-anki-generator/internal/deck"
	"github.com/Fenix-Okami/language-learning-anki-generator/internal/pipeline"
	"github.com/Fenix-Okami/language-learning-anki-generator/internal/store"
	"github.com/Fenix-Okami/language-learning-anki-generator/internal/subject"
	"github.com/Fenix-Okami/language-learning-anki-generator/internal/wanikani"
)

func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline: fetch, normalize, persist, render",
		RunE:  runPipeline,
	}
	cmd.Flags().StringP("config", "c", "", "Path to the config file")
	cmd.Flags().BoolP("fresh", "f", false, "Fetch from the API even when a fresh cached payload exists")
	cmd.Flags().Bool("no-cache", false, "Ignore cached payloads entirely")
	cmd.Flags().Int("max-cache-age", 0, "Max cache age in days before a payload counts as stale")
	cmd.Flags().Bool("plain", false, "Print the summary without colors")
	return cmd
}

func runPipeline(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := common.Load(configPath)
	if err != nil {
		return &ExitError{Code: int(pipeline.ExitBadParams), Err: err}
	}
	if err := common.InitLog(cfg.Log); err != nil {
		return &ExitError{Code: int(pipeline.ExitBadParams), Err: err}
	}
	log := common.GetLogger()

	raw := pipeline.RawParams{
		UseCache:        cfg.Run.UseCache,
		MaxCacheAgeDays: cfg.Run.MaxCacheAgeDays,
		ForceRefresh:    &cfg.Run.ForceRefresh,
	}
	if cmd.Flags().Changed("fresh") {
		v, _ := cmd.Flags().GetBool("fresh")
		raw.ForceRefresh = &v
	}
	if cmd.Flags().Changed("no-cache") {
		v, _ := cmd.Flags().GetBool("no-cache")
		useCache := !v
		raw.UseCache = &useCache
	}
	if cmd.Flags().Changed("max-cache-age") {
		v, _ := cmd.Flags().GetInt("max-cache-age")
		raw.MaxCacheAgeDays = &v
	}

	// A run that cannot reuse the cache will definitely call the API, so a
	// missing token is a configuration error, not a failed run.
	mustFetch := (raw.ForceRefresh != nil && *raw.ForceRefresh) ||
		(raw.UseCache != nil && !*raw.UseCache)
	if mustFetch && cfg.API.Token == "" {
		return &ExitError{
			Code: int(pipeline.ExitBadParams),
			Err:  common.NewError(common.KindConfig, "api token is required (set WANIKANI_TOKEN or api.token)"),
		}
	}

	st := store.New(cfg.Storage, log)
	defer st.Close()

	orch := pipeline.NewOrchestrator(pipeline.Deps{
		Fetcher:    wanikani.NewClient(cfg.API, log),
		Normalizer: subject.Normalizer{},
		Persister:  st,
		Renderer:   deck.NewRenderer(st, cfg.Decks, log),
		Cache:      cache.NewStore(cfg.Cache.Dir),
		Executor:   pipeline.NewExecutor(log),
		Policies:   pipeline.PoliciesFrom(cfg.Retry),
		Log:        log,
	})

	ctrl := &pipeline.Controller{
		Runner:   orch,
		Archiver: st,
		Log:      log,
		Out:      cmd.OutOrStdout(),
	}
	if plain, _ := cmd.Flags().GetBool("plain"); !plain {
		ctrl.Summarize = styledSummary
	}

	_, code := ctrl.Invoke(cmd.Context(), raw)
	if code != pipeline.ExitOK {
		return &ExitError{Code: int(code)}
	}
	return nil
}
