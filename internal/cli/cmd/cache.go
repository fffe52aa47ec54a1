package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Fenix-Okami/language-learning-anki-generator/internal/cache"
	"github.com/Fenix-Okami/language-learning-anki-generator/internal/common"
	"github.com/Fenix-Okami/language-learning-anki-generator/internal/pipeline"
)

func NewCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "List cached payloads and what the next run would do with them",
		RunE:  runCache,
	}
	cmd.Flags().StringP("config", "c", "", "Path to the config file")
	cmd.Flags().Int("max-cache-age", 0, "Max cache age in days before a payload counts as stale")
	return cmd
}

func runCache(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := common.Load(configPath)
	if err != nil {
		return &ExitError{Code: int(pipeline.ExitBadParams), Err: err}
	}

	raw := pipeline.RawParams{
		UseCache:        cfg.Run.UseCache,
		MaxCacheAgeDays: cfg.Run.MaxCacheAgeDays,
	}
	if cmd.Flags().Changed("max-cache-age") {
		v, _ := cmd.Flags().GetInt("max-cache-age")
		raw.MaxCacheAgeDays = &v
	}
	params, err := raw.Resolve()
	if err != nil {
		return &ExitError{Code: int(pipeline.ExitBadParams), Err: err}
	}

	records, err := cache.NewStore(cfg.Cache.Dir).List()
	if err != nil {
		return &ExitError{Code: int(pipeline.ExitRunFailed), Err: err}
	}

	out := cmd.OutOrStdout()
	now := time.Now()
	fmt.Fprintf(out, "cache directory: %s\n", summaryPathStyle.Render(cfg.Cache.Dir))
	if len(records) == 0 {
		fmt.Fprintln(out, summaryMutedStyle.Render("  no cached payloads"))
	}
	for _, rec := range records {
		age := "unknown age"
		if !rec.CreatedAt.IsZero() {
			age = humanAge(now.Sub(rec.CreatedAt)) + " old"
		}
		fmt.Fprintf(out, "  %s  %s\n", filepath.Base(rec.Path), summaryMutedStyle.Render(age))
	}

	decision := pipeline.DecideCache(params, records, now)
	if decision.Reuse {
		fmt.Fprintf(out, "%s a run would reuse %s (%s)\n",
			summaryOKStyle.Render("reuse:"), filepath.Base(decision.Record.Path), decision.Reason)
	} else {
		fmt.Fprintf(out, "%s a run would fetch from the API (%s)\n",
			summaryTitleStyle.Render("fetch:"), decision.Reason)
	}
	return nil
}

// humanAge renders a duration the way people talk about cache files:
// days once it is old enough, hours or minutes below that.
func humanAge(d time.Duration) string {
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours())/24)
	case d >= time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
}
