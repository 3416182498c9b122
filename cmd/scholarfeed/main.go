package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"scholarfeed/internal/config"
	"scholarfeed/internal/ingest"
	"scholarfeed/internal/relevance"
	"scholarfeed/internal/report"
	"scholarfeed/internal/run"
	"scholarfeed/internal/store"
)

var version = "dev"

const fetchTimeout = 30 * time.Second

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "scholarfeed",
	Short:   "Keyword-scored academic feed aggregator",
	Long:    "scholarfeed fetches configured journal feeds, scores each entry against weighted research keywords, and stores the relevant ones.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(recentCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("scholarfeed", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/scholarfeed/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure feeds, keywords, and the score threshold.")
		return nil
	},
}

// --- run command ---

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch feeds, score entries, save the relevant ones, and report",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		runner, err := buildRunner(st)
		if err != nil {
			return err
		}

		fmt.Println("Fetching feeds...")
		result, err := runner.Run(context.Background())
		if err != nil {
			return err
		}

		fmt.Println()
		report.Render(os.Stdout, result.Found, result.Saved, result.Recent)
		return nil
	},
}

// --- recent command ---

var (
	recentLimit    int
	recentMinScore int
)

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently saved articles without fetching",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		var minScore *int
		if cmd.Flags().Changed("min-score") {
			minScore = &recentMinScore
		}

		articles, err := st.Recent(recentLimit, minScore)
		if err != nil {
			return err
		}
		report.RenderArticles(os.Stdout, articles)
		return nil
	},
}

func init() {
	recentCmd.Flags().IntVarP(&recentLimit, "limit", "n", 20, "Maximum number of articles to list")
	recentCmd.Flags().IntVar(&recentMinScore, "min-score", 0, "Only list articles at or above this score")
}

// --- export command ---

var (
	exportOut    string
	exportFormat string
	exportLimit  int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a digest of recent articles to a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		articles, err := st.Recent(exportLimit, nil)
		if err != nil {
			return err
		}

		var out string
		switch exportFormat {
		case "md", "markdown":
			out = report.Markdown(articles)
		case "html":
			out, err = report.HTML(articles)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown format %q (want md or html)", exportFormat)
		}

		if err := os.WriteFile(exportOut, []byte(out), 0o644); err != nil {
			return fmt.Errorf("writing digest: %w", err)
		}
		fmt.Printf("Wrote %d articles to %s\n", len(articles), exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "digest.md", "Output file")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "md", "Output format: md or html")
	exportCmd.Flags().IntVarP(&exportLimit, "limit", "n", 20, "Maximum number of articles to export")
}

// --- status command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database status",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		stats, err := st.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Printf("Database: %s\n\n", st.Path())
		fmt.Printf("Articles stored: %d\n", stats.TotalArticles)
		fmt.Printf("Distinct feeds:  %d\n", stats.DistinctFeeds)
		fmt.Printf("Highest score:   %d\n", stats.MaxScore)
		if stats.LastFetched != "" {
			fmt.Printf("Last fetched:    %s\n", stats.LastFetched)
		}
		return nil
	},
}

func openStore() (*store.Store, error) {
	return store.Open(cfg.DatabasePath())
}

func buildRunner(st *store.Store) (*run.Runner, error) {
	rules, err := relevance.CompileRules(
		toKeywords(cfg.Keywords.Primary),
		toKeywords(cfg.Keywords.Context),
	)
	if err != nil {
		return nil, fmt.Errorf("compiling keyword rules: %w", err)
	}

	fetcher := ingest.NewFeedFetcher(fetchTimeout)
	ingestor := ingest.New(fetcher, rules, cfg.MinScore, cfg.FetchDelay())
	return run.New(cfg, st, ingestor), nil
}

func toKeywords(kws []config.Keyword) []relevance.Keyword {
	out := make([]relevance.Keyword, len(kws))
	for i, kw := range kws {
		out[i] = relevance.Keyword{Term: kw.Term, Weight: kw.Weight}
	}
	return out
}
