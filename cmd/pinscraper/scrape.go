package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"pinscraper/pkg/auth"
	"pinscraper/pkg/config"
	"pinscraper/pkg/logger"
	"pinscraper/pkg/scraper"
	"pinscraper/pkg/ui"
)

var (
	// Scrape command flags
	limit        int
	outputDir    string
	outputFormat string
	cookieFile   string
	accountName  string
	concurrent   int
	rateLimit    int
	maxRetries   int
	timeout      int
	resumeScrape bool
	forceRestart bool
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape <keyword>...",
	Short: "Search Pinterest for keywords and export pin metadata",
	Long: `Search Pinterest for one or more keywords, extract the metadata of each
matching pin, and export the results to a spreadsheet.

This command requires a valid Pinterest session to be configured either through:
  - A browser cookie export file (--cookies cookies.json)
  - Stored credentials (use 'pinscraper auth login' to store)
  - Environment variables (PINSCRAPER_SESSION_COOKIE and PINSCRAPER_CSRF_TOKEN)
  - Configuration file

Each keyword produces timestamped export files in the output directory, so
previous runs are never overwritten.`,
	Example: `  # Scrape 100 pins for a keyword using default settings
  pinscraper scrape coffee

  # Scrape 10 pins and export to a specific directory
  pinscraper scrape coffee --limit 10 --output ./exports

  # Export JSON and Excel together using a cookie file
  pinscraper scrape "latte art" --cookies cookies.json --format both

  # Use a specific stored account and a lower rate limit
  pinscraper scrape coffee --account myaccount --rate-limit 30

  # Resume an interrupted scrape
  pinscraper scrape coffee --resume

  # Force restart, ignoring an existing checkpoint
  pinscraper scrape coffee --force-restart`,
	Args: cobra.MinimumNArgs(1),
	Run:  runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().IntVarP(&limit, "limit", "n", 100, "maximum number of pins per keyword")
	scrapeCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for exports (default: ./output)")
	scrapeCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "export format: excel, json, csv, or both")
	scrapeCmd.Flags().StringVarP(&cookieFile, "cookies", "c", "", "path to a browser cookie export file")
	scrapeCmd.Flags().StringVarP(&accountName, "account", "a", "", "use specific stored account")
	scrapeCmd.Flags().IntVar(&concurrent, "concurrent", 5, "number of concurrent pin extractions")
	scrapeCmd.Flags().IntVar(&rateLimit, "rate-limit", 60, "requests per minute")
	scrapeCmd.Flags().IntVar(&maxRetries, "max-retries", 3, "maximum number of retry attempts")
	scrapeCmd.Flags().IntVar(&timeout, "timeout", 15, "request timeout in seconds")
	scrapeCmd.Flags().BoolVar(&resumeScrape, "resume", false, "resume from last checkpoint")
	scrapeCmd.Flags().BoolVar(&forceRestart, "force-restart", false, "force restart, ignoring existing checkpoint")
}

func runScrape(cmd *cobra.Command, args []string) {
	keywords := make([]string, 0, len(args))
	for _, arg := range args {
		if kw := strings.TrimSpace(arg); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) == 0 {
		ui.PrintError("No search keyword given", "")
		os.Exit(1)
	}

	// Build flags map from command line
	flags := make(map[string]interface{})
	if limit != 100 {
		flags["limit"] = limit
	}
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if outputFormat != "" {
		flags["format"] = outputFormat
	}
	if cookieFile != "" {
		flags["cookies"] = cookieFile
	}
	if concurrent != 5 {
		flags["concurrent"] = concurrent
	}
	if rateLimit != 60 {
		flags["rate-limit"] = rateLimit
	}
	if maxRetries != 3 {
		flags["max-retries"] = maxRetries
	}
	if timeout != 15 {
		flags["timeout"] = timeout
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	logger.Initialize(&cfg.Logging)
	logger.WithField("version", version).Info("Pinscraper starting")

	// A named account overrides the session from config or environment
	if accountName != "" {
		credManager, err := auth.NewManager()
		if err != nil {
			ui.PrintError("Failed to initialize credential manager", err.Error())
			os.Exit(1)
		}
		account, err := credManager.Retrieve(accountName)
		if err != nil {
			ui.PrintError("Account not found", accountName)
			ui.PrintInfo("Available accounts", "Use 'pinscraper auth list' to see stored accounts")
			os.Exit(1)
		}
		cfg.Pinterest.SessionCookie = account.SessionCookie
		cfg.Pinterest.CSRFToken = account.CSRFToken
		if account.UserAgent != "" {
			cfg.Pinterest.UserAgent = account.UserAgent
		}
		cfg.Pinterest.CookieFile = ""
		logger.WithField("account", account.Username).Info("Using stored credentials")
		if !quiet {
			ui.PrintInfo("Using account", account.Username)
		}
	}

	s, err := scraper.New(cfg)
	if err != nil {
		ui.PrintError("Failed to initialize scraper", err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := scraper.Options{
		Resume:       resumeScrape,
		ForceRestart: forceRestart,
		Quiet:        quiet,
	}

	results, err := s.Run(ctx, keywords, opts)
	if err != nil {
		logger.WithError(err).Error("Scrape failed")
		ui.PrintError("Scrape failed", err.Error())
		os.Exit(1)
	}

	total := 0
	for _, result := range results {
		total += result.Extracted
	}
	logger.WithField("total_pins", total).Info("Scrape completed successfully")
}

// Make scrape the default command when no subcommand is specified
func init() {
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 && !isKnownCommand(args[0]) {
			// Treat bare arguments as search keywords
			runScrape(scrapeCmd, args)
			return nil
		}
		return cmd.Help()
	}
	rootCmd.Args = cobra.ArbitraryArgs
	rootCmd.Flags().AddFlagSet(scrapeCmd.Flags())
}

func isKnownCommand(arg string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == arg || cmd.HasAlias(arg) {
			return true
		}
	}
	return false
}
