package scraper

import (
	"context"
	"fmt"

	"pinscraper/internal/extractor"
	"pinscraper/pkg/auth"
	"pinscraper/pkg/checkpoint"
	"pinscraper/pkg/config"
	"pinscraper/pkg/errors"
	"pinscraper/pkg/export"
	"pinscraper/pkg/logger"
	"pinscraper/pkg/models"
	"pinscraper/pkg/pinterest"
	"pinscraper/pkg/ratelimit"
	"pinscraper/pkg/retry"
	"pinscraper/pkg/storage"
	"pinscraper/pkg/ui"
)

// Options controls a scrape run
type Options struct {
	Resume       bool
	ForceRestart bool
	Quiet        bool
}

// Result summarizes one keyword scrape
type Result struct {
	Keyword   string
	Pins      []*models.Pin
	Paths     []string
	Collected int
	Extracted int
	Failed    int
}

// Scraper orchestrates the search, extraction and export pipeline
type Scraper struct {
	client      PinterestClient
	extractor   extractor.PinExtractor
	rateLimiter ratelimit.Limiter
	config      *config.Config
	logger      logger.Logger
}

// New creates a Scraper from configuration, resolving session credentials
// from the cookie file, the config itself, or the credential store, in that
// order.
func New(cfg *config.Config) (*Scraper, error) {
	log := logger.GetLogger()

	client := pinterest.NewClient(cfg.Scrape.RequestTimeout.Std(), log)
	if cfg.Pinterest.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.Pinterest.UserAgent)
	}
	if cfg.Pinterest.BaseURL != "" {
		client.SetBaseURL(cfg.Pinterest.BaseURL)
	}
	client.SetPageSize(cfg.Scrape.PageSize)

	if err := applyCredentials(client, cfg, log); err != nil {
		return nil, err
	}

	var rateLimiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		rateLimiter = ratelimit.NewPerMinute(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.BurstSize)
	}

	parser := pinterest.NewParser(client, log)

	return &Scraper{
		client:      client,
		extractor:   newRetryingExtractor(parser, cfg, log),
		rateLimiter: rateLimiter,
		config:      cfg,
		logger:      log,
	}, nil
}

// NewWithComponents creates a Scraper with injected dependencies
func NewWithComponents(
	cfg *config.Config,
	client PinterestClient,
	ex extractor.PinExtractor,
	rateLimiter ratelimit.Limiter,
) *Scraper {
	return &Scraper{
		client:      client,
		extractor:   ex,
		rateLimiter: rateLimiter,
		config:      cfg,
		logger:      logger.GetLogger(),
	}
}

// applyCredentials wires the session into the client
func applyCredentials(client *pinterest.Client, cfg *config.Config, log logger.Logger) error {
	if cfg.Pinterest.CookieFile != "" {
		jar, err := auth.LoadCookieFile(cfg.Pinterest.CookieFile)
		if err != nil {
			return fmt.Errorf("failed to load cookie file: %w", err)
		}
		client.SetCookieJar(jar)
		log.InfoWithFields("Session loaded from cookie file", map[string]interface{}{
			"path":    cfg.Pinterest.CookieFile,
			"cookies": len(jar.Cookies),
		})
		return nil
	}

	if cfg.Pinterest.SessionCookie != "" {
		client.SetAccount(&auth.Account{
			SessionCookie: cfg.Pinterest.SessionCookie,
			CSRFToken:     cfg.Pinterest.CSRFToken,
			UserAgent:     cfg.Pinterest.UserAgent,
		})
		return nil
	}

	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("no session configured and credential store unavailable: %w", err)
	}
	account, err := manager.RetrieveDefault()
	if err != nil {
		return errors.New(errors.ErrorTypeAuth,
			"no session cookie found: provide --cookies, set PINSCRAPER_SESSION_COOKIE, or run 'pinscraper auth login'")
	}
	client.SetAccount(account)
	log.InfoWithFields("Session loaded from credential store", map[string]interface{}{
		"username": account.Username,
	})
	return nil
}

// newRetrier builds an HTTP retrier honoring the configured backoff
func newRetrier(cfg *config.Config, log logger.Logger) *retry.HTTPRetrier {
	return retry.NewHTTPRetrier(cfg.Retry.MaxAttempts, log).
		WithDefaultBackoff(&retry.ExponentialBackoff{
			BaseDelay:    cfg.Retry.InitialBackoff.Std(),
			MaxDelay:     cfg.Retry.MaxBackoff.Std(),
			Multiplier:   cfg.Retry.BackoffMultiplier,
			JitterFactor: 0.1,
		})
}

// VerifySession checks that the configured session cookie is still valid
func (s *Scraper) VerifySession(ctx context.Context) (*pinterest.UserData, error) {
	var user *pinterest.UserData
	retrier := newRetrier(s.config, s.logger)
	err := retrier.DoWithErrorType(func() error {
		var verifyErr error
		user, verifyErr = s.client.VerifySession(ctx)
		return verifyErr
	})
	return user, err
}

// Run scrapes each keyword in order and exports the results
func (s *Scraper) Run(ctx context.Context, keywords []string, opts Options) ([]*Result, error) {
	logger.LogComponentStart("scraper", map[string]interface{}{
		"keywords": len(keywords),
	})
	defer logger.LogComponentStop("scraper", "run finished")

	user, err := s.VerifySession(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Session verification failed")
		return nil, err
	}
	s.logger.InfoWithFields("Session verified", map[string]interface{}{
		"username": user.Username,
	})
	if !opts.Quiet {
		ui.PrintInfo("Authenticated as", user.Username)
	}

	results := make([]*Result, 0, len(keywords))
	for _, keyword := range keywords {
		result, err := s.ScrapeKeyword(ctx, keyword, opts)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// ScrapeKeyword runs the full pipeline for one keyword: search, extract, export
func (s *Scraper) ScrapeKeyword(ctx context.Context, keyword string, opts Options) (*Result, error) {
	keyword = pinterest.SanitizeKeyword(keyword)
	if !pinterest.IsValidKeyword(keyword) {
		return nil, errors.New(errors.ErrorTypeUnknown, "search keyword must not be empty")
	}

	s.logger.InfoWithFields("Starting keyword scrape", map[string]interface{}{
		"keyword": keyword,
		"limit":   s.config.Scrape.MaxPins,
		"action":  "scrape_start",
	})

	checkpointMgr, err := checkpoint.NewManager(keyword)
	if err != nil {
		s.logger.WithError(err).WithField("keyword", keyword).Error("Failed to create checkpoint manager")
		return nil, fmt.Errorf("failed to create checkpoint manager: %w", err)
	}

	cp, err := s.resolveCheckpoint(checkpointMgr, keyword, opts)
	if err != nil {
		return nil, err
	}

	progress := ui.NewProgress(s.config.Scrape.MaxPins, opts.Quiet)
	progress.StartSearch(keyword)
	defer progress.Stop()

	collectOpts := pinterest.CollectOptions{
		Keyword:       keyword,
		Limit:         s.config.Scrape.MaxPins,
		MaxEmptyPages: s.config.Scrape.MaxEmptyPages,
		OnPage: func(collected int) {
			progress.UpdateCollected(collected)
			logger.LogSearchProgress(keyword, collected, s.config.Scrape.MaxPins)
		},
	}
	if s.rateLimiter != nil {
		collectOpts.Throttle = s.throttleSearch
	}
	if cp != nil {
		collectOpts.Bookmark = cp.Bookmark
		collectOpts.Seen = cp.ProcessedPinIDs()
	}

	collected, err := s.client.CollectPins(ctx, collectOpts)
	if err != nil {
		s.logger.WithError(err).WithField("keyword", keyword).Error("Pin search failed")
		return nil, err
	}

	s.logger.InfoWithFields("Pin collection finished", map[string]interface{}{
		"keyword":   keyword,
		"collected": len(collected.PinURLs),
		"exhausted": collected.Exhausted,
	})

	if cp == nil {
		cp, err = checkpointMgr.Create(keyword, s.config.Scrape.MaxPins)
		if err != nil {
			s.logger.WithError(err).Warn("Failed to create checkpoint, continuing without resume support")
			cp = nil
		}
	}
	if cp != nil {
		if err := checkpointMgr.UpdateBookmark(cp, collected.Bookmark, len(collected.PinURLs)); err != nil {
			s.logger.WithError(err).Warn("Failed to update checkpoint bookmark")
		}
	}

	progress.StartExtraction(len(collected.PinURLs))

	pins, failed := extractor.ExtractAll(
		ctx,
		s.extractor,
		collected.PinURLs,
		keyword,
		s.config.Scrape.ConcurrentExtracts,
		s.rateLimiter,
		s.logger,
		func(result extractor.ExtractResult) {
			progress.RecordExtraction(result.Success)
			logger.LogExtraction(keyword, pinterest.ExtractPinID(result.Job.PinURL), result.Success, result.Error)
			if cp == nil {
				return
			}
			if result.Success {
				if err := checkpointMgr.RecordPin(cp, result.Pin.PinID, result.Job.PinURL); err != nil {
					s.logger.WithError(err).Warn("Failed to record pin in checkpoint")
				}
			} else {
				if err := checkpointMgr.RecordFailure(cp); err != nil {
					s.logger.WithError(err).Warn("Failed to record failure in checkpoint")
				}
			}
		},
	)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	paths, err := s.exportPins(keyword, pins)
	if err != nil {
		return nil, err
	}

	// A finished run needs no resume state
	if checkpointMgr.Exists() {
		if err := checkpointMgr.Delete(); err != nil {
			s.logger.WithError(err).Warn("Failed to delete checkpoint")
		}
	}

	s.logger.InfoWithFields("Keyword scrape completed", map[string]interface{}{
		"keyword":   keyword,
		"extracted": len(pins),
		"failed":    failed,
		"action":    "scrape_complete",
	})

	progress.Stop()
	progress.Summary(keyword, paths)

	return &Result{
		Keyword:   keyword,
		Pins:      pins,
		Paths:     paths,
		Collected: len(collected.PinURLs),
		Extracted: len(pins),
		Failed:    failed,
	}, nil
}

// throttleSearch blocks until the rate limit admits another search request
func (s *Scraper) throttleSearch(ctx context.Context) error {
	if s.rateLimiter.Allow() {
		return nil
	}

	retryAfter := 0
	if rpm := s.config.RateLimit.RequestsPerMinute; rpm > 0 {
		retryAfter = 60 / rpm
	}
	logger.LogRateLimit(pinterest.SearchResourceEndpoint, retryAfter)

	return s.rateLimiter.WaitContext(ctx)
}

// resolveCheckpoint applies the --resume / --force-restart semantics
func (s *Scraper) resolveCheckpoint(mgr *checkpoint.Manager, keyword string, opts Options) (*checkpoint.Checkpoint, error) {
	if opts.ForceRestart && mgr.Exists() {
		// Keep a backup of the discarded state in case the restart was a mistake
		if err := mgr.BackupCheckpoint(); err != nil {
			s.logger.WithError(err).Warn("Failed to back up checkpoint")
		}
		if err := mgr.Delete(); err != nil {
			s.logger.WithError(err).Warn("Failed to delete existing checkpoint")
		}
		if !opts.Quiet {
			ui.PrintInfo("Force restart", "Ignoring existing checkpoint")
		}
		return nil, nil
	}

	if opts.Resume && mgr.Exists() {
		cp, err := mgr.Load()
		if err != nil {
			s.logger.WithError(err).Error("Failed to load checkpoint")
			return nil, fmt.Errorf("failed to load checkpoint: %w", err)
		}
		if cp != nil {
			if !opts.Quiet {
				ui.PrintInfo("Resuming from checkpoint", fmt.Sprintf("%d pins already extracted", cp.TotalExtracted))
			}
			s.logger.InfoWithFields("Resuming from checkpoint", map[string]interface{}{
				"keyword":         keyword,
				"total_extracted": cp.TotalExtracted,
				"bookmark":        cp.Bookmark,
			})
		}
		return cp, nil
	}

	if mgr.Exists() {
		info, _ := mgr.GetCheckpointInfo()
		if info != nil {
			if !opts.Quiet {
				ui.PrintWarning(fmt.Sprintf("Previous scrape for %q found (%v pins extracted)", keyword, info["total_extracted"]))
				fmt.Printf("  Use: %s to continue where you left off\n", ui.Green("--resume"))
				fmt.Printf("  Use: %s to start fresh\n", ui.Yellow("--force-restart"))
			}
			return nil, fmt.Errorf("checkpoint exists - use --resume to continue or --force-restart to start fresh")
		}
	}

	return nil, nil
}

// exportPins writes the pins in each configured format
func (s *Scraper) exportPins(keyword string, pins []*models.Pin) ([]string, error) {
	store, err := storage.NewManager(s.config.Output.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare output directory: %w", err)
	}

	exporter := export.NewExporter(store, s.logger)
	paths, err := exporter.Export(keyword, pins, s.config.Output.Formats)
	if err != nil {
		s.logger.WithError(err).WithField("keyword", keyword).Error("Export failed")
		return nil, err
	}
	return paths, nil
}

// retryingExtractor wraps a parser so transient failures are retried per pin
type retryingExtractor struct {
	parser  *pinterest.Parser
	retrier *retry.HTTPRetrier
}

func newRetryingExtractor(parser *pinterest.Parser, cfg *config.Config, log logger.Logger) *retryingExtractor {
	return &retryingExtractor{
		parser:  parser,
		retrier: newRetrier(cfg, log),
	}
}

func (r *retryingExtractor) ExtractPin(ctx context.Context, pinURL, keyword string) (*models.Pin, error) {
	var pin *models.Pin
	err := r.retrier.DoWithErrorType(func() error {
		var extractErr error
		pin, extractErr = r.parser.ExtractPin(ctx, pinURL, keyword)
		return extractErr
	})
	return pin, err
}
