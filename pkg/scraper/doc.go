// Package scraper orchestrates the keyword scrape pipeline.
//
// The scraper coordinates the Pinterest client, the extraction worker pool,
// checkpointing, rate limiting, and spreadsheet export.
//
// Architecture:
//
// The Scraper struct is the main component that:
//   - Verifies the session cookie before any work starts
//   - Collects pin URLs through bookmark-cursor pagination
//   - Extracts pin metadata concurrently through the worker pool
//   - Skips pins that fail to parse instead of aborting the run
//   - Writes timestamped export artifacts in the configured formats
//
// Usage:
//
//	cfg, err := config.Load("", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	s, err := scraper.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	results, err := s.Run(ctx, []string{"coffee"}, scraper.Options{})
//
// Checkpoints:
//
// Each keyword gets its own checkpoint with the current bookmark cursor and
// the ids of already-extracted pins. An interrupted run can continue with
// --resume or be discarded with --force-restart; a completed run deletes its
// checkpoint.
package scraper
