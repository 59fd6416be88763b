// Package logger provides a structured logging interface for the Pinterest scraper.
//
// It wraps the zerolog library to provide a clean, easy-to-use API with support for:
// - Multiple log levels (Debug, Info, Warn, Error, Fatal)
// - Structured logging with fields
// - Pretty console output with colors
// - File output alongside the console
// - Context support for request tracing
// - Global logger instance for easy access
//
// Basic Usage:
//
//	import "pinscraper/pkg/logger"
//
//	// Initialize the global logger
//	cfg := &config.LoggingConfig{
//	    Level: "info",
//	    File: "/var/log/pinscraper.log",
//	}
//	err := logger.Initialize(cfg)
//
//	// Use the global logger
//	logger.Info("Application started")
//	logger.WithField("keyword", "coffee").Info("Search started")
//	logger.WithError(err).Error("Failed to extract pin")
//
// Advanced Usage:
//
//	// Create a logger instance with fields
//	log := logger.GetLogger().
//	    WithField("component", "extractor").
//	    WithField("keyword", "coffee")
//
//	// Use structured logging
//	log.InfoWithFields("Extraction completed", map[string]interface{}{
//	    "pins":     42,
//	    "failed":   3,
//	    "duration": time.Second * 5,
//	})
package logger
