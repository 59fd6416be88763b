package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"pinscraper/pkg/config"
	"pinscraper/pkg/export"
	"pinscraper/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage Pinscraper configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (PINSCRAPER_*)
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'pinscraper.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration including values from all sources.

Sensitive values like the session cookie will be masked for security.`,
	Run: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Value types and ranges
  - Export formats
  - Path accessibility`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = "pinscraper.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	exampleConfig := `# Pinscraper Configuration File
#
# This file contains all available configuration options.
# You can also use environment variables prefixed with PINSCRAPER_
# For example: PINSCRAPER_SESSION_COOKIE, PINSCRAPER_CSRF_TOKEN

# Pinterest session
pinterest:
  # Session cookie value from the _pinterest_sess cookie (required unless
  # a cookie file or stored account is used)
  session_cookie: ""

  # CSRF token from the csrftoken cookie (optional)
  csrf_token: ""

  # Path to a browser cookie export file (JSON array of cookies).
  # When set, it takes precedence over session_cookie.
  cookie_file: ""

  # User agent string (optional, leave empty to use default)
  user_agent: ""

# Scrape configuration
scrape:
  # Maximum number of pins to collect per keyword
  max_pins: 100

  # Number of concurrent pin extractions
  # Range: 1-10
  concurrent_extracts: 5

  # Request timeout
  request_timeout: 15s

  # Stop after this many consecutive empty search pages
  max_empty_pages: 5

# Rate limiting configuration
rate_limit:
  # Requests per minute
  # Range: 1-120
  requests_per_minute: 60

  # Burst size (number of requests allowed in a burst)
  burst_size: 10

  enabled: true

# Retry configuration
retry:
  # Maximum number of retry attempts
  # Range: 0-10
  max_attempts: 3

  initial_backoff: 1s
  max_backoff: 60s
  backoff_multiplier: 2.0

# Output configuration
output:
  # Directory for export files
  directory: "output"

  # Export formats: excel, json, csv, both
  formats:
    - excel

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path (optional, leave empty to log to stderr only)
  file: ""
`

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the configuration file and add your Pinterest session cookie")
	fmt.Println("2. Run 'pinscraper config validate' to check the configuration")
	fmt.Println("3. Start scraping with 'pinscraper scrape <keyword>'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	displayCfg := *cfg
	displayCfg.Pinterest.SessionCookie = maskSecret(displayCfg.Pinterest.SessionCookie)
	displayCfg.Pinterest.CSRFToken = maskSecret(displayCfg.Pinterest.CSRFToken)

	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (PINSCRAPER_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (auto-detected)")
	}
	fmt.Println("4. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	if configFile == "" {
		possiblePaths := []string{
			"pinscraper.yaml",
			"pinscraper.yml",
			".pinscraper.yaml",
			".pinscraper.yml",
			filepath.Join(os.Getenv("HOME"), ".pinscraper.yaml"),
			filepath.Join(os.Getenv("HOME"), ".config", "pinscraper", "config.yaml"),
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}

		if configFile == "" {
			ui.PrintError("No configuration file found", "Specify a file with --config flag")
			os.Exit(1)
		}
	}

	ui.PrintInfo("Validating configuration", configFile)

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	warnings := []string{}
	errors := []string{}

	if cfg.Pinterest.SessionCookie == "" && cfg.Pinterest.CookieFile == "" {
		warnings = append(warnings, "no Pinterest session configured (session_cookie or cookie_file)")
	}
	if cfg.Pinterest.CookieFile != "" {
		if _, err := os.Stat(cfg.Pinterest.CookieFile); err != nil {
			errors = append(errors, fmt.Sprintf("cookie file not accessible: %v", err))
		}
	}

	if cfg.Output.Directory != "" {
		if err := os.MkdirAll(cfg.Output.Directory, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("cannot create output directory: %v", err))
		}
	}
	if _, err := export.ExpandFormats(cfg.Output.Formats); err != nil {
		errors = append(errors, err.Error())
	}

	if cfg.Logging.File != "" {
		dir := filepath.Dir(cfg.Logging.File)
		if err := os.MkdirAll(dir, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("cannot create log directory: %v", err))
		}
	}

	if len(errors) > 0 {
		ui.PrintError("Configuration has errors:", "")
		for _, err := range errors {
			fmt.Printf("  - %s\n", err)
		}
		os.Exit(1)
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:", "")
		for _, warn := range warnings {
			fmt.Printf("  - %s\n", warn)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Output directory: %s\n", cfg.Output.Directory)
	fmt.Printf("  Export formats: %v\n", cfg.Output.Formats)
	fmt.Printf("  Max pins per keyword: %d\n", cfg.Scrape.MaxPins)
	fmt.Printf("  Concurrent extractions: %d\n", cfg.Scrape.ConcurrentExtracts)
	fmt.Printf("  Rate limit: %d requests/minute\n", cfg.RateLimit.RequestsPerMinute)
	fmt.Printf("  Max retries: %d\n", cfg.Retry.MaxAttempts)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}

// maskSecret hides all but the edges of a credential for display
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
