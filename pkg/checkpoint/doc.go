// Package checkpoint provides functionality for saving and resuming scrape progress.
//
// The checkpoint system allows the scraper to resume a keyword scrape after
// interruptions such as network failures, rate limits, or manual stops. It tracks:
//   - The search bookmark cursor position
//   - Extracted pins (to avoid re-fetching closeup pages)
//   - Overall progress statistics
//
// Checkpoints are stored per keyword in platform-specific data directories:
//   - Linux: ~/.local/share/pinscraper/checkpoints/
//   - macOS: ~/Library/Application Support/pinscraper/checkpoints/
//   - Windows: %APPDATA%/pinscraper/checkpoints/
//
// The checkpoint files are saved atomically to prevent corruption and include
// versioning for future compatibility.
package checkpoint
