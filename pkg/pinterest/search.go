package pinterest

import (
	"context"
)

// CollectOptions controls a pin reference collection run
type CollectOptions struct {
	// Keyword is the search query
	Keyword string
	// Limit bounds the number of pin URLs collected
	Limit int
	// MaxEmptyPages stops the run after this many consecutive pages
	// that yield no new pins (default 5)
	MaxEmptyPages int
	// Bookmark resumes pagination from a saved cursor
	Bookmark string
	// Seen pre-populates the de-duplication set (used on resume)
	Seen []string
	// Throttle is called before each page request; a non-nil error
	// aborts the collection (rate limiter hook)
	Throttle func(ctx context.Context) error
	// OnPage is called after each page with the running total
	OnPage func(collected int)
}

// CollectResult is the outcome of a collection run
type CollectResult struct {
	// PinURLs are the canonical pin closeup URLs in discovery order
	PinURLs []string
	// Bookmark is the cursor after the last fetched page
	Bookmark string
	// Exhausted reports whether Pinterest signalled the end of results
	Exhausted bool
}

// CollectPins pages through search results and returns ordered,
// de-duplicated pin closeup URLs, bounded by the limit. Collection also
// stops after MaxEmptyPages consecutive pages without new pins, or when
// Pinterest returns the end-of-results bookmark. An empty result set is
// not an error.
func (c *Client) CollectPins(ctx context.Context, opts CollectOptions) (*CollectResult, error) {
	if opts.MaxEmptyPages <= 0 {
		opts.MaxEmptyPages = 5
	}

	seen := make(map[string]bool, opts.Limit)
	for _, id := range opts.Seen {
		seen[id] = true
	}

	result := &CollectResult{
		Bookmark: opts.Bookmark,
	}
	emptyPages := 0

	for len(result.PinURLs) < opts.Limit {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if opts.Throttle != nil {
			if err := opts.Throttle(ctx); err != nil {
				return result, err
			}
		}

		page, err := c.Search(ctx, opts.Keyword, result.Bookmark)
		if err != nil {
			return result, err
		}

		newPins := 0
		for _, entry := range page.ResourceResponse.Data.Results {
			if entry.ID == "" || (entry.Type != "" && entry.Type != "pin") {
				continue
			}
			if seen[entry.ID] {
				continue
			}
			seen[entry.ID] = true
			result.PinURLs = append(result.PinURLs, GetPinURL(entry.ID))
			newPins++

			if len(result.PinURLs) >= opts.Limit {
				break
			}
		}

		if newPins == 0 {
			emptyPages++
		} else {
			emptyPages = 0
		}

		c.logger.DebugWithFields("search page processed", map[string]interface{}{
			"keyword":     opts.Keyword,
			"new_pins":    newPins,
			"collected":   len(result.PinURLs),
			"empty_pages": emptyPages,
		})

		if opts.OnPage != nil {
			opts.OnPage(len(result.PinURLs))
		}

		result.Bookmark = page.ResourceResponse.Bookmark
		if result.Bookmark == "" || result.Bookmark == BookmarkEnd {
			result.Exhausted = true
			break
		}
		if emptyPages >= opts.MaxEmptyPages {
			c.logger.WarnWithFields("stopping search after consecutive empty pages", map[string]interface{}{
				"keyword":     opts.Keyword,
				"empty_pages": emptyPages,
			})
			break
		}
	}

	return result, nil
}
