// Package pinterest provides a client for Pinterest's web surface.
//
// This package includes:
//   - A configurable HTTP client with session cookies and error handling
//   - Search over Pinterest's internal BaseSearchResource with
//     bookmark-cursor pagination and de-duplication
//   - A parser that extracts pin metadata from closeup pages, combining
//     the embedded relay JSON with DOM extraction
//   - Helper functions for constructing and normalizing pin URLs
//
// Example usage:
//
//	client := pinterest.NewClient(15*time.Second, logger.GetLogger())
//	client.SetAccount(account)
//
//	if _, err := client.VerifySession(ctx); err != nil {
//	    // session cookie invalid or expired
//	}
//
//	result, err := client.CollectPins(ctx, pinterest.CollectOptions{
//	    Keyword: "coffee",
//	    Limit:   100,
//	})
//
//	parser := pinterest.NewParser(client, logger.GetLogger())
//	for _, pinURL := range result.PinURLs {
//	    pin, err := parser.ExtractPin(ctx, pinURL, "coffee")
//	    // failed pins are skipped by the caller
//	}
package pinterest
