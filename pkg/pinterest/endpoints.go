package pinterest

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const (
	// BaseURL is the base URL for Pinterest
	BaseURL = "https://www.pinterest.com"

	// SearchResourceEndpoint is Pinterest's internal pin search resource
	SearchResourceEndpoint = "/resource/BaseSearchResource/get/"

	// UserResourceEndpoint returns the logged-in user when the session is valid
	UserResourceEndpoint = "/resource/UserSettingsResource/get/"

	// BookmarkEnd is the bookmark value marking the last search page
	BookmarkEnd = "-end-"

	// DefaultPageSize is the number of results Pinterest returns per search page
	DefaultPageSize = 25
)

var pinIDPattern = regexp.MustCompile(`/pin/(\d+)`)

// GetSearchURL constructs the search resource URL for a keyword, bookmark
// cursor and page size. An empty bookmark requests the first page; a page
// size of zero or less falls back to DefaultPageSize.
func GetSearchURL(keyword, bookmark string, pageSize int) string {
	sourceURL := fmt.Sprintf("/search/pins/?q=%s", url.QueryEscape(keyword))

	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	options := map[string]interface{}{
		"query":     keyword,
		"scope":     "pins",
		"page_size": pageSize,
	}
	if bookmark != "" {
		options["bookmarks"] = []string{bookmark}
	}

	data, _ := json.Marshal(map[string]interface{}{
		"options": options,
		"context": map[string]interface{}{},
	})

	params := url.Values{}
	params.Set("source_url", sourceURL)
	params.Set("data", string(data))

	return fmt.Sprintf("%s%s?%s", BaseURL, SearchResourceEndpoint, params.Encode())
}

// GetUserSettingsURL constructs the URL used to verify the session
func GetUserSettingsURL() string {
	return BaseURL + UserResourceEndpoint
}

// GetPinURL constructs the canonical closeup URL for a pin id
func GetPinURL(pinID string) string {
	if pinID == "" {
		return ""
	}
	return fmt.Sprintf("%s/pin/%s/", BaseURL, pinID)
}

// NormalizePinURL extracts the pin id from any /pin/ link and returns the
// canonical https://www.pinterest.com/pin/{id}/ form. Returns an empty
// string for links that are not pin closeups.
func NormalizePinURL(link string) string {
	m := pinIDPattern.FindStringSubmatch(link)
	if m == nil {
		return ""
	}
	return GetPinURL(m[1])
}

// ExtractPinID returns the pin id from a pin URL, or empty string
func ExtractPinID(link string) string {
	m := pinIDPattern.FindStringSubmatch(link)
	if m == nil {
		return ""
	}
	return m[1]
}

// IsValidKeyword reports whether a search keyword is usable
func IsValidKeyword(keyword string) bool {
	return strings.TrimSpace(keyword) != ""
}

// SanitizeKeyword trims whitespace and collapses internal runs of spaces
func SanitizeKeyword(keyword string) string {
	return strings.Join(strings.Fields(keyword), " ")
}
