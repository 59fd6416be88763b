package pinterest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"pinscraper/pkg/auth"
	"pinscraper/pkg/errors"
	"pinscraper/pkg/logger"
)

// Client is an authenticated Pinterest HTTP client
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	pageSize   int
	logger     logger.Logger
}

// NewClient creates a new Pinterest client
func NewClient(timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36",
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
			"Cache-Control":   "no-cache",
			"Pragma":          "no-cache",
		},
		baseURL:  BaseURL,
		pageSize: DefaultPageSize,
		logger:   log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetHeaders sets multiple headers at once
func (c *Client) SetHeaders(headers map[string]string) {
	for key, value := range headers {
		c.headers[key] = value
	}
}

// SetBaseURL overrides the Pinterest base URL (used by tests)
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// GetBaseURL returns the configured base URL
func (c *Client) GetBaseURL() string {
	return c.baseURL
}

// SetPageSize overrides the number of results requested per search page
func (c *Client) SetPageSize(pageSize int) {
	if pageSize > 0 {
		c.pageSize = pageSize
	}
}

// SetAccount applies session credentials to every subsequent request
func (c *Client) SetAccount(account *auth.Account) {
	if account == nil {
		return
	}

	cookie := auth.SessionCookieName + "=" + account.SessionCookie
	if account.CSRFToken != "" {
		cookie += "; " + auth.CSRFCookieName + "=" + account.CSRFToken
		c.headers["X-CSRFToken"] = account.CSRFToken
	}
	c.headers["Cookie"] = cookie

	if account.UserAgent != "" {
		c.headers["User-Agent"] = account.UserAgent
	}
}

// SetCookieJar applies a full browser cookie export to every request
func (c *Client) SetCookieJar(jar *auth.CookieJar) {
	if jar == nil {
		return
	}
	c.headers["Cookie"] = jar.Header()
	if csrf := jar.Get(auth.CSRFCookieName); csrf != "" {
		c.headers["X-CSRFToken"] = csrf
	}
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errors.NewWithCode(errors.ErrorTypeNetwork, fmt.Sprintf("network error: %v", err), 0)
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// Get performs a GET request to the specified URL
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewWithCode(errors.ErrorTypeUnknown, fmt.Sprintf("failed to create request: %v", err), 0)
	}

	return c.doRequest(req)
}

// GetJSON performs a GET request and decodes the JSON response
func (c *Client) GetJSON(ctx context.Context, url string, target interface{}) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewWithCode(errors.ErrorTypeNetwork, fmt.Sprintf("failed to read response body: %v", err), resp.StatusCode)
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}

		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return errors.NewWithCode(errors.ErrorTypeParsing, fmt.Sprintf("failed to parse JSON: %v", err), resp.StatusCode)
	}

	return nil
}

// GetDocument performs a GET request and parses the HTML response
func (c *Client) GetDocument(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		c.logger.ErrorWithFields("failed to parse HTML response", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
		return nil, errors.NewWithCode(errors.ErrorTypeParsing, fmt.Sprintf("failed to parse HTML: %v", err), resp.StatusCode)
	}

	return doc, nil
}

// checkResponseStatus checks the HTTP response status and returns appropriate errors
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		c.logger.WarnWithFields("authentication error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return errors.NewWithCode(errors.ErrorTypeAuth, "authentication required", resp.StatusCode)
	case http.StatusNotFound:
		c.logger.WarnWithFields("resource not found", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return errors.NewWithCode(errors.ErrorTypeNotFound, "resource not found", resp.StatusCode)
	case http.StatusTooManyRequests:
		c.logger.WarnWithFields("rate limit exceeded", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return errors.NewWithCode(errors.ErrorTypeRateLimit, "rate limit exceeded", resp.StatusCode)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		c.logger.ErrorWithFields("server error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return errors.NewWithCode(errors.ErrorTypeServerError, "server error", resp.StatusCode)
	default:
		if resp.StatusCode >= 400 {
			c.logger.ErrorWithFields("unexpected response status", map[string]interface{}{
				"status": resp.StatusCode,
				"url":    resp.Request.URL.String(),
			})
			return errors.NewWithCode(errors.ErrorTypeUnknown, fmt.Sprintf("unexpected status code: %d", resp.StatusCode), resp.StatusCode)
		}
		return nil
	}
}

// VerifySession checks that the session cookie identifies a logged-in user
func (c *Client) VerifySession(ctx context.Context) (*UserData, error) {
	url := c.rebase(GetUserSettingsURL())

	c.logger.Debug("verifying Pinterest session")

	var response UserSettingsResponse
	if err := c.GetJSON(ctx, url, &response); err != nil {
		c.logger.WithError(err).Error("session verification failed")
		return nil, err
	}

	user := response.ResourceResponse.Data
	if user.Username == "" {
		c.logger.Warn("session verification returned no user")
		return nil, errors.NewWithCode(errors.ErrorTypeAuth, "session cookie is invalid or expired", http.StatusUnauthorized)
	}

	c.logger.InfoWithFields("session verified", map[string]interface{}{
		"username": user.Username,
	})

	return &user, nil
}

// Search fetches one page of pin search results for a keyword.
// An empty bookmark requests the first page; the returned bookmark is the
// cursor for the next page, or BookmarkEnd when the results are exhausted.
func (c *Client) Search(ctx context.Context, keyword, bookmark string) (*SearchResponse, error) {
	url := c.searchURL(keyword, bookmark)

	c.logger.DebugWithFields("fetching search page", map[string]interface{}{
		"keyword":  keyword,
		"bookmark": bookmark,
	})

	var response SearchResponse
	if err := c.GetJSON(ctx, url, &response); err != nil {
		c.logger.ErrorWithFields("search request failed", map[string]interface{}{
			"keyword": keyword,
			"error":   err.Error(),
		})
		return nil, err
	}

	if resErr := response.ResourceResponse.Error; resErr != nil {
		return nil, errors.NewWithCode(errors.ErrorTypeServerError,
			fmt.Sprintf("search resource error: %s", resErr.Message), 0)
	}

	return &response, nil
}

// searchURL builds the resource URL against the configured base URL
func (c *Client) searchURL(keyword, bookmark string) string {
	return c.rebase(GetSearchURL(keyword, bookmark, c.pageSize))
}

// FetchPinPage fetches and parses a pin closeup page
func (c *Client) FetchPinPage(ctx context.Context, pinURL string) (*goquery.Document, error) {
	return c.GetDocument(ctx, c.rebase(pinURL))
}

// rebase rewrites canonical pinterest.com URLs against the configured base URL
func (c *Client) rebase(url string) string {
	if c.baseURL == BaseURL || !strings.HasPrefix(url, BaseURL) {
		return url
	}
	return c.baseURL + strings.TrimPrefix(url, BaseURL)
}
