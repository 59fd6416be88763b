package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// SessionCookieName is the Pinterest session cookie
const SessionCookieName = "_pinterest_sess"

// CSRFCookieName carries the CSRF token Pinterest expects on API requests
const CSRFCookieName = "csrftoken"

// Cookie represents a single browser-exported cookie entry
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain,omitempty"`
	Path     string  `json:"path,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
	HTTPOnly bool    `json:"httpOnly,omitempty"`
	Expiry   float64 `json:"expirationDate,omitempty"`
}

// CookieJar holds the usable cookies loaded from a browser export
type CookieJar struct {
	Cookies []Cookie
	Skipped int
}

// LoadCookieFile parses a browser-exported cookie JSON array.
// Entries missing a name or value are skipped, and domains are normalized
// by stripping the leading dot and defaulting to pinterest.com.
func LoadCookieFile(path string) (*CookieJar, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cookie file: %w", err)
	}

	var raw []Cookie
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse cookie file: %w", err)
	}

	jar := &CookieJar{}
	for _, c := range raw {
		if c.Name == "" || c.Value == "" {
			jar.Skipped++
			continue
		}

		if c.Domain != "" {
			c.Domain = strings.TrimPrefix(c.Domain, ".")
		} else {
			c.Domain = "pinterest.com"
		}

		jar.Cookies = append(jar.Cookies, c)
	}

	if len(jar.Cookies) == 0 {
		return nil, fmt.Errorf("cookie file %s contains no usable cookies", path)
	}

	return jar, nil
}

// Header builds the Cookie request header value from the jar
func (j *CookieJar) Header() string {
	pairs := make([]string, 0, len(j.Cookies))
	for _, c := range j.Cookies {
		pairs = append(pairs, c.Name+"="+c.Value)
	}
	return strings.Join(pairs, "; ")
}

// Get returns the value of the named cookie, or empty string
func (j *CookieJar) Get(name string) string {
	for _, c := range j.Cookies {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// Account derives an Account from the jar's session and CSRF cookies
func (j *CookieJar) Account(username string) (*Account, error) {
	session := j.Get(SessionCookieName)
	if session == "" {
		return nil, fmt.Errorf("cookie file has no %s cookie", SessionCookieName)
	}

	if username == "" {
		username = "default"
	}

	return &Account{
		Username:      username,
		SessionCookie: session,
		CSRFToken:     j.Get(CSRFCookieName),
		LastModified:  time.Now(),
	}, nil
}
