package pinterest

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinscraper/pkg/errors"
	"pinscraper/pkg/logger"
)

const pinPageHTML = `<html>
<head>
<meta name="pinterestapp:pinboard" content="https://www.pinterest.com/alice/coffee-board/">
</head>
<body>
<script data-relay-response="true">{"response": {"data": {"other": true}}}</script>
<script data-relay-response="true">{
  "response": {"data": {"v3GetPinQuery": {"data": {
    "entityId": "12345",
    "gridTitle": "Best Latte Art",
    "createdAt": "Sat, 01 Jul 2023 10:11:12 +0000",
    "dominantColor": "#aabbcc",
    "isRepin": true,
    "repinCount": 17,
    "shareCount": 3,
    "totalReactionCount": 25,
    "link": "https://example.com/latte",
    "domain": "example.com",
    "seoTitle": "Latte Art Ideas",
    "pinJoin": {"visualAnnotation": ["latte", "coffee art"]},
    "richMetadata": {"description": "seo description"},
    "closeupAttribution": {"username": "alice", "fullName": "Alice A", "followerCount": 900},
    "originPinner": {"username": "bob", "fullName": "Bob B", "followerCount": 120},
    "aggregatedPinData": {"commentCount": 4, "aggregatedStats": {"saves": 88}},
    "board": {"name": "Coffee Board", "url": "/alice/coffee-board/"}
  }}}}
}</script>
<script data-test-id="leaf-snippet">{"author": {"name": "Alice A", "alternateName": "alice"}}</script>
<div data-test-id="safeTextDirection"><div>Morning #latte with #coffee love</div></div>
<div data-test-id="pin-closeup-image"><img src="https://i.pinimg.com/originals/aa/bb/cc.jpg"></div>
</body>
</html>`

func parseTestDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestParseDocument(t *testing.T) {
	parser := NewParser(nil, logger.NewNopLogger())
	doc := parseTestDoc(t, pinPageHTML)

	pin, err := parser.ParseDocument(doc, "https://www.pinterest.com/pin/12345/")
	require.NoError(t, err)

	assert.Equal(t, "12345", pin.PinID)
	assert.Equal(t, "https://www.pinterest.com/pin/12345/", pin.PinURL)
	assert.Equal(t, "Best Latte Art", pin.PinTitle)
	assert.Equal(t, "Best Latte Art", pin.TitleMetadata)
	assert.Equal(t, "Morning #latte with #coffee love", pin.PinDescription)
	assert.Equal(t, "#latte #coffee", pin.Hashtags)
	assert.Equal(t, "https://i.pinimg.com/originals/aa/bb/cc.jpg", pin.ImageURL)
	assert.Equal(t, "Sat, 01 Jul 2023 10:11:12", pin.CreatedDate)
	assert.Equal(t, "#aabbcc", pin.DominantColor)

	assert.Equal(t, "bob", pin.CreatorUsername)
	assert.Equal(t, "Bob B", pin.CreatorFullName)
	assert.Equal(t, 900, pin.CreatorFollowersCount)

	assert.Equal(t, "Coffee Board", pin.BoardName)
	assert.Equal(t, "https://www.pinterest.com/alice/coffee-board/", pin.BoardURL)

	assert.True(t, pin.IsRepin)
	assert.Equal(t, 17, pin.RepinCount)
	assert.Equal(t, 3, pin.ShareCount)
	assert.Equal(t, 4, pin.CommentCount)
	assert.Equal(t, 88, pin.Saves)
	assert.Equal(t, 25, pin.ReactionCount)

	assert.Equal(t, "alice", pin.PinnerUsername)
	assert.Equal(t, "Alice A", pin.PinnerFullName)
	assert.Equal(t, 120, pin.PinnerFollowerCount)

	assert.Equal(t, "https://example.com/latte", pin.ExternalLink)
	assert.Equal(t, "example.com", pin.Domain)
	assert.Equal(t, "Latte Art Ideas", pin.SEOTitle)
	assert.Equal(t, "seo description", pin.SEODescription)
	assert.Equal(t, "latte, coffee art", pin.Annotations)
}

func TestParseDocumentUploadedByUser(t *testing.T) {
	html := strings.Replace(pinPageHTML, `"domain": "example.com"`, `"domain": "Uploaded by user"`, 1)

	parser := NewParser(nil, logger.NewNopLogger())
	pin, err := parser.ParseDocument(parseTestDoc(t, html), "https://www.pinterest.com/pin/12345/")
	require.NoError(t, err)

	assert.Empty(t, pin.Domain)
}

func TestParseDocumentNoRelayData(t *testing.T) {
	parser := NewParser(nil, logger.NewNopLogger())
	doc := parseTestDoc(t, "<html><body><p>nothing here</p></body></html>")

	_, err := parser.ParseDocument(doc, "https://www.pinterest.com/pin/12345/")
	require.Error(t, err)

	scrapeErr, ok := err.(*errors.Error)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeParsing, scrapeErr.Type)
}

func TestParseDocumentMissingOptionalSections(t *testing.T) {
	html := `<html><body>
<script data-relay-response="true">{"response": {"data": {"v3GetPinQuery": {"data": {"entityId": "9"}}}}}</script>
</body></html>`

	parser := NewParser(nil, logger.NewNopLogger())
	pin, err := parser.ParseDocument(parseTestDoc(t, html), "https://www.pinterest.com/pin/9/")
	require.NoError(t, err)

	assert.Equal(t, "9", pin.PinID)
	assert.Empty(t, pin.PinDescription)
	assert.Empty(t, pin.Hashtags)
	assert.Empty(t, pin.BoardName)
	assert.Zero(t, pin.Saves)
}

func TestParseDocumentCanonicalizesPinURL(t *testing.T) {
	parser := NewParser(nil, logger.NewNopLogger())

	pin, err := parser.ParseDocument(parseTestDoc(t, pinPageHTML), "https://pinterest.de/pin/12345/?mt=login")
	require.NoError(t, err)

	assert.Equal(t, "https://www.pinterest.com/pin/12345/", pin.PinURL)
}

func TestParseDocumentFallsBackToURLID(t *testing.T) {
	html := `<html><body>
<script data-relay-response="true">{"response": {"data": {"v3GetPinQuery": {"data": {"gridTitle": "x"}}}}}</script>
</body></html>`

	parser := NewParser(nil, logger.NewNopLogger())
	pin, err := parser.ParseDocument(parseTestDoc(t, html), "https://www.pinterest.com/pin/777/")
	require.NoError(t, err)

	assert.Equal(t, "777", pin.PinID)
}

func TestExtractPin(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pin/12345/", r.URL.Path)
		w.Write([]byte(pinPageHTML))
	}))

	parser := NewParser(client, logger.NewNopLogger())
	pin, err := parser.ExtractPin(context.Background(), "https://www.pinterest.com/pin/12345/", "coffee")
	require.NoError(t, err)

	assert.Equal(t, "12345", pin.PinID)
	assert.Equal(t, "coffee", pin.Query)
}

func TestExtractPinFetchError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	parser := NewParser(client, logger.NewNopLogger())
	_, err := parser.ExtractPin(context.Background(), "https://www.pinterest.com/pin/404404/", "coffee")
	require.Error(t, err)
}

func TestExtractHashtags(t *testing.T) {
	assert.Equal(t, "#a #b", ExtractHashtags("x #a y #b"))
	assert.Equal(t, "", ExtractHashtags("no tags here"))
}

func TestFormatCreatedAt(t *testing.T) {
	assert.Equal(t, "Sat, 01 Jul 2023 10:11:12", formatCreatedAt("Sat, 01 Jul 2023 10:11:12 +0000"))
	assert.Equal(t, "", formatCreatedAt(""))
	assert.Equal(t, "not a date", formatCreatedAt("not a date"))
}
