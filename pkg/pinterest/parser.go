package pinterest

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"pinscraper/pkg/errors"
	"pinscraper/pkg/logger"
	"pinscraper/pkg/models"
)

var hashtagPattern = regexp.MustCompile(`#\w+`)

// createdAtLayout matches Pinterest's createdAt format, e.g.
// "Sat, 01 Jul 2023 10:11:12 +0000"
const createdAtLayout = "Mon, 02 Jan 2006 15:04:05 -0700"

// Parser extracts pin metadata from closeup pages
type Parser struct {
	client *Client
	logger logger.Logger
}

// NewParser creates a parser backed by the given client
func NewParser(client *Client, log logger.Logger) *Parser {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Parser{
		client: client,
		logger: log,
	}
}

// ExtractPin fetches a pin closeup page and extracts its metadata.
// The keyword is recorded on the resulting record as the originating query.
func (p *Parser) ExtractPin(ctx context.Context, pinURL, keyword string) (*models.Pin, error) {
	doc, err := p.client.FetchPinPage(ctx, pinURL)
	if err != nil {
		return nil, err
	}

	pin, err := p.ParseDocument(doc, pinURL)
	if err != nil {
		return nil, err
	}

	pin.Query = keyword
	return pin, nil
}

// ParseDocument extracts pin metadata from an already-fetched closeup page
func (p *Parser) ParseDocument(doc *goquery.Document, pinURL string) (*models.Pin, error) {
	relay, err := p.findRelayPin(doc)
	if err != nil {
		return nil, err
	}

	// Record the canonical closeup link, not whatever form the search returned
	canonical := NormalizePinURL(pinURL)
	if canonical == "" {
		canonical = pinURL
	}

	pin := &models.Pin{
		PinID:  relay.EntityID,
		PinURL: canonical,
	}
	if pin.PinID == "" {
		pin.PinID = ExtractPinID(pinURL)
	}

	pin.PinTitle = relay.GridTitle
	pin.TitleMetadata = relay.GridTitle
	pin.CreatedDate = formatCreatedAt(relay.CreatedAt)
	pin.DominantColor = relay.DominantColor
	pin.IsRepin = relay.IsRepin
	pin.RepinCount = relay.RepinCount
	pin.ShareCount = relay.ShareCount
	pin.ReactionCount = relay.TotalReactionCount
	pin.ExternalLink = relay.Link
	pin.SEOTitle = relay.SEOTitle

	// Pins uploaded directly carry a placeholder domain
	if relay.Domain != "Uploaded by user" {
		pin.Domain = relay.Domain
	}

	if relay.OriginPinner != nil {
		pin.CreatorUsername = relay.OriginPinner.Username
		pin.CreatorFullName = relay.OriginPinner.FullName
		pin.PinnerFollowerCount = relay.OriginPinner.FollowerCount
	}
	if relay.CloseupAttribution != nil {
		pin.CreatorFollowersCount = relay.CloseupAttribution.FollowerCount
	}
	if relay.AggregatedPinData != nil {
		pin.CommentCount = relay.AggregatedPinData.CommentCount
		pin.Saves = relay.AggregatedPinData.AggregatedStats.Saves
	}
	if relay.Board != nil {
		pin.BoardName = relay.Board.Name
	}
	if relay.RichMetadata != nil {
		pin.SEODescription = relay.RichMetadata.Description
	}
	if relay.PinJoin != nil {
		pin.Annotations = strings.Join(relay.PinJoin.VisualAnnotation, ", ")
	}

	// Description lives in the rendered DOM, not the relay payload
	pin.PinDescription = extractDescription(doc)
	pin.Hashtags = ExtractHashtags(pin.PinDescription)

	pin.ImageURL = extractImageURL(doc)
	pin.BoardURL = extractBoardURL(doc)

	if snippet := extractLeafSnippet(doc); snippet != nil {
		pin.PinnerUsername = snippet.Author.AlternateName
		pin.PinnerFullName = snippet.Author.Name
	}

	return pin, nil
}

// findRelayPin locates the relay response script tag carrying the pin query
func (p *Parser) findRelayPin(doc *goquery.Document) (*relayPin, error) {
	var found *relayPin
	var parseErr error

	doc.Find(`script[data-relay-response="true"]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
		var relay relayResponse
		if err := json.Unmarshal([]byte(s.Text()), &relay); err != nil {
			parseErr = err
			return true // other relay tags may still carry the pin query
		}
		if relay.Response.Data.V3GetPinQuery.Data != nil {
			found = relay.Response.Data.V3GetPinQuery.Data
			return false
		}
		return true
	})

	if found == nil {
		msg := "pin page carries no relay pin data"
		if parseErr != nil {
			msg = fmt.Sprintf("%s: %v", msg, parseErr)
		}
		return nil, errors.New(errors.ErrorTypeParsing, msg)
	}

	return found, nil
}

// extractDescription pulls the visible pin description from the page
func extractDescription(doc *goquery.Document) string {
	inner := doc.Find(`div[data-test-id="safeTextDirection"]`).First().Find("div").First()
	return strings.TrimSpace(inner.Text())
}

// extractImageURL pulls the closeup image source
func extractImageURL(doc *goquery.Document) string {
	img := doc.Find(`div[data-test-id="pin-closeup-image"]`).First().Find("img").First()
	src, _ := img.Attr("src")
	return src
}

// extractBoardURL reads the board link from the page metadata
func extractBoardURL(doc *goquery.Document) string {
	content, _ := doc.Find(`meta[name="pinterestapp:pinboard"]`).First().Attr("content")
	return content
}

// extractLeafSnippet decodes the schema.org snippet naming the pinner
func extractLeafSnippet(doc *goquery.Document) *leafSnippet {
	tag := doc.Find(`script[data-test-id="leaf-snippet"]`).First()
	if tag.Length() == 0 {
		return nil
	}

	var snippet leafSnippet
	if err := json.Unmarshal([]byte(tag.Text()), &snippet); err != nil {
		return nil
	}
	return &snippet
}

// ExtractHashtags returns the space-joined #tags found in text
func ExtractHashtags(text string) string {
	tags := hashtagPattern.FindAllString(text, -1)
	return strings.Join(tags, " ")
}

// formatCreatedAt reformats Pinterest's createdAt into the same layout
// without the timezone offset. Unparseable values pass through unchanged.
func formatCreatedAt(createdAt string) string {
	if createdAt == "" {
		return ""
	}

	t, err := time.Parse(createdAtLayout, createdAt)
	if err != nil {
		return createdAt
	}
	return t.Format("Mon, 02 Jan 2006 15:04:05")
}
