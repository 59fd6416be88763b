package models

import "strconv"

// Pin represents a Pinterest pin with its extracted metadata.
// JSON field names match the export schema, one key per spreadsheet column.
type Pin struct {
	PinID          string `json:"pin_id"`
	PinURL         string `json:"pin_url"`
	PinTitle       string `json:"pin_title"`
	PinDescription string `json:"pin_description"`
	Hashtags       string `json:"hashtags"`
	ImageURL       string `json:"image_url"`
	Query          string `json:"query"`
	CreatedDate    string `json:"created_date"`
	DominantColor  string `json:"dominant_color"`

	// Creator information
	CreatorUsername       string `json:"creator_username"`
	CreatorFullName       string `json:"creator_full_name"`
	CreatorFollowersCount int    `json:"creator_followers_count"`

	// Board information
	BoardName string `json:"board_name"`
	BoardURL  string `json:"board_url"`

	// Engagement metrics
	IsRepin       bool `json:"is_repin"`
	RepinCount    int  `json:"repin_count"`
	ShareCount    int  `json:"share_count"`
	CommentCount  int  `json:"comment_count"`
	Saves         int  `json:"saves"`
	ReactionCount int  `json:"reaction_count"`

	// Pinner information
	PinnerUsername      string `json:"pinner_username"`
	PinnerFullName      string `json:"pinner_full_name"`
	PinnerFollowerCount int    `json:"pinner_follower_count"`

	// SEO and metadata
	ExternalLink   string `json:"external_link"`
	Domain         string `json:"domain"`
	TitleMetadata  string `json:"title_metadata"`
	SEOTitle       string `json:"seo_title"`
	SEODescription string `json:"seo_description"`
	Annotations    string `json:"annotations"`
}

// Columns returns the spreadsheet header row. Row values follow the same order.
func Columns() []string {
	return []string{
		"pin_id",
		"pin_url",
		"pin_title",
		"pin_description",
		"hashtags",
		"image_url",
		"query",
		"created_date",
		"dominant_color",
		"creator_username",
		"creator_full_name",
		"creator_followers_count",
		"board_name",
		"board_url",
		"is_repin",
		"repin_count",
		"share_count",
		"comment_count",
		"saves",
		"reaction_count",
		"pinner_username",
		"pinner_full_name",
		"pinner_follower_count",
		"external_link",
		"domain",
		"title_metadata",
		"seo_title",
		"seo_description",
		"annotations",
	}
}

// Row returns the pin's values in Columns order, stringified for tabular export
func (p *Pin) Row() []string {
	return []string{
		p.PinID,
		p.PinURL,
		p.PinTitle,
		p.PinDescription,
		p.Hashtags,
		p.ImageURL,
		p.Query,
		p.CreatedDate,
		p.DominantColor,
		p.CreatorUsername,
		p.CreatorFullName,
		strconv.Itoa(p.CreatorFollowersCount),
		p.BoardName,
		p.BoardURL,
		strconv.FormatBool(p.IsRepin),
		strconv.Itoa(p.RepinCount),
		strconv.Itoa(p.ShareCount),
		strconv.Itoa(p.CommentCount),
		strconv.Itoa(p.Saves),
		strconv.Itoa(p.ReactionCount),
		p.PinnerUsername,
		p.PinnerFullName,
		strconv.Itoa(p.PinnerFollowerCount),
		p.ExternalLink,
		p.Domain,
		p.TitleMetadata,
		p.SEOTitle,
		p.SEODescription,
		p.Annotations,
	}
}
