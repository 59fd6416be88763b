package pinterest

// SearchResponse represents Pinterest's BaseSearchResource reply
type SearchResponse struct {
	ResourceResponse ResourceResponse `json:"resource_response"`
}

// ResourceResponse wraps the payload and pagination cursor
type ResourceResponse struct {
	Bookmark string         `json:"bookmark"`
	Data     SearchData     `json:"data"`
	Error    *ResourceError `json:"error,omitempty"`
}

// SearchData holds one page of search results
type SearchData struct {
	Results []SearchResult `json:"results"`
}

// SearchResult is a single entry on a search page. Non-pin entries
// (story modules, board covers) carry a different Type.
type SearchResult struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// ResourceError is Pinterest's in-band resource error
type ResourceError struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// UserSettingsResponse represents the UserSettingsResource reply used to
// verify that the session cookie is still valid
type UserSettingsResponse struct {
	ResourceResponse struct {
		Data UserData `json:"data"`
	} `json:"resource_response"`
}

// UserData identifies the logged-in user
type UserData struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// relayResponse mirrors the JSON embedded in a pin closeup page's
// script[data-relay-response="true"] tags
type relayResponse struct {
	Response struct {
		Data struct {
			V3GetPinQuery struct {
				Data *relayPin `json:"data"`
			} `json:"v3GetPinQuery"`
		} `json:"data"`
	} `json:"response"`
}

type relayPin struct {
	EntityID           string          `json:"entityId"`
	GridTitle          string          `json:"gridTitle"`
	CreatedAt          string          `json:"createdAt"`
	DominantColor      string          `json:"dominantColor"`
	IsRepin            bool            `json:"isRepin"`
	RepinCount         int             `json:"repinCount"`
	ShareCount         int             `json:"shareCount"`
	TotalReactionCount int             `json:"totalReactionCount"`
	Link               string          `json:"link"`
	Domain             string          `json:"domain"`
	SEOTitle           string          `json:"seoTitle"`
	PinJoin            *relayPinJoin   `json:"pinJoin"`
	RichMetadata       *relayRichMeta  `json:"richMetadata"`
	CloseupAttribution *relayUser      `json:"closeupAttribution"`
	OriginPinner       *relayUser      `json:"originPinner"`
	AggregatedPinData  *relayAggData   `json:"aggregatedPinData"`
	Board              *relayBoard     `json:"board"`
}

type relayPinJoin struct {
	VisualAnnotation []string `json:"visualAnnotation"`
}

type relayRichMeta struct {
	Description string `json:"description"`
}

type relayUser struct {
	Username      string `json:"username"`
	FullName      string `json:"fullName"`
	FollowerCount int    `json:"followerCount"`
}

type relayAggData struct {
	CommentCount    int `json:"commentCount"`
	AggregatedStats struct {
		Saves int `json:"saves"`
	} `json:"aggregatedStats"`
}

type relayBoard struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// leafSnippet mirrors the schema.org JSON embedded in the closeup page,
// carrying the pinner shown on the page
type leafSnippet struct {
	Author struct {
		Name          string `json:"name"`
		AlternateName string `json:"alternateName"`
	} `json:"author"`
}
