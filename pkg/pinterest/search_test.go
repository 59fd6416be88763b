package pinterest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// searchServer serves scripted search pages keyed by bookmark
type searchPage struct {
	ids      []string
	bookmark string
}

func newSearchHandler(t *testing.T, pages map[string]searchPage) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Options struct {
				Bookmarks []string `json:"bookmarks"`
			} `json:"options"`
		}
		require.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("data")), &payload))

		cursor := ""
		if len(payload.Options.Bookmarks) > 0 {
			cursor = payload.Options.Bookmarks[0]
		}

		page, ok := pages[cursor]
		if !ok {
			page = searchPage{bookmark: BookmarkEnd}
		}

		results := make([]map[string]string, 0, len(page.ids))
		for _, id := range page.ids {
			results = append(results, map[string]string{"id": id, "type": "pin"})
		}

		resp := map[string]interface{}{
			"resource_response": map[string]interface{}{
				"bookmark": page.bookmark,
				"data":     map[string]interface{}{"results": results},
			},
		}
		json.NewEncoder(w).Encode(resp)
	})
}

func TestCollectPinsPaginates(t *testing.T) {
	client, _ := newTestClient(t, newSearchHandler(t, map[string]searchPage{
		"":      {ids: []string{"1", "2"}, bookmark: "page2"},
		"page2": {ids: []string{"3"}, bookmark: BookmarkEnd},
	}))

	result, err := client.CollectPins(context.Background(), CollectOptions{
		Keyword: "coffee",
		Limit:   10,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://www.pinterest.com/pin/1/",
		"https://www.pinterest.com/pin/2/",
		"https://www.pinterest.com/pin/3/",
	}, result.PinURLs)
	assert.True(t, result.Exhausted)
}

func TestCollectPinsHonorsLimit(t *testing.T) {
	client, _ := newTestClient(t, newSearchHandler(t, map[string]searchPage{
		"": {ids: []string{"1", "2", "3", "4", "5"}, bookmark: "page2"},
	}))

	result, err := client.CollectPins(context.Background(), CollectOptions{
		Keyword: "coffee",
		Limit:   3,
	})
	require.NoError(t, err)

	assert.Len(t, result.PinURLs, 3)
	assert.False(t, result.Exhausted)
}

func TestCollectPinsDeduplicates(t *testing.T) {
	client, _ := newTestClient(t, newSearchHandler(t, map[string]searchPage{
		"":      {ids: []string{"1", "2", "1"}, bookmark: "page2"},
		"page2": {ids: []string{"2", "3"}, bookmark: BookmarkEnd},
	}))

	result, err := client.CollectPins(context.Background(), CollectOptions{
		Keyword: "coffee",
		Limit:   10,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://www.pinterest.com/pin/1/",
		"https://www.pinterest.com/pin/2/",
		"https://www.pinterest.com/pin/3/",
	}, result.PinURLs)
}

func TestCollectPinsStopsAfterEmptyPages(t *testing.T) {
	requests := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprintf(w, `{"resource_response": {"bookmark": "b%d", "data": {"results": []}}}`, requests)
	}))

	result, err := client.CollectPins(context.Background(), CollectOptions{
		Keyword:       "obscure",
		Limit:         10,
		MaxEmptyPages: 3,
	})
	require.NoError(t, err)

	assert.Empty(t, result.PinURLs)
	assert.Equal(t, 3, requests)
}

func TestCollectPinsEmptyResultIsNotError(t *testing.T) {
	client, _ := newTestClient(t, newSearchHandler(t, map[string]searchPage{
		"": {ids: nil, bookmark: BookmarkEnd},
	}))

	result, err := client.CollectPins(context.Background(), CollectOptions{
		Keyword: "nothing",
		Limit:   10,
	})
	require.NoError(t, err)
	assert.Empty(t, result.PinURLs)
	assert.True(t, result.Exhausted)
}

func TestCollectPinsSkipsNonPinResults(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"resource_response": {"bookmark": "-end-", "data": {"results": [
			{"id": "1", "type": "pin"},
			{"id": "s1", "type": "story"},
			{"id": "", "type": "pin"}
		]}}}`))
	}))

	result, err := client.CollectPins(context.Background(), CollectOptions{
		Keyword: "coffee",
		Limit:   10,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://www.pinterest.com/pin/1/"}, result.PinURLs)
}

func TestCollectPinsResumeSkipsSeen(t *testing.T) {
	client, _ := newTestClient(t, newSearchHandler(t, map[string]searchPage{
		"saved": {ids: []string{"1", "2", "3"}, bookmark: BookmarkEnd},
	}))

	result, err := client.CollectPins(context.Background(), CollectOptions{
		Keyword:  "coffee",
		Limit:    10,
		Bookmark: "saved",
		Seen:     []string{"1"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://www.pinterest.com/pin/2/",
		"https://www.pinterest.com/pin/3/",
	}, result.PinURLs)
}

func TestCollectPinsThrottleAborts(t *testing.T) {
	client, _ := newTestClient(t, newSearchHandler(t, nil))

	wantErr := fmt.Errorf("limiter stopped")
	_, err := client.CollectPins(context.Background(), CollectOptions{
		Keyword: "coffee",
		Limit:   10,
		Throttle: func(ctx context.Context) error {
			return wantErr
		},
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestCollectPinsContextCancelled(t *testing.T) {
	client, _ := newTestClient(t, newSearchHandler(t, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.CollectPins(ctx, CollectOptions{Keyword: "coffee", Limit: 10})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCollectPinsReportsProgress(t *testing.T) {
	client, _ := newTestClient(t, newSearchHandler(t, map[string]searchPage{
		"":      {ids: []string{"1", "2"}, bookmark: "page2"},
		"page2": {ids: []string{"3"}, bookmark: BookmarkEnd},
	}))

	var progress []int
	_, err := client.CollectPins(context.Background(), CollectOptions{
		Keyword: "coffee",
		Limit:   10,
		OnPage: func(collected int) {
			progress = append(progress, collected)
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, progress)
}
