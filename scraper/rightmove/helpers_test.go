package rightmove

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"hackermove/models"
	"hackermove/utils"
)

func quietLogger() *utils.Logger { return utils.NewLoggerTo(io.Discard, utils.LevelError) }

// rawProperty builds a property object shaped like the site's JSON model.
func rawProperty(id int, price int, size string, listed string) map[string]any {
	return map[string]any{
		"id":              id,
		"displayAddress":  fmt.Sprintf("%d Example Road, London", id),
		"bedrooms":        2,
		"bathrooms":       1,
		"price":           map[string]any{"amount": price, "currencyCode": "GBP"},
		"displaySize":     size,
		"propertyUrl":     fmt.Sprintf("/properties/%d#/?channel=RES_BUY", id),
		"summary":         "A bright flat with a long lease.",
		"propertySubType": "Flat",
		"listingUpdate": map[string]any{
			"listingUpdateReason": "new",
			"listingUpdateDate":   listed,
		},
	}
}

// page renders a results page embedding properties and pagination options.
func page(props []map[string]any, tokens ...string) string {
	opts := []map[string]any{{"value": "0", "description": "1"}}
	for i, t := range tokens {
		opts = append(opts, map[string]any{"value": t, "description": fmt.Sprint(i + 2)})
	}
	model := map[string]any{
		"properties": props,
		"pagination": map[string]any{"total": len(opts), "options": opts},
	}
	b, err := json.Marshal(model)
	if err != nil {
		panic(err)
	}
	return `<html><head>
<script>window.dataLayer = [];</script>
</head><body>
<div id="l-searchResults"></div>
<script>window.jsonModel = ` + string(b) + `</script>
<script>window.other = {"properties": []};</script>
</body></html>`
}

func properties(startID, n int) []map[string]any {
	out := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, rawProperty(startID+i, 400000+i*1000, "1,000 sq. ft.", "2024-03-01T10:00:00Z"))
	}
	return out
}

// fakeFetcher serves canned bodies by URL and records requests.
type fakeFetcher struct {
	mu     sync.Mutex
	pages  map[string]string
	errs   map[string]error
	called []string
}

func (f *fakeFetcher) Get(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	f.called = append(f.called, url)
	f.mu.Unlock()

	if err, ok := f.errs[url]; ok {
		return "", err
	}
	body, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("no page for %s", url)
	}
	return body, nil
}

func toRaw(m map[string]any) models.RawRecord {
	b, _ := json.Marshal(m)
	dec := json.NewDecoder(strings.NewReader(string(b)))
	dec.UseNumber()
	var r models.RawRecord
	if err := dec.Decode(&r); err != nil {
		panic(err)
	}
	return r
}
