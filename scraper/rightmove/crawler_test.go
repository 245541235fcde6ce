package rightmove

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackermove/models"
	"hackermove/utils"
)

const startURL = "https://www.rightmove.co.uk/property-for-sale/find.html?locationIdentifier=REGION%5E93953&sortType=6"

func TestCrawlMergesAllPages(t *testing.T) {
	c := NewCrawler(nil, quietLogger())
	f := &fakeFetcher{pages: map[string]string{
		startURL:                  page(properties(1, 25), "24", "48"),
		c.PageURL(startURL, "24"): page(properties(101, 25), "24", "48"),
		c.PageURL(startURL, "48"): page(properties(201, 25), "24", "48"),
	}}
	c.fetcher = f

	recs, err := c.Crawl(context.Background(), startURL)

	require.NoError(t, err)
	assert.Len(t, recs, 75)
	assert.Len(t, f.called, 3, "leaf pages must not trigger further pagination")
	assert.Equal(t, "1", recs[0].ID)
	assert.Equal(t, "101", recs[25].ID)
	assert.Equal(t, "201", recs[50].ID)
}

func TestCrawlLeafFailureAbortsCrawl(t *testing.T) {
	c := NewCrawler(nil, quietLogger(), WithMaxConcurrency(1))
	boom := errors.New("connection reset")
	c.fetcher = &fakeFetcher{
		pages: map[string]string{
			startURL:                  page(properties(1, 25), "24", "48", "72"),
			c.PageURL(startURL, "24"): page(properties(101, 25)),
			c.PageURL(startURL, "72"): page(properties(301, 25)),
		},
		errs: map[string]error{c.PageURL(startURL, "48"): boom},
	}

	recs, err := c.Crawl(context.Background(), startURL)

	require.Error(t, err)
	assert.Nil(t, recs)
	var fe *models.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, c.PageURL(startURL, "48"), fe.URL)
	assert.ErrorIs(t, err, boom)
}

func TestCrawlLeafExtractionFailureAbortsCrawl(t *testing.T) {
	c := NewCrawler(nil, quietLogger())
	c.fetcher = &fakeFetcher{pages: map[string]string{
		startURL:                  page(properties(1, 5), "24"),
		c.PageURL(startURL, "24"): "<html>captcha</html>",
	}}

	recs, err := c.Crawl(context.Background(), startURL)

	assert.Nil(t, recs)
	var ee *models.ExtractionError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, c.PageURL(startURL, "24"), ee.URL)
}

func TestCrawlFirstPageFailure(t *testing.T) {
	c := NewCrawler(&fakeFetcher{pages: map[string]string{startURL: "<html></html>"}}, quietLogger())

	recs, err := c.Crawl(context.Background(), startURL)

	assert.Nil(t, recs)
	var ee *models.ExtractionError
	assert.True(t, errors.As(err, &ee))
}

func TestCrawlSkipsUnparsableRecords(t *testing.T) {
	props := properties(1, 3)
	delete(props[1], "price")
	metrics := utils.NewMetrics()
	c := NewCrawler(&fakeFetcher{pages: map[string]string{startURL: page(props)}}, quietLogger(), WithMetrics(metrics))

	recs, err := c.Crawl(context.Background(), startURL)

	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "1", recs[0].ID)
	assert.Equal(t, "3", recs[1].ID)
}

type stubParser struct{ calls int }

func (s *stubParser) Parse(raw models.RawRecord) (models.ListingRecord, error) {
	s.calls++
	return models.ListingRecord{ID: "stub"}, nil
}

func TestCrawlUsesInjectedParser(t *testing.T) {
	p := &stubParser{}
	c := NewCrawler(&fakeFetcher{pages: map[string]string{startURL: page(properties(1, 4))}}, quietLogger(), WithParser(p))

	recs, err := c.Crawl(context.Background(), startURL)

	require.NoError(t, err)
	assert.Equal(t, 4, p.calls)
	assert.Equal(t, "stub", recs[0].ID)
}

func TestPageURL(t *testing.T) {
	c := NewCrawler(nil, quietLogger())
	assert.Equal(t, "https://x/find.html?a=1&index=24", c.PageURL("https://x/find.html?a=1", "24"))
	assert.Equal(t, "https://x/find.html?index=24", c.PageURL("https://x/find.html", "24"))

	c = NewCrawler(nil, quietLogger(), WithIndexParam("page"))
	assert.Equal(t, "https://x/?page=2", c.PageURL("https://x/", "2"))
}
