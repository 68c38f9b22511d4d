package feed

import (
	"log/slog"
	"net/http"
	"net/url"
)

// googleNewsPrefix tags collections produced from topic searches.
const googleNewsPrefix = "GoogleNews:"

// GoogleNewsFetcher searches Google News through its RSS search endpoint,
// one query per configured topic, restricted to the last day.
type GoogleNewsFetcher struct {
	*RSSFetcher
}

// NewGoogleNewsFetcher builds one search feed per topic. The topic key is
// both the query and the source tag suffix.
func NewGoogleNewsFetcher(topics map[string]string, client *http.Client, logger *slog.Logger) *GoogleNewsFetcher {
	urls := make(map[string]string, len(topics))
	for topic := range topics {
		urls[googleNewsPrefix+topic] = searchURL(topic)
	}
	return &GoogleNewsFetcher{RSSFetcher: NewRSSFetcher(urls, client, logger)}
}

func searchURL(topic string) string {
	query := url.Values{}
	query.Set("q", topic+" when:1d")
	query.Set("hl", "en-US")
	query.Set("gl", "US")
	query.Set("ceid", "US:en")
	return "https://news.google.com/rss/search?" + query.Encode()
}
