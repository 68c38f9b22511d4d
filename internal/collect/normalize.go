package collect

import "NewsDigest/internal/domain"

const publishedLayout = "2006-01-02"

// EntryToArticle maps a raw feed entry onto an Article. It is a pure
// function: content fetching happens elsewhere and the result carries no
// hidden state. A structured parsed date wins over the free-form published
// string; missing fields stay empty strings so downstream string handling
// is total.
func EntryToArticle(source string, entry domain.RawEntry, content string) domain.Article {
	published := entry.Published
	if entry.PublishedParsed != nil {
		published = entry.PublishedParsed.Format(publishedLayout)
	}

	return domain.Article{
		Title:     entry.Title,
		Source:    source,
		Link:      entry.Link,
		Published: published,
		Content:   content,
	}
}
