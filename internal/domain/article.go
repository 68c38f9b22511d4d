package domain

import "time"

// Article is one normalized news item. Link is the natural identity: two
// entries with the same link are the same article.
type Article struct {
	Title     string
	Source    string
	Link      string
	Published string
	Content   string
	Summary   string
	RankScore float64
}

// RawEntry is the shape collectors hand to the normalizer before any
// enrichment happens.
type RawEntry struct {
	Title           string
	Link            string
	Published       string
	PublishedParsed *time.Time
}

// Collection groups the articles of one named source within a run.
type Collection struct {
	Source   string
	Articles []Article
}

// Add appends unconditionally; link dedup is the caller's concern.
func (c *Collection) Add(article Article) {
	c.Articles = append(c.Articles, article)
}

// Extraction is the root container passed between pipeline stages. Stages
// treat it as a value: the ranking stage returns a fresh Extraction instead
// of mutating its input.
type Extraction struct {
	Collections []Collection
}

// EnsureCollection returns the collection for source, appending a new empty
// one when absent. It never reorders or removes existing collections, so at
// most one collection per source can exist. The returned pointer is only
// valid until the next append to Collections.
func (e *Extraction) EnsureCollection(source string) *Collection {
	for i := range e.Collections {
		if e.Collections[i].Source == source {
			return &e.Collections[i]
		}
	}
	e.Collections = append(e.Collections, Collection{Source: source})
	return &e.Collections[len(e.Collections)-1]
}

// TotalArticles counts articles across all collections.
func (e Extraction) TotalArticles() int {
	total := 0
	for _, col := range e.Collections {
		total += len(col.Articles)
	}
	return total
}

// Summary is the structured output of the summarization step.
type Summary struct {
	Overview          string
	KeyPoints         []string
	WhyItMatters      string
	SimpleExplanation string
}

// PersistedArticle is an article row as the store returns it.
type PersistedArticle struct {
	Article
	ID           int64
	CollectionID int64
	CreatedAt    time.Time
}
