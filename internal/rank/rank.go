// Package rank scores collected articles and keeps the top-K across all
// sources.
package rank

import (
	"context"
	"log/slog"
	"sort"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

// flatEntry remembers the originating source so survivors can be regrouped.
// Flatten order itself (collection index, then article index) is the
// tie-break: the sort below is stable.
type flatEntry struct {
	article domain.Article
	source  string
}

// Select scores every article in the extraction and returns a new Extraction
// holding only the topK highest-scoring survivors, regrouped by source.
//
// Scoring failures degrade that article to 0.0 and never abort the run.
// Sorting is stable on score descending, so ties keep their flatten order
// (collection index, then article index). Survivor collections appear in the
// order their source first shows up in the sorted list, and each source's
// survivors keep their sorted relative order. The input extraction is left
// untouched.
func Select(ctx context.Context, extraction domain.Extraction, scorer ports.Scorer, topK int, logger *slog.Logger) domain.Extraction {
	if topK <= 0 {
		return domain.Extraction{}
	}

	flat := flatten(extraction)

	for i := range flat {
		score, err := scorer.Score(ctx, flat[i].article)
		if err != nil {
			if logger != nil {
				logger.Warn("score article failed",
					"link", flat[i].article.Link,
					"source", flat[i].source,
					"error", err)
			}
			score = 0.0
		}
		flat[i].article.RankScore = score
	}

	sort.SliceStable(flat, func(i, j int) bool {
		return flat[i].article.RankScore > flat[j].article.RankScore
	})

	if topK < len(flat) {
		flat = flat[:topK]
	}

	var survivors domain.Extraction
	for _, entry := range flat {
		survivors.EnsureCollection(entry.source).Add(entry.article)
	}
	return survivors
}

func flatten(extraction domain.Extraction) []flatEntry {
	flat := make([]flatEntry, 0, extraction.TotalArticles())
	for _, col := range extraction.Collections {
		for _, article := range col.Articles {
			flat = append(flat, flatEntry{article: article, source: col.Source})
		}
	}
	return flat
}
