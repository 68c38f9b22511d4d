package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"NewsDigest/internal/digest"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/language"
)

type stubCollector struct {
	extraction domain.Extraction
	gotStart   time.Time
	gotEnd     time.Time
}

func (c *stubCollector) CollectRange(_ context.Context, start, end time.Time) domain.Extraction {
	c.gotStart = start
	c.gotEnd = end
	return c.extraction
}

type fixedScorer struct {
	scores map[string]float64
}

func (s *fixedScorer) Score(_ context.Context, article domain.Article) (float64, error) {
	return s.scores[article.Link], nil
}

type stubSummarizer struct {
	failFor map[string]error
	calls   int
}

func (s *stubSummarizer) Summarize(_ context.Context, title, _ string) (domain.Summary, error) {
	s.calls++
	if err, ok := s.failFor[title]; ok {
		return domain.Summary{}, err
	}
	return domain.Summary{Overview: "summary of " + title}, nil
}

type recordingStore struct {
	insertErr     error
	recipients    []string
	recipientsErr error

	inserted  *domain.Extraction
	listCalls int
}

func (s *recordingStore) InsertExtraction(_ context.Context, extraction domain.Extraction) (int64, error) {
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	s.inserted = &extraction
	return 42, nil
}

func (s *recordingStore) ArticlesCreatedBetween(context.Context, time.Time, time.Time) ([]domain.PersistedArticle, error) {
	return nil, nil
}

func (s *recordingStore) ListRecipientEmails(context.Context) ([]string, error) {
	s.listCalls++
	if s.recipientsErr != nil {
		return nil, s.recipientsErr
	}
	return s.recipients, nil
}

type stubDigest struct {
	items []digest.NewsItem
	err   error
	calls int
}

func (d *stubDigest) BuildDay(context.Context, time.Time) ([]digest.NewsItem, error) {
	d.calls++
	return d.items, d.err
}

type recordingSender struct {
	err error

	subject    string
	body       string
	recipients []string
	calls      int
}

func (s *recordingSender) Send(_ context.Context, subject, htmlBody string, recipients []string) error {
	s.calls++
	s.subject = subject
	s.body = htmlBody
	s.recipients = recipients
	return s.err
}

func sampleExtraction() domain.Extraction {
	var ext domain.Extraction
	col := ext.EnsureCollection("Reuters")
	col.Add(domain.Article{Title: "low", Link: "https://example.com/low", Content: "c1"})
	col.Add(domain.Article{Title: "high", Link: "https://example.com/high", Content: "c2"})
	return ext
}

func newDeps(collector *stubCollector, store *recordingStore, dig *stubDigest, sender *recordingSender) PipelineDeps {
	return PipelineDeps{
		Collector:     collector,
		Scorer:        &fixedScorer{scores: map[string]float64{"https://example.com/low": 10, "https://example.com/high": 90}},
		Summarizer:    &stubSummarizer{},
		Store:         store,
		Digest:        dig,
		Sender:        sender,
		TopK:          1,
		DaysBack:      1,
		Language:      language.ENG,
		SubjectPrefix: "Daily Financial News Digest",
	}
}

func TestProcessDayHappyPath(t *testing.T) {
	t.Parallel()

	collector := &stubCollector{extraction: sampleExtraction()}
	store := &recordingStore{recipients: []string{"reader@example.com"}}
	dig := &stubDigest{items: []digest.NewsItem{{Title: "high", Summary: "<p>s</p>", Link: "https://example.com/high"}}}
	sender := &recordingSender{}

	pipeline := NewPipeline(newDeps(collector, store, dig, sender))
	day := time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC)

	if err := pipeline.ProcessDay(context.Background(), day); err != nil {
		t.Fatalf("ProcessDay: %v", err)
	}

	if !collector.gotStart.Equal(day.AddDate(0, 0, -1)) || !collector.gotEnd.Equal(day) {
		t.Fatalf("collect window [%v, %v]", collector.gotStart, collector.gotEnd)
	}

	if store.inserted == nil {
		t.Fatal("extraction was not persisted")
	}
	if got := store.inserted.TotalArticles(); got != 1 {
		t.Fatalf("expected top-1 selection persisted, got %d articles", got)
	}
	article := store.inserted.Collections[0].Articles[0]
	if article.Title != "high" {
		t.Fatalf("wrong survivor persisted: %+v", article)
	}
	if !strings.Contains(article.Summary, "summary of high") {
		t.Fatalf("summary not attached: %q", article.Summary)
	}

	if sender.calls != 1 {
		t.Fatalf("expected one email, got %d", sender.calls)
	}
	if sender.subject != "Daily Financial News Digest - 2026-08-20" {
		t.Fatalf("subject = %q", sender.subject)
	}
	if len(sender.recipients) != 1 || sender.recipients[0] != "reader@example.com" {
		t.Fatalf("recipients = %v", sender.recipients)
	}
	if !strings.Contains(sender.body, "https://example.com/high") {
		t.Fatalf("digest body missing article link:\n%s", sender.body)
	}
}

func TestProcessDayEmptyCollectionSkipsEverything(t *testing.T) {
	t.Parallel()

	collector := &stubCollector{}
	store := &recordingStore{}
	dig := &stubDigest{}
	sender := &recordingSender{}

	pipeline := NewPipeline(newDeps(collector, store, dig, sender))
	if err := pipeline.ProcessDay(context.Background(), time.Now()); err != nil {
		t.Fatalf("ProcessDay: %v", err)
	}

	if store.inserted != nil {
		t.Fatal("nothing should be persisted for an empty run")
	}
	if dig.calls != 0 || sender.calls != 0 {
		t.Fatal("digest and email must be skipped for an empty run")
	}
}

func TestProcessDayPersistenceFailureAbortsDigestAndEmail(t *testing.T) {
	t.Parallel()

	collector := &stubCollector{extraction: sampleExtraction()}
	store := &recordingStore{insertErr: errors.New("disk full")}
	dig := &stubDigest{}
	sender := &recordingSender{}

	pipeline := NewPipeline(newDeps(collector, store, dig, sender))
	err := pipeline.ProcessDay(context.Background(), time.Now())
	if err == nil {
		t.Fatal("expected persistence failure to surface")
	}
	if !strings.Contains(err.Error(), "persist extraction") {
		t.Fatalf("unexpected error: %v", err)
	}
	if dig.calls != 0 || sender.calls != 0 {
		t.Fatal("digest and email must not run after a persistence failure")
	}
}

func TestProcessDaySummarizeFailureDegradesToPlaceholder(t *testing.T) {
	t.Parallel()

	collector := &stubCollector{extraction: sampleExtraction()}
	store := &recordingStore{}
	dig := &stubDigest{}
	sender := &recordingSender{}

	deps := newDeps(collector, store, dig, sender)
	deps.TopK = 2
	deps.Summarizer = &stubSummarizer{failFor: map[string]error{"high": errors.New("model timeout")}}

	pipeline := NewPipeline(deps)
	if err := pipeline.ProcessDay(context.Background(), time.Now()); err != nil {
		t.Fatalf("ProcessDay: %v", err)
	}

	if store.inserted == nil || store.inserted.TotalArticles() != 2 {
		t.Fatalf("both articles must persist despite summarize failure")
	}
	var failed *domain.Article
	for i := range store.inserted.Collections {
		for j := range store.inserted.Collections[i].Articles {
			a := &store.inserted.Collections[i].Articles[j]
			if a.Title == "high" {
				failed = a
			}
		}
	}
	if failed == nil {
		t.Fatal("summarize-failed article missing from persisted extraction")
	}
	if !strings.HasPrefix(failed.Summary, "Error: ") {
		t.Fatalf("expected error placeholder summary, got %q", failed.Summary)
	}
}

func TestProcessDayDeliveryFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	collector := &stubCollector{extraction: sampleExtraction()}
	store := &recordingStore{recipients: []string{"reader@example.com"}}
	dig := &stubDigest{items: []digest.NewsItem{{Title: "x", Summary: "<p>s</p>"}}}
	sender := &recordingSender{err: errors.New("smtp unreachable")}

	pipeline := NewPipeline(newDeps(collector, store, dig, sender))
	if err := pipeline.ProcessDay(context.Background(), time.Now()); err != nil {
		t.Fatalf("delivery failure must not fail the run: %v", err)
	}
	if sender.calls != 1 {
		t.Fatalf("send attempted %d times, want 1", sender.calls)
	}
}

func TestProcessDayRecipientLookupFailureSkipsSend(t *testing.T) {
	t.Parallel()

	collector := &stubCollector{extraction: sampleExtraction()}
	store := &recordingStore{recipientsErr: errors.New("query failed")}
	dig := &stubDigest{items: []digest.NewsItem{{Title: "x", Summary: "<p>s</p>"}}}
	sender := &recordingSender{}

	pipeline := NewPipeline(newDeps(collector, store, dig, sender))
	if err := pipeline.ProcessDay(context.Background(), time.Now()); err != nil {
		t.Fatalf("recipient lookup failure must not fail the run: %v", err)
	}
	if sender.calls != 0 {
		t.Fatal("email must not be sent without recipients")
	}
}

func TestProcessDayEmptyDigestSkipsEmail(t *testing.T) {
	t.Parallel()

	collector := &stubCollector{extraction: sampleExtraction()}
	store := &recordingStore{recipients: []string{"reader@example.com"}}
	dig := &stubDigest{}
	sender := &recordingSender{}

	pipeline := NewPipeline(newDeps(collector, store, dig, sender))
	if err := pipeline.ProcessDay(context.Background(), time.Now()); err != nil {
		t.Fatalf("ProcessDay: %v", err)
	}
	if sender.calls != 0 {
		t.Fatal("no items means no email")
	}
}

func TestProcessDayWithoutScorerKeepsEverything(t *testing.T) {
	t.Parallel()

	collector := &stubCollector{extraction: sampleExtraction()}
	store := &recordingStore{}

	deps := newDeps(collector, store, &stubDigest{}, &recordingSender{})
	deps.Scorer = nil
	deps.Summarizer = nil

	pipeline := NewPipeline(deps)
	if err := pipeline.ProcessDay(context.Background(), time.Now()); err != nil {
		t.Fatalf("ProcessDay: %v", err)
	}
	if store.inserted == nil || store.inserted.TotalArticles() != 2 {
		t.Fatal("without a scorer every collected article must persist")
	}
}
