// Package harvest populates a phrase corpus from a web article: it fetches a
// page, extracts the readable text, and turns it into sentence phrases and a
// weighted word vocabulary.
package harvest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// maxBodySize caps fetched HTML to protect against untrusted URLs.
const maxBodySize = 10 * 1024 * 1024

// Result is everything harvested from one article.
type Result struct {
	Title     string
	Sentences []string
	// Words is the aggregated vocabulary in order of first appearance, with
	// per-word occurrence counts across the whole article.
	Words []Word
}

// Harvester fetches articles and analyzes their text.
type Harvester struct {
	Client   *http.Client
	Analyzer *Analyzer
	// Workers bounds the concurrent sentence analysis. Defaults to 4.
	Workers int
	// Logger is used for informational messages. nil means no logging.
	Logger *log.Logger
}

// NewHarvester creates a harvester using the given analyzer.
func NewHarvester(a *Analyzer) *Harvester {
	return &Harvester{
		Client:   &http.Client{Timeout: 30 * time.Second},
		Analyzer: a,
		Workers:  4,
	}
}

// Harvest fetches pageURL and returns its sentences and aggregated word
// vocabulary.
func (h *Harvester) Harvest(ctx context.Context, pageURL string) (*Result, error) {
	title, text, err := h.fetchArticle(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	sentences := SplitSentences(text)
	if h.Logger != nil {
		h.Logger.Printf("harvested %q: %d sentences", title, len(sentences))
	}

	words, err := h.analyze(ctx, sentences)
	if err != nil {
		return nil, err
	}

	return &Result{Title: title, Sentences: sentences, Words: words}, nil
}

// fetchArticle downloads the page and extracts its readable text.
func (h *Harvester) fetchArticle(ctx context.Context, pageURL string) (title, text string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}
	// Some sites refuse requests without a browser-like User-Agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", "", fmt.Errorf("read %s: %w", pageURL, err)
	}
	if int64(len(body)) >= int64(maxBodySize) {
		return "", "", fmt.Errorf("fetch %s: body exceeds %d byte limit", pageURL, maxBodySize)
	}

	parsedURL, _ := url.Parse(pageURL)
	article, err := readability.FromReader(bytes.NewReader(body), parsedURL)
	if err != nil {
		return "", "", fmt.Errorf("extract article from %s: %w", pageURL, err)
	}
	return article.Title, article.TextContent, nil
}

// analyze extracts words from each sentence on a worker pool and aggregates
// the counts. Results are merged in sentence order so the aggregated
// vocabulary is deterministic regardless of worker scheduling.
func (h *Harvester) analyze(ctx context.Context, sentences []string) ([]Word, error) {
	workers := h.Workers
	if workers <= 0 {
		workers = 4
	}

	perSentence := make([][]string, len(sentences))

	pool := NewPool(workers, workers*2)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	pool.Start(ctx)

	for i, s := range sentences {
		i, s := i, s
		err := pool.Submit(ctx, func(ctx context.Context) {
			// Each job writes only its own slot, so no locking is needed.
			perSentence[i] = h.Analyzer.Words(s)
		})
		if err != nil {
			pool.Close()
			return nil, err
		}
	}
	pool.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	var order []string
	for _, words := range perSentence {
		for _, w := range words {
			if counts[w] == 0 {
				order = append(order, w)
			}
			counts[w]++
		}
	}

	out := make([]Word, 0, len(order))
	for _, w := range order {
		out = append(out, Word{Text: w, Count: counts[w]})
	}
	return out, nil
}
