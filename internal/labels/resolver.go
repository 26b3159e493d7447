// Package labels resolves ImageNet-1K class indices to human-readable names,
// loading the label table from a remote text resource once per process.
package labels

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultURL serves the 1000-entry ImageNet class list, one name per line.
const DefaultURL = "https://raw.githubusercontent.com/pytorch/hub/master/imagenet_classes.txt"

// FetchTimeout bounds the one-shot label download.
const FetchTimeout = 10 * time.Second

// fallback covers a handful of common demo classes so lookups degrade to
// something readable before (or without) a successful load.
var fallback = map[int]string{
	207: "golden retriever",
	285: "Egyptian cat",
	504: "coffee mug",
	611: "military uniform",
	817: "sports car",
	954: "banana",
}

type loadState int

const (
	stateEmpty loadState = iota
	stateLoading
	statePopulated
)

// Resolver caches the index-to-name table. Lookups never block; Load is safe
// to call from any number of goroutines and issues at most one fetch per
// empty-to-populated transition.
type Resolver struct {
	url    string
	client *http.Client
	log    *logrus.Logger

	mu    sync.Mutex
	state loadState
	done  chan struct{}
	table map[int]string
}

// NewResolver builds a resolver fetching from url, or DefaultURL when empty.
func NewResolver(url string, log *logrus.Logger) *Resolver {
	if url == "" {
		url = DefaultURL
	}
	if log == nil {
		log = logrus.New()
	}
	return &Resolver{
		url:    url,
		client: &http.Client{Timeout: FetchTimeout},
		log:    log,
		table:  make(map[int]string),
	}
}

// Load populates the table from the remote list and reports whether it ended
// up populated. Already-populated tables return true without refetching; if
// another Load is in flight the caller waits for it instead of issuing a
// second request. Transport failures and bodies with no usable lines leave
// the table empty and return false, never an error.
func (r *Resolver) Load(ctx context.Context) bool {
	r.mu.Lock()
	switch r.state {
	case statePopulated:
		r.mu.Unlock()
		return true
	case stateLoading:
		done := r.done
		r.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return false
		}
		r.mu.Lock()
		populated := r.state == statePopulated
		r.mu.Unlock()
		return populated
	}

	r.state = stateLoading
	r.done = make(chan struct{})
	done := r.done
	r.mu.Unlock()

	table, err := r.fetch(ctx)

	r.mu.Lock()
	if err != nil || len(table) == 0 {
		// A body with zero parsable lines counts as a failed load so the
		// next caller retries instead of trusting an empty table.
		if err != nil {
			r.log.WithError(err).Warn("label fetch failed, falling back to built-in table")
		} else {
			r.log.Warn("label source contained no labels")
		}
		r.state = stateEmpty
		r.mu.Unlock()
		close(done)
		return false
	}
	r.table = table
	r.state = statePopulated
	r.mu.Unlock()
	close(done)

	r.log.WithField("count", len(table)).Info("label table loaded")
	return true
}

// fetch downloads and parses the newline-delimited label list. Blank lines
// are skipped without consuming an index.
func (r *Resolver) fetch(ctx context.Context) (map[int]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build label request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch labels: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch labels: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read label body: %w", err)
	}

	table := make(map[int]string)
	idx := 0
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		table[idx] = line
		idx++
	}
	return table, nil
}

// GetLabel resolves an index against the loaded table, then the built-in
// fallback, then a generated "Class N" placeholder. It never fails and never
// blocks on an in-flight load.
func (r *Resolver) GetLabel(index int) string {
	r.mu.Lock()
	label, ok := r.table[index]
	r.mu.Unlock()
	if ok {
		return label
	}
	if label, ok := fallback[index]; ok {
		return label
	}
	return fmt.Sprintf("Class %d", index)
}

// GetDisplayName resolves like GetLabel but trims a resolved label to the
// substring before the first comma; ImageNet names often list synonyms
// ("notebook, notebook computer") and only the primary term is shown.
func (r *Resolver) GetDisplayName(index int) string {
	label := r.GetLabel(index)
	if strings.HasPrefix(label, "Class ") {
		return label
	}
	if i := strings.Index(label, ","); i >= 0 {
		return strings.TrimSpace(label[:i])
	}
	return label
}

// Loaded reports whether the primary table is populated.
func (r *Resolver) Loaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == statePopulated
}

// ClearCache empties the table so the next Load refetches.
func (r *Resolver) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == stateLoading {
		return
	}
	r.table = make(map[int]string)
	r.state = stateEmpty
}
