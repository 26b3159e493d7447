package labels

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func labelServer(t *testing.T, body string, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGetLabelBeforeLoad(t *testing.T) {
	r := NewResolver("http://127.0.0.1:0/unused", testLogger())

	assert.Equal(t, "military uniform", r.GetLabel(611))
	assert.Equal(t, "Class 99999", r.GetLabel(99999))
}

func TestLoadAndLookup(t *testing.T) {
	srv := labelServer(t, "tench\ngoldfish\ngreat white shark\n", nil)
	r := NewResolver(srv.URL, testLogger())

	require.True(t, r.Load(context.Background()))
	assert.True(t, r.Loaded())
	assert.Equal(t, "tench", r.GetLabel(0))
	assert.Equal(t, "great white shark", r.GetLabel(2))
	assert.Equal(t, "Class 3", r.GetLabel(3))
}

func TestBlankLinesDoNotConsumeIndices(t *testing.T) {
	srv := labelServer(t, "tench\n\n\ngoldfish\n   \nshark\n", nil)
	r := NewResolver(srv.URL, testLogger())

	require.True(t, r.Load(context.Background()))
	assert.Equal(t, "goldfish", r.GetLabel(1))
	assert.Equal(t, "shark", r.GetLabel(2))
}

func TestLoadAllBlankBody(t *testing.T) {
	// The upstream behavior treated a body of blank lines as a successful
	// load over an empty table; here it counts as a failure and the next
	// Load refetches.
	hits := int32(0)
	srv := labelServer(t, "\n\n  \n\n", &hits)
	r := NewResolver(srv.URL, testLogger())

	assert.False(t, r.Load(context.Background()))
	assert.False(t, r.Loaded())
	assert.False(t, r.Load(context.Background()))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestLoadIdempotent(t *testing.T) {
	hits := int32(0)
	srv := labelServer(t, "tench\n", &hits)
	r := NewResolver(srv.URL, testLogger())

	require.True(t, r.Load(context.Background()))
	require.True(t, r.Load(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestLoadTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	r := NewResolver(srv.URL, testLogger())

	assert.False(t, r.Load(context.Background()))
	assert.False(t, r.Loaded())
	// Fallback still answers.
	assert.Equal(t, "military uniform", r.GetLabel(611))
}

func TestConcurrentLoadSingleFetch(t *testing.T) {
	hits := int32(0)
	srv := labelServer(t, "tench\ngoldfish\n", &hits)
	r := NewResolver(srv.URL, testLogger())

	var wg sync.WaitGroup
	results := make([]bool, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Load(context.Background())
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	for _, ok := range results {
		assert.True(t, ok)
	}
}

func TestGetDisplayNameTrimsSynonyms(t *testing.T) {
	srv := labelServer(t, "tench, Tinca tinca\nnotebook, notebook computer\n", nil)
	r := NewResolver(srv.URL, testLogger())
	require.True(t, r.Load(context.Background()))

	assert.Equal(t, "tench", r.GetDisplayName(0))
	assert.Equal(t, "notebook", r.GetDisplayName(1))
	// Full label keeps its synonyms.
	assert.Equal(t, "tench, Tinca tinca", r.GetLabel(0))
	// Placeholders pass through untrimmed.
	assert.Equal(t, "Class 999", r.GetDisplayName(999))
}

func TestClearCacheForcesRefetch(t *testing.T) {
	hits := int32(0)
	srv := labelServer(t, "tench\n", &hits)
	r := NewResolver(srv.URL, testLogger())

	require.True(t, r.Load(context.Background()))
	r.ClearCache()
	assert.False(t, r.Loaded())
	assert.Equal(t, "Class 0", r.GetLabel(0))

	require.True(t, r.Load(context.Background()))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestLoadThousandLabels(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 1000; i++ {
		fmt.Fprintf(&b, "label %d\n", i)
	}
	srv := labelServer(t, b.String(), nil)
	r := NewResolver(srv.URL, testLogger())

	require.True(t, r.Load(context.Background()))
	assert.Equal(t, "label 999", r.GetLabel(999))
	assert.Equal(t, "Class 1000", r.GetLabel(1000))
}
