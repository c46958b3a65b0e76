package extract

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/lineage/pkg/cache"
	lerrors "github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
)

func once(_ context.Context, fn func() error) error { return fn() }

// fakeServer answers chat completions with content, or with status when it
// is not 200.
func fakeServer(t *testing.T, status int, content string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		if err := json.Unmarshal(body, &req); err != nil || req["model"] == "" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = io.WriteString(w, `{"error":{"message":"denied","type":"invalid_request_error"}}`)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  DefaultModel,
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestClient(srv *httptest.Server) *OpenAI {
	return NewOpenAI(Config{
		APIKey:  "test",
		BaseURL: srv.URL + "/v1",
		Retry:   once,
		Logger:  log.New(io.Discard),
	})
}

func TestParseReply(t *testing.T) {
	p, err := parseReply("```json\n{\"firstName\":\" Arthur \",\"lastName\":\"Pendragon\",\"gender\":\"male\",\"birthDate\":\"1990-05-15\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "Arthur", p.FirstName)
	assert.Equal(t, family.Male, p.Gender)
	assert.Equal(t, "1990-05-15", p.BirthDate)

	for _, in := range []string{
		"",
		"null",
		"not json",
		`{"firstName":"Arthur","gender":"Male"}`,
		`{"firstName":"Arthur","lastName":"Pendragon"}`,
	} {
		_, err := parseReply(in)
		assert.ErrorIs(t, err, ErrNotExtracted, in)
		assert.True(t, lerrors.Is(err, lerrors.ErrCodeNotExtracted), in)
	}
}

func TestBiographyPrompt(t *testing.T) {
	prompt := biographyPrompt(family.Person{FirstName: "Morgana", LastName: "Le Fay", Gender: family.Female, BirthDate: "1985-01-01"})
	assert.Contains(t, prompt, "max 150 words")
	assert.Contains(t, prompt, "Name: Morgana Le Fay")
	assert.Contains(t, prompt, "Born: 1985-01-01 at Unknown")
	assert.Contains(t, prompt, "Died: Unknown at Unknown")
}

func TestOpenAIExtract(t *testing.T) {
	srv, _ := fakeServer(t, http.StatusOK, `{"firstName":"Galahad","lastName":"du Lac","gender":"Male","birthPlace":"Corbenic"}`)
	c := newTestClient(srv)

	p, err := c.Extract(context.Background(), "Galahad du Lac, born in Corbenic")
	require.NoError(t, err)
	assert.Equal(t, &family.Partial{FirstName: "Galahad", LastName: "du Lac", Gender: family.Male, BirthPlace: "Corbenic"}, p)
	assert.Equal(t, DefaultModel, c.Model())
}

func TestOpenAIExtractNothing(t *testing.T) {
	srv, calls := fakeServer(t, http.StatusOK, `{}`)
	c := newTestClient(srv)

	_, err := c.Extract(context.Background(), "the weather is nice")
	assert.ErrorIs(t, err, ErrNotExtracted)

	_, err = c.Extract(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrNotExtracted)
	assert.Equal(t, int32(1), calls.Load(), "blank text should not reach the service")
}

func TestOpenAIUnavailable(t *testing.T) {
	srv, _ := fakeServer(t, http.StatusUnauthorized, "")
	c := newTestClient(srv)

	_, err := c.Extract(context.Background(), "Arthur Pendragon")
	require.Error(t, err)
	assert.True(t, lerrors.Is(err, lerrors.ErrCodeAIUnavailable), "got %v", err)
	assert.False(t, stderrors.Is(err, ErrNotExtracted))

	_, err = c.Biography(context.Background(), family.Person{FirstName: "A", LastName: "B"})
	assert.True(t, lerrors.Is(err, lerrors.ErrCodeAIUnavailable))
}

func TestOpenAIServerErrorIsRetryable(t *testing.T) {
	srv, calls := fakeServer(t, http.StatusServiceUnavailable, "")
	var retried bool
	c := NewOpenAI(Config{
		APIKey:  "test",
		BaseURL: srv.URL + "/v1",
		Logger:  log.New(io.Discard),
		Retry: func(ctx context.Context, fn func() error) error {
			err := fn()
			retried = cache.IsRetryable(err)
			return err
		},
	})

	_, err := c.Extract(context.Background(), "Arthur")
	assert.True(t, lerrors.Is(err, lerrors.ErrCodeAIUnavailable))
	assert.True(t, retried, "5xx should be marked retryable")
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestOpenAIBiography(t *testing.T) {
	srv, _ := fakeServer(t, http.StatusOK, "  Arthur was a king.  ")
	bio, err := newTestClient(srv).Biography(context.Background(), family.Person{FirstName: "Arthur", LastName: "Pendragon"})
	require.NoError(t, err)
	assert.Equal(t, "Arthur was a king.", bio)

	srv, _ = fakeServer(t, http.StatusOK, "")
	_, err = newTestClient(srv).Biography(context.Background(), family.Person{FirstName: "Arthur", LastName: "Pendragon"})
	assert.ErrorIs(t, err, ErrNoBiography)
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Extract(context.Background(), "x")
	assert.True(t, lerrors.Is(err, lerrors.ErrCodeAIUnavailable))
	_, err = Disabled{}.Biography(context.Background(), family.Person{})
	assert.True(t, lerrors.Is(err, lerrors.ErrCodeAIUnavailable))
}

// countingExtractor counts calls and fails while err is set.
type countingExtractor struct {
	calls int
	err   error
}

func (c *countingExtractor) Extract(context.Context, string) (*family.Partial, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &family.Partial{FirstName: "Arthur", LastName: "Pendragon", Gender: family.Male}, nil
}

func (c *countingExtractor) Biography(context.Context, family.Person) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return "A king.", nil
}

func (c *countingExtractor) Model() string { return "fake" }

func TestCached(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	inner := &countingExtractor{}
	c := NewCached(inner, fc, nil)

	for i := 0; i < 2; i++ {
		p, err := c.Extract(ctx, "Arthur Pendragon, king")
		require.NoError(t, err)
		assert.Equal(t, "Arthur", p.FirstName)
	}
	assert.Equal(t, 1, inner.calls, "second extract should hit the cache")

	person := family.Person{FirstName: "Arthur", LastName: "Pendragon", BirthDate: "1990-05-15"}
	for i := 0; i < 2; i++ {
		bio, err := c.Biography(ctx, person)
		require.NoError(t, err)
		assert.Equal(t, "A king.", bio)
	}
	assert.Equal(t, 2, inner.calls)

	person.BirthDate = "1990-05-16"
	_, err = c.Biography(ctx, person)
	require.NoError(t, err)
	assert.Equal(t, 3, inner.calls, "changed facts should miss")

	c.Refresh = true
	_, err = c.Extract(ctx, "Arthur Pendragon, king")
	require.NoError(t, err)
	assert.Equal(t, 4, inner.calls, "refresh should bypass reads")
}

func TestCachedDoesNotCacheFailures(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	inner := &countingExtractor{err: ErrNotExtracted}
	c := NewCached(inner, fc, cache.NewScopedKeyer(nil, "user:usr_1:"))

	_, err = c.Extract(ctx, "???")
	assert.ErrorIs(t, err, ErrNotExtracted)

	inner.err = nil
	p, err := c.Extract(ctx, "???")
	require.NoError(t, err)
	assert.Equal(t, "Pendragon", p.LastName)
	assert.Equal(t, 2, inner.calls)
}

func TestTransportPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, r.Header.Get("User-Agent"))
	}))
	defer srv.Close()

	client := &http.Client{Transport: NewTransport(nil)}
	resp, err := client.Get(srv.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.HasPrefix(string(body), "lineage/"), string(body))
}
