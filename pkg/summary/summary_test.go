package summary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/generate", r.URL.Path)
		w.Write([]byte(`{"response":"Summary: the lecture covered Go."}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	text, err := client.Generate(context.Background(), "granite3.3:2b", "summarize this")
	require.NoError(t, err)
	require.Equal(t, "Summary: the lecture covered Go.", text)
}

func TestGenerateModelNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model 'nope' not found, try pulling it first"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.Generate(context.Background(), "nope", "prompt")
	require.ErrorIs(t, err, ErrModelNotFound)
}

func TestGenerateServiceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // nothing is listening anymore

	client := NewClient(url, 5*time.Second)
	_, err := client.Generate(context.Background(), "granite3.3:2b", "prompt")
	require.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestGenerateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(250 * time.Millisecond)
		w.Write([]byte(`{"response":"too late"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 50*time.Millisecond)
	_, err := client.Generate(context.Background(), "granite3.3:2b", "prompt")
	require.ErrorIs(t, err, ErrTimeout)
}

func TestGenerateEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"   "}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.Generate(context.Background(), "granite3.3:2b", "prompt")
	require.Error(t, err)
}

// fakeGenerator scripts a sequence of results for retry testing.
type fakeGenerator struct {
	errs    []error
	text    string
	calls   int
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, _, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	idx := f.calls
	f.calls++
	if idx < len(f.errs) && f.errs[idx] != nil {
		return "", f.errs[idx]
	}
	return f.text, nil
}

func TestSummarizeRetriesServiceUnavailableOnce(t *testing.T) {
	gen := &fakeGenerator{
		errs: []error{ErrServiceUnavailable, nil},
		text: "the summary",
	}

	s := New(gen, Config{
		Model:        "granite3.3:2b",
		Retries:      1,
		RetryBackoff: time.Millisecond,
	})

	text, err := s.Summarize(context.Background(), "transcript")
	require.NoError(t, err)
	require.Equal(t, "the summary", text)
	require.Equal(t, 2, gen.calls)
}

func TestSummarizeSurfacesServiceUnavailableAfterRetries(t *testing.T) {
	gen := &fakeGenerator{
		errs: []error{ErrServiceUnavailable, ErrServiceUnavailable},
	}

	s := New(gen, Config{
		Model:        "granite3.3:2b",
		Retries:      1,
		RetryBackoff: time.Millisecond,
	})

	_, err := s.Summarize(context.Background(), "transcript")
	require.ErrorIs(t, err, ErrServiceUnavailable)
	require.Equal(t, 2, gen.calls)
}

func TestSummarizeDoesNotRetryModelNotFound(t *testing.T) {
	gen := &fakeGenerator{
		errs: []error{ErrModelNotFound},
	}

	s := New(gen, Config{
		Model:        "missing",
		Retries:      3,
		RetryBackoff: time.Millisecond,
	})

	_, err := s.Summarize(context.Background(), "transcript")
	require.ErrorIs(t, err, ErrModelNotFound)
	require.Equal(t, 1, gen.calls)
}

func TestSummarizeEmbedsTranscriptInPrompt(t *testing.T) {
	gen := &fakeGenerator{text: "ok"}
	s := New(gen, Config{Model: "granite3.3:2b"})

	_, err := s.Summarize(context.Background(), "the quadratic formula lecture")
	require.NoError(t, err)
	require.Len(t, gen.prompts, 1)
	require.Contains(t, gen.prompts[0], "the quadratic formula lecture")
	require.Contains(t, gen.prompts[0], "Key Concepts")
	require.Contains(t, gen.prompts[0], "5 quiz questions")
}

func TestSummarizeWrapsOutput(t *testing.T) {
	long := strings.Repeat("word ", 40)
	gen := &fakeGenerator{text: long}
	s := New(gen, Config{Model: "granite3.3:2b", WrapWidth: 20})

	text, err := s.Summarize(context.Background(), "transcript")
	require.NoError(t, err)
	for _, line := range strings.Split(text, "\n") {
		require.LessOrEqual(t, len(line), 20)
	}
}

func TestBuildPromptFallsBackOnBadTemplate(t *testing.T) {
	cases := []string{"", "no placeholder", "two %s placeholders %s"}
	for _, tmpl := range cases {
		prompt := BuildPrompt(tmpl, "transcript body")
		require.Contains(t, prompt, "transcript body")
		require.Contains(t, prompt, "Summary, Key Concepts, and Terms & Definitions")
	}
}

func TestBuildPromptCustomTemplate(t *testing.T) {
	prompt := BuildPrompt("Condense: %s", "my notes")
	require.Equal(t, "Condense: my notes", prompt)
}

func TestWrapText(t *testing.T) {
	t.Run("preserves blank lines", func(t *testing.T) {
		in := "paragraph one\n\nparagraph two"
		require.Equal(t, in, WrapText(in, 80))
	})

	t.Run("wraps long lines at word boundaries", func(t *testing.T) {
		in := "alpha beta gamma delta"
		require.Equal(t, "alpha beta\ngamma delta", WrapText(in, 11))
	})

	t.Run("leaves oversized words unbroken", func(t *testing.T) {
		in := "supercalifragilistic"
		require.Equal(t, in, WrapText(in, 5))
	})

	t.Run("zero width is a no-op", func(t *testing.T) {
		in := "anything at all"
		require.Equal(t, in, WrapText(in, 0))
	})
}

func TestWriteSummary(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteSummary(dir, "calculus_lecture", "Summary: limits.\n")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "calculus_lecture_summary.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "Summary: limits.\n", string(data))

	// No temp files are left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
