package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-analyzer/internal/parsing"
	"github.com/jonathan/career-analyzer/internal/types"
)

func sampleResult() *types.AnalysisResult {
	return &types.AnalysisResult{
		Bins: []types.Bin{{ID: "interests", Label: "Interests", Color: "#267ABA",
			Bullets: []types.BulletPoint{{ID: "a", Text: "Built robots", Formatting: types.PlainFormatting("Built robots")}}}},
		Analytics: types.Analytics{
			Distribution: []types.Distribution{{BinID: "interests", Count: 1, Percentage: 100}},
			TopCategory:  "Interests",
			Suggestions:  []string{},
		},
		Timestamp: time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
	}
}

func TestParseResume(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/parse-resume", r.URL.Path)
		assert.Equal(t, DefaultUserAgent, r.UserAgent())

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "resume.pdf", header.Filename)
		data, _ := io.ReadAll(file)
		assert.Equal(t, "%PDF-fake", string(data))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"1","text":"Led team","formatting":{"bold":[],"italic":[]},"original_index":0}]`))
	}))
	defer srv.Close()

	bullets, err := New(srv.URL+"/api/").ParseResume(context.Background(), "resume.pdf", strings.NewReader("%PDF-fake"))
	require.NoError(t, err)
	require.Len(t, bullets, 1)
	assert.Equal(t, "Led team", bullets[0].Text)
	assert.False(t, bullets[0].IsDuplicate)
}

func TestParseResume_ErrorVerbatim(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"error envelope", `{"error":"Only PDF and DOCX files are supported"}`, "Only PDF and DOCX files are supported"},
		{"detail envelope", `{"detail":"Parsing failed: bad xref"}`, "Parsing failed: bad xref"},
		{"plain text", "upstream exploded", "upstream exploded"},
		{"empty", "", "400 Bad Request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).ParseResume(context.Background(), "cv.docx", strings.NewReader("x"))
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusBadRequest, apiErr.Status)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestParseResume_RejectedBeforeUpload(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := New(srv.URL).ParseResume(context.Background(), "resume.exe", strings.NewReader("MZ"))
		var unsupported *parsing.UnsupportedFormatError
		require.ErrorAs(t, err, &unsupported)
		assert.Equal(t, "resume.exe", unsupported.Filename)
	})

	t.Run("over the default limit", func(t *testing.T) {
		big := strings.NewReader(strings.Repeat("x", int(parsing.DefaultMaxBytes)+1024))
		_, err := New(srv.URL).ParseResume(context.Background(), "resume.pdf", big)
		var tooLarge *parsing.TooLargeError
		require.ErrorAs(t, err, &tooLarge)
		assert.Equal(t, parsing.DefaultMaxBytes, tooLarge.Limit)
	})

	t.Run("over a configured limit", func(t *testing.T) {
		c := New(srv.URL)
		c.MaxUploadBytes = 4
		_, err := c.ParseResume(context.Background(), "resume.DOCX", strings.NewReader("12345"))
		var tooLarge *parsing.TooLargeError
		require.ErrorAs(t, err, &tooLarge)
	})

	assert.Equal(t, 0, calls)

	c := New(srv.URL)
	c.MaxUploadBytes = 4
	_, err := c.ParseResume(context.Background(), "resume.pdf", strings.NewReader("1234"))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestExportJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/export/json", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var got types.AnalysisResult
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "Interests", got.Analytics.TopCategory)

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", "attachment; filename=career_analysis_2024-03-07.json")
		_, _ = w.Write([]byte(`{"student_analysis":{}}`))
	}))
	defer srv.Close()

	exp, err := New(srv.URL).ExportJSON(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.Equal(t, "career_analysis_2024-03-07.json", exp.Filename)
	assert.Equal(t, "application/json", exp.ContentType)
	assert.JSONEq(t, `{"student_analysis":{}}`, string(exp.Data))
}

func TestExportPDF_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"PDF export failed: browser rendering failed"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).ExportPDF(context.Background(), sampleResult())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "PDF export failed: browser rendering failed", apiErr.Message)
}

func TestNarrative(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"paragraph":"p","bullets":["a"],"experienceSuggestions":[{"original":"o","category":"Interests","alignment":"strong","reframe":null,"explanation":"e"}]}`))
	}))
	defer srv.Close()

	resp, err := New(srv.URL).Narrative(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.Equal(t, "p", resp.Paragraph)
	require.Len(t, resp.ExperienceSuggestions, 1)
	assert.Equal(t, types.AlignmentStrong, resp.ExperienceSuggestions[0].Alignment)
	assert.Nil(t, resp.ExperienceSuggestions[0].Reframe)
	assert.Equal(t, 1, calls)
}

func TestNarrative_NoRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"Rate limit exceeded. Please try again in a moment."}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Narrative(context.Background(), sampleResult())
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).Narrative(context.Background(), sampleResult())
	var clientErr *Error
	require.ErrorAs(t, err, &clientErr)
	assert.Contains(t, err.Error(), "HTTP request failed")
}

func TestInvalidBaseURL(t *testing.T) {
	_, err := New("not a url").ExportJSON(context.Background(), sampleResult())
	var clientErr *Error
	require.ErrorAs(t, err, &clientErr)
	assert.Contains(t, err.Error(), "invalid URL")
}
