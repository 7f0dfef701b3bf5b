package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jdkato/prose/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/jobtopic/pkg/jobtopic"
	"github.com/cognicore/jobtopic/pkg/jobtopic/ingest"
	"github.com/cognicore/jobtopic/pkg/jobtopic/phrases"
	"github.com/cognicore/jobtopic/pkg/jobtopic/store"
	"github.com/cognicore/jobtopic/pkg/jobtopic/store/memstore"
)

type identityDict struct{}

func (identityDict) Lemmas(word string) []string { return []string{word} }

type nounTagger struct{}

func (nounTagger) Tag(words []string) []tag.Token {
	out := make([]tag.Token, len(words))
	for i, w := range words {
		t := "NN"
		if w == "." {
			t = "."
		}
		out[i] = tag.Token{Text: w, Tag: t}
	}
	return out
}

func setupTestRouter(t *testing.T) (*gin.Engine, *memstore.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := memstore.New()
	logger := log.New(&bytes.Buffer{}, "", 0)
	engine := jobtopic.New(jobtopic.Options{
		Store: st,
		Pipeline: ingest.NewPipeline(
			ingest.NewTokenizer(),
			ingest.NewTaggerWith(nounTagger{}),
			ingest.NewLemmatizer(identityDict{}, nil),
			ingest.NewCleaner(nil),
		),
		PhraseOptions: phrases.DefaultOptions(),
		Logger:        logger,
	})
	return NewRouter(engine, logger), st
}

func trainDescriptions(t *testing.T, st *memstore.Store) {
	t.Helper()
	var corpus [][]string
	for i := 0; i < 10; i++ {
		doc := []string{"machine", "learning"}
		for j := 0; j < 30; j++ {
			doc = append(doc, fmt.Sprintf("w%dx%d", i, j))
		}
		corpus = append(corpus, doc)
	}
	c, _, err := phrases.Train(corpus, "descriptions", phrases.DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, st.SaveCombiner(context.Background(), c))
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) APIError {
	t.Helper()
	var resp APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthCheck(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := do(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","jobs":0}`, w.Body.String())
	assert.Len(t, w.Header().Get("X-Request-ID"), 26)
}

func TestProcessHandler(t *testing.T) {
	router, _ := setupTestRouter(t)

	t.Run("tokens only", func(t *testing.T) {
		w := do(router, http.MethodPost, "/v1/process", `{"text":"Senior Machine Learning role."}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp ProcessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []string{"senior", "machine", "learning", "role"}, resp.Tokens)
		assert.Empty(t, resp.Lemmas)
		assert.Empty(t, resp.Tagged)
	})

	t.Run("trace", func(t *testing.T) {
		w := do(router, http.MethodPost, "/v1/process", `{"text":"Build it.","trace":true}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Tokens []string `json:"tokens"`
			Tagged [][]struct {
				Text     string `json:"text"`
				Category string `json:"category"`
			} `json:"tagged"`
			Lemmas []string `json:"lemmas"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []string{"build"}, resp.Tokens)
		assert.Equal(t, []string{"build", "it", "."}, resp.Lemmas)
		require.Len(t, resp.Tagged, 1)
		assert.Equal(t, "n", resp.Tagged[0][0].Category)
		assert.Equal(t, "", resp.Tagged[0][2].Category)
	})

	t.Run("invalid json", func(t *testing.T) {
		w := do(router, http.MethodPost, "/v1/process", `{"text":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, ErrorCodeInvalidJSON, decodeError(t, w).Code)
	})

	t.Run("blank text", func(t *testing.T) {
		w := do(router, http.MethodPost, "/v1/process", `{"text":"   "}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, ErrorCodeValidationFailed, decodeError(t, w).Code)
	})
}

func TestPhrasesHandler(t *testing.T) {
	router, st := setupTestRouter(t)

	w := do(router, http.MethodPost, "/v1/phrases/descriptions", `{"text":"Machine learning role."}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, ErrorCodeModelNotFound, decodeError(t, w).Code)

	trainDescriptions(t, st)

	w = do(router, http.MethodPost, "/v1/phrases/descriptions", `{"text":"Machine learning role."}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"prefix":"descriptions","tokens":["machine_learning","role"]}`, w.Body.String())

	w = do(router, http.MethodPost, "/v1/phrases/a..b", `{"text":"Machine learning."}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrorCodeValidationFailed, decodeError(t, w).Code)
}

func TestJobHandlers(t *testing.T) {
	router, st := setupTestRouter(t)
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		_, err := st.InsertJob(ctx, store.Job{
			Title:       fmt.Sprintf("Job %d", i),
			URL:         fmt.Sprintf("https://jobs.example.com/%d", i),
			Description: "Analyze data.",
		})
		require.NoError(t, err)
	}

	t.Run("get", func(t *testing.T) {
		w := do(router, http.MethodGet, "/v1/jobs/2", "")
		require.Equal(t, http.StatusOK, w.Code)

		var job store.Job
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
		assert.Equal(t, int64(2), job.ID)
		assert.Equal(t, "Job 2", job.Title)
	})

	t.Run("missing", func(t *testing.T) {
		w := do(router, http.MethodGet, "/v1/jobs/99", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, ErrorCodeJobNotFound, decodeError(t, w).Code)
	})

	t.Run("bad id", func(t *testing.T) {
		w := do(router, http.MethodGet, "/v1/jobs/abc", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("list", func(t *testing.T) {
		w := do(router, http.MethodGet, "/v1/jobs?offset=1&limit=1", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Jobs  []store.Job `json:"jobs"`
			Total int64       `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(3), resp.Total)
		require.Len(t, resp.Jobs, 1)
		assert.Equal(t, "Job 2", resp.Jobs[0].Title)
	})

	t.Run("bad limit", func(t *testing.T) {
		w := do(router, http.MethodGet, "/v1/jobs?limit=0", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRequestIDEchoedInErrors(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/jobs/99", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "req-123", decodeError(t, w).RequestID)
}
