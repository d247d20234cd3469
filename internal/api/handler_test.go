package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kulkan/promptiq/internal/evaluation"
	"github.com/kulkan/promptiq/internal/logger"
	"github.com/kulkan/promptiq/internal/payment"
	"github.com/kulkan/promptiq/internal/usage"
)

const validPrompt = "Explain the water cycle in simple terms, step by step, and return a short summary."

type stubCompleter struct {
	response string
	err      error
}

func (s *stubCompleter) Complete(context.Context, string, string) (string, error) {
	return s.response, s.err
}

func modelResponse() string {
	return `{
		"framework_mapping": {"step_by_step_chain": "match"},
		"structural_scoring": {"clarity": 4, "role": 2, "context": 3, "constraints": 2, "error_handling": 1},
		"overall_score": 10,
		"detailed_feedback": "Feedback.",
		"improvements": ["Add a role"],
		"improved_prompt": "### ROLE\nYou are a teacher."
	}`
}

func setupTestRouter(t *testing.T, completer evaluation.Completer) (*gin.Engine, usage.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.New(false)
	store := usage.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	pipeline := evaluation.NewPipeline(completer, log, 5*time.Second)
	payments := payment.NewService("", "", 999, log)

	router := gin.New()
	SetupRoutes(router, NewHandler(pipeline, store, payments, log))
	return router, store
}

func postJSON(router *gin.Engine, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestEvaluateHandler(t *testing.T) {
	t.Run("valid prompt returns result", func(t *testing.T) {
		router, _ := setupTestRouter(t, &stubCompleter{response: modelResponse()})

		resp := postJSON(router, "/api/evaluate", `{"prompt": "`+validPrompt+`"}`, nil)
		assert.Equal(t, http.StatusOK, resp.Code)

		var result evaluation.Result
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
		assert.Equal(t, 10, result.OverallScore)
		assert.Equal(t, evaluation.Fingerprint(validPrompt), result.Hash)
	})

	t.Run("invalid prompt returns 200 with structured error", func(t *testing.T) {
		router, _ := setupTestRouter(t, &stubCompleter{response: modelResponse()})

		resp := postJSON(router, "/api/evaluate", `{"prompt": "too short"}`, nil)
		assert.Equal(t, http.StatusOK, resp.Code)

		var errResult evaluation.Error
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResult))
		assert.Equal(t, evaluation.CodeInvalidPrompt, errResult.Code)
	})

	t.Run("duplicate within the hour returns DuplicatePrompt", func(t *testing.T) {
		router, _ := setupTestRouter(t, &stubCompleter{response: modelResponse()})

		body, _ := json.Marshal(evaluation.Submission{
			Prompt:   validPrompt,
			LastHash: evaluation.Fingerprint(validPrompt),
			LastTS:   time.Now().Add(-20 * time.Minute).Format(time.RFC3339),
		})
		resp := postJSON(router, "/api/evaluate", string(body), nil)
		assert.Equal(t, http.StatusOK, resp.Code)

		var errResult evaluation.Error
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResult))
		assert.Equal(t, evaluation.CodeDuplicatePrompt, errResult.Code)
	})

	t.Run("unparseable model output returns InvalidAIResponse with raw", func(t *testing.T) {
		router, _ := setupTestRouter(t, &stubCompleter{response: "sorry, prose only"})

		resp := postJSON(router, "/api/evaluate", `{"prompt": "`+validPrompt+`"}`, nil)
		assert.Equal(t, http.StatusOK, resp.Code)

		var errResult evaluation.Error
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResult))
		assert.Equal(t, evaluation.CodeInvalidAIResponse, errResult.Code)
		assert.Equal(t, "sorry, prose only", errResult.Raw)
	})

	t.Run("completion failure returns 500 ServerError", func(t *testing.T) {
		router, _ := setupTestRouter(t, &stubCompleter{err: assert.AnError})

		resp := postJSON(router, "/api/evaluate", `{"prompt": "`+validPrompt+`"}`, nil)
		assert.Equal(t, http.StatusInternalServerError, resp.Code)

		var errResult evaluation.Error
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResult))
		assert.Equal(t, evaluation.CodeServerError, errResult.Code)
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		router, _ := setupTestRouter(t, &stubCompleter{response: modelResponse()})
		resp := postJSON(router, "/api/evaluate", `{not json`, nil)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("GET responds with usage hint", func(t *testing.T) {
		router, _ := setupTestRouter(t, &stubCompleter{response: modelResponse()})
		req, _ := http.NewRequest(http.MethodGet, "/api/evaluate", nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		assert.Equal(t, http.StatusOK, resp.Code)
	})
}

func TestUsageHandlers(t *testing.T) {
	router, _ := setupTestRouter(t, &stubCompleter{response: modelResponse()})
	headers := map[string]string{"X-Forwarded-For": "203.0.113.9"}

	// Previously unseen client can use the free tier.
	req, _ := http.NewRequest(http.MethodGet, "/api/usage", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)

	var status struct {
		CanUseFree bool   `json:"canUseFree"`
		UsageCount int    `json:"usageCount"`
		LastUsed   string `json:"lastUsed"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &status))
	assert.True(t, status.CanUseFree)
	assert.Equal(t, 0, status.UsageCount)

	// Record one usage.
	recordResp := postJSON(router, "/api/usage", "", headers)
	assert.Equal(t, http.StatusOK, recordResp.Code)

	var recorded struct {
		Success    bool `json:"success"`
		UsageCount int  `json:"usageCount"`
	}
	require.NoError(t, json.Unmarshal(recordResp.Body.Bytes(), &recorded))
	assert.True(t, recorded.Success)
	assert.Equal(t, 1, recorded.UsageCount)

	// The free evaluation is now consumed.
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &status))
	assert.False(t, status.CanUseFree)
	assert.Equal(t, 1, status.UsageCount)
	assert.NotEmpty(t, status.LastUsed)

	// A different client is unaffected.
	otherReq, _ := http.NewRequest(http.MethodGet, "/api/usage", nil)
	otherReq.Header.Set("X-Forwarded-For", "198.51.100.2")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, otherReq)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &status))
	assert.True(t, status.CanUseFree)
}

func TestCheckoutHandler(t *testing.T) {
	router, _ := setupTestRouter(t, &stubCompleter{response: modelResponse()})

	t.Run("empty prompt returns 400", func(t *testing.T) {
		resp := postJSON(router, "/api/checkout", `{"prompt": ""}`, nil)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("unconfigured payments return 503", func(t *testing.T) {
		resp := postJSON(router, "/api/checkout", `{"prompt": "`+validPrompt+`"}`, nil)
		assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	})
}

func TestWebhookHandler(t *testing.T) {
	router, _ := setupTestRouter(t, &stubCompleter{response: modelResponse()})

	t.Run("missing signature returns 400", func(t *testing.T) {
		resp := postJSON(router, "/api/webhooks/payment", `{}`, nil)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("unconfigured payments return 503", func(t *testing.T) {
		resp := postJSON(router, "/api/webhooks/payment", `{}`, map[string]string{"Stripe-Signature": "t=1,v1=deadbeef"})
		assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	})
}

func TestHealthz(t *testing.T) {
	router, _ := setupTestRouter(t, &stubCompleter{response: modelResponse()})
	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	router, _ := setupTestRouter(t, &stubCompleter{response: modelResponse()})

	t.Run("generates an id", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/api/usage", nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		assert.NotEmpty(t, resp.Header().Get("X-Request-ID"))
	})

	t.Run("honors an upstream id", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/api/usage", nil)
		req.Header.Set("X-Request-ID", "upstream-id")
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		assert.Equal(t, "upstream-id", resp.Header().Get("X-Request-ID"))
	})
}
