package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kulkan/promptiq/internal/evaluation"
	"github.com/kulkan/promptiq/internal/payment"
	"github.com/kulkan/promptiq/internal/usage"
)

// Handler holds the services behind the HTTP surface.
type Handler struct {
	pipeline *evaluation.Pipeline
	store    usage.Store
	payments *payment.Service
	logger   *slog.Logger
}

func NewHandler(pipeline *evaluation.Pipeline, store usage.Store, payments *payment.Service, logger *slog.Logger) *Handler {
	return &Handler{
		pipeline: pipeline,
		store:    store,
		payments: payments,
		logger:   logger.With("component", "api"),
	}
}

// EvaluateHandler runs the evaluation pipeline for a submitted prompt.
// Validation, duplicate, and model-output failures are returned as 200 with
// a structured error body so the client can render them inline; only
// unexpected failures become a 500.
func (h *Handler) EvaluateHandler(c *gin.Context) {
	var sub evaluation.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, errResult := h.pipeline.Evaluate(c.Request.Context(), sub)
	if errResult != nil {
		status := http.StatusOK
		if errResult.Code == evaluation.CodeServerError {
			status = http.StatusInternalServerError
		}
		c.JSON(status, errResult)
		return
	}

	c.JSON(http.StatusOK, result)
}

// EvaluateInfoHandler answers GET probes on the evaluate route.
func (h *Handler) EvaluateInfoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Use POST to evaluate prompts."})
}

// GetUsageHandler reports the free-tier state for the caller's resolved
// client key. Side-effect free.
func (h *Handler) GetUsageHandler(c *gin.Context) {
	key := usage.ClientKey(c.Request)
	record, err := h.store.Check(c.Request.Context(), key)
	if err != nil {
		h.logger.Error("Failed to check usage", "client_key", key, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check usage"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"canUseFree": record.CanUseFree(),
		"usageCount": record.Count,
		"lastUsed":   record.LastUsed,
	})
}

// RecordUsageHandler consumes one free evaluation for the caller's resolved
// client key.
func (h *Handler) RecordUsageHandler(c *gin.Context) {
	key := usage.ClientKey(c.Request)
	count, err := h.store.Increment(c.Request.Context(), key)
	if err != nil {
		h.logger.Error("Failed to record usage", "client_key", key, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update usage"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"usageCount": count,
	})
}

type checkoutRequest struct {
	Prompt string `json:"prompt"`
}

// CheckoutHandler creates a hosted checkout session for a paid evaluation.
func (h *Handler) CheckoutHandler(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prompt is required"})
		return
	}

	origin := c.GetHeader("Origin")
	if origin == "" {
		origin = "http://" + c.Request.Host
	}

	sessionID, err := h.payments.CreateCheckoutSession(req.Prompt, origin)
	if err != nil {
		if errors.Is(err, payment.ErrNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Payments are not available"})
			return
		}
		h.logger.Error("Failed to create checkout session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessionId": sessionID})
}

// WebhookHandler verifies and acknowledges payment provider events.
func (h *Handler) WebhookHandler(c *gin.Context) {
	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No signature provided"})
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	if _, err := h.payments.HandleWebhook(payload, signature); err != nil {
		if errors.Is(err, payment.ErrNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Payments are not available"})
			return
		}
		h.logger.Warn("Webhook signature verification failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// HealthzHandler is the liveness probe.
func (h *Handler) HealthzHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
