package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kulkan/promptiq/internal/logger"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), "", "gemini-1.5-pro", logger.New(false))
	assert.Error(t, err)
}

func TestNewClient(t *testing.T) {
	client, err := NewClient(context.Background(), "test-key", "gemini-1.5-pro", logger.New(false))
	assert.NoError(t, err)
	assert.NotNil(t, client)
	assert.NoError(t, client.Close())
}
