// internal/chat/genai/client.go
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"chatfood-service/internal/common/errors"
	"chatfood-service/internal/common/httpclient"
	"chatfood-service/internal/common/logger"
	"chatfood-service/internal/common/metrics"
	"chatfood-service/internal/models"
)

// Fixed user-facing replies for provider failures. The reply is always safe
// to display; the accompanying error carries the classification.
const (
	ReplyInvalidCredentials = "The AI service API key is not valid. Please check the service configuration."
	ReplyNoPermission       = "This account has no permission to use the AI service. Please check the account."
	ReplyUnavailable        = "Sorry, I cannot reach the AI service right now."
)

const systemPrompt = `You are a friendly and natural food recommendation chatbot for Korean dishes.

Conversation style:
- Keep replies short, one or two sentences.
- Ask one question at a time.
- Always mention concrete dish names (for example: Kimchi Jjigae, Bibimbap, Sundubu Jjigae).
- Work toward recommending exactly three dishes.

Important rules:
- Remember the previous conversation and build on it.
- Never repeat a question the user has already answered.
- When the user's preference changes, follow the new preference.
- Understand qualifiers like "good for lunch", "easy to find" or "something light" precisely.
- Vary your phrasing between turns so the conversation feels natural.

User profile: %s`

// Client talks to a GPT-style chat completions provider.
type Client struct {
	config *Config
	client *httpclient.Client
	logger logger.Logger
}

func NewClient(cfg *Config, log logger.Logger) *Client {
	return &Client{
		config: cfg,
		client: httpclient.NewClient(cfg.Timeout),
		logger: log.With(map[string]interface{}{
			"component": "genai",
		}),
	}
}

// Reply generates the assistant's next utterance. The returned string is
// always display-ready: provider failures come back as a fixed message plus
// a classified error so the caller can skip downstream extraction.
func (c *Client) Reply(ctx context.Context, message, profileSummary string, history []models.Turn) (string, error) {
	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{
		Role:    RoleSystem,
		Content: fmt.Sprintf(systemPrompt, profileSummary),
	})
	for _, turn := range history {
		role := RoleUser
		if turn.Speaker == models.SpeakerAssistant {
			role = RoleAssistant
		}
		messages = append(messages, Message{Role: role, Content: turn.Text})
	}
	messages = append(messages, Message{Role: RoleUser, Content: message})

	return c.call(ctx, messages)
}

// Complete sends a single standalone prompt with no history or persona.
// Used for delegated extraction requests.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return c.call(ctx, []Message{{Role: RoleUser, Content: prompt}})
}

func (c *Client) call(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model:    c.config.Model,
		Messages: messages,
	})
	if err != nil {
		return ReplyUnavailable, errors.NewProviderUnavailableError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/v1/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return ReplyUnavailable, errors.NewProviderUnavailableError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("chat completion request failed", map[string]interface{}{
			"error": err.Error(),
		})
		metrics.ProviderRequests.WithLabelValues("genai", "error").Inc()
		return ReplyUnavailable, errors.NewProviderUnavailableError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.logger.Error("chat completion rejected: invalid credentials", nil)
		metrics.ProviderRequests.WithLabelValues("genai", "auth_failed").Inc()
		return ReplyInvalidCredentials, errors.NewProviderAuthError("chat completion returned 401")
	case resp.StatusCode == http.StatusForbidden:
		c.logger.Error("chat completion rejected: no permission", nil)
		metrics.ProviderRequests.WithLabelValues("genai", "forbidden").Inc()
		return ReplyNoPermission, errors.NewProviderForbiddenError("chat completion returned 403")
	case resp.StatusCode != http.StatusOK:
		c.logger.Error("chat completion failed", map[string]interface{}{
			"status": resp.StatusCode,
		})
		metrics.ProviderRequests.WithLabelValues("genai", "error").Inc()
		return ReplyUnavailable, errors.NewProviderUnavailableError(fmt.Errorf("status %d", resp.StatusCode))
	}

	var completion completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		metrics.ProviderRequests.WithLabelValues("genai", "error").Inc()
		return ReplyUnavailable, errors.NewProviderUnavailableError(fmt.Errorf("decode response: %w", err))
	}
	if len(completion.Choices) == 0 {
		metrics.ProviderRequests.WithLabelValues("genai", "error").Inc()
		return ReplyUnavailable, errors.NewProviderUnavailableError(fmt.Errorf("empty choices"))
	}

	metrics.ProviderRequests.WithLabelValues("genai", "success").Inc()
	return completion.Choices[0].Message.Content, nil
}
