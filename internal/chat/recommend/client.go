// internal/chat/recommend/client.go
package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"chatfood-service/internal/common/httpclient"
	"chatfood-service/internal/common/logger"
	"chatfood-service/internal/common/metrics"
	"chatfood-service/internal/models"
)

// Client calls the personalization provider. It never surfaces an error:
// every failure path degrades to the static default list.
type Client struct {
	config       *Config
	client       *httpclient.Client
	healthClient *httpclient.Client
	logger       logger.Logger
}

func NewClient(cfg *Config, log logger.Logger) *Client {
	return &Client{
		config:       cfg,
		client:       httpclient.NewClient(cfg.Timeout),
		healthClient: httpclient.NewClient(cfg.HealthTimeout),
		logger: log.With(map[string]interface{}{
			"component": "recommend",
		}),
	}
}

// Recommend fetches a personalized list for the profile. A nil profile, a
// provider failure on every attempt or an empty provider list all fall back
// to DefaultRecommendations.
func (c *Client) Recommend(ctx context.Context, profile *models.UserProfile) []models.Recommendation {
	if profile == nil {
		c.logger.Info("no profile available, serving default recommendations", nil)
		metrics.ProviderFallbacks.WithLabelValues("recommend").Inc()
		return DefaultRecommendations()
	}

	c.probeHealth(ctx)

	payload, err := json.Marshal(profile)
	if err != nil {
		c.logger.Error("encode profile payload failed", map[string]interface{}{
			"error": err.Error(),
		})
		metrics.ProviderFallbacks.WithLabelValues("recommend").Inc()
		return DefaultRecommendations()
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		recs, err := c.post(ctx, payload)
		if err == nil {
			if len(recs) == 0 {
				lastErr = fmt.Errorf("provider returned empty list")
				break
			}
			metrics.ProviderRequests.WithLabelValues("recommend", "success").Inc()
			return recs
		}
		lastErr = err
		c.logger.Warn("recommend attempt failed", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   err.Error(),
		})
	}

	c.logger.Error("personalization unavailable, serving default recommendations", map[string]interface{}{
		"error": lastErr.Error(),
	})
	metrics.ProviderRequests.WithLabelValues("recommend", "error").Inc()
	metrics.ProviderFallbacks.WithLabelValues("recommend").Inc()
	return DefaultRecommendations()
}

// probeHealth is best-effort: a failing probe is logged and the recommend
// call proceeds regardless.
func (c *Client) probeHealth(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/health", nil)
	if err != nil {
		return
	}
	resp, err := c.healthClient.Do(req)
	if err != nil {
		c.logger.Warn("health probe failed, trying recommend anyway", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("health probe returned non-OK, trying recommend anyway", map[string]interface{}{
			"status": resp.StatusCode,
		})
	}
}

func (c *Client) post(ctx context.Context, payload []byte) ([]models.Recommendation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/recommend", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recommend request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recommend status %d", resp.StatusCode)
	}

	var decoded recommendResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode recommend response: %w", err)
	}
	return decoded.Recommendations, nil
}
