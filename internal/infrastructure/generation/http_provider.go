package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/docugen/fulfillment-service/internal/domain"
)

// HTTPProvider talks to one structured-generation backend. Primary and
// secondary providers are two instances of this client with different
// endpoints and credentials.
type HTTPProvider struct {
	name    string
	baseURL string
	apiKey  string
	model   string
	timeout time.Duration
	client  *http.Client
}

func NewHTTPProvider(name, baseURL, apiKey, model string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		name:    name,
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		timeout: timeout,
		client:  &http.Client{},
	}
}

func (p *HTTPProvider) Name() string {
	return p.name
}

type generateRequest struct {
	Model       string              `json:"model"`
	Params      domain.TargetParams `json:"params"`
	Corrections []string            `json:"corrections,omitempty"`
}

type generateResponse struct {
	Plan *domain.GeneratedPlan `json:"plan"`
}

type providerErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (p *HTTPProvider) Generate(ctx context.Context, params domain.TargetParams, corrections []string) (*domain.GeneratedPlan, error) {
	body, err := json.Marshal(generateRequest{
		Model:       p.model,
		Params:      params,
		Corrections: corrections,
	})
	if err != nil {
		return nil, p.typedErr(domain.GenerationErrInvalidRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/v1/generate", p.baseURL), bytes.NewBuffer(body))
	if err != nil {
		return nil, p.typedErr(domain.GenerationErrInvalidRequest, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "deadline exceeded") {
			return nil, p.typedErr(domain.GenerationErrTimeout, err.Error())
		}
		return nil, p.typedErr(domain.GenerationErrServer, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, p.typedErr(domain.GenerationErrServer, err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		return nil, p.classify(resp.StatusCode, respBody)
	}

	var out generateResponse
	if err := json.Unmarshal(respBody, &out); err != nil || out.Plan == nil {
		return nil, p.typedErr(domain.GenerationErrServer, "malformed provider response")
	}
	return out.Plan, nil
}

func (p *HTTPProvider) classify(status int, body []byte) error {
	var errResp providerErrorResponse
	message := fmt.Sprintf("status %d", status)
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return p.typedErr(domain.GenerationErrAuth, message)
	case status == http.StatusPaymentRequired || errResp.Error.Code == "insufficient_quota":
		return p.typedErr(domain.GenerationErrQuota, message)
	case status == http.StatusTooManyRequests:
		return p.typedErr(domain.GenerationErrRateLimit, message)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return p.typedErr(domain.GenerationErrTimeout, message)
	case status >= 500:
		return p.typedErr(domain.GenerationErrServer, message)
	default:
		return p.typedErr(domain.GenerationErrInvalidRequest, message)
	}
}

func (p *HTTPProvider) typedErr(kind domain.GenerationErrorKind, message string) *domain.GenerationError {
	return &domain.GenerationError{Kind: kind, Provider: p.name, Message: message}
}
