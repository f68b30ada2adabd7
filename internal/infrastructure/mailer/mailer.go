package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// HTTPMailer posts the artifact to a transactional email API. The provider
// deduplicates nothing; callers are responsible for not re-sending.
type HTTPMailer struct {
	Address string
	APIKey  string
	From    string
	client  *http.Client
}

func NewHTTPMailer(address, apiKey, from string) *HTTPMailer {
	return &HTTPMailer{
		Address: address,
		APIKey:  apiKey,
		From:    from,
		client:  &http.Client{},
	}
}

type sendRequest struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	Attachment  string `json:"attachment"`
	ContentType string `json:"content_type"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (m *HTTPMailer) SendArtifact(ctx context.Context, recipient string, attachment []byte, contentType, recoveryURL string) error {
	requestBodyBytes, err := json.Marshal(sendRequest{
		From:        m.From,
		To:          recipient,
		Subject:     "Your plan is ready",
		Body:        fmt.Sprintf("Your plan is attached. If the attachment is missing you can download it here: %s", recoveryURL),
		Attachment:  base64.StdEncoding.EncodeToString(attachment),
		ContentType: contentType,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/messages", m.Address), bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.APIKey)

	response, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer response.Body.Close()
	responseBodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return nil
	}

	var errResp errorResponse
	if err := json.Unmarshal(responseBodyBytes, &errResp); err != nil {
		return fmt.Errorf("mailer returned status %d", response.StatusCode)
	}
	return errors.New(errResp.Error)
}
