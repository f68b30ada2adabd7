package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/docugen/fulfillment-service/internal/domain"
)

type HTTPRefundClient struct {
	Address string
	APIKey  string
	client  *http.Client
}

func NewHTTPRefundClient(address, apiKey string) *HTTPRefundClient {
	return &HTTPRefundClient{
		Address: address,
		APIKey:  apiKey,
		client:  &http.Client{},
	}
}

type refundRequest struct {
	TransactionID string `json:"transaction_id"`
}

type refundErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (c *HTTPRefundClient) Refund(ctx context.Context, transactionID string) error {
	requestBodyBytes, err := json.Marshal(refundRequest{TransactionID: transactionID})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/refunds", c.Address), bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	// Provider-side idempotency: a redelivered sweep cannot double-refund.
	req.Header.Set("Idempotency-Key", transactionID)

	response, err := c.client.Do(req)
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

	var errorResponse refundErrorResponse
	if err := json.Unmarshal(responseBodyBytes, &errorResponse); err != nil {
		return fmt.Errorf("refund failed with status %d", response.StatusCode)
	}
	if errorResponse.Code == "method_not_refundable" {
		return domain.ErrRefundUnsupported
	}
	return errors.New(errorResponse.Error)
}
