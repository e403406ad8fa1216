package momo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// 決済プロバイダー側のビジネスエラー（resultCode != 0）
type ProviderError struct {
	ResultCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("momo: resultCode=%d message=%s", e.ResultCode, e.Message)
}

type Client struct {
	endpoint   string
	httpClient *http.Client
}

// タイムアウトは必須。MoMoが応答しない場合は作成失敗として扱う
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CreatePayment は決済作成をMoMoへ投げてpayUrlを受け取る。
func (c *Client) CreatePayment(ctx context.Context, req CreateRequest) (CreateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return CreateResponse{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return CreateResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return CreateResponse{}, fmt.Errorf("momo: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return CreateResponse{}, fmt.Errorf("momo: unexpected status %d", resp.StatusCode)
	}

	var out CreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return CreateResponse{}, fmt.Errorf("momo: decode response: %w", err)
	}

	if out.ResultCode != 0 {
		return CreateResponse{}, &ProviderError{ResultCode: out.ResultCode, Message: out.Message}
	}

	return out, nil
}
