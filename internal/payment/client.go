package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Client charges through an HTTP JSON endpoint.
type Client struct {
	url  string
	http *http.Client
}

func NewClient(url string, httpClient *http.Client) *Client {
	return &Client{url: url, http: httpClient}
}

type chargeRequest struct {
	Amount      float64 `json:"amount"`
	CartSummary string  `json:"cart_summary"`
}

type chargeResponse struct {
	Success   bool   `json:"success"`
	Reference string `json:"reference"`
	Reason    string `json:"reason"`
}

func (c *Client) Charge(ctx context.Context, amount float64, cartSummary string) (Receipt, error) {
	raw, err := json.Marshal(chargeRequest{Amount: amount, CartSummary: cartSummary})
	if err != nil {
		return Receipt{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(raw))
	if err != nil {
		return Receipt{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Receipt{}, &Error{Reason: "processor unreachable"}
	}
	defer resp.Body.Close()

	var out chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Receipt{}, &Error{Reason: "malformed processor response"}
	}
	if !out.Success {
		reason := out.Reason
		if reason == "" {
			reason = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return Receipt{}, &Error{Reason: reason}
	}
	return Receipt{Reference: out.Reference}, nil
}
