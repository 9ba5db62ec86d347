package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type Client struct {
	client *http.Client
	apiURL string
}

func NewClient(apiURL string, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}

	return &Client{
		client: client,
		apiURL: apiURL,
	}
}

// GetSimplePrices returns USD prices with 24h change for the provided coin ids.
// See https://docs.coingecko.com/reference/simple-price
func (c *Client) GetSimplePrices(ctx context.Context, ids []string) ([]Quote, error) {
	req, err := c.buildRequest(ctx, "simple/price", "simple-price", map[string]string{
		"ids":                 strings.Join(ids, ","),
		"vs_currencies":       "usd",
		"include_24hr_change": "true",
	})
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request do: %w", err)
	}

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var prices SimplePrices
	if err = json.Unmarshal(body, &prices); err != nil {
		return nil, fmt.Errorf("unmarshal body: %w", err)
	}

	quotes := make([]Quote, 0, len(ids))
	for _, id := range ids {
		values, ok := prices[id]
		if !ok {
			continue
		}

		quotes = append(quotes, Quote{
			ID:        id,
			PriceUSD:  values["usd"],
			Change24h: values["usd_24h_change"],
		})
	}

	return quotes, nil
}

func (c *Client) buildRequest(ctx context.Context, subURL, alias string, params map[string]string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		fmt.Sprintf("%s/%s", c.apiURL, subURL),
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	q := req.URL.Query()
	for k, v := range params {
		q.Add(k, v)
	}
	req.URL.RawQuery = q.Encode()

	req.Header.Add("alias", alias)

	return req, nil
}
