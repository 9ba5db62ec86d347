package staking

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Client talks to the staking subsystem which tracks staked NOVA balances.
// Voting power is proportional to the caller's staked amount at request time.
type Client struct {
	client *http.Client
	apiURL string
}

type votingPowerResponse struct {
	Address     string `json:"address"`
	VotingPower int64  `json:"voting_power"`
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

func (c *Client) VotingPower(ctx context.Context, address string) (int64, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		fmt.Sprintf("%s/staking/voting-power/%s", c.apiURL, address),
		nil,
	)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	req.Header.Add("alias", "voting-power")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request do: %w", err)
	}

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var power votingPowerResponse
	if err = json.Unmarshal(body, &power); err != nil {
		return 0, fmt.Errorf("unmarshal body: %w", err)
	}

	return power.VotingPower, nil
}
