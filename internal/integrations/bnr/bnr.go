package bnr

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/beevik/etree"
	"github.com/kazicoop/coop-service/internal/config"
	"github.com/sirupsen/logrus"
)

// Client fetches the central bank reference rate feed. The rate plus a fixed
// cooperative margin is offered to the UI as the suggested default interest
// rate for new cooperatives; it never overrides a cooperative's own setting.
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewClient initializes a new reference-rate client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url: cfg.BNRURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

func (c *Client) fetch() ([]byte, error) {
	req, err := http.NewRequest("GET", c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}

	c.log.Debugf("BNR XML response: %s", string(body))
	return body, nil
}

func (c *Client) parseXMLResponse(rawBody []byte) (float64, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return 0, fmt.Errorf("failed to parse XML: %v", err)
	}

	// Most recent entry comes first in the feed
	rates := doc.FindElements("//KeyRates/Rate")
	if len(rates) == 0 {
		return 0, fmt.Errorf("no rate data found in XML")
	}

	var rate float64
	if _, err := fmt.Sscanf(rates[0].Text(), "%f", &rate); err != nil {
		return 0, fmt.Errorf("failed to parse rate: %v", err)
	}

	return rate, nil
}

// GetReferenceRate retrieves the central bank rate and adds the cooperative margin
func (c *Client) GetReferenceRate() (float64, error) {
	body, err := c.fetch()
	if err != nil {
		return 0, err
	}

	rate, err := c.parseXMLResponse(body)
	if err != nil {
		return 0, err
	}

	const coopMargin = 2.5
	rate += coopMargin

	c.log.Infof("Retrieved reference rate: %.2f%% (including %.2f%% cooperative margin)", rate, coopMargin)
	return rate, nil
}
