// Package wbapi is a minimal client for the World Bank API v2, used to
// refresh the economy registry that drives the coder.
package wbapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/econcoder/ccr/internal/logging"
)

// DefaultEndpoint is the public World Bank API base URL.
const DefaultEndpoint = "https://api.worldbank.org/v2"

// HTTPClient is the interface for making HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for creating a new client.
type ClientConfig struct {
	Endpoint string
	Lang     string
	PerPage  int
	Timeout  time.Duration
	Client   HTTPClient
}

// Client talks to the World Bank API.
type Client struct {
	endpoint   string
	lang       string
	perPage    int
	httpClient HTTPClient
	logger     zerolog.Logger
}

// NewClient creates a World Bank API client, applying defaults for any
// zero-valued config field.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Lang == "" {
		cfg.Lang = "en"
	}
	if cfg.PerPage == 0 {
		cfg.PerPage = 1000
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		endpoint:   strings.TrimSuffix(cfg.Endpoint, "/"),
		lang:       cfg.Lang,
		perPage:    cfg.PerPage,
		httpClient: cfg.Client,
		logger:     logging.GetLogger("wbapi"),
	}
}

// Economy is one row of the API's economy dimension. Aggregate rows
// (regions, income groups) carry "Aggregates" as their region value.
type Economy struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Region    string `json:"region,omitempty"`
	Aggregate bool   `json:"aggregate,omitempty"`
}

// APIError reports a failed or unintelligible API response.
type APIError struct {
	URL  string
	Code int
	Msg  string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("world bank api: [%d] %s (%s)", e.Code, e.Msg, e.URL)
	}
	return fmt.Sprintf("world bank api: %s (%s)", e.Msg, e.URL)
}

// pageHeader is the first element of every v2 list response.
type pageHeader struct {
	Page    int          `json:"page"`
	Pages   int          `json:"pages"`
	Total   int          `json:"total"`
	Message []apiMessage `json:"message"`
}

type apiMessage struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

type economyRow struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Region struct {
		ID    string `json:"id"`
		Value string `json:"value"`
	} `json:"region"`
}

// Economies fetches the full economy list, following the API's paging
// until every page has been read.
func (c *Client) Economies(ctx context.Context) ([]Economy, error) {
	var out []Economy

	page := 1
	for {
		hdr, rows, err := c.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}

		for _, row := range rows {
			region := strings.TrimSpace(row.Region.Value)
			out = append(out, Economy{
				ID:        row.ID,
				Name:      strings.TrimSpace(row.Name),
				Region:    region,
				Aggregate: region == "Aggregates",
			})
		}

		c.logger.Debug().
			Int("page", page).
			Int("pages", hdr.Pages).
			Int("rows", len(rows)).
			Msg("fetched economy page")

		if page >= hdr.Pages {
			break
		}
		page++
	}

	return out, nil
}

func (c *Client) fetchPage(ctx context.Context, page int) (*pageHeader, []economyRow, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("per_page", strconv.Itoa(c.perPage))
	q.Set("page", strconv.Itoa(page))
	reqURL := fmt.Sprintf("%s/%s/economy?%s", c.endpoint, c.lang, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, &APIError{URL: reqURL, Code: resp.StatusCode, Msg: http.StatusText(resp.StatusCode)}
	}

	// The v2 API answers with a two element array: [header, rows]. It
	// sometimes reports errors inside a bare header object instead.
	var parts []json.RawMessage
	if err := json.Unmarshal(body, &parts); err != nil {
		var hdr pageHeader
		if err2 := json.Unmarshal(body, &hdr); err2 == nil && len(hdr.Message) > 0 {
			return nil, nil, c.messageError(reqURL, &hdr)
		}
		return nil, nil, &APIError{URL: reqURL, Msg: "unrecognized response format"}
	}
	if len(parts) == 0 {
		return nil, nil, &APIError{URL: reqURL, Msg: "empty response"}
	}

	var hdr pageHeader
	if err := json.Unmarshal(parts[0], &hdr); err != nil {
		return nil, nil, &APIError{URL: reqURL, Msg: "unrecognized response header"}
	}
	if len(hdr.Message) > 0 {
		return nil, nil, c.messageError(reqURL, &hdr)
	}
	if len(parts) < 2 {
		return nil, nil, &APIError{URL: reqURL, Msg: "response missing data element"}
	}

	var rows []economyRow
	if err := json.Unmarshal(parts[1], &rows); err != nil {
		return nil, nil, &APIError{URL: reqURL, Msg: "unrecognized economy rows"}
	}
	return &hdr, rows, nil
}

func (c *Client) messageError(url string, hdr *pageHeader) error {
	msg := hdr.Message[0]
	return &APIError{URL: url, Msg: fmt.Sprintf("%s: %s", msg.Key, msg.Value)}
}
