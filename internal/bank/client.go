package bank

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

	"github.com/bambuco/boa/internal/logger"
	"github.com/bambuco/boa/internal/resource"
)

// Suggestion is one typeahead candidate returned by the query endpoint.
// Size is the number of resources matching the suggested query; suggestion
// lists are ordered by descending size.
type Suggestion struct {
	Query string `json:"query"`
	Size  int    `json:"size"`
}

// Filter restricts a search by one metadata key. A filter with several
// values expands to one equality term per value; all filters are combined
// conjunctively.
type Filter struct {
	Meta   string
	Values []string
}

// APIError is a well-formed error payload from the bank. It travels the
// same error path as transport failures.
type APIError struct {
	Message string `json:"message"`
	Info    string `json:"info"`
}

func (e *APIError) Error() string {
	if e.Info != "" {
		return fmt.Sprintf("bank error: %s (%s)", e.Message, e.Info)
	}
	return "bank error: " + e.Message
}

// errorEnvelope is the shape of a bank error response.
type errorEnvelope struct {
	Error *APIError `json:"error"`
}

// Client talks to one object-bank repository.
type Client struct {
	// apiURI is the repository's resources endpoint, e.g.
	// https://bank.example.org/c/main/resources.json
	apiURI string
	http   *http.Client
	logger logger.Logger
}

// New creates a bank client for the given repository API URI.
func New(apiURI string, httpClient *http.Client, log logger.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{apiURI: apiURI, http: httpClient, logger: log}
}

// APIURI returns the repository resources endpoint this client targets.
func (c *Client) APIURI() string { return c.apiURI }

// queriesURI derives the suggestion endpoint from the resources endpoint:
// everything before "/resources" plus "/queries.json".
func (c *Client) queriesURI() string {
	base := c.apiURI
	if idx := strings.Index(base, "/resources"); idx >= 0 {
		base = base[:idx]
	}
	return base + "/queries.json"
}

// Suggest fetches typeahead candidates for a partial query. Filters are
// AND-joined into the single filter parameter the suggestion endpoint
// accepts.
func (c *Client) Suggest(ctx context.Context, q string, n int, filters []Filter) ([]Suggestion, error) {
	params := url.Values{}
	params.Set("q", q)
	params.Set("(n)", strconv.Itoa(n))

	if len(filters) > 0 {
		terms := make([]string, 0, len(filters))
		for _, f := range filters {
			for _, v := range f.Values {
				terms = append(terms, f.Meta+":"+v)
			}
		}
		params.Set("filter", strings.Join(terms, " AND "))
	}

	var suggestions []Suggestion
	if err := c.getJSON(ctx, c.queriesURI(), params, &suggestions); err != nil {
		return nil, err
	}
	return suggestions, nil
}

// Search runs a paged resource query. n is the page size and s the record
// offset; filters map to the search endpoint's indexed metadata params.
func (c *Client) Search(ctx context.Context, q string, n, s int, filters []Filter) ([]resource.Resource, error) {
	params := url.Values{}
	params.Set("q", q)
	params.Set("(n)", strconv.Itoa(n))
	params.Set("(s)", strconv.Itoa(s))

	for _, f := range filters {
		if len(f.Values) == 1 {
			params.Set(fmt.Sprintf("(meta)[%s]", f.Meta), f.Values[0])
			continue
		}
		for i, v := range f.Values {
			params.Set(fmt.Sprintf("(meta)[%s][%d]", f.Meta, i), v)
		}
	}

	var results []resource.Resource
	if err := c.getJSON(ctx, c.apiURI, params, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// Fetch retrieves the full resource behind its about URI.
func (c *Client) Fetch(ctx context.Context, about string) (*resource.Resource, error) {
	var res resource.Resource
	if err := c.getJSON(ctx, about, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) getJSON(ctx context.Context, uri string, params url.Values, out any) error {
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(uri, "?") {
			sep = "&"
		}
		uri += sep + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("bank request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read bank response: %w", err)
	}

	// The bank signals errors as a well-formed payload, sometimes with a
	// 200 status. Check for the envelope before decoding the real shape.
	if apiErr := decodeAPIError(body); apiErr != nil {
		return apiErr
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bank returned status %d for %s", resp.StatusCode, uri)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode bank response: %w", err)
	}
	return nil
}

func decodeAPIError(body []byte) *APIError {
	trimmed := strings.TrimSpace(string(body))
	if !strings.HasPrefix(trimmed, "{") {
		return nil
	}
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}
	return envelope.Error
}
