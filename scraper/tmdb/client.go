package tmdb

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"movie-pipeline/models"
)

const userAgent = "movie-pipeline/1.0"

// Catalog is the remote movie catalog the Fetcher harvests.
type Catalog interface {
	// ListPage returns the entry identifiers on one listing page.
	ListPage(ctx context.Context, page int) ([]string, error)
	// GetDetail returns the full record for one identifier.
	GetDetail(ctx context.Context, id string) (*models.RawRecord, error)
}

// Client talks to the TMDB v3 REST API.
type Client struct {
	baseURL  string
	listPath string
	apiKey   string
	http     *retryablehttp.Client
}

// NewClient builds a Client. Requests are never retried: a failed call is
// reported to the caller, which skips the page or entry.
func NewClient(baseURL, listPath, apiKey string, timeout time.Duration) *Client {
	hc := retryablehttp.NewClient()
	hc.Logger = log.New(io.Discard, "", 0)
	hc.RetryMax = 0
	hc.HTTPClient.Timeout = timeout

	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		listPath: "/" + strings.Trim(listPath, "/"),
		apiKey:   apiKey,
		http:     hc,
	}
}

func (c *Client) ListPage(ctx context.Context, page int) ([]string, error) {
	body, err := c.get(ctx, c.listPath, url.Values{"page": {strconv.Itoa(page)}})
	if err != nil {
		return nil, err
	}

	results := gjson.GetBytes(body, "results")
	if !results.IsArray() {
		return nil, fmt.Errorf("tmdb: page %d: response has no results array", page)
	}

	var ids []string
	for _, id := range gjson.GetBytes(body, "results.#.id").Array() {
		if s := id.String(); s != "" {
			ids = append(ids, s)
		}
	}
	return ids, nil
}

func (c *Client) GetDetail(ctx context.Context, id string) (*models.RawRecord, error) {
	body, err := c.get(ctx, "/movie/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("tmdb: movie %s: invalid JSON body", id)
	}

	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return nil, fmt.Errorf("tmdb: movie %s: expected a JSON object", id)
	}
	return RecordFromJSON(id, doc), nil
}

// RecordFromJSON flattens the top level of a detail object into a RawRecord,
// keeping the document's key order. Nested lists and objects are kept as
// compact JSON text.
func RecordFromJSON(id string, doc gjson.Result) *models.RawRecord {
	r := &models.RawRecord{ID: id}
	doc.ForEach(func(key, value gjson.Result) bool {
		r.Fields = append(r.Fields, fieldFromJSON(key.String(), value))
		return true
	})
	return r
}

func fieldFromJSON(name string, v gjson.Result) models.RawField {
	f := models.RawField{Name: name}
	switch v.Type {
	case gjson.Null:
		f.Kind = models.KindNull
	case gjson.String:
		f.Kind, f.Value = models.KindString, v.Str
	case gjson.Number:
		f.Kind, f.Value = models.KindNumber, v.Raw
	case gjson.True, gjson.False:
		f.Kind, f.Value = models.KindBool, v.Raw
	default:
		f.Kind = models.KindObject
		if v.IsArray() {
			f.Kind = models.KindList
		}
		f.Value = gjson.Get(v.Raw, "@ugly").Raw
	}
	return f
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	if c.apiKey != "" {
		query.Set("api_key", c.apiKey)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("tmdb: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tmdb: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tmdb: read %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tmdb: GET %s: status %d: %s", path, resp.StatusCode,
			gjson.GetBytes(body, "status_message").String())
	}
	return body, nil
}
