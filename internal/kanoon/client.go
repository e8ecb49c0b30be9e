// Package kanoon is a thin client for the Indian Kanoon case-law search
// API.
package kanoon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nyayassist/nyayassist/internal/apperr"
)

const (
	defaultBaseURL = "https://api.indiankanoon.org"
	maxResults     = 5
	maxSnippetLen  = 500
)

// Case is one search hit, cleaned for presentation.
type Case struct {
	Title    string `json:"title"`
	DocID    string `json:"doc_id"`
	Snippet  string `json:"snippet"`
	CaseLink string `json:"case_link"`
}

// SearchResult is the outcome of one search call.
type SearchResult struct {
	Cases      []Case
	TotalFound int
}

// Client calls the hosted search API with a fixed auth token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client. baseURL may be empty for the production API.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// upstream response shapes; only the fields we read.
type searchResponse struct {
	Docs []searchDoc `json:"docs"`
}

type searchDoc struct {
	Title    string `json:"title"`
	DocID    any    `json:"docid"`
	TID      any    `json:"tid"`
	Headline string `json:"headline"`
}

type fragmentResponse struct {
	Fragment string `json:"fragment"`
	Content  string `json:"content"`
}

// Search runs a query against the upstream API and returns the top results
// with HTML stripped and snippets truncated. When a hit carries no
// headline, the document-fragment endpoint is tried as a snippet source.
func (c *Client) Search(ctx context.Context, query string, page int) (*SearchResult, error) {
	if c.token == "" {
		return nil, fmt.Errorf("kanoon: API token not configured: %w", apperr.ErrUpstream)
	}

	var resp searchResponse
	endpoint := fmt.Sprintf("%s/search/?formInput=%s&pagenum=%d", c.baseURL, url.QueryEscape(query), page)
	if err := c.post(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	result := &SearchResult{TotalFound: len(resp.Docs)}
	for _, doc := range resp.Docs {
		if len(result.Cases) >= maxResults {
			break
		}
		docID := docIDString(doc)
		if docID == "" {
			continue
		}

		snippet := StripHTML(doc.Headline)
		if snippet == "" {
			snippet = c.fetchFragment(ctx, docID, query)
		}
		if snippet == "" {
			snippet = "No relevant excerpt available."
		} else if len([]rune(snippet)) > maxSnippetLen {
			snippet = string([]rune(snippet)[:maxSnippetLen]) + "..."
		}

		result.Cases = append(result.Cases, Case{
			Title:    StripHTML(doc.Title),
			DocID:    docID,
			Snippet:  snippet,
			CaseLink: "https://indiankanoon.org/doc/" + docID + "/",
		})
	}
	return result, nil
}

// fetchFragment is a best-effort snippet source; failures yield "".
func (c *Client) fetchFragment(ctx context.Context, docID, query string) string {
	var resp fragmentResponse
	endpoint := fmt.Sprintf("%s/docfragment/%s/?formInput=%s", c.baseURL, docID, url.QueryEscape(query))
	if err := c.post(ctx, endpoint, &resp); err != nil {
		return ""
	}
	if resp.Fragment != "" {
		return StripHTML(resp.Fragment)
	}
	return StripHTML(resp.Content)
}

func (c *Client) post(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("kanoon: build request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("kanoon: %w: %v", apperr.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("kanoon: %w: status %d", apperr.ErrUpstream, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("kanoon: %w: decode: %v", apperr.ErrUpstream, err)
	}
	return nil
}

// docIDString normalises the upstream doc id, which arrives as a string or
// a number depending on the endpoint.
func docIDString(doc searchDoc) string {
	for _, v := range []any{doc.DocID, doc.TID} {
		switch id := v.(type) {
		case string:
			if id != "" {
				return id
			}
		case float64:
			return strconv.FormatInt(int64(id), 10)
		}
	}
	return ""
}

var tagRe = regexp.MustCompile(`<[^>]+>`)

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&nbsp;", " ",
)

// StripHTML removes markup tags and decodes the common HTML entities the
// upstream API emits.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(entityReplacer.Replace(tagRe.ReplaceAllString(s, "")))
}
