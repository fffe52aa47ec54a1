// Package wanikani is a minimal client for the WaniKani v2 API, covering
// the one endpoint the pipeline needs: a full paginated dump of /subjects.
package wanikani

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Fenix-Okami/language-learning-anki-generator/internal/common"
)

const subjectsPath = "/subjects"

// page is the collection envelope the API wraps every listing in.
type page struct {
	Object string `json:"object"`
	Pages  struct {
		NextURL *string `json:"next_url"`
	} `json:"pages"`
	TotalCount int               `json:"total_count"`
	Data       []json.RawMessage `json:"data"`
}

type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	log     *zap.Logger
}

func NewClient(cfg common.APIConfig, log *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		httpc:   &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		log:     log,
	}
}

// FetchSubjects walks the subjects collection page by page and returns the
// combined subject array as JSON plus the subject count. It makes exactly
// one pass; retry scheduling belongs to the caller.
func (c *Client) FetchSubjects(ctx context.Context) ([]byte, int, error) {
	if c.token == "" {
		return nil, 0, common.NewError(common.KindConfig, "wanikani api token is required")
	}

	var subjects []json.RawMessage
	url := c.baseURL + subjectsPath
	pages := 0

	for url != "" {
		p, err := c.fetchPage(ctx, url)
		if err != nil {
			return nil, 0, err
		}
		subjects = append(subjects, p.Data...)
		pages++
		c.log.Info("fetched subjects page",
			zap.Int("page", pages),
			zap.Int("subjects_so_far", len(subjects)))

		url = ""
		if p.Pages.NextURL != nil {
			url = *p.Pages.NextURL
		}
	}

	payload, err := json.Marshal(subjects)
	if err != nil {
		return nil, 0, common.WrapError(common.KindValidation, err)
	}
	return payload, len(subjects), nil
}

func (c *Client) fetchPage(ctx context.Context, url string) (*page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, common.WrapError(common.KindTransient, err)
	}
	req.Header.Set("Authorization", "Token token="+c.token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, common.NewError(common.KindTransient, "request %s: %v", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, common.NewError(common.KindTransient, "read response from %s: %v", url, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, common.NewError(common.KindAuth, "wanikani rejected the api token")
	case http.StatusTooManyRequests:
		return nil, common.NewError(common.KindTransient, "rate limited by wanikani")
	default:
		return nil, common.NewError(common.KindTransient,
			"unexpected status %d from %s: %s", resp.StatusCode, url, snippet(body))
	}

	var p page
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, common.NewError(common.KindValidation, "decode page from %s: %v", url, err)
	}
	return &p, nil
}

func snippet(body []byte) string {
	const max = 200
	if len(body) > max {
		return fmt.Sprintf("%s...", body[:max])
	}
	return string(body)
}
