package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"recipechat/internal/domain"
)

// HubLoader reads dataset rows from the Hugging Face datasets-server API.
type HubLoader struct {
	baseURL    string
	dataset    string
	config     string
	split      string
	token      string
	maxRows    int
	pageSize   int
	client     *http.Client
	maxRetries int
	logger     *zap.Logger
}

// HubConfig configures the datasets-server loader.
type HubConfig struct {
	BaseURL  string
	Dataset  string
	Config   string
	Split    string
	TokenEnv string
	// MaxRows caps the number of loaded records; 0 loads the whole split.
	MaxRows  int
	PageSize int
	Timeout  time.Duration
}

// maxPageSize is the largest page the datasets-server accepts.
const maxPageSize = 100

// NewHubLoader creates a loader using the provided configuration.
func NewHubLoader(cfg HubConfig, logger *zap.Logger) *HubLoader {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://datasets-server.huggingface.co"
	}
	if cfg.Config == "" {
		cfg.Config = "default"
	}
	if cfg.Split == "" {
		cfg.Split = "train"
	}
	if cfg.PageSize <= 0 || cfg.PageSize > maxPageSize {
		cfg.PageSize = maxPageSize
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	var token string
	if cfg.TokenEnv != "" {
		token = os.Getenv(cfg.TokenEnv)
	}
	return &HubLoader{
		baseURL:    cfg.BaseURL,
		dataset:    cfg.Dataset,
		config:     cfg.Config,
		split:      cfg.Split,
		token:      token,
		maxRows:    cfg.MaxRows,
		pageSize:   cfg.PageSize,
		client:     &http.Client{Timeout: t},
		maxRetries: 5,
		logger:     logger,
	}
}

// Load pages through the split and returns one document per row.
func (l *HubLoader) Load(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document
	offset := 0
	for {
		length := l.pageSize
		if l.maxRows > 0 && l.maxRows-len(docs) < length {
			length = l.maxRows - len(docs)
		}
		payload, err := l.fetchPage(ctx, offset, length)
		if err != nil {
			return nil, &domain.DatasetLoadError{Source: l.dataset, Err: err}
		}
		rows := gjson.GetBytes(payload, "rows")
		if !rows.IsArray() {
			return nil, &domain.DatasetLoadError{Source: l.dataset, Err: errors.New("response has no rows array")}
		}
		n := 0
		var rowErr error
		rows.ForEach(func(_, row gjson.Result) bool {
			text := row.Get("row.text")
			if text.Type != gjson.String {
				rowErr = fmt.Errorf("row %d has no text field", row.Get("row_idx").Int())
				return false
			}
			docs = append(docs, domain.Document{ID: DocumentID(len(docs)), Content: text.String()})
			n++
			return true
		})
		if rowErr != nil {
			return nil, &domain.DatasetLoadError{Source: l.dataset, Err: rowErr}
		}
		offset += n
		total := gjson.GetBytes(payload, "num_rows_total").Int()
		l.logger.Debug("dataset page loaded",
			zap.Int("offset", offset),
			zap.Int("rows", n),
			zap.Int64("total", total))
		if n == 0 || int64(offset) >= total || (l.maxRows > 0 && len(docs) >= l.maxRows) {
			break
		}
	}
	return docs, nil
}

func (l *HubLoader) fetchPage(ctx context.Context, offset, length int) ([]byte, error) {
	q := url.Values{}
	q.Set("dataset", l.dataset)
	q.Set("config", l.config)
	q.Set("split", l.split)
	q.Set("offset", strconv.Itoa(offset))
	q.Set("length", strconv.Itoa(length))
	endpoint := fmt.Sprintf("%s/rows?%s", l.baseURL, q.Encode())

	for attempt := 0; attempt <= l.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		if l.token != "" {
			req.Header.Set("Authorization", "Bearer "+l.token)
		}
		resp, err := l.client.Do(req)
		if err != nil {
			if attempt < l.maxRetries && ctx.Err() == nil {
				if err := sleep(ctx, retryDelay(attempt)); err != nil {
					return nil, err
				}
				continue
			}
			return nil, err
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			delay := retryDelay(attempt)
			// Respect Retry-After if provided
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, err := strconv.Atoi(ra); err == nil {
					delay = time.Duration(secs) * time.Second
				}
			}
			_ = resp.Body.Close()
			if attempt < l.maxRetries {
				l.logger.Warn("datasets-server busy, retrying",
					zap.Int("status", resp.StatusCode),
					zap.Int("attempt", attempt+1),
					zap.Duration("delay", delay))
				if err := sleep(ctx, delay); err != nil {
					return nil, err
				}
				continue
			}
			return nil, fmt.Errorf("datasets-server rows failed: %s", resp.Status)
		}

		payload, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 300 {
			msg := gjson.GetBytes(payload, "error").String()
			if msg == "" {
				msg = resp.Status
			}
			return nil, fmt.Errorf("datasets-server rows failed: %s", msg)
		}
		if !gjson.ValidBytes(payload) {
			return nil, errors.New("datasets-server returned invalid JSON")
		}
		return payload, nil
	}
	return nil, errors.New("datasets-server rows failed: retries exhausted")
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	// exponential backoff capped at 5s
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
