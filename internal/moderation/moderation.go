// moderation — клиент антиспам-проверки пользовательского текста (Akismet).
// Текст комментария или события отправляется в comment-check; "true" в ответе
// означает спам. Пустой API-ключ полностью выключает проверку — все тексты
// считаются чистыми.
package moderation

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/explorevent/explorevent/internal/config"
)

// Checker — контракт антиспам-проверки.
type Checker interface {
	// IsSpam возвращает true, если content распознан как спам.
	IsSpam(ctx context.Context, content string) (bool, error)
}

// Akismet — REST-клиент Akismet comment-check.
type Akismet struct {
	cfg    config.ModerationConfig
	client *http.Client

	// endpoint переопределяет адрес comment-check (используется в тестах);
	// пустое значение — боевой адрес, собранный из APIKey.
	endpoint string
}

// New создает клиент модерации. Таймаут HTTP-клиента берется из конфига.
func New(cfg config.ModerationConfig) *Akismet {
	return &Akismet{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// IsSpam выполняет comment-check. При выключенной модерации (пустой ключ)
// всегда возвращает false.
func (a *Akismet) IsSpam(ctx context.Context, content string) (bool, error) {
	const op = "moderation/IsSpam"

	if a.cfg.APIKey == "" {
		return false, nil
	}

	form := url.Values{}
	form.Set("api_key", a.cfg.APIKey)
	form.Set("blog", a.cfg.BlogURL)
	form.Set("comment_type", "comment")
	form.Set("comment_content", content)

	endpoint := a.endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.rest.akismet.com/1.1/comment-check", a.cfg.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	return strings.TrimSpace(string(body)) == "true", nil
}

var _ Checker = (*Akismet)(nil)
