// Package api — клиент заполняемого REST сервиса (users, categories, products).
//
// Сервис для нас "чёрный ящик": клиент знает только эндпоинты, формат тел
// запросов и что считается успехом. Retry нет — каждый вызов ровно один
// HTTP запрос. Таймауты задаёт вызывающий код через context.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/ilkoid/pagination-seeder/pkg/config"
)

// Пути эндпоинтов сервиса.
const (
	PathHealth          = "/actuator/health"
	PathUsers           = "/api/users"
	PathCategories      = "/api/categories"
	PathProducts        = "/api/products"
	PathProductsSlice   = "/api/products/slice"
	PathProductsSearch  = "/api/products/search"
	HeaderRequestID     = "X-Request-Id"
	maxErrorBodyInError = 512
)

// ErrorType представляет тип ошибки при работе с сервисом.
type ErrorType int

const (
	ErrUnknown ErrorType = iota
	ErrConnectionRefused
	ErrTimeout
	ErrStatus
	ErrDecode
	ErrCanceled
)

// String возвращает строковое представление типа ошибки.
func (e ErrorType) String() string {
	switch e {
	case ErrConnectionRefused:
		return "connection_refused"
	case ErrTimeout:
		return "timeout"
	case ErrStatus:
		return "unexpected_status"
	case ErrDecode:
		return "decode_error"
	case ErrCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// HumanMessage возвращает человекочитаемое сообщение для типа ошибки.
func (e ErrorType) HumanMessage() string {
	switch e {
	case ErrConnectionRefused:
		return "Service is not reachable. Make sure the application is running."
	case ErrTimeout:
		return "Request timed out. The service did not answer in time."
	case ErrStatus:
		return "Service answered with an unexpected HTTP status."
	case ErrDecode:
		return "Service answered with a body that could not be decoded."
	case ErrCanceled:
		return "Request was canceled."
	default:
		return "Unknown error while talking to the service."
	}
}

// ErrMissingID — сервис ответил успехом, но в теле нет поля id.
var ErrMissingID = errors.New("response has no id field")

// StatusError — сервис ответил статусом, который не считается успехом.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d, body: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// HTTPClient интерфейс для выполнения HTTP запросов.
//
// Позволяет мокировать HTTP клиент в тестах.
// Стандартный *http.Client реализует этот интерфейс.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client — клиент REST сервиса.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	rateLimit  int // запросов в минуту, 0 = без ограничения
	burst      int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter // путь эндпоинта → limiter
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient подменяет HTTP клиент (тесты, кастомный транспорт).
func WithHTTPClient(hc HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewFromConfig создаёт клиент из конфигурации.
//
// Поля с нулевыми значениями используют дефолтные значения через GetDefaults().
// Таймаут на уровне http.Client не ставится: он разный для health-check
// и остальных запросов и задаётся через context.
func NewFromConfig(cfg config.APIConfig, opts ...Option) (*Client, error) {
	cfg = cfg.GetDefaults()

	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api.base_url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api.base_url must be absolute, got %q", cfg.BaseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{},
		rateLimit:  cfg.RateLimit,
		burst:      cfg.BurstLimit,
		limiters:   make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL возвращает базовый URL сервиса без завершающего слеша.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL собирает абсолютный URL для пути и query параметров.
func (c *Client) URL(path string, params url.Values) string {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// ClassifyError классифицирует ошибку по типу для лучшей диагностики.
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrUnknown
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return ErrStatus
	}
	if errors.Is(err, context.Canceled) {
		return ErrCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return ErrConnectionRefused
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, ErrMissingID) {
		return ErrDecode
	}

	// Запасной вариант по тексту, как у большинства net ошибок
	errMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errMsg, "connection refused"), strings.Contains(errMsg, "no such host"):
		return ErrConnectionRefused
	case strings.Contains(errMsg, "timeout"), strings.Contains(errMsg, "deadline exceeded"):
		return ErrTimeout
	}

	return ErrUnknown
}

// doRequest выполняет один HTTP запрос с учётом rate limit.
//
// Возвращает тело ответа, если статус входит в accept. Иначе — *StatusError.
func (c *Client) doRequest(ctx context.Context, method, path string, params url.Values, body any, accept ...int) ([]byte, error) {
	if err := c.getOrCreateLimiter(path).Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.URL(path, params), reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(HeaderRequestID, uuid.NewString())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	for _, code := range accept {
		if resp.StatusCode == code {
			return respBody, nil
		}
	}

	text := string(respBody)
	if len(text) > maxErrorBodyInError {
		text = text[:maxErrorBodyInError] + "..."
	}
	return nil, &StatusError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Body:       text,
	}
}

// getOrCreateLimiter возвращает limiter для пути или создаёт новый.
//
// rateLimit в запросах/минуту → rate.Limit в запросах/секунду.
// При rateLimit == 0 limiter ничего не ограничивает.
func (c *Client) getOrCreateLimiter(path string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	if limiter, exists := c.limiters[path]; exists {
		return limiter
	}

	limit := rate.Inf
	if c.rateLimit > 0 {
		limit = rate.Limit(float64(c.rateLimit) / 60.0)
	}
	burst := c.burst
	if burst <= 0 {
		burst = 1
	}
	limiter := rate.NewLimiter(limit, burst)
	c.limiters[path] = limiter

	return limiter
}

// Health проверяет доступность сервиса через actuator health endpoint.
// Успех — только 200.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodGet, PathHealth, nil, nil, http.StatusOK)
	return err
}

// create отправляет POST и достаёт id созданного ресурса.
func (c *Client) create(ctx context.Context, path string, body any) (int64, error) {
	raw, err := c.doRequest(ctx, http.MethodPost, path, nil, body, http.StatusOK, http.StatusCreated)
	if err != nil {
		return 0, err
	}

	var created Created
	if err := json.Unmarshal(raw, &created); err != nil {
		return 0, fmt.Errorf("POST %s: unmarshal error: %w", path, err)
	}
	if created.ID == nil {
		return 0, fmt.Errorf("POST %s: %w", path, ErrMissingID)
	}
	return *created.ID, nil
}

// CreateUser создаёт пользователя и возвращает его id.
func (c *Client) CreateUser(ctx context.Context, u UserRequest) (int64, error) {
	return c.create(ctx, PathUsers, u)
}

// CreateCategory создаёт категорию и возвращает её id.
func (c *Client) CreateCategory(ctx context.Context, cat CategoryRequest) (int64, error) {
	return c.create(ctx, PathCategories, cat)
}

// CreateProduct создаёт продукт и возвращает его id.
func (c *Client) CreateProduct(ctx context.Context, p ProductRequest) (int64, error) {
	return c.create(ctx, PathProducts, p)
}

// ListRaw выполняет GET и возвращает тело как есть. Успех — только 200.
func (c *Client) ListRaw(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	raw, err := c.doRequest(ctx, http.MethodGet, path, params, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}

// ListProducts запрашивает страницу продуктов.
func (c *Client) ListProducts(ctx context.Context, req PageRequest) (*Page, error) {
	return c.page(ctx, PathProducts, req, nil)
}

// SliceProducts запрашивает страницу через slice пагинацию (без total).
func (c *Client) SliceProducts(ctx context.Context, req PageRequest) (*Page, error) {
	return c.page(ctx, PathProductsSlice, req, nil)
}

// SearchProducts запрашивает отфильтрованную по цене страницу продуктов.
func (c *Client) SearchProducts(ctx context.Context, filter PriceFilter, req PageRequest) (*Page, error) {
	return c.page(ctx, PathProductsSearch, req, filter.Values())
}

func (c *Client) page(ctx context.Context, path string, req PageRequest, extra url.Values) (*Page, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	params := req.Values()
	for k, vs := range extra {
		for _, v := range vs {
			params.Add(k, v)
		}
	}

	raw, err := c.ListRaw(ctx, path, params)
	if err != nil {
		return nil, err
	}
	return DecodePage(raw)
}
