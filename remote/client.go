package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-experience-repository/logging"
)

const (
	experiencesPath = "/api/v2/experiences"

	// RequestIDHeader carries a per-call id for tracing on the server side.
	RequestIDHeader = "X-Request-ID"

	DefaultRequestTimeout   = 30 * time.Second
	DefaultResourceTimeout  = 60 * time.Second
	DefaultMaxRetryAttempts = 3
	DefaultRetryWaitMin     = 200 * time.Millisecond
	DefaultRetryWaitMax     = 2 * time.Second
)

// Config configures the HTTP client. Timeouts are global, never per call.
type Config struct {
	BaseURL string
	// RequestTimeout bounds the wait for response headers.
	RequestTimeout time.Duration
	// ResourceTimeout bounds the whole exchange including the body.
	ResourceTimeout  time.Duration
	MaxRetryAttempts int
	RetryWaitMin     time.Duration
	RetryWaitMax     time.Duration
	// Headers are added to every request.
	Headers map[string]string
}

// DefaultConfig returns the client defaults for baseURL.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:          baseURL,
		RequestTimeout:   DefaultRequestTimeout,
		ResourceTimeout:  DefaultResourceTimeout,
		MaxRetryAttempts: DefaultMaxRetryAttempts,
		RetryWaitMin:     DefaultRetryWaitMin,
		RetryWaitMax:     DefaultRetryWaitMax,
	}
}

// Client is the Remote Data Source. Every method returns either a decoded
// payload or a *NetworkError.
type Client struct {
	baseURL *url.URL
	headers map[string]string
	// reads retries idempotent GETs; writes never retries.
	reads  *retryablehttp.Client
	writes *retryablehttp.Client
	schema *jsonschema.Schema
	logger logging.Logger
}

// NewClient builds a Client. A nil logger discards output.
func NewClient(cfg Config, logger logging.Logger) (*Client, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("remote: invalid base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("remote: base url %q must be absolute", cfg.BaseURL)
	}
	if cfg.MaxRetryAttempts < 0 {
		return nil, fmt.Errorf("remote: max retry attempts must be >= 0")
	}

	schema, err := compileEnvelopeSchema()
	if err != nil {
		return nil, fmt.Errorf("remote: %w", err)
	}

	logger = logger.WithFields(logging.Fields{"component": "remote"})
	httpClient := newHTTPClient(cfg)

	return &Client{
		baseURL: base,
		headers: cfg.Headers,
		reads:   newRetryClient(httpClient, cfg, cfg.MaxRetryAttempts, logger),
		writes:  newRetryClient(httpClient, cfg, 0, logger),
		schema:  schema,
		logger:  logger,
	}, nil
}

func newHTTPClient(cfg Config) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   cfg.RequestTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.ResponseHeaderTimeout = cfg.RequestTimeout
	return &http.Client{
		Transport: transport,
		Timeout:   cfg.ResourceTimeout,
	}
}

func newRetryClient(httpClient *http.Client, cfg Config, retryMax int, logger logging.Logger) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.HTTPClient = httpClient
	client.RetryMax = retryMax
	if cfg.RetryWaitMin > 0 {
		client.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		client.RetryWaitMax = cfg.RetryWaitMax
	}
	client.Logger = retryLogger{logger: logger}
	client.ErrorHandler = keepLastResponse
	return client
}

// keepLastResponse hands the final response back once retries are exhausted
// so the status table applies to it; only transport failures stay errors.
func keepLastResponse(resp *http.Response, err error, _ int) (*http.Response, error) {
	if resp != nil {
		return resp, nil
	}
	return nil, err
}

// GetRecommended fetches experiences with the recommended filter.
func (c *Client) GetRecommended(ctx context.Context) ([]ExperienceDTO, error) {
	query := url.Values{}
	query.Set("filter[recommended]", "true")
	var data []ExperienceDTO
	if err := c.do(ctx, c.reads, http.MethodGet, experiencesPath, query, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// GetRecent fetches the full experience list.
func (c *Client) GetRecent(ctx context.Context) ([]ExperienceDTO, error) {
	var data []ExperienceDTO
	if err := c.do(ctx, c.reads, http.MethodGet, experiencesPath, nil, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// Search filters experiences by title. The query is sent as given.
func (c *Client) Search(ctx context.Context, query string) ([]ExperienceDTO, error) {
	values := url.Values{}
	values.Set("filter[title]", query)
	var data []ExperienceDTO
	if err := c.do(ctx, c.reads, http.MethodGet, experiencesPath, values, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// GetDetails fetches one experience. A success envelope with null data is a
// decoding failure.
func (c *Client) GetDetails(ctx context.Context, id string) (ExperienceDTO, error) {
	var data *ExperienceDTO
	if err := c.do(ctx, c.reads, http.MethodGet, experiencesPath+"/"+url.PathEscape(id), nil, &data); err != nil {
		return ExperienceDTO{}, err
	}
	if data == nil {
		return ExperienceDTO{}, &NetworkError{Kind: KindDecodingFailed, Err: errors.New("experience payload is null")}
	}
	return *data, nil
}

// Like posts a like and returns the server-confirmed likes count.
func (c *Client) Like(ctx context.Context, id string) (int, error) {
	var data likeData
	if err := c.do(ctx, c.writes, http.MethodPost, experiencesPath+"/"+url.PathEscape(id)+"/like", nil, &data); err != nil {
		return 0, err
	}
	return data.LikesCount, nil
}

func (c *Client) do(ctx context.Context, client *retryablehttp.Client, method, path string, query url.Values, out any) error {
	endpoint := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, endpoint.String(), nil)
	if err != nil {
		return &NetworkError{Kind: KindUnknown, Err: err}
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	req.Header.Set(RequestIDHeader, requestID)

	fields := logging.Fields{
		"method":     method,
		"path":       path,
		"request_id": requestID,
	}
	started := time.Now()

	resp, err := client.Do(req)
	if err != nil {
		netErr := fromTransport(err)
		c.logger.Error("remote request failed", netErr, fields)
		return netErr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		netErr := fromTransport(err)
		c.logger.Error("remote response read failed", netErr, fields)
		return netErr
	}

	fields["status"] = resp.StatusCode
	fields["duration_ms"] = time.Since(started).Milliseconds()

	if netErr := c.decode(resp.StatusCode, body, out); netErr != nil {
		c.logger.Warn("remote request unsuccessful", mergeError(fields, netErr))
		return netErr
	}

	c.logger.Debug("remote request completed", fields)
	return nil
}

func (c *Client) decode(status int, body []byte, out any) *NetworkError {
	httpOK := status >= 200 && status <= 299

	if err := validateEnvelope(c.schema, body); err != nil {
		if !httpOK {
			return FromStatusCode(status)
		}
		return &NetworkError{Kind: KindDecodingFailed, Code: status, Err: err}
	}

	envelope := Envelope[json.RawMessage]{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		if !httpOK {
			return FromStatusCode(status)
		}
		return &NetworkError{Kind: KindDecodingFailed, Code: status, Err: err}
	}

	if envelope.Meta.Code != http.StatusOK {
		return fromEnvelope(envelope.Meta)
	}
	if !httpOK {
		return FromStatusCode(status)
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return &NetworkError{Kind: KindDecodingFailed, Code: status, Err: err}
	}
	return nil
}

func mergeError(fields logging.Fields, err *NetworkError) logging.Fields {
	out := make(logging.Fields, len(fields)+2)
	for k, v := range fields {
		out[k] = v
	}
	out["error_kind"] = err.Kind.String()
	out["error"] = err.Error()
	return out
}

// retryLogger adapts logging.Logger to retryablehttp.LeveledLogger.
type retryLogger struct {
	logger logging.Logger
}

func (l retryLogger) Error(msg string, keysAndValues ...any) {
	l.logger.Error(msg, nil, kvFields(keysAndValues))
}

func (l retryLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, kvFields(keysAndValues))
}

func (l retryLogger) Debug(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, kvFields(keysAndValues))
}

func (l retryLogger) Warn(msg string, keysAndValues ...any) {
	l.logger.Warn(msg, kvFields(keysAndValues))
}

func kvFields(keysAndValues []any) logging.Fields {
	fields := make(logging.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}
