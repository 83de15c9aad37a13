package client

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/itops/staffdesk/pkg/alerts"
	apperrors "github.com/itops/staffdesk/pkg/errors"
	"github.com/itops/staffdesk/pkg/logger"
	"github.com/itops/staffdesk/pkg/metrics"
	json "github.com/json-iterator/go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const userAgent = "staffdesk/0.3.0"

// Severity decides how loudly a failed call is reported.
type Severity int

const (
	// Loud failures raise a de-duplicated global alert.
	Loud Severity = iota
	// Silent failures are only logged. Reserved for unattended or
	// best-effort calls such as the notification poll and print history.
	Silent
)

// TokenSource supplies the bearer token and forgets it when the server rejects it.
type TokenSource interface {
	Token() string
	Clear() error
}

// File is one part of a multipart upload
type File struct {
	Param  string
	Name   string
	Reader io.Reader
}

// Call describes a single API request
type Call struct {
	Method string
	Path   string
	Query  map[string]string
	Body   interface{}
	Form   map[string]string
	Files  []File
	Result interface{}

	Severity Severity
	// NoAlert opts out of the global alert while keeping session handling.
	NoAlert bool
	// Public calls carry no token and a 401 does not end the session.
	Public bool
}

// Options configures a Client
type Options struct {
	BaseURL        string
	Timeout        time.Duration
	Tokens         TokenSource
	Notifier       *alerts.Notifier
	Metrics        *metrics.Metrics
	OnUnauthorized func()
	Transport      http.RoundTripper
}

// Client wraps resty with token handling and failure classification
type Client struct {
	http           *resty.Client
	tokens         TokenSource
	notifier       *alerts.Notifier
	metrics        *metrics.Metrics
	onUnauthorized func()
}

// New creates a client
func New(opts Options) *Client {
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	httpClient := resty.New()
	httpClient.SetTransport(otelhttp.NewTransport(transport))
	httpClient.SetBaseURL(strings.TrimRight(opts.BaseURL, "/"))
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}
	httpClient.SetHeader("User-Agent", userAgent)
	httpClient.JSONMarshal = json.ConfigCompatibleWithStandardLibrary.Marshal
	httpClient.JSONUnmarshal = json.ConfigCompatibleWithStandardLibrary.Unmarshal

	httpClient.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logger.Debug("HTTP Request", "method", req.Method, "url", req.URL)
		return nil
	})
	httpClient.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.Debug("HTTP Response", "status", resp.StatusCode(), "took", resp.Time())
		return nil
	})

	notifier := opts.Notifier
	if notifier == nil {
		notifier = alerts.NewNotifier(nil, 0)
	}

	return &Client{
		http:           httpClient,
		tokens:         opts.Tokens,
		notifier:       notifier,
		metrics:        opts.Metrics,
		onUnauthorized: opts.OnUnauthorized,
	}
}

// Notifier returns the alert notifier shared with feature code
func (c *Client) Notifier() *alerts.Notifier {
	return c.notifier
}

// Do sends the call and returns a classified *errors.AppError on failure.
func (c *Client) Do(ctx context.Context, call Call) (*resty.Response, error) {
	token := ""
	if c.tokens != nil {
		token = c.tokens.Token()
	}

	if !call.Public && token == "" {
		err := apperrors.SessionExpiredError()
		logger.Warn("No session for protected call", "path", call.Path)
		c.endSession()
		c.report(call, err)
		return nil, err
	}

	req := c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString())
	if !call.Public {
		req.SetAuthToken(token)
	}
	if len(call.Query) > 0 {
		req.SetQueryParams(call.Query)
	}
	if call.Body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(call.Body)
	}
	if len(call.Form) > 0 && len(call.Files) == 0 {
		req.SetFormData(call.Form)
	}
	if len(call.Files) > 0 {
		if len(call.Form) > 0 {
			req.SetMultipartFormData(call.Form)
		}
		for _, f := range call.Files {
			req.SetFileReader(f.Param, f.Name, f.Reader)
		}
	}
	if call.Result != nil {
		req.SetResult(call.Result)
	}

	resp, err := req.Execute(call.Method, call.Path)
	if err != nil {
		appErr := apperrors.FromTransport(err)
		c.report(call, appErr)
		return resp, appErr
	}

	if !resp.IsSuccess() {
		appErr := apperrors.FromStatus(resp.StatusCode(), serverMessage(resp.Body()))
		if resp.StatusCode() == http.StatusUnauthorized {
			if call.Public {
				appErr.Message = "Invalid username or password"
				appErr.Suggestion = ""
			} else {
				c.endSession()
			}
		}
		c.report(call, appErr)
		return resp, appErr
	}

	c.metrics.ObserveRequest(call.Method, "ok")
	c.notifier.Resolve(episodeKeys...)
	return resp, nil
}

var episodeKeys = []string{
	alertKey(apperrors.KindNetwork),
	alertKey(apperrors.KindTimeout),
	alertKey(apperrors.KindServer),
	alertKey(apperrors.KindForbidden),
	alertKey(apperrors.KindAuth),
}

func alertKey(kind apperrors.Kind) string {
	return "http:" + string(kind)
}

func (c *Client) endSession() {
	if c.tokens != nil {
		if err := c.tokens.Clear(); err != nil {
			logger.Error("Failed to clear session", "err", err)
		}
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

// report applies the propagation policy: transport, server, auth and
// forbidden failures become one global alert per episode; 404s and
// validation errors go back to the caller only.
func (c *Client) report(call Call, err *apperrors.AppError) {
	c.metrics.ObserveRequest(call.Method, string(err.Kind))

	switch err.Kind {
	case apperrors.KindNotFound:
		logger.Info("Resource not found", "method", call.Method, "path", call.Path)
		return
	case apperrors.KindValidation, apperrors.KindBusiness, apperrors.KindUnknown:
		logger.Warn("Request rejected", "method", call.Method, "path", call.Path, "status", err.StatusCode, "msg", err.Message)
		return
	}

	if call.Severity == Silent {
		logger.Debug("Silent call failed", "method", call.Method, "path", call.Path, "kind", err.Kind)
		return
	}

	logger.Error("Request failed", "method", call.Method, "path", call.Path, "kind", err.Kind, "status", err.StatusCode)

	if call.NoAlert || (call.Public && err.Kind == apperrors.KindAuth) {
		return
	}

	key := alertKey(err.Kind)
	if c.notifier.Raise(key, levelFor(err.Kind), err.Message, err.Suggestion) {
		c.metrics.ObserveAlert(key)
	}
}

func levelFor(kind apperrors.Kind) alerts.Level {
	switch kind {
	case apperrors.KindServer, apperrors.KindAuth:
		return alerts.LevelCritical
	default:
		return alerts.LevelWarning
	}
}

// serverMessage extracts a human readable message from an error body.
func serverMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Detail  interface{} `json:"detail"`
		Message string      `json:"message"`
		Error   string      `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if s, ok := payload.Detail.(string); ok && s != "" {
		return s
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
