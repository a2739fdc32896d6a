package attrshare

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/liviudnicoara/attrshare/middlewares"
)

var (
	defaultTimeout      = 10 * time.Second
	defaultMinWaitRetry = 500 * time.Millisecond
	defaultMaxWaitRetry = 10 * time.Second
)

// RequestExecutor is the interceptor pipeline around an http.Client. It
// attaches the credential before dispatch and classifies every response.
// Configure it before use; it is safe for concurrent calls afterwards.
type RequestExecutor struct {
	client       http.Client
	baseURL      string
	timeout      time.Duration
	policy       Policy
	tokens       TokenSource
	notifier     Notifier
	navigator    Navigator
	middlewares  []middlewares.Middleware
	pipeline     middlewares.Handler
	retryEnabled bool

	MinWaitRetry time.Duration
	MaxWaitRetry time.Duration

	Logger *slog.Logger
}

// NewDefaultRequestExecutor targets baseURL with a 10s per-call timeout.
func NewDefaultRequestExecutor(baseURL string) *RequestExecutor {
	return NewRequestExecutor(http.Client{}, baseURL)
}

func NewRequestExecutor(client http.Client, baseURL string) *RequestExecutor {
	re := &RequestExecutor{
		client:    client,
		baseURL:   baseURL,
		timeout:   defaultTimeout,
		policy:    DefaultPolicy(),
		notifier:  nopNotifier{},
		navigator: nopNavigator{},

		MinWaitRetry: defaultMinWaitRetry,
		MaxWaitRetry: defaultMaxWaitRetry,
		Logger:       slog.Default(),
	}

	re.rebuild()

	return re
}

// WithTimeout sets the default per-call timeout. Descriptors with their own
// Timeout override it, so transfers can run longer than JSON calls.
func (re *RequestExecutor) WithTimeout(timeout time.Duration) *RequestExecutor {
	re.timeout = timeout
	return re
}

// WithSuccessCodes replaces the set of envelope codes treated as success.
func (re *RequestExecutor) WithSuccessCodes(codes ...int) *RequestExecutor {
	re.policy.SuccessCodes = slices.Clone(codes)
	return re
}

func (re *RequestExecutor) WithLoginRoute(path string) *RequestExecutor {
	re.policy.LoginRoute = path
	return re
}

func (re *RequestExecutor) WithMessages(messages Messages) *RequestExecutor {
	re.policy.Messages = messages
	return re
}

func (re *RequestExecutor) WithTokenSource(tokens TokenSource) *RequestExecutor {
	re.tokens = tokens
	return re
}

func (re *RequestExecutor) WithNotifier(notifier Notifier) *RequestExecutor {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	re.notifier = notifier
	return re
}

func (re *RequestExecutor) WithNavigator(navigator Navigator) *RequestExecutor {
	if navigator == nil {
		navigator = nopNavigator{}
	}
	re.navigator = navigator
	return re
}

func (re *RequestExecutor) WithMiddleware(handler middlewares.Middleware) *RequestExecutor {
	re.middlewares = append(re.middlewares, handler)
	re.rebuild()
	return re
}

func (re *RequestExecutor) WithMiddlewares(handlers ...middlewares.Middleware) *RequestExecutor {
	re.middlewares = append(re.middlewares, handlers...)
	re.rebuild()
	return re
}

func (re *RequestExecutor) AddLogging(logger *slog.Logger) *RequestExecutor {
	re.Logger = logger
	return re.WithMiddleware(middlewares.LoggerMiddleware(logger))
}

func (re *RequestExecutor) AddPerformanceMonitor(thresholds middlewares.Thresholds, logger *slog.Logger) *RequestExecutor {
	re.Logger = logger
	return re.WithMiddleware(middlewares.PerformanceMiddleware(thresholds, logger))
}

// WithExponentialRetry enables retries of GET requests on transient
// failures. Calls are not retried unless this is set.
func (re *RequestExecutor) WithExponentialRetry(retry int) *RequestExecutor {
	if re.retryEnabled || retry <= 0 {
		return re
	}

	rh := middlewares.RetryHandler{
		MinWait:    re.MinWaitRetry,
		MaxWait:    re.MaxWaitRetry,
		RetryCount: retry,
		Backoff:    middlewares.ExponentialBackoffTime,
	}

	re.retryEnabled = true

	return re.WithMiddleware(middlewares.RetryMiddleware(rh))
}

// Policy returns a copy of the classification policy in use.
func (re *RequestExecutor) Policy() Policy {
	p := re.policy
	p.SuccessCodes = slices.Clone(p.SuccessCodes)
	return p
}

// Call executes d expecting an envelope. It resolves with the full envelope
// when its code is in the success set.
func (re *RequestExecutor) Call(ctx context.Context, d Descriptor) (*RawEnvelope, error) {
	d.ResponseType = ResponseJSON
	out := re.execute(ctx, d)
	if out.Err != nil {
		return nil, out.Err
	}
	return out.Envelope, nil
}

// Fetch executes d expecting a binary payload, which is returned untouched.
func (re *RequestExecutor) Fetch(ctx context.Context, d Descriptor) ([]byte, error) {
	d.ResponseType = ResponseBinary
	out := re.execute(ctx, d)
	if out.Err != nil {
		return nil, out.Err
	}
	return out.Binary, nil
}

func (re *RequestExecutor) execute(ctx context.Context, d Descriptor) Outcome {
	if ctx == nil {
		ctx = context.Background()
	}

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = re.timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := re.newHTTPRequest(ctx, d)
	if err != nil {
		return Outcome{Err: err}
	}

	authorized, err := middlewares.Authorize(req, re.tokens)
	if err != nil {
		req.Body.Close()
		return Outcome{Err: requestWrapError(err, goerrors.CategoryAuth, "attrshare: read credential",
			map[string]any{"method": d.Method, "path": d.Path})}
	}

	req = authorized

	ex := Exchange{ResponseType: d.ResponseType}

	res, err := re.pipeline(req)
	if err != nil {
		ex.Err = err
	} else if res != nil {
		defer res.Body.Close()

		body, err := io.ReadAll(res.Body)
		if err != nil {
			ex.Err = err
		} else {
			ex.HasResponse = true
			ex.StatusCode = res.StatusCode
			ex.Body = body
		}
	}

	out := Classify(ex, re.policy)
	re.apply(req, out)

	return out
}

func (re *RequestExecutor) apply(req *http.Request, out Outcome) {
	if out.Err != nil {
		re.Logger.Debug("Request rejected", "URL", req.URL, "Method", req.Method, "Error", out.Err.Error())
	}
	if out.Notice != "" {
		re.notifier.Notify(out.Notice)
	}
	if out.Redirect != "" {
		re.navigator.NavigateTo(out.Redirect)
	}
}

func (re *RequestExecutor) newHTTPRequest(ctx context.Context, d Descriptor) (*http.Request, error) {
	ok, base, err := isValidURL(re.baseURL)
	if !ok {
		return nil, err
	}

	u := base.JoinPath(d.Path)

	if len(d.Query) > 0 {
		q := u.Query()
		for k, v := range d.Query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	method := strings.ToUpper(strings.TrimSpace(d.Method))
	if method == "" {
		method = http.MethodGet
	}

	body := io.Reader(http.NoBody)
	if d.Body != nil {
		body, err = d.Body.Reader()
		if err != nil {
			return nil, requestWrapError(err, goerrors.CategoryBadInput, "attrshare: encode request body",
				map[string]any{"method": method, "path": d.Path})
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		if c, ok := body.(io.Closer); ok {
			c.Close()
		}
		return nil, requestWrapError(err, goerrors.CategoryBadInput, "attrshare: create request",
			map[string]any{"method": method, "url": u.String()})
	}

	if d.Body != nil {
		req.Header.Set("Content-Type", d.Body.ContentType())
	}
	if d.ResponseType == ResponseBinary {
		req.Header.Set("Accept", "application/octet-stream")
	} else {
		req.Header.Set("Accept", "application/json, text/plain, */*")
	}

	for k, v := range d.Headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

func (re *RequestExecutor) rebuild() {
	re.pipeline = middlewares.Chain(re.do(), re.middlewares...)
}

func (re *RequestExecutor) do() middlewares.Handler {
	return func(req *http.Request) (*http.Response, error) {
		return re.client.Do(req)
	}
}

func isValidURL(u string) (bool, *url.URL, error) {
	parsedURL, err := url.Parse(u)
	if err != nil {
		return false, parsedURL, requestWrapError(err, goerrors.CategoryBadInput, "attrshare: could not parse base url "+u, nil)
	}

	if parsedURL.Host == "" {
		return false, parsedURL, requestError("attrshare: invalid base url host "+u, goerrors.CategoryBadInput, nil)
	}

	return true, parsedURL, nil
}
