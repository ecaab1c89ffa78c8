// Package api is the HTTP client for the distress server.
//
// It speaks the server's JSON contract: every response carries a
// "success" flag and, on failure, a human-readable "message". Failures come
// back as *ApplicationError (server said no) or *TransportError (no usable
// response). The client keeps a cookie jar so the session cookie set by
// /login is sent on later calls that include credentials.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"distress/internal/helpers"
	"distress/internal/jsonutil"
	"distress/internal/session"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultBaseURL is the server origin used when none is configured.
const DefaultBaseURL = "http://localhost:5000"

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

const tracerName = "distress/api"

// Operation names, used in errors, logs and span names.
const (
	OpLogin       = "login"
	OpRegister    = "register"
	OpLogout      = "logout"
	OpSendSOS     = "send_sos_email"
	OpListHelpers = "get_helpers"
)

// Registration is the body of POST /register. Coordinates are sent as the
// strings the user typed; the server parses them.
type Registration struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"app_password"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// SOS is the body of POST /send_sos_email.
type SOS struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	RecipientEmail string  `json:"recipient_email"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"app_password"`
}

// envelope is the common response shape.
type envelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	Error   string           `json:"error,omitempty"`
	User    *session.User    `json:"user,omitempty"`
	Helpers []helpers.Helper `json:"helpers,omitempty"`
}

// text prefers "message"; some endpoints report failures under "error".
func (e envelope) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// Client calls the distress server.
type Client struct {
	base        *url.URL
	withCookies *http.Client
	noCookies   *http.Client
	tracer      trace.Tracer
	logger      *slog.Logger
	newID       func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient uses hc for requests. If hc has no cookie jar, one is added.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		cp := *hc
		if cp.Jar == nil {
			cp.Jar = c.withCookies.Jar
		}
		c.withCookies = &cp
	}
}

// WithTracerProvider sets the provider used for request spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracer = tp.Tracer(tracerName) }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the server at baseURL ("" means DefaultBaseURL).
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url %q: %w", baseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("server url %q: want http(s)://host[:port]", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	c := &Client{
		base:        u,
		withCookies: &http.Client{Jar: jar},
		tracer:      otel.Tracer(tracerName),
		logger:      slog.Default(),
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	// Same transport, no jar: cookies are neither sent nor stored.
	c.noCookies = &http.Client{
		Transport:     c.withCookies.Transport,
		CheckRedirect: c.withCookies.CheckRedirect,
		Timeout:       c.withCookies.Timeout,
	}
	return c, nil
}

// BaseURL returns the server origin.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Cookies returns the cookies the jar would send to the server.
func (c *Client) Cookies() []*http.Cookie {
	return c.withCookies.Jar.Cookies(c.base)
}

// Login authenticates and returns the server's user record.
func (c *Client) Login(ctx context.Context, email, password string) (session.User, error) {
	var resp envelope
	status, err := c.do(ctx, OpLogin, http.MethodPost, "/login", loginRequest{Email: email, Password: password}, true, &resp)
	if err != nil {
		return session.User{}, err
	}
	if !resp.Success {
		return session.User{}, c.rejected(OpLogin, status, resp)
	}
	if resp.User == nil {
		return session.User{}, &TransportError{Op: OpLogin, Err: errors.New("response has no user record")}
	}
	return *resp.User, nil
}

// Register creates an account. It does not log in and sends no cookies.
func (c *Client) Register(ctx context.Context, r Registration) error {
	var resp envelope
	status, err := c.do(ctx, OpRegister, http.MethodPost, "/register", r, false, &resp)
	if err != nil {
		return err
	}
	if !resp.Success {
		return c.rejected(OpRegister, status, resp)
	}
	return nil
}

// Logout ends the server session. The response body is not inspected;
// only a failed request is an error.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, OpLogout, http.MethodPost, "/logout", nil, true, nil)
	return err
}

// SendSOS asks the server to email the recipient with the given position.
func (c *Client) SendSOS(ctx context.Context, s SOS) error {
	var resp envelope
	status, err := c.do(ctx, OpSendSOS, http.MethodPost, "/send_sos_email", s, true, &resp)
	if err != nil {
		return err
	}
	if !resp.Success {
		return c.rejected(OpSendSOS, status, resp)
	}
	return nil
}

// ListHelpers returns the registered helpers. Implements helpers.Lister.
func (c *Client) ListHelpers(ctx context.Context) ([]helpers.Helper, error) {
	var resp envelope
	status, err := c.do(ctx, OpListHelpers, http.MethodGet, "/get_helpers", nil, true, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, c.rejected(OpListHelpers, status, resp)
	}
	return resp.Helpers, nil
}

// do sends one request. When out is nil the body is drained unread.
// Non-2xx statuses are not errors here: the server reports failures in the
// JSON body, which callers inspect.
func (c *Client) do(ctx context.Context, op, method, path string, body any, cookies bool, out *envelope) (int, error) {
	reqID := c.newID()
	ctx, span := c.tracer.Start(ctx, "api."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("http.route", path),
			attribute.String("distress.request_id", reqID),
			attribute.Bool("distress.credentials", cookies),
		),
	)
	defer span.End()
	log := c.logger.With("op", op, "request_id", reqID)

	rdr, err := jsonutil.EncodeBody(body)
	if err != nil {
		return 0, c.failed(span, log, &TransportError{Op: op, Err: err})
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), rdr)
	if err != nil {
		return 0, c.failed(span, log, &TransportError{Op: op, Err: err})
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)

	hc := c.noCookies
	if cookies {
		hc = c.withCookies
	}
	log.Debug("api request", "method", method, "path", path)
	resp, err := hc.Do(req)
	if err != nil {
		return 0, c.failed(span, log, newTransportError(op, err))
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, jsonutil.MaxBodyBytes))
		log.Debug("api response", "status", resp.StatusCode)
		return resp.StatusCode, nil
	}
	if err := jsonutil.DecodeWithContext(resp.Body, out, "decode "+op+" response"); err != nil {
		return resp.StatusCode, c.failed(span, log, &TransportError{Op: op, Err: err})
	}
	log.Debug("api response", "status", resp.StatusCode, "success", out.Success)
	if !out.Success {
		span.SetStatus(codes.Error, out.text())
	}
	return resp.StatusCode, nil
}

func (c *Client) rejected(op string, status int, resp envelope) *ApplicationError {
	c.logger.Warn("api rejected", "op", op, "status", status, "message", resp.text())
	return &ApplicationError{Op: op, StatusCode: status, Message: resp.text()}
}

func (c *Client) failed(span trace.Span, log *slog.Logger, err *TransportError) *TransportError {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	log.Warn("api transport error", "error", err.Err)
	return err
}
