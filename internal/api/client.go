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
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/five82/presser/internal/pricing"
)

// Directory lists cleaners, their services and pricing.
type Directory interface {
	ListCleaners(ctx context.Context) ([]Cleaner, error)
	ListServices(ctx context.Context, cleanerID string) ([]Service, error)
	FetchPricing(ctx context.Context) (pricing.Config, error)
}

// Bookings creates, pays for and cancels bookings.
type Bookings interface {
	CreateBooking(ctx context.Context, req BookingRequest) (Booking, error)
	CreatePaymentIntent(ctx context.Context, bookingID string) (PaymentIntent, error)
	ConfirmPayment(ctx context.Context, bookingID, paymentIntentID string) error
	CancelBooking(ctx context.Context, bookingID string) error
	FetchReceipt(ctx context.Context, bookingID string) (Receipt, error)
}

var (
	_ Directory = (*Client)(nil)
	_ Bookings  = (*Client)(nil)
)

var (
	// ErrNotFound wraps 404 responses.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized wraps 401 responses.
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is a failed API call: a non-2xx status or an envelope with
// success=false.
type Error struct {
	Path    string
	Status  int
	Message string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.Status, msg)
}

func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		return nil
	}
}

// Client talks to the presser backend HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	token     string
	log       zerolog.Logger
	newKey    func() string
}

// ClientOptions configure NewClient.
type ClientOptions struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Logger  *zerolog.Logger
}

const (
	defaultBaseURL   = "http://127.0.0.1:8080"
	defaultUserAgent = "presser/0.1"
	requestTimeout   = 10 * time.Second
	maxErrorBody     = 4 << 10
)

// NewClient builds a Client for the given backend.
func NewClient(opts ClientOptions) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = requestTimeout
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
		token:     strings.TrimSpace(opts.Token),
		log:       zerolog.Nop(),
		newKey:    uuid.NewString,
	}
	if opts.Logger != nil {
		c.log = opts.Logger.With().Str("component", "api").Logger()
	}
	return c, nil
}

// ListCleaners retrieves the dry-cleaner directory.
func (c *Client) ListCleaners(ctx context.Context) ([]Cleaner, error) {
	var out []Cleaner
	if err := c.do(ctx, http.MethodGet, "/api/drycleaners", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListServices retrieves the services offered by one cleaner.
func (c *Client) ListServices(ctx context.Context, cleanerID string) ([]Service, error) {
	if strings.TrimSpace(cleanerID) == "" {
		return nil, fmt.Errorf("cleaner id required")
	}
	var out []Service
	path := "/api/drycleaners/" + url.PathEscape(cleanerID) + "/services"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchPricing retrieves the fee and tax configuration.
func (c *Client) FetchPricing(ctx context.Context) (pricing.Config, error) {
	var out pricing.Config
	if err := c.do(ctx, http.MethodGet, "/api/pricing", nil, nil, &out); err != nil {
		return pricing.Config{}, err
	}
	return out, nil
}

// CreateBooking submits a booking with req.IdempotencyKey as the
// Idempotency-Key header, so a retry of the same attempt is not booked
// twice. An empty key gets a generated one.
func (c *Client) CreateBooking(ctx context.Context, req BookingRequest) (Booking, error) {
	idemKey := strings.TrimSpace(req.IdempotencyKey)
	if idemKey == "" {
		idemKey = c.newKey()
	}
	headers := http.Header{}
	headers.Set("Idempotency-Key", idemKey)
	var out Booking
	if err := c.do(ctx, http.MethodPost, "/api/bookings", req, headers, &out); err != nil {
		return Booking{}, err
	}
	return out, nil
}

// CreatePaymentIntent asks the backend to issue a payment intent for a booking.
func (c *Client) CreatePaymentIntent(ctx context.Context, bookingID string) (PaymentIntent, error) {
	body := map[string]string{"bookingId": bookingID}
	var out PaymentIntent
	if err := c.do(ctx, http.MethodPost, "/api/payments/intent", body, nil, &out); err != nil {
		return PaymentIntent{}, err
	}
	return out, nil
}

// ConfirmPayment tells the backend the payment sheet completed.
func (c *Client) ConfirmPayment(ctx context.Context, bookingID, paymentIntentID string) error {
	body := map[string]string{"bookingId": bookingID, "paymentIntentId": paymentIntentID}
	return c.do(ctx, http.MethodPost, "/api/payments/confirm", body, nil, nil)
}

// CancelBooking cancels an unpaid booking.
func (c *Client) CancelBooking(ctx context.Context, bookingID string) error {
	path := "/api/bookings/" + url.PathEscape(bookingID) + "/cancel"
	return c.do(ctx, http.MethodPost, path, nil, nil, nil)
}

// FetchReceipt retrieves the receipt of a paid booking.
func (c *Client) FetchReceipt(ctx context.Context, bookingID string) (Receipt, error) {
	var out Receipt
	path := "/api/bookings/" + url.PathEscape(bookingID) + "/receipt"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return Receipt{}, err
	}
	return out, nil
}

// RequestPasswordReset emails a one-time code to the account.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/forgot-password", map[string]string{"email": email}, nil, nil)
}

// VerifyResetOTP checks a one-time code before a new password is chosen.
func (c *Client) VerifyResetOTP(ctx context.Context, email, otp string) error {
	body := map[string]string{"email": email, "otp": otp}
	return c.do(ctx, http.MethodPost, "/api/auth/verify-otp", body, nil, nil)
}

// ResetPassword sets a new password using a verified one-time code.
func (c *Client) ResetPassword(ctx context.Context, email, otp, password string) error {
	body := map[string]string{"email": email, "otp": otp, "newPassword": password}
	return c.do(ctx, http.MethodPost, "/api/auth/reset-password", body, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, headers http.Header, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	// path arrives with its segments already escaped; parsing keeps both
	// Path and RawPath so ids are not escaped a second time.
	ref, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("parse path %q: %w", path, err)
	}
	reqURL := c.baseURL.ResolveReference(ref)

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, v := range headers {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("api call")

	if resp.StatusCode >= 400 {
		return c.statusError(path, resp)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if errors.Is(err, io.EOF) && dest == nil {
			return nil
		}
		return fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		return &Error{Path: path, Status: resp.StatusCode, Message: env.Message}
	}
	if dest == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("decode %s data: %w", path, err)
	}
	return nil
}

func (c *Client) statusError(path string, resp *http.Response) error {
	apiErr := &Error{Path: path, Status: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var env envelope
	if json.Unmarshal(raw, &env) == nil && env.Message != "" {
		apiErr.Message = env.Message
	}
	c.log.Warn().Str("path", path).Int("status", resp.StatusCode).Str("message", apiErr.Message).Msg("api error")
	return apiErr
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_base_url %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
