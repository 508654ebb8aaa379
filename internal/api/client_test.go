package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func writeEnvelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	raw, _ := json.Marshal(data)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: raw})
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	c, err := NewClient(ClientOptions{BaseURL: server.URL, Token: " secret "})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return c
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != defaultBaseURL {
		t.Fatalf("base = %q, want %q", u.String(), defaultBaseURL)
	}

	u, err = parseBaseURL("api.example.com:9000/v1?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Host != "api.example.com:9000" {
		t.Fatalf("base = %q, want http://api.example.com:9000", u.String())
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func TestClient_DirectoryEndpoints(t *testing.T) {
	t.Parallel()

	var gotAuth, gotUA string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/api/drycleaners":
			writeEnvelope(w, http.StatusOK, []Cleaner{{ID: "c1", ShopName: "Pressed", Rating: 4.7}})
		case "/api/drycleaners/c1/services":
			writeEnvelope(w, http.StatusOK, []Service{{ID: "s1", Name: "Shirt", Price: decimal.RequireFromString("3.50"), Options: []string{"button", " ", "zipper"}}})
		case "/api/pricing":
			_, _ = io.WriteString(w, `{"success":true,"data":{"serviceFeePercent":"5","deliveryFee":4.99,"taxPercent":"8.25","minimumOrder":15}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	ctx := testContext(t)

	cleaners, err := c.ListCleaners(ctx)
	if err != nil {
		t.Fatalf("ListCleaners returned error: %v", err)
	}
	if len(cleaners) != 1 || cleaners[0].ShopName != "Pressed" {
		t.Fatalf("ListCleaners = %#v, want one cleaner named Pressed", cleaners)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("Authorization = %q, want %q", gotAuth, "Bearer secret")
	}
	if gotUA != defaultUserAgent {
		t.Fatalf("User-Agent = %q, want %q", gotUA, defaultUserAgent)
	}

	services, err := c.ListServices(ctx, "c1")
	if err != nil {
		t.Fatalf("ListServices returned error: %v", err)
	}
	if len(services) != 1 || !services[0].Price.Equal(decimal.RequireFromString("3.5")) {
		t.Fatalf("ListServices = %#v, want shirt at 3.50", services)
	}

	it := services[0].Item(cleaners[0], 2)
	if it.Cleaner.ID != "c1" || it.Quantity != 2 || len(it.Options) != 2 {
		t.Fatalf("Service.Item = %#v, want cleaner c1 qty 2 with 2 options", it)
	}

	cfg, err := c.FetchPricing(ctx)
	if err != nil {
		t.Fatalf("FetchPricing returned error: %v", err)
	}
	if !cfg.DeliveryFee.Equal(decimal.RequireFromString("4.99")) || !cfg.TaxPercent.Equal(decimal.RequireFromString("8.25")) {
		t.Fatalf("FetchPricing = %#v, want delivery 4.99 tax 8.25", cfg)
	}

	if _, err := c.ListServices(ctx, " "); err == nil {
		t.Fatalf("ListServices with empty id returned nil error")
	}
}

func TestClient_BookingFlow(t *testing.T) {
	t.Parallel()

	var keys []string
	var gotBooking BookingRequest
	var confirmBody map[string]string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "POST /api/bookings":
			keys = append(keys, r.Header.Get("Idempotency-Key"))
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
			_ = json.NewDecoder(r.Body).Decode(&gotBooking)
			writeEnvelope(w, http.StatusCreated, Booking{ID: "b1", Status: "pending", ConfirmationCode: "PR-123"})
		case "POST /api/payments/intent":
			writeEnvelope(w, http.StatusOK, PaymentIntent{PaymentIntentID: "pi_1", ClientSecret: "cs", EphemeralKey: "ek", CustomerID: "cus"})
		case "POST /api/payments/confirm":
			_ = json.NewDecoder(r.Body).Decode(&confirmBody)
			writeEnvelope(w, http.StatusOK, nil)
		case "POST /api/bookings/b1/cancel":
			w.WriteHeader(http.StatusNoContent)
		case "GET /api/bookings/b1/receipt":
			writeEnvelope(w, http.StatusOK, Receipt{BookingID: "b1", ConfirmationCode: "PR-123", TotalItems: 2})
		default:
			http.NotFound(w, r)
		}
	}))
	ctx := testContext(t)

	req := BookingRequest{
		CleanerID:      "c1",
		Items:          []BookingItem{{ServiceID: "s1", Name: "Shirt", Quantity: 2}},
		TotalItems:     2,
		IdempotencyKey: "attempt-1",
	}
	booking, err := c.CreateBooking(ctx, req)
	if err != nil {
		t.Fatalf("CreateBooking returned error: %v", err)
	}
	if booking.ID != "b1" || gotBooking.CleanerID != "c1" || len(gotBooking.Items) != 1 {
		t.Fatalf("CreateBooking = %#v (sent %#v), want b1 for c1", booking, gotBooking)
	}
	if _, err := c.CreateBooking(ctx, req); err != nil {
		t.Fatalf("retried CreateBooking returned error: %v", err)
	}
	req.IdempotencyKey = ""
	if _, err := c.CreateBooking(ctx, req); err != nil {
		t.Fatalf("keyless CreateBooking returned error: %v", err)
	}
	if len(keys) != 3 {
		t.Fatalf("Idempotency-Key headers = %q, want 3", keys)
	}
	if keys[0] != "attempt-1" || keys[1] != "attempt-1" {
		t.Fatalf("retried Idempotency-Key headers = %q, want attempt-1 twice", keys[:2])
	}
	if keys[2] == "" || keys[2] == "attempt-1" {
		t.Fatalf("keyless Idempotency-Key = %q, want a generated key", keys[2])
	}

	intent, err := c.CreatePaymentIntent(ctx, "b1")
	if err != nil {
		t.Fatalf("CreatePaymentIntent returned error: %v", err)
	}
	if intent.ClientSecret != "cs" || intent.EphemeralKey != "ek" || intent.CustomerID != "cus" {
		t.Fatalf("CreatePaymentIntent = %#v, want sheet credentials", intent)
	}

	if err := c.ConfirmPayment(ctx, "b1", "pi_1"); err != nil {
		t.Fatalf("ConfirmPayment returned error: %v", err)
	}
	if confirmBody["paymentIntentId"] != "pi_1" || confirmBody["bookingId"] != "b1" {
		t.Fatalf("ConfirmPayment body = %v, want booking and intent ids", confirmBody)
	}

	if err := c.CancelBooking(ctx, "b1"); err != nil {
		t.Fatalf("CancelBooking returned error: %v", err)
	}

	receipt, err := c.FetchReceipt(ctx, "b1")
	if err != nil {
		t.Fatalf("FetchReceipt returned error: %v", err)
	}
	if receipt.ConfirmationCode != "PR-123" {
		t.Fatalf("FetchReceipt = %#v, want code PR-123", receipt)
	}
}

func TestClient_EscapesIDsOnce(t *testing.T) {
	t.Parallel()

	var paths, rawPaths []string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		rawPaths = append(rawPaths, r.URL.EscapedPath())
		writeEnvelope(w, http.StatusOK, nil)
	}))
	ctx := testContext(t)

	if err := c.CancelBooking(ctx, "bk 1"); err != nil {
		t.Fatalf("CancelBooking returned error: %v", err)
	}
	if _, err := c.ListServices(ctx, "c/1"); err != nil {
		t.Fatalf("ListServices returned error: %v", err)
	}

	if paths[0] != "/api/bookings/bk 1/cancel" {
		t.Fatalf("cancel path = %q, want /api/bookings/bk 1/cancel", paths[0])
	}
	if rawPaths[0] != "/api/bookings/bk%201/cancel" {
		t.Fatalf("cancel escaped path = %q, want /api/bookings/bk%%201/cancel", rawPaths[0])
	}
	if rawPaths[1] != "/api/drycleaners/c%2F1/services" {
		t.Fatalf("services escaped path = %q, want /api/drycleaners/c%%2F1/services", rawPaths[1])
	}
}

func TestClient_Errors(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/drycleaners":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"success":false,"message":"token expired"}`)
		case "/api/pricing":
			_, _ = io.WriteString(w, `{"success":false,"message":"pricing unavailable"}`)
		case "/api/auth/verify-otp":
			_, _ = io.WriteString(w, `not json`)
		default:
			http.NotFound(w, r)
		}
	}))
	ctx := testContext(t)

	_, err := c.ListCleaners(ctx)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("ListCleaners error = %v, want ErrUnauthorized", err)
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Message != "token expired" {
		t.Fatalf("ListCleaners error = %#v, want message %q", err, "token expired")
	}

	_, err = c.FetchPricing(ctx)
	if !errors.As(err, &apiErr) || apiErr.Message != "pricing unavailable" || apiErr.Status != http.StatusOK {
		t.Fatalf("FetchPricing error = %v, want envelope failure", err)
	}

	_, err = c.FetchReceipt(ctx, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("FetchReceipt error = %v, want ErrNotFound", err)
	}

	if err := c.VerifyResetOTP(ctx, "a@b.c", "1234"); err == nil {
		t.Fatalf("VerifyResetOTP returned nil error for malformed body")
	}
}

func TestClient_PasswordReset(t *testing.T) {
	t.Parallel()

	seen := map[string]map[string]string{}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		seen[r.URL.Path] = body
		writeEnvelope(w, http.StatusOK, nil)
	}))
	ctx := testContext(t)

	if err := c.RequestPasswordReset(ctx, "a@b.c"); err != nil {
		t.Fatalf("RequestPasswordReset returned error: %v", err)
	}
	if err := c.VerifyResetOTP(ctx, "a@b.c", "4321"); err != nil {
		t.Fatalf("VerifyResetOTP returned error: %v", err)
	}
	if err := c.ResetPassword(ctx, "a@b.c", "4321", "hunter22"); err != nil {
		t.Fatalf("ResetPassword returned error: %v", err)
	}
	if seen["/api/auth/forgot-password"]["email"] != "a@b.c" ||
		seen["/api/auth/verify-otp"]["otp"] != "4321" ||
		seen["/api/auth/reset-password"]["newPassword"] != "hunter22" {
		t.Fatalf("password reset bodies = %v", seen)
	}
}
