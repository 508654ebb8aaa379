// Package api is the HTTP client for the presser backend.
//
// Every endpoint answers with the same envelope:
//
//	{"success": true,  "data": {...}}
//	{"success": false, "message": "..."}
//
// Client unwraps the envelope and decodes data into the typed response.
// A non-2xx status or success=false becomes an *Error; 404 and 401 also
// match ErrNotFound and ErrUnauthorized through errors.Is.
//
// The interfaces Directory and Bookings split the read-only listing calls
// used by the poller from the booking and payment calls used at checkout,
// so tests can fake either side.
//
// CreateBooking sends a fresh Idempotency-Key header on every call.
// Callers retrying after a network error should not call it again blindly;
// the checkout flow cancels and rebuilds the booking instead.
package api
