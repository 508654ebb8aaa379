package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/five82/presser/internal/api"
	"github.com/five82/presser/internal/order"
	"github.com/five82/presser/internal/pricing"
)

var (
	ErrEmptyOrder      = errors.New("order is empty")
	ErrNoCleaner       = errors.New("no dry cleaner selected")
	ErrNoAddress       = errors.New("no saved address")
	ErrNoSchedule      = errors.New("no pickup scheduled")
	ErrBelowMinimum    = errors.New("order is below the minimum")
	ErrPaymentDeclined = errors.New("payment was not completed")
)

// Session is an unpaid booking with the credentials the payment sheet is
// initialised with.
type Session struct {
	Request api.BookingRequest
	Booking api.Booking
	Intent  api.PaymentIntent
	Quote   pricing.Breakdown
}

// Flow turns the in-progress order into a paid booking.
//
// Every Prepare of the same booking request reuses one idempotency key, so
// a retry after a timeout cannot book the order twice. The key rotates when
// the request changes or when its booking is cancelled or paid.
type Flow struct {
	store    *order.Store
	bookings api.Bookings
	validate *validatorv10.Validate
	log      zerolog.Logger
	newKey   func() string

	mu         sync.Mutex
	attemptKey string
	attemptSig string
}

// NewFlow wires a checkout flow to the order store and booking API.
func NewFlow(store *order.Store, bookings api.Bookings, logger *zerolog.Logger) *Flow {
	f := &Flow{
		store:    store,
		bookings: bookings,
		validate: NewValidator(),
		log:      zerolog.Nop(),
		newKey:   uuid.NewString,
	}
	if logger != nil {
		f.log = logger.With().Str("component", "checkout").Logger()
	}
	return f
}

// Validator exposes the flow's validator for address capture.
func (f *Flow) Validator() *validatorv10.Validate {
	return f.validate
}

// BuildRequest assembles and validates a booking request from the store.
func (f *Flow) BuildRequest(addrType order.AddressType, cfg pricing.Config) (api.BookingRequest, pricing.Breakdown, error) {
	o := f.store.Order()
	if o.Empty() {
		return api.BookingRequest{}, pricing.Breakdown{}, ErrEmptyOrder
	}
	if o.Cleaner == nil {
		return api.BookingRequest{}, pricing.Breakdown{}, ErrNoCleaner
	}
	addr, ok := f.store.Address(addrType)
	if !ok {
		return api.BookingRequest{}, pricing.Breakdown{}, fmt.Errorf("%w: %s", ErrNoAddress, addrType)
	}
	sched, ok := f.store.Scheduling()
	if !ok {
		return api.BookingRequest{}, pricing.Breakdown{}, ErrNoSchedule
	}

	quote := pricing.Quote(o, cfg)
	if quote.BelowMinimum {
		return api.BookingRequest{}, quote, fmt.Errorf("%w of %s", ErrBelowMinimum, cfg.MinimumOrder.StringFixed(2))
	}

	req := api.BookingRequest{
		CleanerID:   o.Cleaner.ID,
		CleanerName: o.Cleaner.ShopName,
		Items:       bookingItems(o.Items),
		Address: api.BookingAddress{
			Type:   string(addrType),
			Street: addr.Street,
			City:   addr.City,
			State:  addr.State,
			Zip:    addr.Zip,
			Full:   addr.Full,
		},
		Schedule: api.BookingSchedule{
			PickupDate:    sched.PickupDate,
			PickupTime:    sched.PickupTime,
			PickupMonth:   sched.PickupMonth,
			DeliveryDate:  sched.DeliveryDate,
			DeliveryTime:  sched.DeliveryTime,
			DeliveryMonth: sched.DeliveryMonth,
		},
		TotalItems:  quote.Items,
		Subtotal:    quote.Subtotal,
		ServiceFee:  quote.ServiceFee,
		DeliveryFee: quote.DeliveryFee,
		Tax:         quote.Tax,
		Total:       quote.Total,
	}
	if err := validateRequest(f.validate, req); err != nil {
		return api.BookingRequest{}, quote, err
	}
	return req, quote, nil
}

// Prepare creates the booking and its payment intent. The returned session
// carries the client secret, ephemeral key and customer id the payment
// sheet is initialised with.
func (f *Flow) Prepare(ctx context.Context, addrType order.AddressType, cfg pricing.Config) (Session, error) {
	req, quote, err := f.BuildRequest(addrType, cfg)
	if err != nil {
		return Session{}, err
	}
	req.IdempotencyKey = f.attemptKeyFor(req)

	booking, err := f.bookings.CreateBooking(ctx, req)
	if err != nil {
		return Session{}, fmt.Errorf("create booking: %w", err)
	}
	intent, err := f.bookings.CreatePaymentIntent(ctx, booking.ID)
	if err != nil {
		if cerr := f.bookings.CancelBooking(ctx, booking.ID); cerr != nil {
			f.log.Warn().Err(cerr).Str("booking_id", booking.ID).Msg("cancel after failed payment intent")
		} else {
			f.endAttempt()
		}
		return Session{}, fmt.Errorf("create payment intent: %w", err)
	}

	f.log.Info().
		Str("booking_id", booking.ID).
		Int("items", req.TotalItems).
		Str("total", quote.Total.StringFixed(2)).
		Msg("booking prepared")
	return Session{Request: req, Booking: booking, Intent: intent, Quote: quote}, nil
}

// Complete finishes a session once the payment sheet returns. A sheet that
// did not complete cancels the booking and keeps the order for another try.
// A completed one confirms the payment, fetches the receipt and clears the
// order.
func (f *Flow) Complete(ctx context.Context, sess Session, paid bool) (Receipt, error) {
	if !paid {
		err := ErrPaymentDeclined
		if cerr := f.bookings.CancelBooking(ctx, sess.Booking.ID); cerr != nil {
			err = errors.Join(err, fmt.Errorf("cancel booking: %w", cerr))
		} else {
			f.endAttempt()
		}
		f.log.Info().Str("booking_id", sess.Booking.ID).Msg("payment sheet dismissed")
		return Receipt{}, err
	}

	if err := f.bookings.ConfirmPayment(ctx, sess.Booking.ID, sess.Intent.PaymentIntentID); err != nil {
		return Receipt{}, fmt.Errorf("confirm payment: %w", err)
	}

	rec, err := f.bookings.FetchReceipt(ctx, sess.Booking.ID)
	if err != nil {
		f.log.Warn().Err(err).Str("booking_id", sess.Booking.ID).Msg("receipt unavailable, using booking")
		rec = api.Receipt{
			BookingID:        sess.Booking.ID,
			ConfirmationCode: sess.Booking.ConfirmationCode,
			CleanerName:      sess.Request.CleanerName,
			Total:            sess.Quote.Total,
			TotalItems:       sess.Quote.Items,
			PickupDate:       sess.Request.Schedule.PickupDate,
			PickupTime:       sess.Request.Schedule.PickupTime,
		}
	}

	f.endAttempt()
	f.store.ClearOrder()
	f.log.Info().Str("booking_id", sess.Booking.ID).Msg("order placed")
	return Receipt{Receipt: rec}, nil
}

// attemptKeyFor returns the idempotency key of the current attempt, starting
// a new attempt when req differs from the one the key was issued for.
func (f *Flow) attemptKeyFor(req api.BookingRequest) string {
	sig, err := json.Marshal(req)
	if err != nil {
		return f.newKey()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.attemptKey == "" || f.attemptSig != string(sig) {
		f.attemptKey = f.newKey()
		f.attemptSig = string(sig)
	}
	return f.attemptKey
}

func (f *Flow) endAttempt() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.attemptKey = ""
	f.attemptSig = ""
}

func bookingItems(items []order.Item) []api.BookingItem {
	out := make([]api.BookingItem, 0, len(items))
	for _, it := range items {
		starch := it.StarchLevel
		if !starch.Valid() {
			starch = order.StarchNone
		}
		out = append(out, api.BookingItem{
			ServiceID:         it.ID,
			Name:              it.Name,
			Category:          it.Category,
			Quantity:          it.Quantity,
			Price:             it.Price,
			StarchLevel:       int(starch),
			WashOnly:          it.WashOnly,
			AdditionalService: it.AdditionalService,
			Options:           enabledOptions(it.Options),
		})
	}
	return out
}

// enabledOptions drops false toggles; the backend only wants what was asked for.
func enabledOptions(opts map[string]bool) map[string]bool {
	var out map[string]bool
	for k, v := range opts {
		if !v {
			continue
		}
		if out == nil {
			out = make(map[string]bool)
		}
		out[k] = true
	}
	return out
}
