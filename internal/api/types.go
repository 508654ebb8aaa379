package api

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/five82/presser/internal/order"
)

// envelope is the {success, data|message} wrapper every endpoint returns.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Cleaner is a dry cleaner from the directory listing.
type Cleaner struct {
	ID       string  `json:"id"`
	ShopName string  `json:"shopName"`
	Address  string  `json:"address"`
	Rating   float64 `json:"rating"`
	Phone    string  `json:"phone"`
	Hours    string  `json:"hours"`
	ImageURL string  `json:"imageUrl"`
}

// OrderCleaner converts the listing into the reference attached to an order.
func (c Cleaner) OrderCleaner() order.Cleaner {
	return order.Cleaner{
		ID:       c.ID,
		ShopName: c.ShopName,
		Address:  c.Address,
		Rating:   c.Rating,
		Phone:    c.Phone,
	}
}

// Service is one priced service a cleaner offers.
type Service struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Price             decimal.Decimal `json:"price"`
	Description       string          `json:"description"`
	Options           []string        `json:"options"`
	AdditionalService string          `json:"additionalService"`
}

// Item builds an order line for quantity units of the service.
func (s Service) Item(c Cleaner, quantity int) order.Item {
	opts := make(map[string]bool, len(s.Options))
	for _, name := range s.Options {
		if name = strings.TrimSpace(name); name != "" {
			opts[name] = false
		}
	}
	return order.Item{
		ID:                s.ID,
		Name:              s.Name,
		Category:          s.Category,
		Price:             s.Price,
		Quantity:          quantity,
		StarchLevel:       order.StarchNone,
		AdditionalService: s.AdditionalService,
		Cleaner:           order.CleanerRef{ID: c.ID, Name: c.ShopName},
		Options:           opts,
	}
}

// BookingItem is one line of a booking request.
type BookingItem struct {
	ServiceID         string          `json:"serviceId" validate:"required"`
	Name              string          `json:"name" validate:"required"`
	Category          string          `json:"category"`
	Quantity          int             `json:"quantity" validate:"min=1"`
	Price             decimal.Decimal `json:"price"`
	StarchLevel       int             `json:"starchLevel" validate:"min=1,max=4"`
	WashOnly          bool            `json:"washOnly"`
	AdditionalService string          `json:"additionalService,omitempty"`
	Options           map[string]bool `json:"options,omitempty"`
}

// BookingAddress is the pickup address sent with a booking.
type BookingAddress struct {
	Type   string `json:"type" validate:"oneof=home office"`
	Street string `json:"street" validate:"required"`
	City   string `json:"city" validate:"required"`
	State  string `json:"state" validate:"required"`
	Zip    string `json:"zip" validate:"required,numeric,min=5,max=10"`
	Full   string `json:"fullAddress"`
}

// BookingSchedule is the pickup/delivery window sent with a booking.
type BookingSchedule struct {
	PickupDate    string `json:"pickupDate" validate:"required"`
	PickupTime    string `json:"pickupTime" validate:"required"`
	PickupMonth   string `json:"pickupMonth" validate:"required"`
	DeliveryDate  string `json:"deliveryDate"`
	DeliveryTime  string `json:"deliveryTime"`
	DeliveryMonth string `json:"deliveryMonth"`
}

// BookingRequest is the POST /api/bookings payload.
type BookingRequest struct {
	CleanerID   string          `json:"dryCleanerId" validate:"required"`
	CleanerName string          `json:"dryCleanerName"`
	Items       []BookingItem   `json:"items" validate:"required,min=1,dive"`
	Address     BookingAddress  `json:"pickupAddress"`
	Schedule    BookingSchedule `json:"schedule"`
	TotalItems  int             `json:"totalItems" validate:"min=1"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	ServiceFee  decimal.Decimal `json:"serviceFee"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`

	// IdempotencyKey is sent as a header, not in the body.
	IdempotencyKey string `json:"-"`
}

// Booking is the backend's view of a created booking.
type Booking struct {
	ID               string          `json:"id"`
	Status           string          `json:"status"`
	ConfirmationCode string          `json:"confirmationCode"`
	Total            decimal.Decimal `json:"total"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// PaymentIntent carries what the payment sheet needs to initialise.
type PaymentIntent struct {
	PaymentIntentID string `json:"paymentIntentId"`
	ClientSecret    string `json:"clientSecret"`
	EphemeralKey    string `json:"ephemeralKey"`
	CustomerID      string `json:"customerId"`
}

// Receipt is returned once a booking has been paid.
type Receipt struct {
	BookingID        string          `json:"bookingId"`
	ConfirmationCode string          `json:"confirmationCode"`
	CleanerName      string          `json:"dryCleanerName"`
	Total            decimal.Decimal `json:"total"`
	TotalItems       int             `json:"totalItems"`
	PickupDate       string          `json:"pickupDate"`
	PickupTime       string          `json:"pickupTime"`
	PaidAt           time.Time       `json:"paidAt"`
}
