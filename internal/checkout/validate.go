package checkout

import (
	"errors"
	"fmt"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/five82/presser/internal/api"
	"github.com/five82/presser/internal/order"
)

// ErrInvalidBooking wraps validation failures of a booking request.
var ErrInvalidBooking = errors.New("invalid booking")

// NewValidator returns a validator with the booking consistency rules
// registered.
func NewValidator() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterStructValidation(bookingStructValidation, api.BookingRequest{})
	return v
}

// bookingStructValidation checks the declared totals against the items so a
// request never leaves the client with totals its lines do not add up to.
func bookingStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(api.BookingRequest)

	subtotal := decimal.Zero
	count := 0
	for _, it := range req.Items {
		subtotal = subtotal.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		count += it.Quantity
	}
	if count != req.TotalItems {
		sl.ReportError(req.TotalItems, "totalItems", "TotalItems", "items_match_lines", fmt.Sprintf("%d != %d", count, req.TotalItems))
	}
	if !subtotal.Round(2).Equal(req.Subtotal) {
		sl.ReportError(req.Subtotal, "subtotal", "Subtotal", "subtotal_match_lines", subtotal.StringFixed(2))
	}
	total := req.Subtotal.Add(req.ServiceFee).Add(req.DeliveryFee).Add(req.Tax)
	if !total.Equal(req.Total) {
		sl.ReportError(req.Total, "total", "Total", "total_match_parts", total.StringFixed(2))
	}
}

// ValidateAddress checks a saved address before it is stored.
func ValidateAddress(v *validatorv10.Validate, addr order.Address) error {
	if err := v.Struct(addr); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidBooking, fieldErrors(err))
	}
	return nil
}

func validateRequest(v *validatorv10.Validate, req api.BookingRequest) error {
	if err := v.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidBooking, fieldErrors(err))
	}
	return nil
}

func fieldErrors(err error) string {
	var ve validatorv10.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
