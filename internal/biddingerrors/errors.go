package biddingerrors

import (
	"errors"
	"fmt"
	"strings"
)

// Lookup errors
var (
	ErrNotFound        = errors.New("not found")
	ErrAuctionNotFound = fmt.Errorf("auction %w", ErrNotFound)
	ErrBidNotFound     = fmt.Errorf("bid %w", ErrNotFound)
	ErrNoBids          = errors.New("no bids found for auction")
)

// business logic errors
var (
	ErrValidation       = errors.New("validation failed")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrAuctionNotActive = errors.New("auction not active")
	ErrBidTooLow        = errors.New("bid amount too low")
)

// moderation errors
var (
	ErrForbidden      = errors.New("admin privileges required")
	ErrNoDeleteTarget = errors.New("either auction_id or bid_id is required")
)

// RejectionReason names why a bid was not admitted
type RejectionReason string

const (
	ReasonInvalidAmount    RejectionReason = "InvalidAmount"
	ReasonAuctionNotFound  RejectionReason = "AuctionNotFound"
	ReasonAuctionNotActive RejectionReason = "AuctionNotActive"
	ReasonBidTooLow        RejectionReason = "BidTooLow"
)

var reasonErrors = map[RejectionReason]error{
	ReasonInvalidAmount:    ErrInvalidAmount,
	ReasonAuctionNotFound:  ErrAuctionNotFound,
	ReasonAuctionNotActive: ErrAuctionNotActive,
	ReasonBidTooLow:        ErrBidTooLow,
}

// RejectionError is the expected outcome of a bid that fails an admission rule.
// It unwraps to the sentinel matching its Reason.
type RejectionError struct {
	Reason RejectionReason
	Detail string
}

// Reject builds a RejectionError for reason
func Reject(reason RejectionReason, format string, args ...any) *RejectionError {
	return &RejectionError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

func (e *RejectionError) Error() string {
	if e.Detail == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

func (e *RejectionError) Unwrap() error {
	return reasonErrors[e.Reason]
}

// AsRejection extracts a RejectionError from err's chain
func AsRejection(err error) (*RejectionError, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

// FieldError describes one invalid input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every invalid field of a request
type ValidationError struct {
	Fields []FieldError
}

// Add records a field failure
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns nil when no field failed
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
