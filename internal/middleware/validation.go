package middleware

import (
	"encoding/json"
	"errors"
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pointkeep/pointkeep/internal/model"
)

// Validation limits.
const (
	// MaxNameLength is the maximum length of a display name, in runes.
	MaxNameLength = 100

	// MaxEmailLength is the maximum length of an email address (RFC 5321).
	MaxEmailLength = 254
)

// Validation errors.
var (
	ErrNameRequired   = errors.New("name is required")
	ErrNameTooLong    = errors.New("name exceeds maximum length")
	ErrNameInvalid    = errors.New("name must be valid UTF-8")
	ErrEmailRequired  = errors.New("email is required")
	ErrEmailTooLong   = errors.New("email exceeds maximum length")
	ErrEmailInvalid   = errors.New("invalid email address")
	ErrUserIDInvalid  = errors.New("invalid user ID")
	ErrTypeInvalid    = errors.New("type must be one of earn, spend")
	ErrAmountRequired = errors.New("amount is required")
	ErrAmountInvalid  = errors.New("amount must be a positive integer")
)

// FieldError describes why a single request field was rejected.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every rejected field of a request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator accumulates field errors so a request reports all of them at once.
type Validator struct {
	fields []FieldError
}

// Check records err against field when it is non-nil.
func (v *Validator) Check(field string, err error) {
	if err != nil {
		v.fields = append(v.fields, FieldError{Field: field, Message: err.Error()})
	}
}

// Err returns a *ValidationError if any check failed.
func (v *Validator) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

// ValidateName validates a display name. Callers trim it first.
func ValidateName(name string) error {
	if name == "" {
		return ErrNameRequired
	}
	if !utf8.ValidString(name) {
		return ErrNameInvalid
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}

// ValidateEmail accepts a bare addr-spec with a dotted domain, such as
// "ann@example.com". Display-name forms like "Ann <ann@example.com>" are
// rejected. Case is preserved; addresses are compared exactly.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if len(email) > MaxEmailLength {
		return ErrEmailTooLong
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return ErrEmailInvalid
	}

	at := strings.LastIndexByte(email, '@')
	domain := email[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return ErrEmailInvalid
	}
	return nil
}

// ValidateUserID checks that id is a canonical hyphenated UUID.
func ValidateUserID(id string) error {
	if len(id) != 36 {
		return ErrUserIDInvalid
	}
	if _, err := uuid.Parse(id); err != nil {
		return ErrUserIDInvalid
	}
	return nil
}

// ValidateTransactionType checks t against the closed set of ledger types.
func ValidateTransactionType(t string) error {
	if !model.TransactionType(t).IsValid() {
		return ErrTypeInvalid
	}
	return nil
}

// ParseAmount parses a JSON number into a strictly positive whole amount.
// Fractions, exponents and values outside int64 are rejected.
func ParseAmount(n json.Number) (int64, error) {
	if n == "" {
		return 0, ErrAmountRequired
	}
	amount, err := strconv.ParseInt(string(n), 10, 64)
	if err != nil || amount <= 0 {
		return 0, ErrAmountInvalid
	}
	return amount, nil
}
