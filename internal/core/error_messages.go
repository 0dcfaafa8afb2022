package core

// error_messages.go maps technical errors to messages a shop owner can act
// on. Every message carries a code that support can look up here:
//
//	DB001-DB007      database constraints and connectivity
//	VAL001-VAL006    row validation (dates, numbers, required fields, categories)
//	FILE001-FILE005  the uploaded file itself
//	IMP001-IMP005    the import batch
//	SALE001-SALE002  sales reconciliation against the catalog
//	INV001-INV003    catalog ownership and naming
//	AUTH001-AUTH003  registration, login and tokens
//	UPL002-UPL005    upload concurrency and request lifetime
//	RATE001          request throttling
//	ERR000           anything else; check the logs for the technical error
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns precede general ones.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage is the user-facing form of an error.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Reconciliation and catalog. These embed wording that would otherwise
	// match the generic database patterns below.
	{"not found in your inventory", UserMessage{"Product not found in your inventory", "Add the product to your inventory first or fix the product name", "SALE001"}},
	{"insufficient stock", UserMessage{"Not enough stock to record this sale", "Restock the product or lower the quantity", "SALE002"}},
	{"already exists in your inventory", UserMessage{"A product with this name already exists", "Choose a different name or edit the existing product", "INV001"}},
	{"product not found", UserMessage{"Product not found", "Refresh the product list and try again", "INV002"}},
	{"does not belong to your inventory", UserMessage{"Product does not belong to your inventory", "Select one of your own products", "INV003"}},

	// Accounts.
	{"invalid username or password", UserMessage{"Invalid username or password", "Check your credentials and try again", "AUTH001"}},
	{"already registered", UserMessage{"An account with these details already exists", "Log in or use different details", "AUTH002"}},
	{"invalid token", UserMessage{"Your session is not valid", "Log in again", "AUTH003"}},
	{"token expired", UserMessage{"Your session has expired", "Log in again", "AUTH003"}},

	// Database.
	{"duplicate key", UserMessage{"A record with this value already exists", "Check for duplicate entries", "DB001"}},
	{"violates check constraint", UserMessage{"A value is outside the allowed range", "Check prices, stock and quantities are not negative", "DB002"}},
	{"violates foreign key", UserMessage{"Referenced record does not exist", "Refresh and try again", "DB003"}},
	{"connection refused", UserMessage{"Unable to connect to database", "Please try again in a few moments", "DB004"}},
	{"connection reset", UserMessage{"Database connection was interrupted", "Please try again", "DB005"}},
	{"deadlock", UserMessage{"Database was busy with conflicting operations", "Please try again", "DB007"}},

	// Row validation.
	{"invalid saledate", UserMessage{"Invalid date format detected", "Use YYYY-MM-DD, MM/DD/YYYY or an ISO timestamp", "VAL001"}},
	{"invalid price", UserMessage{"Invalid number format detected", "Use a non-negative decimal such as 12.50", "VAL002"}},
	{"invalid stock", UserMessage{"Invalid number format detected", "Use a non-negative whole number", "VAL002"}},
	{"invalid quantity", UserMessage{"Invalid number format detected", "Use a whole number of at least 1", "VAL002"}},
	{"missing required fields", UserMessage{"Required field is empty", "Ensure all required columns have values", "VAL003"}},
	{"missing productname or quantity", UserMessage{"Required field is empty", "Ensure all required columns have values", "VAL003"}},
	{"missing required columns", UserMessage{"Required column is missing from CSV", "Check the header row against the template", "VAL004"}},
	{"product name", UserMessage{"Invalid product name", "Use a non-empty name of at most 100 characters", "VAL005"}},
	{"invalid category", UserMessage{"Value is not in the allowed list", "Use one of the listed categories", "VAL006"}},

	// Files.
	{"file too large", UserMessage{"File exceeds maximum size limit", "Split the file into smaller files", "FILE001"}},
	{"invalid csv", UserMessage{"File is not a valid CSV", "Ensure the file is comma-separated", "FILE002"}},
	{"unsupported file type", UserMessage{"File is not a CSV", "Upload a .csv file", "FILE002"}},
	{"no file provided", UserMessage{"No file was selected", "Please select a CSV file to upload", "FILE004"}},
	{"csv file is empty", UserMessage{"The uploaded file is empty", "Upload a CSV file with a header row", "FILE005"}},

	// Import batch.
	{"batch transaction aborted", UserMessage{"The import could not be completed", "No changes were saved. Please try again", "IMP001"}},
	{"commit import", UserMessage{"The import could not be saved", "No changes were saved. Please try again", "IMP002"}},
	{"stream error", UserMessage{"The upload could not be read", "Check your connection and upload the file again", "IMP005"}},

	// Upload lifecycle.
	{"too many concurrent uploads", UserMessage{"System busy: too many uploads in progress", "Please wait a moment and try again", "UPL002"}},
	{"context canceled", UserMessage{"Request was cancelled", "Please try again", "UPL004"}},
	{"context deadline exceeded", UserMessage{"Request timed out", "Try a smaller file or check your connection", "UPL005"}},
	{"timeout", UserMessage{"Operation timed out", "Try a smaller file or try again later", "DB006"}},

	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError returns the user message for err, or the ERR000 fallback. A
// *UserError keeps the message it was built with.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.User
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// CodeFor is MapError(errors.New(reason)).Code for row reasons.
func CodeFor(reason string) string {
	lower := strings.ToLower(reason)
	for _, ep := range errorPatterns {
		if strings.Contains(lower, ep.pattern) {
			return ep.msg.Code
		}
	}
	return defaultMessage.Code
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error, kept for logs and errors.Is, with the
// message shown to the user.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err. It returns nil for a nil err.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{Technical: err, User: MapError(err)}
}
