package catalog

import (
	"errors"
	"fmt"
)

// ErrorCode classifies feed failures.
type ErrorCode string

const (
	// CodeFeedUnavailable means the raw feed could not be retrieved.
	CodeFeedUnavailable ErrorCode = "feed_unavailable"
	// CodeFeedMalformed means the feed was retrieved but is not a sequence of records.
	CodeFeedMalformed ErrorCode = "feed_malformed"
	// CodeRecordInvalid means a single record was dropped from the feed.
	CodeRecordInvalid ErrorCode = "record_invalid"
)

// FeedError is a typed feed failure.
type FeedError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// NewFeedError creates a FeedError.
func NewFeedError(code ErrorCode, message string, err error) *FeedError {
	return &FeedError{Code: code, Message: message, Err: err}
}

func (e *FeedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *FeedError) Unwrap() error {
	return e.Err
}

// IsCode reports whether any error in err's chain is a FeedError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var fe *FeedError
	if errors.As(err, &fe) {
		return fe.Code == code
	}
	return false
}

// Blocking reports whether err should stop a catalog load. Malformed feeds
// are displayed the same way as unavailable ones.
func Blocking(err error) bool {
	return IsCode(err, CodeFeedUnavailable) || IsCode(err, CodeFeedMalformed)
}
