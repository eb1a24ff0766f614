package gerror

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	ErrCodeInternal          Code = "Internal"
	ErrCodeValidationFailed  Code = "ValidationFailed"
	ErrHttpOperationFailed   Code = "HttpOperationFailed"
	ErrCodeUnexpectedStatus  Code = "UnexpectedStatus"
	ErrCodeMalformedResponse Code = "MalformedResponse"
	ErrCodeRateLimited       Code = "RateLimited"
)

const (
	DetailChannelID DetailKey = "channel_id"
	DetailCursor    DetailKey = "cursor"
	DetailStatus    DetailKey = "status"
	DetailBody      DetailKey = "body"
)

// find locates the first Error in the provided error chain.
func find(err error) (Error, bool) {
	var gErr Error
	if err == nil {
		return gErr, false
	}
	if errors.As(err, &gErr) {
		return gErr, true
	}
	return gErr, false
}

// ToError locates an Error in the provided error chain and returns it if it
// matches the provided code. Otherwise, returns nil.
func ToError(err error, code Code) *Error {
	gErr, ok := find(err)
	if ok && gErr.Code() == code {
		return &gErr
	}
	return nil
}

func NewErrInternal() Error {
	return NewError(
		"An internal error occurred",
		AudienceInternal,
		ErrCodeInternal,
		0,
		nil,
	)
}

func ToInternal(err error) *Error {
	return ToError(err, ErrCodeInternal)
}

func IsInternal(err error) bool {
	return ToInternal(err) != nil
}

func NewErrValidationFailed(message string) Error {
	return NewError(message, AudienceExternal, ErrCodeValidationFailed, 0, nil)
}

func ToValidationFailed(err error) *Error {
	return ToError(err, ErrCodeValidationFailed)
}

func IsValidationFailed(err error) bool {
	return ToValidationFailed(err) != nil
}

// NewErrHttpOperationFailed is returned when a request could not be completed at the transport level.
func NewErrHttpOperationFailed(message string, err error) Error {
	return NewError(message, AudienceExternal, ErrHttpOperationFailed, 0, err)
}

func ToHttpOperationFailed(err error) *Error {
	return ToError(err, ErrHttpOperationFailed)
}

func IsHttpOperationFailed(err error) bool {
	return ToHttpOperationFailed(err) != nil
}

// NewErrUnexpectedStatus is returned when the API answered with a status that ends the download
// early, i.e. anything other than 200 or 429.
func NewErrUnexpectedStatus(statusCode int, body string) Error {
	return NewError(
		fmt.Sprintf("download stopped early: API returned %d %s", statusCode, http.StatusText(statusCode)),
		AudienceExternal,
		ErrCodeUnexpectedStatus,
		statusCode,
		nil,
	).IDetail(DetailBody, body)
}

func ToUnexpectedStatus(err error) *Error {
	return ToError(err, ErrCodeUnexpectedStatus)
}

func IsUnexpectedStatus(err error) bool {
	return ToUnexpectedStatus(err) != nil
}

func NewErrMalformedResponse(statusCode int, err error) Error {
	return NewError("error parsing API response body", AudienceExternal, ErrCodeMalformedResponse, statusCode, err)
}

func ToMalformedResponse(err error) *Error {
	return ToError(err, ErrCodeMalformedResponse)
}

func IsMalformedResponse(err error) bool {
	return ToMalformedResponse(err) != nil
}

// NewErrRateLimited is returned when waiting out a rate limit was interrupted.
func NewErrRateLimited(err error) Error {
	return NewError("interrupted while waiting for rate limit to reset", AudienceExternal, ErrCodeRateLimited, http.StatusTooManyRequests, err)
}

func ToRateLimited(err error) *Error {
	return ToError(err, ErrCodeRateLimited)
}

func IsRateLimited(err error) bool {
	return ToRateLimited(err) != nil
}
