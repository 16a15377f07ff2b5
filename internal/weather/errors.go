// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport indicates that no response reached the caller.
	ErrTransport = errors.New("weather provider request failed")
	// ErrHTTPStatus indicates a non-2xx HTTP response. See StatusError.
	ErrHTTPStatus = errors.New("weather provider returned non-success HTTP status")
	// ErrProviderStatus indicates a non-success status code embedded in the response body.
	// See ProviderError.
	ErrProviderStatus = errors.New("weather provider returned non-success status")
	// ErrMalformedPayload indicates that an expected field is absent from the response.
	// See PayloadError.
	ErrMalformedPayload = errors.New("weather provider returned malformed payload")
)

// StatusError carries the raw HTTP status code of a failed request.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d", ErrHTTPStatus, e.Code)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrHTTPStatus
}

// ProviderError carries the status code and message embedded in a provider response.
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %d", ErrProviderStatus, e.Code)
	}
	return fmt.Sprintf("%s: %d (%s)", ErrProviderStatus, e.Code, e.Message)
}

func (e *ProviderError) Is(target error) bool {
	return target == ErrProviderStatus
}

// PayloadError names the first expected field that is missing from a response.
type PayloadError struct {
	Field string
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("%s: missing field %q", ErrMalformedPayload, e.Field)
}

func (e *PayloadError) Is(target error) bool {
	return target == ErrMalformedPayload
}
