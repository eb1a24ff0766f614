package gerror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/hashicorp/go-multierror"
	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	err := NewErrValidationFailed("limit is out of range")
	err = err.Wrap(fmt.Errorf("i'm a scary internal error"))
	require.Equal(t, "limit is out of range: i'm a scary internal error", err.Error())
	require.Equal(t, "limit is out of range", err.Message())

	err = err.EDetail("limit", 101)
	require.Equal(t, "limit is out of range [limit=101]: i'm a scary internal error", err.Error())
	require.Equal(t, 101, err.Detail("limit"))
	require.Nil(t, err.Detail("missing"))

	err = err.EDetail("cursor", "42")
	require.Equal(t, "limit is out of range [cursor=42, limit=101]: i'm a scary internal error", err.Error())
	require.Equal(t, "limit is out of range", err.Message())
}

func TestErrorUnwrap(t *testing.T) {
	inner := context.Canceled
	err := NewErrRateLimited(inner)
	require.True(t, errors.Is(err, context.Canceled))
	require.Equal(t, http.StatusTooManyRequests, err.HTTPStatusCode())

	wrapped := pkgerrors.Wrap(err, "error fetching page")
	require.True(t, IsRateLimited(wrapped))
	require.True(t, errors.Is(wrapped, context.Canceled))
	require.False(t, IsUnexpectedStatus(wrapped))
}

func TestUnexpectedStatus(t *testing.T) {
	err := NewErrUnexpectedStatus(http.StatusForbidden, `{"message": "Missing Access"}`)
	require.Equal(t, "download stopped early: API returned 403 Forbidden", err.Message())
	require.Equal(t, `{"message": "Missing Access"}`, err.Detail(DetailBody))
	require.True(t, HasHTTPStatusCode(fmt.Errorf("outer: %w", err), http.StatusForbidden))
	require.False(t, HasHTTPStatusCode(errors.New("plain"), http.StatusForbidden))
	require.Equal(t, AudienceInternal, err.Details()[DetailBody].Audience())
}

func TestMultiError(t *testing.T) {
	// Compose a multierror with our tested error in the middle
	var results *multierror.Error

	results = multierror.Append(results, fmt.Errorf("error 1: %w", errors.New("1")))
	results = multierror.Append(results, NewErrMalformedResponse(http.StatusOK, errors.New("2")))
	results = multierror.Append(results, fmt.Errorf("error 3: %w", errors.New("3")))

	// Assert that our Is chaining returns an error in the middle of the chain
	err := results.ErrorOrNil()
	require.True(t, IsMalformedResponse(err))

	// Wrap up the above error with another multierror
	var outerResults *multierror.Error
	outerResults = multierror.Append(err, fmt.Errorf("outer error 1: %w", errors.New("11")))

	// And assert our Is chaining returns the error we are after.
	outerErr := outerResults.ErrorOrNil()
	require.True(t, IsMalformedResponse(outerErr))
	require.False(t, IsInternal(outerErr))
}
