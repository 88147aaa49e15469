package dperrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMatchesKind(t *testing.T) {
	err := New(KindBufferClosed, "offer to inactive buffer")
	assert.True(t, Is(err, KindBufferClosed))
	assert.False(t, Is(err, KindDeadline))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Wrap(KindTransportTransient, "sub-request 2", cause)

	require.True(t, Is(err, KindTransportTransient))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRecoveryErrorFatalClassification(t *testing.T) {
	transient := &RecoveryError{Failures: []SubFailure{
		{Index: 0, Kind: KindTransportTransient, Message: "timeout"},
		{Index: 1, Kind: KindCancelled, Message: "cancelled"},
	}}
	assert.False(t, transient.Fatal())
	assert.Equal(t, KindTransportTransient, transient.ToError().Kind)

	fatal := &RecoveryError{Failures: []SubFailure{
		{Index: 0, Kind: KindTransportTransient, Message: "timeout"},
		{Index: 1, Kind: KindDuplicateSource, Message: "source A twice"},
	}}
	assert.True(t, fatal.Fatal())
	assert.Equal(t, KindTransportFatal, fatal.ToError().Kind)
}

func TestServerErrorSurfacesUnchanged(t *testing.T) {
	err := AsServerError("QUOTA_EXCEEDED", "quota exceeded")
	require.True(t, Is(err, KindServerError))

	var se *ServerError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "QUOTA_EXCEEDED", se.ServerKind)
	assert.Equal(t, "quota exceeded", se.Message)
}
