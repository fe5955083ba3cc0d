package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_MatchesByKind(t *testing.T) {
	err := newError(KindNoCapacity, "no spots left")

	assert.ErrorIs(t, err, ErrNoCapacity)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, fmt.Errorf("signup: %w", err), ErrNoCapacity)
	assert.Equal(t, "no spots left", err.Error())
}

func TestStoreError(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := storeError("store unavailable", cause)

	assert.ErrorIs(t, err, ErrStoreFailure)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "store unavailable: disk I/O error", err.Error())

	classified := newError(KindAlreadyActive, "already signed up")
	assert.Same(t, classified, storeError("ignored", classified))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindWindowExpired, KindOf(fmt.Errorf("wrapped: %w", ErrWindowExpired)))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}
