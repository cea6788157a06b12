package apperr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Status(Validation("bad input")))
	assert.Equal(t, http.StatusUnauthorized, Status(Authentication("no")))
	assert.Equal(t, http.StatusForbidden, Status(Authorization("no")))
	assert.Equal(t, http.StatusNotFound, Status(NotFound("gone")))
	assert.Equal(t, http.StatusConflict, Status(Conflict("taken")))
	assert.Equal(t, http.StatusInternalServerError, Status(Persistence(errors.New("db down"), "query failed")))
	assert.Equal(t, http.StatusInternalServerError, Status(errors.New("unclassified")))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "bad input", Message(Validation("bad input")))
	assert.Equal(t, "Server error", Message(Persistence(errors.New("db down"), "query failed")))
	assert.Equal(t, "Server error", Message(errors.New("unclassified")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("db down")
	err := Persistence(cause, "query failed")
	assert.ErrorIs(t, err, cause)

	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindPersistence, kind)

	_, ok = KindOf(cause)
	assert.False(t, ok)
}

func TestValidationFormatting(t *testing.T) {
	err := Validation("Unknown difficulty %q", "impossible")
	assert.Equal(t, `Unknown difficulty "impossible"`, Message(err))
}
