package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOfAndMessageOf(t *testing.T) {
	err := New(NotFound, "Conversation not found")
	require.Equal(t, NotFound, KindOf(err))
	require.Equal(t, "Conversation not found", MessageOf(err))

	// Classification survives wrapping.
	wrapped := fmt.Errorf("handler: %w", err)
	require.Equal(t, NotFound, KindOf(wrapped))
	require.Equal(t, "Conversation not found", MessageOf(wrapped))

	// Unclassified errors stay opaque to clients.
	plain := errors.New("sqlite: disk I/O error")
	require.Equal(t, Internal, KindOf(plain))
	require.Equal(t, "Something went wrong", MessageOf(plain))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("constraint failed")
	err := Wrap(Conflict, "Already following this user", cause)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "constraint failed")
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		Validation:   http.StatusBadRequest,
		Unauthorized: http.StatusUnauthorized,
		Forbidden:    http.StatusForbidden,
		NotFound:     http.StatusNotFound,
		Conflict:     http.StatusConflict,
		Internal:     http.StatusInternalServerError,
		Delivery:     http.StatusInternalServerError,
	}
	for kind, want := range cases {
		require.Equal(t, want, HTTPStatus(New(kind, "x")))
	}
}
