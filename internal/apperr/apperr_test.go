package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation", Validation("title is required"), http.StatusBadRequest},
		{"unauthenticated", Unauthenticated("login required"), http.StatusUnauthorized},
		{"forbidden", Forbidden("not yours"), http.StatusForbidden},
		{"not found", NotFound("post not found"), http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("loading post: %w", NotFound("post not found")), http.StatusNotFound},
		{"plain error", errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Status(tc.err))
		})
	}
}

func TestError_KeepsMessageAndKind(t *testing.T) {
	err := Forbidden("only the owner can do that")

	assert.Equal(t, "only the owner can do that", err.Error())
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NotErrorIs(t, err, ErrNotFound)
}
