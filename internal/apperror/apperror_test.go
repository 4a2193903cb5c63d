package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	cases := map[*Error]int{
		Validation("invalid", nil):          http.StatusUnprocessableEntity,
		NotFound("missing"):                 http.StatusNotFound,
		Unauthenticated("who?", nil):        http.StatusUnauthorized,
		Forbidden("no"):                     http.StatusForbidden,
		BadRequest("bad"):                   http.StatusBadRequest,
		TooManyRequests("slow down"):        http.StatusTooManyRequests,
		Creation("create", errors.New("x")): http.StatusInternalServerError,
		Update("update", errors.New("x")):   http.StatusInternalServerError,
		Internal("oops", nil):               http.StatusInternalServerError,
	}
	for err, status := range cases {
		assert.Equal(t, status, err.Status(), err.Message)
	}
}

func TestWrapping(t *testing.T) {
	cause := errors.New("deadlock")
	err := fmt.Errorf("handler: %w", Update("Failed to update movie", cause))

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsKind(err, KindUpdate))
	assert.False(t, IsKind(err, KindNotFound))
	ae, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, "Failed to update movie: deadlock", ae.Error())

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
	assert.Equal(t, "missing", NotFound("missing").Error())
}
