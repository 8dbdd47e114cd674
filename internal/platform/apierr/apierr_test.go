package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrInvalid("x"), http.StatusBadRequest},
		{ErrNotOwned("x"), http.StatusBadRequest},
		{ErrConflict("x"), http.StatusBadRequest},
		{ErrNotFound("x"), http.StatusNotFound},
		{ErrMissingParty("borrower not found"), http.StatusBadRequest},
		{ErrUnauthenticated("x"), http.StatusUnauthorized},
		{ErrInternal("x"), http.StatusInternalServerError},
		{errors.New("driver: bad connection"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", ErrNotFound("user")), http.StatusNotFound},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, HTTPStatus(tc.err), tc.err.Error())
	}
}

func TestFromErrHidesInternalDetails(t *testing.T) {
	body := FromErr(errors.New("dial tcp 10.0.0.1:3306: refused"))
	require.False(t, body.Success)
	require.Equal(t, CodeInternal, body.Error.Code)
	require.Equal(t, "internal error", body.Message)

	body = FromErr(ErrNotOwned("loan not found or unauthorized"))
	require.Equal(t, CodeNotOwned, body.Error.Code)
	require.Equal(t, "loan not found or unauthorized", body.Message)
}

func TestCodeOf(t *testing.T) {
	require.Equal(t, CodeConflict, CodeOf(ErrConflict("username already exists")))
	require.Equal(t, CodeInternal, CodeOf(errors.New("x")))
}

func TestFromBinding(t *testing.T) {
	type req struct {
		Username string `validate:"required,min=3"`
		Email    string `validate:"required,email"`
	}
	err := validator.New().Struct(req{Username: "ab", Email: "nope"})
	require.Error(t, err)

	api := FromBinding(err)
	require.Equal(t, CodeInvalidArgument, api.Code)
	require.Contains(t, api.Message, "username must be at least 3 characters")
	require.Contains(t, api.Message, "email must be a valid email")

	require.Equal(t, "invalid json", FromBinding(errors.New("unexpected EOF")).Message)
}
