package api

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterValidations_Idempotent(t *testing.T) {
	require.NoError(t, registerValidations())
	require.NoError(t, registerValidations())
}

func TestAddValidations(t *testing.T) {
	v := validator.New()
	require.NoError(t, addValidations(v))

	type request struct {
		Slug string `json:"slug" validate:"slug"`
	}

	assert.NoError(t, v.Struct(request{Slug: "casa-en-encarnacion-2"}))

	err := v.Struct(request{Slug: "Casa En Ñemby"})
	var errs validator.ValidationErrors
	require.True(t, errors.As(err, &errs))
	require.Len(t, errs, 1)
	assert.Equal(t, "slug", errs[0].Field())
	assert.Equal(t, "slug", errs[0].Tag())
}
