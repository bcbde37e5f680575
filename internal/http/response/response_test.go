package response

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOKWithData(t *testing.T) {
	resp := OKWithData("user created", map[string]string{"uid": "uid-1"})
	assert.True(t, resp.Success)
	assert.Equal(t, "user created", resp.Message)
	assert.NotNil(t, resp.Data)
	assert.Empty(t, resp.Errors)
}

func TestError(t *testing.T) {
	resp := Error("something went wrong")
	assert.False(t, resp.Success)
	assert.Equal(t, "something went wrong", resp.Message)
}

func TestValidationError(t *testing.T) {
	type request struct {
		Name     string `validate:"required"`
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=6"`
	}

	err := validator.New().Struct(request{Email: "not-an-email", Password: "abc"})
	require.Error(t, err)

	var validateErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validateErrs)

	resp := ValidationError(validateErrs)
	assert.False(t, resp.Success)
	assert.Equal(t, "validation failed", resp.Message)
	assert.Contains(t, resp.Errors, "field Name is a required field")
	assert.Contains(t, resp.Errors, "field Email is not a valid email")
	assert.Contains(t, resp.Errors, "field Password is too short")
}
