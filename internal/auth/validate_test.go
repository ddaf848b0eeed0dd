package auth

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		ok    bool
	}{
		{"ana@example.com", true},
		{"first.last+gift@shop.co.ke", true},
		{"", false},
		{"not-an-email", false},
		{"a@b", false},
		{"user@localhost", false},
		{"ana@example.com" + string(make([]byte, 300)), false},
	}
	for _, tt := range tests {
		err := ValidateEmail(tt.email)
		if tt.ok {
			assert.NoError(t, err, tt.email)
			continue
		}
		assert.Equal(t, KindInvalidEmail, KindOf(err), tt.email)
	}
}

// the checkout form binds emails through gin; registration must agree with it
func TestValidateEmailMatchesCheckoutBinding(t *testing.T) {
	type form struct {
		Email string `binding:"required,email"`
	}
	for _, email := range []string{"ana@example.com", "a@b", "user@localhost", `"x y"@example.com`, "x@@example.com"} {
		bindErr := binding.Validator.ValidateStruct(&form{Email: email})
		assert.Equal(t, bindErr == nil, ValidateEmail(email) == nil, email)
	}
}
