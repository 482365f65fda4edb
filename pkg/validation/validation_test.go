package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Role     string   `validate:"omitempty,troop_role"`
	Channels []string `validate:"required,min=1,dive,blast_channel"`
	Medical  string   `validate:"omitempty,medical_status"`
}

func TestCustomTags(t *testing.T) {
	tests := []struct {
		name  string
		in    sample
		valid bool
	}{
		{"valid", sample{Role: "patrol_leader", Channels: []string{"sms", "app"}, Medical: "pending"}, true},
		{"empty optional fields", sample{Channels: []string{"email"}}, true},
		{"unknown role", sample{Role: "wizard", Channels: []string{"sms"}}, false},
		{"unknown channel", sample{Channels: []string{"pigeon"}}, false},
		{"no channel", sample{}, false},
		{"hidden is not a stored status", sample{Channels: []string{"sms"}, Medical: "hidden"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestRegisterGin(t *testing.T) {
	require.NoError(t, RegisterGin())
}

func TestRegisterOnFreshValidator(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))
	assert.NoError(t, v.Var("scoutmaster", "troop_role"))
	assert.Error(t, v.Var("chief", "troop_role"))
}
