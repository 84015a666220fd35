package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormValidate(t *testing.T) {
	valid := Form{
		Mode:       ModeRegister,
		Email:      "ada@example.com",
		Name:       "Ada",
		Password:   "longenough",
		Confirm:    "longenough",
		AgreeTerms: true,
	}

	tests := []struct {
		name    string
		mutate  func(f *Form)
		wantErr string
	}{
		{
			name:   "valid registration",
			mutate: func(f *Form) {},
		},
		{
			name: "valid login ignores register fields",
			mutate: func(f *Form) {
				f.Mode = ModeLogin
				f.Name = ""
				f.Confirm = ""
				f.AgreeTerms = false
				f.Password = "short"
			},
		},
		{
			name:    "missing email",
			mutate:  func(f *Form) { f.Email = "  " },
			wantErr: "email is required",
		},
		{
			name:    "malformed email",
			mutate:  func(f *Form) { f.Email = "not-an-email" },
			wantErr: "invalid email address",
		},
		{
			name:    "missing password",
			mutate:  func(f *Form) { f.Password = "" },
			wantErr: "password is required",
		},
		{
			name:    "missing name on register",
			mutate:  func(f *Form) { f.Name = " " },
			wantErr: "name is required",
		},
		{
			name: "short password on register",
			mutate: func(f *Form) {
				f.Password = "short"
				f.Confirm = "short"
			},
			wantErr: "password must be at least 8 characters",
		},
		{
			name:    "confirm mismatch",
			mutate:  func(f *Form) { f.Confirm = "different" },
			wantErr: "passwords do not match",
		},
		{
			name:    "terms not accepted",
			mutate:  func(f *Form) { f.AgreeTerms = false },
			wantErr: "you must agree to the terms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := valid
			tt.mutate(&form)
			err := form.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
