package client

import (
	"errors"
	"regexp"
	"strings"
)

// Mode selects between the two auth form modes.
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

const minPasswordLength = 8

var formEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Form carries the auth form fields. Validate runs entirely locally;
// a failing form never reaches the network.
type Form struct {
	Mode       Mode
	Email      string
	Name       string
	Password   string
	Confirm    string
	AgreeTerms bool
}

// Validate checks the form per its mode and returns the first problem
// found.
func (f Form) Validate() error {
	email := strings.TrimSpace(f.Email)
	if email == "" {
		return errors.New("email is required")
	}
	if !formEmailPattern.MatchString(email) {
		return errors.New("invalid email address")
	}
	if f.Password == "" {
		return errors.New("password is required")
	}

	if f.Mode == ModeLogin {
		return nil
	}

	if strings.TrimSpace(f.Name) == "" {
		return errors.New("name is required")
	}
	if len(f.Password) < minPasswordLength {
		return errors.New("password must be at least 8 characters")
	}
	if f.Password != f.Confirm {
		return errors.New("passwords do not match")
	}
	if !f.AgreeTerms {
		return errors.New("you must agree to the terms")
	}
	return nil
}
