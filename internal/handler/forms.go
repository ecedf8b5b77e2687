package handler

import (
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

type SignUpForm struct {
	FirstName       string `validate:"required"`
	LastName        string `validate:"required"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,eqfield=PasswordConfirm"`
	PasswordConfirm string `validate:"required"`
}

type SignInForm struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

type PurchaseForm struct {
	Barcode string `json:"barcode" validate:"required,numeric,len=10"`
}

func signUpFromValues(v url.Values) SignUpForm {
	return SignUpForm{
		FirstName:       strings.TrimSpace(v.Get("first_name")),
		LastName:        strings.TrimSpace(v.Get("last_name")),
		Email:           strings.TrimSpace(v.Get("email")),
		Password:        v.Get("password"),
		PasswordConfirm: v.Get("password_confirm"),
	}
}

func signInFromValues(v url.Values) SignInForm {
	return SignInForm{
		Email:    strings.TrimSpace(v.Get("user_email")),
		Password: v.Get("user_password"),
	}
}

// formErrors maps failed fields to the messages shown next to the form.
func formErrors(err error) map[string]string {
	out := map[string]string{}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return out
	}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			out[fe.Field()] = "This field is required."
		case "email":
			out[fe.Field()] = "Invalid email address."
		case "eqfield":
			out[fe.Field()] = "Passwords must match."
		default:
			out[fe.Field()] = "Invalid value."
		}
	}
	return out
}
