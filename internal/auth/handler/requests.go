package handler

import (
	"strings"

	"github.com/asaskevich/govalidator"

	dErrors "vouch/pkg/domain-errors"
)

// Request shapes mirror the public API contract; field names are part of the
// wire format and must not drift.

type registrationRequest struct {
	EmailAddr string `json:"emailAddr"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

type loginRequest struct {
	EmailAddr string `json:"emailAddr"`
	Password  string `json:"password"`
}

type validationRequest struct {
	UserID    string `json:"userId"`
	AuthToken string `json:"authToken"`
}

type passwordResetRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
	Token    string `json:"token"`
}

func (r registrationRequest) validate() error {
	var problems []string
	if !govalidator.IsEmail(r.EmailAddr) {
		problems = append(problems, "emailAddr: must be a valid email address")
	}
	if !govalidator.StringLength(r.FirstName, "2", "50") {
		problems = append(problems, "firstName: length must be between 2 and 50")
	}
	if !govalidator.StringLength(r.LastName, "2", "50") {
		problems = append(problems, "lastName: length must be between 2 and 50")
	}
	if !govalidator.StringLength(r.Password, "6", "50") {
		problems = append(problems, "password: length must be between 6 and 50")
	}
	return problemsToError(problems)
}

func (r loginRequest) validate() error {
	var problems []string
	if !govalidator.IsEmail(r.EmailAddr) {
		problems = append(problems, "emailAddr: must be a valid email address")
	}
	if r.Password == "" {
		problems = append(problems, "password: is required")
	}
	return problemsToError(problems)
}

func (r validationRequest) validate() error {
	var problems []string
	if !govalidator.StringLength(r.UserID, "2", "60") {
		problems = append(problems, "userId: length must be between 2 and 60")
	}
	if len(r.AuthToken) < 5 {
		problems = append(problems, "authToken: length must be at least 5")
	}
	return problemsToError(problems)
}

func (r passwordResetRequest) validate() error {
	var problems []string
	if !govalidator.IsEmail(r.UserID) {
		problems = append(problems, "userId: must be a valid email address")
	}
	if !govalidator.StringLength(r.Password, "5", "50") {
		problems = append(problems, "password: length must be between 5 and 50")
	}
	if r.Token == "" {
		problems = append(problems, "token: is required")
	}
	return problemsToError(problems)
}

func problemsToError(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return dErrors.New(dErrors.CodeBadRequest, strings.Join(problems, "\n"))
}
