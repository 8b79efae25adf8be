package validator

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type ValidationErrors []FieldError

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v *ValidationErrors) Add(field, msg string) {
	*v = append(*v, FieldError{Field: field, Msg: msg})
}

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

func ValidateRegister(email, username, password string) ValidationErrors {
	var errs ValidationErrors

	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Valid email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Valid email is required")
	}

	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 20 {
		errs.Add("username", "Username must be 3-20 characters")
	} else if !usernameRegex.MatchString(username) {
		errs.Add("username", "Username can contain letters, numbers, and underscores")
	}

	if len(password) < 6 {
		errs.Add("password", "Password must be at least 6 characters long")
	}

	return errs
}

func ValidateLogin(email, username, password string) ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(email) == "" && strings.TrimSpace(username) == "" {
		errs.Add("email", "Email or username is required")
	}
	if len(password) < 6 {
		errs.Add("password", "Password must be at least 6 characters long")
	}

	return errs
}

func ValidateNoteContent(content string) ValidationErrors {
	var errs ValidationErrors

	content = strings.TrimSpace(content)
	if n := utf8.RuneCountInString(content); n < 1 || n > 300 {
		errs.Add("content", "Content must be between 1 and 300 characters")
	}

	return errs
}
