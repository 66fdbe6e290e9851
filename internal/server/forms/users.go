package forms

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/diary/internal/common"
	"github.com/dmitrijs2005/diary/internal/server/fields"
)

const (
	MaxDisplayNameLength = 150
	MinPasswordLength    = 8
	// MaxPasswordLength is in bytes; bcrypt rejects longer input.
	MaxPasswordLength = 72
)

var phoneRe = regexp.MustCompile(`^\+?[0-9]{9,15}$`)

// RegisterInput is a validated registration submission.
type RegisterInput struct {
	Email       string
	DisplayName string
	Phone       string
	Password    string
}

// ProfileInput is a validated profile update.
type ProfileInput struct {
	DisplayName string
	Phone       string
}

// PasswordChangeInput is a validated password change.
type PasswordChangeInput struct {
	OldPassword string
	NewPassword string
}

func ParseRegister(v Values) (*RegisterInput, error) {
	verr := common.NewValidationError()

	in := &RegisterInput{
		Email:       NormalizeEmail(v.String("email")),
		DisplayName: strings.TrimSpace(v.String("display_name")),
		Phone:       strings.TrimSpace(v.String("phone")),
		Password:    v.String("password1"),
	}

	checkEmail(verr, in.Email)
	checkDisplayName(verr, in.DisplayName)
	checkPhone(verr, in.Phone)
	checkNewPassword(verr, "password1", "password2", in.Password, v.String("password2"))

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return in, nil
}

func ParseProfile(v Values) (*ProfileInput, error) {
	verr := common.NewValidationError()

	in := &ProfileInput{
		DisplayName: strings.TrimSpace(v.String("display_name")),
		Phone:       strings.TrimSpace(v.String("phone")),
	}
	checkDisplayName(verr, in.DisplayName)
	checkPhone(verr, in.Phone)

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return in, nil
}

func ParsePasswordChange(v Values) (*PasswordChangeInput, error) {
	verr := common.NewValidationError()

	in := &PasswordChangeInput{
		OldPassword: v.String("old_password"),
		NewPassword: v.String("new_password1"),
	}
	if in.OldPassword == "" {
		verr.Add("old_password", "this field is required")
	}
	checkNewPassword(verr, "new_password1", "new_password2", in.NewPassword, v.String("new_password2"))

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return in, nil
}

// NormalizeEmail trims and lowercases the domain part.
func NormalizeEmail(s string) string {
	s = strings.TrimSpace(s)
	at := strings.LastIndex(s, "@")
	if at < 0 {
		return s
	}
	return s[:at] + strings.ToLower(s[at:])
}

func checkEmail(verr *common.ValidationError, email string) {
	if email == "" {
		verr.Add("email", "this field is required")
		return
	}
	if !fields.ValidText(email) {
		verr.Add("email", "enter a valid email address")
		return
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		verr.Add("email", "enter a valid email address")
	}
}

func checkDisplayName(verr *common.ValidationError, name string) {
	if name == "" {
		verr.Add("display_name", "this field is required")
		return
	}
	if !fields.ValidText(name) {
		verr.Add("display_name", fields.InvalidTextMessage)
		return
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLength {
		verr.Add("display_name", "must be at most 150 characters")
	}
}

func checkPhone(verr *common.ValidationError, phone string) {
	if phone != "" && !phoneRe.MatchString(phone) {
		verr.Add("phone", "phone number must look like '+999999999'")
	}
}

func checkNewPassword(verr *common.ValidationError, k1, k2, p1, p2 string) {
	if p1 == "" {
		verr.Add(k1, "this field is required")
		return
	}
	if utf8.RuneCountInString(p1) < MinPasswordLength {
		verr.Add(k1, "password must be at least 8 characters")
	}
	if len(p1) > MaxPasswordLength {
		verr.Add(k1, "password must be at most 72 bytes")
	}
	if p1 != p2 {
		verr.Add(k2, "passwords do not match")
	}
}
