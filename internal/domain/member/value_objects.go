package member

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrInvalidTier        = errors.New("invalid subscription tier")
	ErrInvalidTrialWindow = errors.New("trial end must be after trial start")
	ErrInvalidAccessEnd   = errors.New("access end must not be before cancellation")
	ErrNotOnTrial         = errors.New("member has no trial to activate")
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

type Email struct {
	value string
}

func NewEmail(s string) (Email, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if !emailRegex.MatchString(s) {
		return Email{}, ErrInvalidEmail
	}
	return Email{value: s}, nil
}

func (e Email) Value() string {
	return e.value
}

// ReconstructEmail rebuilds an Email from persisted state without
// re-validation; rows were validated on the way in.
func ReconstructEmail(s string) Email {
	return Email{value: s}
}
