package services

import (
	"fmt"
	"net/mail"
	"unicode/utf8"

	"github.com/dmitrijs2005/postbox/internal/common"
)

func requireField(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s", common.ErrMissingArgument, name)
	}
	return nil
}

func limitField(name, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return fmt.Errorf("%w: %s longer than %d characters", common.ErrInvalidArgument, name, max)
	}
	return nil
}

// checkEmail accepts a bare address only, without a display name.
func checkEmail(value string) error {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return fmt.Errorf("%w: email is not a valid address", common.ErrInvalidArgument)
	}
	return nil
}
