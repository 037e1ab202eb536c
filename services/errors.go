package services

import "github.com/pkg/errors"

var (
	ErrAuthenticationRequired = errors.New("not authenticated")
	ErrUserNotFound           = errors.New("user not found")
	ErrPodcastNotFound        = errors.New("podcast not found")
	ErrInvalidInput           = errors.New("invalid input")
)

func invalid(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidInput, format, args...)
}

// ErrGeneratorUnavailable is returned when an AI backend is not configured.
var ErrGeneratorUnavailable = errors.New("generator not configured")
