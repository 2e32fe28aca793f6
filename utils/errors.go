package utils

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	ErrTimeout = errors.New("timeout")
)

// FetchError is returned when the source image of an emoji can't be downloaded.
type FetchError struct {
	Name       string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("couldn't fetch image for :%s: (%v)", e.Name, e.Err)
	}

	return fmt.Sprintf("couldn't fetch image for :%s: (%d)", e.Name, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// PlatformError wraps a rejection from Discord (emoji, webhook, permission checks).
type PlatformError struct {
	Op      string
	Code    int
	Message string
	Err     error
}

func (e *PlatformError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

type UserInputError struct {
	Msg string
}

func (e *UserInputError) Error() string {
	return e.Msg
}

func NewUserInputError(format string, a ...any) error {
	return &UserInputError{Msg: fmt.Sprintf(format, a...)}
}

type NotFoundError struct {
	What  string
	Query string
}

func (e *NotFoundError) Error() string {
	if e.Query == "" {
		return fmt.Sprintf("%s not found", e.What)
	}

	return fmt.Sprintf("%s `%s` not found", e.What, e.Query)
}

type CooldownError struct {
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("on cooldown for %v", e.RetryAfter)
}

// Seconds rounds up so a user is never told to retry in 0 seconds.
func (e *CooldownError) Seconds() int {
	return int(math.Ceil(e.RetryAfter.Seconds()))
}

type MissingPermissionsError struct {
	Permissions []string
}

func (e *MissingPermissionsError) Error() string {
	return "missing permissions: " + strings.Join(e.Permissions, ", ")
}

// UserMessage turns any error into the single line shown in chat. The second
// return value is false when the error is unexpected and should be logged.
func UserMessage(err error) (string, bool) {
	var (
		fetchErr    *FetchError
		platformErr *PlatformError
		inputErr    *UserInputError
		notFoundErr *NotFoundError
		cooldownErr *CooldownError
		permsErr    *MissingPermissionsError
	)

	switch {
	case errors.As(err, &inputErr):
		return inputErr.Msg, true
	case errors.As(err, &notFoundErr):
		if notFoundErr.Query == "" {
			return fmt.Sprintf("I couldn't find that %s.", notFoundErr.What), true
		}
		return fmt.Sprintf("I couldn't find the %s `%s`.", notFoundErr.What, notFoundErr.Query), true
	case errors.As(err, &cooldownErr):
		return fmt.Sprintf("That command is on cooldown. Try again in %d seconds.", cooldownErr.Seconds()), true
	case errors.As(err, &permsErr):
		return fmt.Sprintf("You need the `%s` permission to do that.", strings.Join(permsErr.Permissions, "`, `")), true
	case errors.As(err, &fetchErr):
		if fetchErr.StatusCode != 0 {
			return fmt.Sprintf("Couldn't fetch image (%d).", fetchErr.StatusCode), true
		}
		return "Couldn't fetch image.", true
	case errors.As(err, &platformErr):
		if platformErr.Message != "" {
			return fmt.Sprintf("Discord rejected that: %s", platformErr.Message), true
		}
		return "Discord rejected that request.", true
	case errors.Is(err, ErrTimeout):
		return "That timed out.", true
	}

	return "Something went wrong. Please try again later.", false
}
