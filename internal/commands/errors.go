package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to wrapped failures so CLI output and telemetry can
// branch on the failure class without matching message strings.
const (
	codeMessageInvalid  = "PRESS_MESSAGE_INVALID"
	codeCommandCanceled = "PRESS_COMMAND_CANCELED"
	codeCommandTimeout  = "PRESS_COMMAND_TIMEOUT"
	codeCommandFailed   = "PRESS_COMMAND_FAILED"
)

func wrapValidationError(err error) error {
	return wrapCommandError(err, goerrors.CategoryValidation, "site command rejected its message", codeMessageInvalid)
}

func wrapContextError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return wrapCommandError(err, goerrors.CategoryCommand, "site command canceled", codeCommandCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return wrapCommandError(err, goerrors.CategoryCommand, "site command hit its deadline", codeCommandTimeout)
	default:
		return wrapCommandError(err, goerrors.CategoryCommand, "site command context failed", codeCommandFailed)
	}
}

func wrapExecuteError(err error) error {
	return wrapCommandError(err, goerrors.CategoryCommand, "site command failed", codeCommandFailed)
}

// wrapCommandError leaves already-wrapped errors alone so the innermost
// handler's category and code win.
func wrapCommandError(err error, category goerrors.Category, msg, code string) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, category, msg).WithTextCode(code)
}
