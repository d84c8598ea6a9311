package service

import "errors"

// Engine failure taxonomy. Handlers map these to HTTP statuses with errors.Is;
// nothing here is retried internally.
var (
	ErrConfigNotFound           = errors.New("no active quiz config for chapter")
	ErrInvalidConfig            = errors.New("invalid quiz config")
	ErrAttemptLimitExceeded     = errors.New("attempt limit reached for chapter")
	ErrSessionAlreadyInProgress = errors.New("an attempt is already in progress for this chapter")
	ErrSessionNotFound          = errors.New("session not found")
	ErrSessionNotActive         = errors.New("session is no longer in progress")
	ErrSessionAlreadyFinished   = errors.New("session is already finished")
	ErrUnknownQuestion          = errors.New("question is not part of this session")
)
