package spec

import "errors"

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionClosed    = errors.New("session closed")
	ErrUnsupportedLang  = errors.New("unsupported block language")
	ErrNoPresenter      = errors.New("presenter is required")
	ErrDispatcherClosed = errors.New("dispatcher closed")
)
