package friends

import "errors"

var (
	ErrMissingTarget     = errors.New("target user id is required")
	ErrMissingRequest    = errors.New("request id is required")
	ErrUnknownRequest    = errors.New("request not found in received list")
	ErrActionInFlight    = errors.New("another action for this user is still pending")
	ErrInvalidTransition = errors.New("action not available in current relationship state")
	ErrConfirmDeclined   = errors.New("action was not confirmed")
)
