package nk

import "errors"

var (
	ErrInvalidState        = errors.New("invalid state")
	ErrInvalidMutation     = errors.New("invalid mutation")
	ErrLengthMismatch      = errors.New("state length mismatch")
	ErrNodeIndexOutOfRange = errors.New("node index out of range")
	ErrPositionOutOfRange  = errors.New("state position out of range")
	ErrInvalidNetworkSize  = errors.New("invalid network size")
	ErrInvalidWalkLength   = errors.New("invalid walk length")
	ErrInvalidWiring       = errors.New("invalid wiring")
	ErrInvalidAlphabet     = errors.New("invalid alphabet")
	ErrRankerNotFound      = errors.New("ranker not found")
	ErrLandscapeTooLarge   = errors.New("landscape too large to enumerate")
)
