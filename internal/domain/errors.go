package domain

import "errors"

var (
	ErrRuleNotFound     = errors.New("rule not found")
	ErrInvalidRule      = errors.New("invalid rule")
	ErrEmptyItems       = errors.New("rule must block at least one item")
	ErrSecretNotFound   = errors.New("secret not found")
	ErrWrongPassword    = errors.New("wrong password")
	ErrUnlockNotAllowed = errors.New("rule cannot be unlocked now")
	ErrInvalidProgress  = errors.New("progress counters must not be negative")
)
