package services

import (
	"errors"

	"stacksave/internal/repository"
)

var (
	// ErrNotFound means the requested protocol or strategy does not exist.
	ErrNotFound = repository.ErrNotFound
	// ErrInvalidWallet means the address is not 0x followed by 40 hex digits.
	ErrInvalidWallet = errors.New("invalid wallet address format")
)
