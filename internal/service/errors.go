package service

import (
	"errors"
	"fmt"

	"github.com/shenikar/firechain/internal/ledger"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrIllegalTransition   = errors.New("illegal transition")
	ErrLedgerRejected      = errors.New("ledger rejected the entry")
	ErrAlreadyClaimed      = errors.New("reward already claimed")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrConfirmationTimeout = errors.New("ledger confirmation timed out, outcome unknown")

	// errConflict - запись изменилась между чтением и коммитом; наружу не выходит
	errConflict = errors.New("version conflict")
)

// commitError переводит ошибку подтверждения в таксономию сервиса
func commitError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrVersionConflict):
		return fmt.Errorf("%w: %w", errConflict, err)
	case errors.Is(err, ledger.ErrTimeout):
		return fmt.Errorf("%w: %w", ErrConfirmationTimeout, err)
	default:
		return fmt.Errorf("%w: %w", ErrLedgerRejected, err)
	}
}

// readError: отсутствие записи - ErrNotFound, остальное как есть
func readError(err error) error {
	if errors.Is(err, ledger.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
