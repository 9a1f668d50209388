package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/eventsplit/internal/settle"
	"github.com/mmynk/eventsplit/internal/storage"
)

// connectError maps core errors onto Connect codes.
func connectError(err error) error {
	switch {
	case settle.IsValidation(err), errors.Is(err, storage.ErrInvalidID):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, settle.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
