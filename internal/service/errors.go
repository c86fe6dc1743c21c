package service

import "errors"

var (
	ErrEventNotFound          = errors.New("event not found")
	ErrTicketNotFound         = errors.New("ticket not found")
	ErrOfflineCheckInDisabled = errors.New("offline check-in is not enabled for this event")
	ErrInvalidTicketCategory  = errors.New("ticket category not found")
	ErrReservationNotFound    = errors.New("ticket reservation not found")
)
