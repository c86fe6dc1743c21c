package service

import (
	"context"
	"time"

	"github.com/vogiaan1904/ticketbottle-checkin/internal/models"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/repository"
	"github.com/vogiaan1904/ticketbottle-checkin/pkg/logger"
)

type paymentService struct {
	l   logger.Logger
	now func() time.Time
}

func NewPaymentService(l logger.Logger) PaymentService {
	return &paymentService{l: l, now: time.Now}
}

// RegisterOnSiteTransaction writes the payment row through the caller's
// transaction handle. It performs no commit of its own: the payment
// becomes durable exactly when the surrounding check-in does.
func (s *paymentService) RegisterOnSiteTransaction(ctx context.Context, tx repository.Tx, event *models.Event, reservationID string, priceCts int64) error {
	if err := tx.InsertPaymentTransaction(ctx, models.PaymentTransaction{
		ReservationID: reservationID,
		PaymentProxy:  models.PaymentProxyOnSite,
		PriceCts:      priceCts,
		Currency:      event.Currency,
		Timestamp:     s.now(),
	}); err != nil {
		s.l.Errorf(ctx, "service.paymentService.RegisterOnSiteTransaction: %v", err)
		return err
	}
	return nil
}
