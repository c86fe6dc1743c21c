package service

import (
	"context"
	"errors"
	"time"

	"github.com/vogiaan1904/ticketbottle-checkin/internal/checkin"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/models"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/monitoring"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/repository"
	"github.com/vogiaan1904/ticketbottle-checkin/pkg/logger"
)

type checkInService struct {
	l        logger.Logger
	store    repository.Store
	events   repository.EventRepository
	tickets  repository.TicketRepository
	cats     repository.CategoryRepository
	payments PaymentService
	pub      EventPublisher
	now      func() time.Time
}

func NewCheckInService(
	l logger.Logger,
	store repository.Store,
	events repository.EventRepository,
	tickets repository.TicketRepository,
	cats repository.CategoryRepository,
	payments PaymentService,
	pub EventPublisher,
) CheckInService {
	return &checkInService{
		l:        l,
		store:    store,
		events:   events,
		tickets:  tickets,
		cats:     cats,
		payments: payments,
		pub:      pub,
		now:      time.Now,
	}
}

func (s *checkInService) CheckIn(ctx context.Context, eventID int64, ticketUUID, code, operator string) (models.TicketAndCheckInResult, error) {
	return s.checkIn(ctx, func(ctx context.Context, tx repository.Tx) (*models.Event, error) {
		return tx.FindEventByID(ctx, eventID)
	}, ticketUUID, code, operator)
}

func (s *checkInService) CheckInByShortName(ctx context.Context, shortName, ticketUUID, code, operator string) (models.TicketAndCheckInResult, error) {
	return s.checkIn(ctx, func(ctx context.Context, tx repository.Tx) (*models.Event, error) {
		return tx.FindEventByShortName(ctx, shortName)
	}, ticketUUID, code, operator)
}

// checkIn holds the ticket row lock for the whole evaluate-then-mutate
// sequence, so two concurrent scans of the same credential serialize and
// exactly one of them succeeds.
func (s *checkInService) checkIn(
	ctx context.Context,
	findEvent func(ctx context.Context, tx repository.Tx) (*models.Event, error),
	ticketUUID, code, operator string,
) (models.TicketAndCheckInResult, error) {
	defer monitoring.ObserveOperation("check_in", s.now())

	var (
		out   models.TicketAndCheckInResult
		event *models.Event
	)
	err := s.store.InTx(ctx, func(tx repository.Tx) error {
		var err error
		event, err = s.resolveEvent(ctx, tx, findEvent)
		if err != nil {
			return err
		}

		ticket, category, err := s.lockTicket(ctx, tx, event, ticketUUID)
		if err != nil {
			return err
		}

		out = checkin.Evaluate(event, ticket, category, code, s.now())
		if out.Result.Status != models.CheckInStatusOKReadyToBeCheckedIn {
			return nil
		}

		if err := s.performCheckIn(ctx, tx, event, ticket, operator, models.ScanOperationScan, models.AuditEventCheckIn); err != nil {
			return err
		}
		out = models.TicketAndCheckInResult{
			Ticket: ticket,
			Result: models.NewCheckInResult(models.CheckInStatusSuccess, "success"),
		}
		return nil
	})
	if err != nil {
		s.l.Errorf(ctx, "service.checkInService.CheckIn: %v", err)
		return models.TicketAndCheckInResult{}, err
	}

	s.recordScan(event, out.Result.Status)
	if out.Result.Status == models.CheckInStatusSuccess {
		s.publish(ctx, s.pub.PublishCheckedIn, event, out.Ticket, operator)
	}
	return out, nil
}

func (s *checkInService) EvaluateTicketStatus(ctx context.Context, eventID int64, ticketUUID, code string) (models.TicketAndCheckInResult, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.l.Errorf(ctx, "service.checkInService.EvaluateTicketStatus: %v", err)
		return models.TicketAndCheckInResult{}, err
	}
	return s.evaluate(ctx, event, ticketUUID, code)
}

func (s *checkInService) EvaluateTicketStatusByShortName(ctx context.Context, shortName, ticketUUID, code string) (models.TicketAndCheckInResult, error) {
	event, err := s.events.FindByShortName(ctx, shortName)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.l.Errorf(ctx, "service.checkInService.EvaluateTicketStatusByShortName: %v", err)
		return models.TicketAndCheckInResult{}, err
	}
	return s.evaluate(ctx, event, ticketUUID, code)
}

// evaluate is the non-locking preview path. It reads without any lock,
// so the verdict may be stale by the time a real scan runs.
func (s *checkInService) evaluate(ctx context.Context, event *models.Event, ticketUUID, code string) (models.TicketAndCheckInResult, error) {
	if event == nil {
		return checkin.Evaluate(nil, nil, nil, code, s.now()), nil
	}

	ticket, err := s.tickets.FindByUUID(ctx, ticketUUID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.l.Errorf(ctx, "service.checkInService.evaluate: %v", err)
		return models.TicketAndCheckInResult{}, err
	}
	if ticket != nil && ticket.EventID != event.ID {
		ticket = nil
	}

	var category *models.TicketCategory
	if ticket != nil {
		category, err = s.cats.FindByID(ctx, ticket.CategoryID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.l.Errorf(ctx, "service.checkInService.evaluate: %v", err)
			return models.TicketAndCheckInResult{}, err
		}
	}

	return checkin.Evaluate(event, ticket, category, code, s.now()), nil
}

func (s *checkInService) ManualCheckIn(ctx context.Context, eventID int64, ticketUUID, operator string) (bool, error) {
	defer monitoring.ObserveOperation("manual_check_in", s.now())

	var (
		done   bool
		event  *models.Event
		ticket *models.Ticket
	)
	err := s.store.InTx(ctx, func(tx repository.Tx) error {
		var err error
		event, err = s.resolveEvent(ctx, tx, func(ctx context.Context, tx repository.Tx) (*models.Event, error) {
			return tx.FindEventByID(ctx, eventID)
		})
		if err != nil {
			return err
		}
		if event == nil {
			return ErrEventNotFound
		}

		ticket, _, err = s.lockTicket(ctx, tx, event, ticketUUID)
		if err != nil {
			return err
		}
		if ticket == nil {
			return nil
		}

		if ticket.Status == models.TicketStatusToBePaid {
			if err := tx.UpdateTicketStatus(ctx, ticket.UUID, models.TicketStatusAcquired); err != nil {
				return err
			}
			ticket.Status = models.TicketStatusAcquired
		}
		if ticket.Status != models.TicketStatusAcquired {
			return nil
		}

		if err := s.performCheckIn(ctx, tx, event, ticket, operator, models.ScanOperationManual, models.AuditEventManualCheckIn); err != nil {
			return err
		}
		done = true
		return nil
	})
	if err != nil {
		s.l.Errorf(ctx, "service.checkInService.ManualCheckIn: %v", err)
		return false, err
	}

	if done {
		s.recordScan(event, models.CheckInStatusSuccess)
		s.publish(ctx, s.pub.PublishCheckedIn, event, ticket, operator)
	}
	return done, nil
}

func (s *checkInService) RevertCheckIn(ctx context.Context, eventID int64, ticketUUID, operator string) (bool, error) {
	defer monitoring.ObserveOperation("revert_check_in", s.now())

	var (
		done   bool
		event  *models.Event
		ticket *models.Ticket
	)
	err := s.store.InTx(ctx, func(tx repository.Tx) error {
		var err error
		event, err = s.resolveEvent(ctx, tx, func(ctx context.Context, tx repository.Tx) (*models.Event, error) {
			return tx.FindEventByID(ctx, eventID)
		})
		if err != nil {
			return err
		}
		if event == nil {
			return ErrEventNotFound
		}

		ticket, _, err = s.lockTicket(ctx, tx, event, ticketUUID)
		if err != nil {
			return err
		}
		if ticket == nil || ticket.Status != models.TicketStatusCheckedIn {
			return nil
		}

		reservation, err := tx.FindReservationByID(ctx, ticket.ReservationID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrReservationNotFound
			}
			return err
		}

		// A ticket paid at the gate goes back to owing money, everything
		// else returns to a plain acquired state.
		restored := models.TicketStatusAcquired
		if reservation.PaymentMethod == models.PaymentProxyOnSite {
			restored = models.TicketStatusToBePaid
		}

		if err := tx.UpdateTicketStatus(ctx, ticket.UUID, restored); err != nil {
			return err
		}
		ticket.Status = restored

		now := s.now()
		if err := tx.InsertScanAudit(ctx, models.ScanAudit{
			TicketUUID: ticket.UUID,
			EventID:    event.ID,
			ScanTime:   now,
			Operator:   operator,
			Result:     models.CheckInStatusOKReadyToBeCheckedIn,
			Operation:  models.ScanOperationRevert,
		}); err != nil {
			return err
		}
		if err := tx.InsertAudit(ctx, models.AuditEntry{
			ReservationID: ticket.ReservationID,
			Operator:      operator,
			EventID:       event.ID,
			EventType:     models.AuditEventRevertCheckIn,
			EventTime:     now,
			EntityType:    models.AuditEntityTicket,
			EntityID:      ticket.UUID,
		}); err != nil {
			return err
		}

		done = true
		return nil
	})
	if err != nil {
		s.l.Errorf(ctx, "service.checkInService.RevertCheckIn: %v", err)
		return false, err
	}

	if done {
		s.publish(ctx, s.pub.PublishReverted, event, ticket, operator)
	}
	return done, nil
}

func (s *checkInService) ConfirmOnSitePayment(ctx context.Context, shortName, ticketUUID, code, operator string) (models.TicketAndCheckInResult, error) {
	defer monitoring.ObserveOperation("confirm_on_site_payment", s.now())

	var (
		out   models.TicketAndCheckInResult
		event *models.Event
		paid  bool
	)
	err := s.store.InTx(ctx, func(tx repository.Tx) error {
		var err error
		event, err = s.resolveEvent(ctx, tx, func(ctx context.Context, tx repository.Tx) (*models.Event, error) {
			return tx.FindEventByShortName(ctx, shortName)
		})
		if err != nil {
			return err
		}

		ticket, category, err := s.lockTicket(ctx, tx, event, ticketUUID)
		if err != nil {
			return err
		}

		out = checkin.Evaluate(event, ticket, category, code, s.now())
		if out.Result.Status != models.CheckInStatusMustPay {
			return nil
		}

		if err := tx.UpdateTicketStatus(ctx, ticket.UUID, models.TicketStatusAcquired); err != nil {
			return err
		}
		ticket.Status = models.TicketStatusAcquired
		if err := s.payments.RegisterOnSiteTransaction(ctx, tx, event, ticket.ReservationID, ticket.FinalPriceCts); err != nil {
			return err
		}
		paid = true

		if err := s.performCheckIn(ctx, tx, event, ticket, operator, models.ScanOperationScan, models.AuditEventCheckIn); err != nil {
			return err
		}
		out = models.TicketAndCheckInResult{
			Ticket: ticket,
			Result: models.NewCheckInResult(models.CheckInStatusSuccess, "success"),
		}
		return nil
	})
	if err != nil {
		s.l.Errorf(ctx, "service.checkInService.ConfirmOnSitePayment: %v", err)
		return models.TicketAndCheckInResult{}, err
	}

	s.recordScan(event, out.Result.Status)
	if paid {
		s.publish(ctx, s.pub.PublishOnSitePayment, event, out.Ticket, operator)
		s.publish(ctx, s.pub.PublishCheckedIn, event, out.Ticket, operator)
	}
	return out, nil
}

func (s *checkInService) resolveEvent(
	ctx context.Context,
	tx repository.Tx,
	findEvent func(ctx context.Context, tx repository.Tx) (*models.Event, error),
) (*models.Event, error) {
	event, err := findEvent(ctx, tx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return event, nil
}

// lockTicket loads the ticket under an exclusive row lock. A ticket
// belonging to a different event is treated as not found so credentials
// cannot be replayed across events.
func (s *checkInService) lockTicket(ctx context.Context, tx repository.Tx, event *models.Event, ticketUUID string) (*models.Ticket, *models.TicketCategory, error) {
	if event == nil {
		return nil, nil, nil
	}

	ticket, err := tx.FindTicketByUUIDForUpdate(ctx, ticketUUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	if ticket.EventID != event.ID {
		return nil, nil, nil
	}

	category, err := tx.FindCategoryByID(ctx, ticket.CategoryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ticket, nil, nil
		}
		return nil, nil, err
	}
	return ticket, category, nil
}

func (s *checkInService) performCheckIn(
	ctx context.Context,
	tx repository.Tx,
	event *models.Event,
	ticket *models.Ticket,
	operator string,
	operation models.ScanOperation,
	auditType models.AuditEventType,
) error {
	if err := tx.UpdateTicketStatus(ctx, ticket.UUID, models.TicketStatusCheckedIn); err != nil {
		return err
	}
	if err := tx.ToggleTicketLocking(ctx, ticket.ID, ticket.CategoryID, true); err != nil {
		return err
	}

	now := s.now()
	if err := tx.InsertScanAudit(ctx, models.ScanAudit{
		TicketUUID: ticket.UUID,
		EventID:    event.ID,
		ScanTime:   now,
		Operator:   operator,
		Result:     models.CheckInStatusSuccess,
		Operation:  operation,
	}); err != nil {
		return err
	}
	if err := tx.InsertAudit(ctx, models.AuditEntry{
		ReservationID: ticket.ReservationID,
		Operator:      operator,
		EventID:       event.ID,
		EventType:     auditType,
		EventTime:     now,
		EntityType:    models.AuditEntityTicket,
		EntityID:      ticket.UUID,
	}); err != nil {
		return err
	}

	ticket.Status = models.TicketStatusCheckedIn
	ticket.LockedAssign = true
	return nil
}

func (s *checkInService) recordScan(event *models.Event, status models.CheckInStatus) {
	name := "unknown"
	if event != nil {
		name = event.ShortName
	}
	monitoring.RecordScan(name, string(status))
}

// publish runs after commit. A broker failure is logged and swallowed:
// the attendee is already through the gate.
func (s *checkInService) publish(
	ctx context.Context,
	fn func(ctx context.Context, event *models.Event, ticket *models.Ticket, operator string) error,
	event *models.Event,
	ticket *models.Ticket,
	operator string,
) {
	if event == nil || ticket == nil {
		return
	}
	if err := fn(ctx, event, ticket, operator); err != nil {
		s.l.Warnf(ctx, "service.checkInService.publish: %v", err)
	}
}
