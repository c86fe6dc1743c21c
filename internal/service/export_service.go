package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vogiaan1904/ticketbottle-checkin/internal/models"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/monitoring"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/repository"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/ticketcode"
	"github.com/vogiaan1904/ticketbottle-checkin/pkg/logger"
)

// ExportConfig bounds the offline bundle builder.
type ExportConfig struct {
	Concurrency int
	CacheTTL    time.Duration
}

type attendeeExportService struct {
	l        logger.Logger
	cfg      ExportConfig
	events   repository.EventRepository
	tickets  repository.TicketRepository
	cats     repository.CategoryRepository
	fields   repository.FieldRepository
	settings SettingsService
	cache    repository.ExportCache
}

func NewAttendeeExportService(
	l logger.Logger,
	cfg ExportConfig,
	events repository.EventRepository,
	tickets repository.TicketRepository,
	cats repository.CategoryRepository,
	fields repository.FieldRepository,
	settings SettingsService,
	cache repository.ExportCache,
) AttendeeExportService {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &attendeeExportService{
		l:        l,
		cfg:      cfg,
		events:   events,
		tickets:  tickets,
		cats:     cats,
		fields:   fields,
		settings: settings,
		cache:    cache,
	}
}

func (s *attendeeExportService) GetAttendeesIdentifiers(ctx context.Context, eventID int64, changedSince *time.Time) ([]int64, error) {
	if _, err := s.requireOfflineEnabled(ctx, eventID); err != nil {
		return nil, err
	}

	ids, err := s.tickets.FindIDsAssignedByEventID(ctx, eventID, changedSince)
	if err != nil {
		s.l.Errorf(ctx, "service.attendeeExportService.GetAttendeesIdentifiers: %v", err)
		return nil, err
	}
	return ids, nil
}

func (s *attendeeExportService) GetAttendeesInformation(ctx context.Context, eventID int64, ids []int64) ([]models.FullTicketInfo, error) {
	if _, err := s.requireOfflineEnabled(ctx, eventID); err != nil {
		return nil, err
	}

	infos, err := s.tickets.FindFullByEventID(ctx, eventID, ids)
	if err != nil {
		s.l.Errorf(ctx, "service.attendeeExportService.GetAttendeesInformation: %v", err)
		return nil, err
	}
	return infos, nil
}

// EncryptedAttendeesInformation builds the offline bundle. Every entry
// is sealed under the ticket's own credential, so a device can decrypt
// exactly the attendee whose QR code it scanned and nothing else.
func (s *attendeeExportService) EncryptedAttendeesInformation(ctx context.Context, eventID int64, additionalFields []string) (map[string]string, error) {
	event, err := s.requireOfflineEnabled(ctx, eventID)
	if err != nil {
		return nil, err
	}

	// The cache holds only the field-less bundle. Requests naming extra
	// fields are rare and always rebuilt.
	cacheable := len(additionalFields) == 0
	if cacheable {
		if bundle, err := s.cache.GetBundle(ctx, eventID); err == nil {
			return bundle, nil
		} else if !errors.Is(err, repository.ErrNotFound) {
			s.l.Warnf(ctx, "service.attendeeExportService.EncryptedAttendeesInformation: cache read: %v", err)
		}
	}

	if len(additionalFields) > 0 {
		printingEnabled, err := s.settings.IsOfflineCheckInAndLabelPrintingEnabled(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if !printingEnabled {
			additionalFields = nil
		}
	}

	infos, err := s.tickets.FindFullByEventID(ctx, eventID, nil)
	if err != nil {
		s.l.Errorf(ctx, "service.attendeeExportService.EncryptedAttendeesInformation: %v", err)
		return nil, err
	}

	categories, err := s.cats.FindByEventIDAsMap(ctx, eventID)
	if err != nil {
		s.l.Errorf(ctx, "service.attendeeExportService.EncryptedAttendeesInformation: %v", err)
		return nil, err
	}

	var (
		mu     sync.Mutex
		bundle = make(map[string]string, len(infos))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i := range infos {
		info := infos[i]
		g.Go(func() error {
			key, sealed, err := s.sealAttendee(gctx, event, info, categories[info.CategoryID], additionalFields)
			if err != nil {
				return err
			}
			mu.Lock()
			bundle[key] = sealed
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.l.Errorf(ctx, "service.attendeeExportService.EncryptedAttendeesInformation: %v", err)
		return nil, err
	}

	monitoring.SetExportBundleSize(event.ShortName, len(bundle))

	if cacheable {
		if err := s.cache.StoreBundle(ctx, eventID, bundle, s.cfg.CacheTTL); err != nil {
			s.l.Warnf(ctx, "service.attendeeExportService.EncryptedAttendeesInformation: cache write: %v", err)
		}
	}
	return bundle, nil
}

func (s *attendeeExportService) HandleTicketUpdated(ctx context.Context, eventID int64) error {
	if err := s.cache.InvalidateBundle(ctx, eventID); err != nil {
		s.l.Errorf(ctx, "service.attendeeExportService.HandleTicketUpdated: %v", err)
		return err
	}
	return nil
}

func (s *attendeeExportService) requireOfflineEnabled(ctx context.Context, eventID int64) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		s.l.Errorf(ctx, "service.attendeeExportService.requireOfflineEnabled: %v", err)
		return nil, err
	}

	enabled, err := s.settings.IsOfflineCheckInEnabled(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, ErrOfflineCheckInDisabled
	}
	return event, nil
}

func (s *attendeeExportService) sealAttendee(
	ctx context.Context,
	event *models.Event,
	info models.FullTicketInfo,
	category models.TicketCategory,
	additionalFields []string,
) (string, string, error) {
	payload := map[string]string{
		"firstName": info.FirstName,
		"lastName":  info.LastName,
		"fullName":  info.FullName(),
		"email":     info.Email,
		"status":    string(info.Status),
		"uuid":      info.UUID,
		"category":  info.CategoryName,
	}
	if category.ValidCheckInFrom != nil {
		payload["validCheckInFrom"] = strconv.FormatInt(category.ValidCheckInFrom.Unix(), 10)
	}
	if category.ValidCheckInTo != nil {
		payload["validCheckInTo"] = strconv.FormatInt(category.ValidCheckInTo.Unix(), 10)
	}

	if len(additionalFields) > 0 {
		values, err := s.fields.FindValuesForTicket(ctx, info.ID, additionalFields)
		if err != nil {
			return "", "", err
		}
		extra, err := json.Marshal(values)
		if err != nil {
			return "", "", err
		}
		payload["additionalInfoJson"] = string(extra)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", "", err
	}

	code := ticketcode.Code(&info.Ticket, event.PrivateKey)
	sealed, err := ticketcode.Encrypt(code, string(raw))
	if err != nil {
		return "", "", err
	}
	return ticketcode.LookupKey(&info.Ticket, event.PrivateKey), sealed, nil
}
