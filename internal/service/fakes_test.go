package service

import (
	"context"
	"sync"
	"time"

	"github.com/vogiaan1904/ticketbottle-checkin/internal/models"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/repository"
)

// fakeData is a map-backed stand-in for the MySQL store. InTx holds one
// global mutex, which mirrors the row lock closely enough for tests:
// concurrent units of work serialize.
type fakeData struct {
	mu           sync.Mutex
	events       map[int64]models.Event
	tickets      map[string]models.Ticket
	categories   map[int64]models.TicketCategory
	reservations map[string]models.TicketReservation
	scanAudits   []models.ScanAudit
	audits       []models.AuditEntry
	payments     []models.PaymentTransaction
}

func newFakeData() *fakeData {
	return &fakeData{
		events:       map[int64]models.Event{},
		tickets:      map[string]models.Ticket{},
		categories:   map[int64]models.TicketCategory{},
		reservations: map[string]models.TicketReservation{},
	}
}

type fakeStore struct {
	d *fakeData
}

func (s *fakeStore) InTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	return fn(&fakeTx{d: s.d})
}

type fakeTx struct {
	d *fakeData
}

func (t *fakeTx) FindEventByID(ctx context.Context, id int64) (*models.Event, error) {
	e, ok := t.d.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (t *fakeTx) FindEventByShortName(ctx context.Context, shortName string) (*models.Event, error) {
	for _, e := range t.d.events {
		if e.ShortName == shortName {
			e := e
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (t *fakeTx) FindTicketByUUIDForUpdate(ctx context.Context, uuid string) (*models.Ticket, error) {
	tk, ok := t.d.tickets[uuid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &tk, nil
}

func (t *fakeTx) FindCategoryByID(ctx context.Context, id int64) (*models.TicketCategory, error) {
	c, ok := t.d.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (t *fakeTx) FindReservationByID(ctx context.Context, id string) (*models.TicketReservation, error) {
	r, ok := t.d.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (t *fakeTx) UpdateTicketStatus(ctx context.Context, uuid string, status models.TicketStatus) error {
	tk, ok := t.d.tickets[uuid]
	if !ok {
		return repository.ErrNotFound
	}
	tk.Status = status
	tk.LastModified = time.Now()
	t.d.tickets[uuid] = tk
	return nil
}

func (t *fakeTx) ToggleTicketLocking(ctx context.Context, ticketID, categoryID int64, locked bool) error {
	for uuid, tk := range t.d.tickets {
		if tk.ID == ticketID && tk.CategoryID == categoryID {
			tk.LockedAssign = locked
			t.d.tickets[uuid] = tk
		}
	}
	return nil
}

func (t *fakeTx) InsertScanAudit(ctx context.Context, audit models.ScanAudit) error {
	t.d.scanAudits = append(t.d.scanAudits, audit)
	return nil
}

func (t *fakeTx) InsertAudit(ctx context.Context, entry models.AuditEntry) error {
	t.d.audits = append(t.d.audits, entry)
	return nil
}

func (t *fakeTx) InsertPaymentTransaction(ctx context.Context, txn models.PaymentTransaction) error {
	t.d.payments = append(t.d.payments, txn)
	return nil
}

// Read-side repository fakes over the same data.

type fakeEvents struct {
	d *fakeData
}

func (r *fakeEvents) FindByID(ctx context.Context, id int64) (*models.Event, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	return (&fakeTx{d: r.d}).FindEventByID(ctx, id)
}

func (r *fakeEvents) FindByShortName(ctx context.Context, shortName string) (*models.Event, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	return (&fakeTx{d: r.d}).FindEventByShortName(ctx, shortName)
}

type fakeTickets struct {
	d            *fakeData
	changedSince *time.Time
}

func (r *fakeTickets) FindByUUID(ctx context.Context, uuid string) (*models.Ticket, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	return (&fakeTx{d: r.d}).FindTicketByUUIDForUpdate(ctx, uuid)
}

func (r *fakeTickets) FindIDsAssignedByEventID(ctx context.Context, eventID int64, changedSince *time.Time) ([]int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	r.changedSince = changedSince

	var ids []int64
	for _, tk := range r.d.tickets {
		if tk.EventID != eventID || tk.FullName() == "" {
			continue
		}
		if changedSince != nil && !tk.LastModified.After(*changedSince) {
			continue
		}
		ids = append(ids, tk.ID)
	}
	return ids, nil
}

func (r *fakeTickets) FindFullByEventID(ctx context.Context, eventID int64, ids []int64) ([]models.FullTicketInfo, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	wanted := map[int64]bool{}
	for _, id := range ids {
		wanted[id] = true
	}

	var out []models.FullTicketInfo
	for _, tk := range r.d.tickets {
		if tk.EventID != eventID || tk.FullName() == "" {
			continue
		}
		if len(wanted) > 0 && !wanted[tk.ID] {
			continue
		}
		out = append(out, models.FullTicketInfo{
			Ticket:       tk,
			CategoryName: r.d.categories[tk.CategoryID].Name,
		})
	}
	return out, nil
}

type fakeCategories struct {
	d *fakeData
}

func (r *fakeCategories) FindByID(ctx context.Context, id int64) (*models.TicketCategory, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	return (&fakeTx{d: r.d}).FindCategoryByID(ctx, id)
}

func (r *fakeCategories) FindByEventIDAsMap(ctx context.Context, eventID int64) (map[int64]models.TicketCategory, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	out := map[int64]models.TicketCategory{}
	for id, c := range r.d.categories {
		if c.EventID == eventID {
			out[id] = c
		}
	}
	return out, nil
}

type fakeFields struct {
	values map[string]string
}

func (r *fakeFields) FindValuesForTicket(ctx context.Context, ticketID int64, names []string) (map[string]string, error) {
	out := map[string]string{}
	for _, n := range names {
		if v, ok := r.values[n]; ok {
			out[n] = v
		}
	}
	return out, nil
}

type fakeSettings struct {
	offline       bool
	labelPrinting bool
}

func (s *fakeSettings) IsOfflineCheckInEnabled(ctx context.Context, eventID int64) (bool, error) {
	return s.offline, nil
}

func (s *fakeSettings) IsOfflineCheckInAndLabelPrintingEnabled(ctx context.Context, eventID int64) (bool, error) {
	return s.offline && s.labelPrinting, nil
}

type fakeCache struct {
	mu      sync.Mutex
	bundles map[int64]map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{bundles: map[int64]map[string]string{}}
}

func (c *fakeCache) StoreBundle(ctx context.Context, eventID int64, bundle map[string]string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := make(map[string]string, len(bundle))
	for k, v := range bundle {
		copied[k] = v
	}
	c.bundles[eventID] = copied
	return nil
}

func (c *fakeCache) GetBundle(ctx context.Context, eventID int64) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bundle, ok := c.bundles[eventID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return bundle, nil
}

func (c *fakeCache) InvalidateBundle(ctx context.Context, eventID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.bundles, eventID)
	return nil
}

type fakePublisher struct {
	mu         sync.Mutex
	checkedIn  int
	reverted   int
	onSitePaid int
}

func (p *fakePublisher) PublishCheckedIn(ctx context.Context, event *models.Event, ticket *models.Ticket, operator string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.checkedIn++
	return nil
}

func (p *fakePublisher) PublishReverted(ctx context.Context, event *models.Event, ticket *models.Ticket, operator string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reverted++
	return nil
}

func (p *fakePublisher) PublishOnSitePayment(ctx context.Context, event *models.Event, ticket *models.Ticket, operator string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onSitePaid++
	return nil
}
