package service

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vogiaan1904/ticketbottle-checkin/internal/models"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/ticketcode"
	pkgLog "github.com/vogiaan1904/ticketbottle-checkin/pkg/logger"
)

type exportFixture struct {
	d        *fakeData
	tickets  *fakeTickets
	settings *fakeSettings
	cache    *fakeCache
	svc      AttendeeExportService
}

func newExportFixture(t *testing.T, offline bool) *exportFixture {
	t.Helper()

	from := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 29, 18, 0, 0, 0, time.UTC)

	d := newFakeData()
	d.events[7] = models.Event{
		ID:         7,
		ShortName:  "gophercon",
		PrivateKey: testEventKey,
		TimeZone:   "UTC",
		Currency:   "EUR",
	}
	d.categories[3] = models.TicketCategory{
		ID:               3,
		EventID:          7,
		Name:             "General Admission",
		ValidCheckInFrom: &from,
		ValidCheckInTo:   &to,
	}
	d.tickets[testTicketUUID] = models.Ticket{
		ID:            42,
		UUID:          testTicketUUID,
		EventID:       7,
		CategoryID:    3,
		ReservationID: "res-1",
		Status:        models.TicketStatusAcquired,
		FirstName:     "Ada",
		LastName:      "Lovelace",
		Email:         "ada@example.org",
		LastModified:  time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
	}
	d.tickets["b2417cde-43a1-4f87-a2f9-9d1c6a478fbc"] = models.Ticket{
		ID:            43,
		UUID:          "b2417cde-43a1-4f87-a2f9-9d1c6a478fbc",
		EventID:       7,
		CategoryID:    3,
		ReservationID: "res-2",
		Status:        models.TicketStatusToBePaid,
		FirstName:     "Grace",
		LastName:      "Hopper",
		Email:         "grace@example.org",
		LastModified:  time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
	}

	l := pkgLog.InitializeTestZapLogger()
	tickets := &fakeTickets{d: d}
	settings := &fakeSettings{offline: offline, labelPrinting: true}
	cache := newFakeCache()
	svc := NewAttendeeExportService(l, ExportConfig{Concurrency: 4, CacheTTL: time.Minute},
		&fakeEvents{d: d}, tickets, &fakeCategories{d: d},
		&fakeFields{values: map[string]string{"company": "Analytical Engines Ltd"}},
		settings, cache)

	return &exportFixture{d: d, tickets: tickets, settings: settings, cache: cache, svc: svc}
}

func TestEncryptedAttendeesInformation(t *testing.T) {
	f := newExportFixture(t, true)
	ctx := context.Background()

	bundle, err := f.svc.EncryptedAttendeesInformation(ctx, 7, nil)
	require.NoError(t, err)
	require.Len(t, bundle, 2)

	ticket := f.d.tickets[testTicketUUID]
	key := ticketcode.LookupKey(&ticket, testEventKey)
	sealed, ok := bundle[key]
	require.True(t, ok, "bundle must be indexed by the ticket's lookup key")

	// Only the matching credential opens the entry.
	code := ticketcode.Code(&ticket, testEventKey)
	raw, err := ticketcode.Decrypt(code, sealed)
	require.NoError(t, err)

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	assert.Equal(t, "Ada", payload["firstName"])
	assert.Equal(t, "Lovelace", payload["lastName"])
	assert.Equal(t, "Ada Lovelace", payload["fullName"])
	assert.Equal(t, "ada@example.org", payload["email"])
	assert.Equal(t, "ACQUIRED", payload["status"])
	assert.Equal(t, testTicketUUID, payload["uuid"])
	assert.Equal(t, "General Admission", payload["category"])

	from := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 29, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, strconv.FormatInt(from.Unix(), 10), payload["validCheckInFrom"])
	assert.Equal(t, strconv.FormatInt(to.Unix(), 10), payload["validCheckInTo"])

	_, err = ticketcode.Decrypt("wrong-code", sealed)
	assert.Error(t, err)
}

func TestEncryptedAttendeesInformationWithAdditionalFields(t *testing.T) {
	f := newExportFixture(t, true)

	bundle, err := f.svc.EncryptedAttendeesInformation(context.Background(), 7, []string{"company"})
	require.NoError(t, err)

	ticket := f.d.tickets[testTicketUUID]
	sealed := bundle[ticketcode.LookupKey(&ticket, testEventKey)]
	raw, err := ticketcode.Decrypt(ticketcode.Code(&ticket, testEventKey), sealed)
	require.NoError(t, err)

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	require.Contains(t, payload, "additionalInfoJson")

	var extra map[string]string
	require.NoError(t, json.Unmarshal([]byte(payload["additionalInfoJson"]), &extra))
	assert.Equal(t, "Analytical Engines Ltd", extra["company"])
}

func TestEncryptedAttendeesInformationDisabled(t *testing.T) {
	f := newExportFixture(t, false)

	_, err := f.svc.EncryptedAttendeesInformation(context.Background(), 7, nil)
	assert.ErrorIs(t, err, ErrOfflineCheckInDisabled)
}

func TestEncryptedAttendeesInformationUnknownEvent(t *testing.T) {
	f := newExportFixture(t, true)

	_, err := f.svc.EncryptedAttendeesInformation(context.Background(), 999, nil)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestEncryptedAttendeesInformationUsesCache(t *testing.T) {
	f := newExportFixture(t, true)
	ctx := context.Background()

	first, err := f.svc.EncryptedAttendeesInformation(ctx, 7, nil)
	require.NoError(t, err)

	// A store mutation is invisible until the cache is invalidated.
	ticket := f.d.tickets[testTicketUUID]
	ticket.Status = models.TicketStatusCheckedIn
	f.d.mu.Lock()
	f.d.tickets[testTicketUUID] = ticket
	f.d.mu.Unlock()

	cached, err := f.svc.EncryptedAttendeesInformation(ctx, 7, nil)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	require.NoError(t, f.svc.HandleTicketUpdated(ctx, 7))

	fresh, err := f.svc.EncryptedAttendeesInformation(ctx, 7, nil)
	require.NoError(t, err)

	sealed := fresh[ticketcode.LookupKey(&ticket, testEventKey)]
	raw, err := ticketcode.Decrypt(ticketcode.Code(&ticket, testEventKey), sealed)
	require.NoError(t, err)

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	assert.Equal(t, "CHECKED_IN", payload["status"])
}

func TestGetAttendeesIdentifiers(t *testing.T) {
	f := newExportFixture(t, true)
	ctx := context.Background()

	ids, err := f.svc.GetAttendeesIdentifiers(ctx, 7, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{42, 43}, ids)

	since := time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC)
	ids, err = f.svc.GetAttendeesIdentifiers(ctx, 7, &since)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{43}, ids)
	require.NotNil(t, f.tickets.changedSince)
	assert.True(t, f.tickets.changedSince.Equal(since))
}

func TestGetAttendeesIdentifiersDisabled(t *testing.T) {
	f := newExportFixture(t, false)

	_, err := f.svc.GetAttendeesIdentifiers(context.Background(), 7, nil)
	assert.ErrorIs(t, err, ErrOfflineCheckInDisabled)
}

func TestGetAttendeesInformation(t *testing.T) {
	f := newExportFixture(t, true)

	infos, err := f.svc.GetAttendeesInformation(context.Background(), 7, []int64{42})
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, testTicketUUID, infos[0].UUID)
	assert.Equal(t, "General Admission", infos[0].CategoryName)
}
