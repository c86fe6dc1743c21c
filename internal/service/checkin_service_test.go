package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vogiaan1904/ticketbottle-checkin/internal/models"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/ticketcode"
	pkgLog "github.com/vogiaan1904/ticketbottle-checkin/pkg/logger"
)

const (
	testEventKey   = "event-private-key"
	testTicketUUID = "8e591fd2-6e55-4bcb-9c93-fba2b8c14d2a"
)

type checkInFixture struct {
	d   *fakeData
	pub *fakePublisher
	svc CheckInService
}

func newCheckInFixture(t *testing.T, status models.TicketStatus, paymentMethod models.PaymentProxy) *checkInFixture {
	t.Helper()

	d := newFakeData()
	d.events[7] = models.Event{
		ID:         7,
		ShortName:  "gophercon",
		PrivateKey: testEventKey,
		TimeZone:   "UTC",
		Currency:   "EUR",
	}
	d.categories[3] = models.TicketCategory{ID: 3, EventID: 7, Name: "General Admission"}
	d.tickets[testTicketUUID] = models.Ticket{
		ID:            42,
		UUID:          testTicketUUID,
		EventID:       7,
		CategoryID:    3,
		ReservationID: "res-1",
		Status:        status,
		FirstName:     "Ada",
		LastName:      "Lovelace",
		Email:         "ada@example.org",
		FinalPriceCts: 1500,
	}
	d.reservations["res-1"] = models.TicketReservation{ID: "res-1", PaymentMethod: paymentMethod}

	l := pkgLog.InitializeTestZapLogger()
	pub := &fakePublisher{}
	svc := NewCheckInService(l, &fakeStore{d: d}, &fakeEvents{d: d}, &fakeTickets{d: d}, &fakeCategories{d: d}, NewPaymentService(l), pub)

	return &checkInFixture{d: d, pub: pub, svc: svc}
}

func (f *checkInFixture) code() string {
	ticket := f.d.tickets[testTicketUUID]
	return ticketcode.Code(&ticket, testEventKey)
}

func TestCheckInSuccess(t *testing.T) {
	f := newCheckInFixture(t, models.TicketStatusAcquired, models.PaymentProxyStripe)
	ctx := context.Background()

	out, err := f.svc.CheckIn(ctx, 7, testTicketUUID, f.code(), "desk-1")
	require.NoError(t, err)

	assert.Equal(t, models.CheckInStatusSuccess, out.Result.Status)
	assert.Equal(t, "success", out.Result.Message)

	stored := f.d.tickets[testTicketUUID]
	assert.Equal(t, models.TicketStatusCheckedIn, stored.Status)
	assert.True(t, stored.LockedAssign)

	require.Len(t, f.d.scanAudits, 1)
	assert.Equal(t, models.ScanOperationScan, f.d.scanAudits[0].Operation)
	assert.Equal(t, models.CheckInStatusSuccess, f.d.scanAudits[0].Result)
	assert.Equal(t, "desk-1", f.d.scanAudits[0].Operator)

	require.Len(t, f.d.audits, 1)
	assert.Equal(t, models.AuditEventCheckIn, f.d.audits[0].EventType)
	assert.Equal(t, "res-1", f.d.audits[0].ReservationID)

	assert.Equal(t, 1, f.pub.checkedIn)
}

func TestCheckInIsIdempotentlyRejected(t *testing.T) {
	f := newCheckInFixture(t, models.TicketStatusAcquired, models.PaymentProxyStripe)
	ctx := context.Background()
	code := f.code()

	first, err := f.svc.CheckIn(ctx, 7, testTicketUUID, code, "desk-1")
	require.NoError(t, err)
	require.Equal(t, models.CheckInStatusSuccess, first.Result.Status)

	second, err := f.svc.CheckIn(ctx, 7, testTicketUUID, code, "desk-1")
	require.NoError(t, err)
	assert.Equal(t, models.CheckInStatusAlreadyCheckIn, second.Result.Status)

	// The rejected scan leaves no trace: still exactly one audit pair.
	assert.Len(t, f.d.scanAudits, 1)
	assert.Len(t, f.d.audits, 1)
	assert.Equal(t, 1, f.pub.checkedIn)
}

func TestCheckInConcurrentScansAdmitOnce(t *testing.T) {
	f := newCheckInFixture(t, models.TicketStatusAcquired, models.PaymentProxyStripe)
	code := f.code()

	const scans = 8
	results := make([]models.CheckInStatus, scans)
	errs := make([]error, scans)
	var wg sync.WaitGroup
	for i := 0; i < scans; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := f.svc.CheckIn(context.Background(), 7, testTicketUUID, code, "desk-1")
			errs[i] = err
			results[i] = out.Result.Status
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	successes := 0
	for _, status := range results {
		switch status {
		case models.CheckInStatusSuccess:
			successes++
		case models.CheckInStatusAlreadyCheckIn:
		default:
			t.Fatalf("unexpected status %s", status)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Len(t, f.d.scanAudits, 1)
}

func TestCheckInUnknownEvent(t *testing.T) {
	f := newCheckInFixture(t, models.TicketStatusAcquired, models.PaymentProxyStripe)

	out, err := f.svc.CheckIn(context.Background(), 999, testTicketUUID, f.code(), "desk-1")
	require.NoError(t, err)
	assert.Equal(t, models.CheckInStatusEventNotFound, out.Result.Status)
	assert.Len(t, f.d.scanAudits, 0)
}

func TestCheckInTicketFromOtherEvent(t *testing.T) {
	f := newCheckInFixture(t, models.TicketStatusAcquired, models.PaymentProxyStripe)
	f.d.events[8] = models.Event{ID: 8, ShortName: "other", PrivateKey: "other-key", TimeZone: "UTC", Currency: "EUR"}

	out, err := f.svc.CheckIn(context.Background(), 8, testTicketUUID, f.code(), "desk-1")
	require.NoError(t, err)
	assert.Equal(t, models.CheckInStatusTicketNotFound, out.Result.Status)
}

func TestCheckInByShortName(t *testing.T) {
	f := newCheckInFixture(t, models.TicketStatusAcquired, models.PaymentProxyStripe)

	out, err := f.svc.CheckInByShortName(context.Background(), "gophercon", testTicketUUID, f.code(), "desk-1")
	require.NoError(t, err)
	assert.Equal(t, models.CheckInStatusSuccess, out.Result.Status)
}

func TestEvaluateTicketStatusDoesNotMutate(t *testing.T) {
	f := newCheckInFixture(t, models.TicketStatusAcquired, models.PaymentProxyStripe)

	out, err := f.svc.EvaluateTicketStatus(context.Background(), 7, testTicketUUID, f.code())
	require.NoError(t, err)
	assert.Equal(t, models.CheckInStatusOKReadyToBeCheckedIn, out.Result.Status)

	stored := f.d.tickets[testTicketUUID]
	assert.Equal(t, models.TicketStatusAcquired, stored.Status)
	assert.Len(t, f.d.scanAudits, 0)
}

func TestManualCheckIn(t *testing.T) {
	f := newCheckInFixture(t, models.TicketStatusAcquired, models.PaymentProxyStripe)

	done, err := f.svc.ManualCheckIn(context.Background(), 7, testTicketUUID, "desk-1")
	require.NoError(t, err)
	assert.True(t, done)

	stored := f.d.tickets[testTicketUUID]
	assert.Equal(t, models.TicketStatusCheckedIn, stored.Status)

	require.Len(t, f.d.scanAudits, 1)
	assert.Equal(t, models.ScanOperationManual, f.d.scanAudits[0].Operation)
	require.Len(t, f.d.audits, 1)
	assert.Equal(t, models.AuditEventManualCheckIn, f.d.audits[0].EventType)
}

func TestManualCheckInAcquiresUnpaidTicket(t *testing.T) {
	f := newCheckInFixture(t, models.TicketStatusToBePaid, models.PaymentProxyOnSite)

	done, err := f.svc.ManualCheckIn(context.Background(), 7, testTicketUUID, "desk-1")
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, models.TicketStatusCheckedIn, f.d.tickets[testTicketUUID].Status)
}

func TestManualCheckInRejectsCheckedIn(t *testing.T) {
	f := newCheckInFixture(t, models.TicketStatusCheckedIn, models.PaymentProxyStripe)

	done, err := f.svc.ManualCheckIn(context.Background(), 7, testTicketUUID, "desk-1")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Len(t, f.d.scanAudits, 0)
}

func TestRevertCheckIn(t *testing.T) {
	f := newCheckInFixture(t, models.TicketStatusCheckedIn, models.PaymentProxyStripe)

	done, err := f.svc.RevertCheckIn(context.Background(), 7, testTicketUUID, "desk-1")
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, models.TicketStatusAcquired, f.d.tickets[testTicketUUID].Status)

	require.Len(t, f.d.scanAudits, 1)
	assert.Equal(t, models.ScanOperationRevert, f.d.scanAudits[0].Operation)
	require.Len(t, f.d.audits, 1)
	assert.Equal(t, models.AuditEventRevertCheckIn, f.d.audits[0].EventType)
	assert.Equal(t, 1, f.pub.reverted)
}

func TestRevertCheckInOnSitePaymentReturnsToBePaid(t *testing.T) {
	f := newCheckInFixture(t, models.TicketStatusCheckedIn, models.PaymentProxyOnSite)

	done, err := f.svc.RevertCheckIn(context.Background(), 7, testTicketUUID, "desk-1")
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, models.TicketStatusToBePaid, f.d.tickets[testTicketUUID].Status)
}

func TestRevertCheckInRequiresCheckedIn(t *testing.T) {
	f := newCheckInFixture(t, models.TicketStatusAcquired, models.PaymentProxyStripe)

	done, err := f.svc.RevertCheckIn(context.Background(), 7, testTicketUUID, "desk-1")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, models.TicketStatusAcquired, f.d.tickets[testTicketUUID].Status)
	assert.Equal(t, 0, f.pub.reverted)
}

func TestConfirmOnSitePayment(t *testing.T) {
	f := newCheckInFixture(t, models.TicketStatusToBePaid, models.PaymentProxyOnSite)

	out, err := f.svc.ConfirmOnSitePayment(context.Background(), "gophercon", testTicketUUID, f.code(), "desk-1")
	require.NoError(t, err)
	assert.Equal(t, models.CheckInStatusSuccess, out.Result.Status)
	assert.Equal(t, models.TicketStatusCheckedIn, f.d.tickets[testTicketUUID].Status)

	require.Len(t, f.d.payments, 1)
	assert.Equal(t, models.PaymentProxyOnSite, f.d.payments[0].PaymentProxy)
	assert.Equal(t, int64(1500), f.d.payments[0].PriceCts)
	assert.Equal(t, "EUR", f.d.payments[0].Currency)
	assert.Equal(t, "res-1", f.d.payments[0].ReservationID)

	assert.Equal(t, 1, f.pub.onSitePaid)
	assert.Equal(t, 1, f.pub.checkedIn)
}

func TestConfirmOnSitePaymentUnknownEvent(t *testing.T) {
	f := newCheckInFixture(t, models.TicketStatusToBePaid, models.PaymentProxyOnSite)

	out, err := f.svc.ConfirmOnSitePayment(context.Background(), "nope", testTicketUUID, f.code(), "desk-1")
	require.NoError(t, err)
	assert.Equal(t, models.CheckInStatusEventNotFound, out.Result.Status)
	assert.Len(t, f.d.payments, 0)
}

func TestConfirmOnSitePaymentRequiresMustPay(t *testing.T) {
	f := newCheckInFixture(t, models.TicketStatusAcquired, models.PaymentProxyStripe)

	out, err := f.svc.ConfirmOnSitePayment(context.Background(), "gophercon", testTicketUUID, f.code(), "desk-1")
	require.NoError(t, err)
	assert.Equal(t, models.CheckInStatusOKReadyToBeCheckedIn, out.Result.Status)

	// Nothing moved: no payment row, ticket still acquired.
	assert.Len(t, f.d.payments, 0)
	assert.Equal(t, models.TicketStatusAcquired, f.d.tickets[testTicketUUID].Status)
}
