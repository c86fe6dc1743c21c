package models

import "time"

// ScanOperation is the kind of action recorded by a scan audit row.
type ScanOperation string

const (
	ScanOperationScan   ScanOperation = "SCAN"
	ScanOperationRevert ScanOperation = "REVERT"
	ScanOperationManual ScanOperation = "MANUAL"
)

// ScanAudit is the append-only record of a check-in related action at
// the gate. Rows are never updated or deleted.
type ScanAudit struct {
	TicketUUID string        `json:"ticket_uuid"`
	EventID    int64         `json:"event_id"`
	ScanTime   time.Time     `json:"scan_ts"`
	Operator   string        `json:"operator"`
	Result     CheckInStatus `json:"scan_result"`
	Operation  ScanOperation `json:"operation"`
}

type AuditEventType string

const (
	AuditEventCheckIn       AuditEventType = "CHECK_IN"
	AuditEventManualCheckIn AuditEventType = "MANUAL_CHECK_IN"
	AuditEventRevertCheckIn AuditEventType = "REVERT_CHECK_IN"
)

// AuditEntry is the domain-level audit trail row, keyed by reservation.
type AuditEntry struct {
	ReservationID string         `json:"reservation_id"`
	Operator      string         `json:"operator"`
	EventID       int64          `json:"event_id"`
	EventType     AuditEventType `json:"event_type"`
	EventTime     time.Time      `json:"event_time"`
	EntityType    string         `json:"entity_type"`
	EntityID      string         `json:"entity_id"`
}

const AuditEntityTicket = "TICKET"
