package http

import "github.com/vogiaan1904/ticketbottle-checkin/internal/models"

// CheckInRequest carries the scanned credential. Code is the full
// content of the QR code, "uuid/signature".
type CheckInRequest struct {
	Code string `json:"code" validate:"required"`
}

type OfflineBundleRequest struct {
	AdditionalFields []string `json:"additional_fields"`
}

type CheckInResponse struct {
	Ticket *models.Ticket       `json:"ticket,omitempty"`
	Result models.CheckInResult `json:"result"`
}

type FlagResponse struct {
	Done bool `json:"done"`
}

func newCheckInResponse(r models.TicketAndCheckInResult) CheckInResponse {
	return CheckInResponse{Ticket: r.Ticket, Result: r.Result}
}
