package kafka

const (
	TopicTicketCheckedIn = "checkin.ticket.checked_in"
	TopicTicketReverted  = "checkin.ticket.reverted"
	TopicOnSitePayment   = "checkin.payment.on_site"

	TopicTicketUpdated = "ticket.updated"
)
