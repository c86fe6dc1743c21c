// Package ticketcode derives and verifies the secret code bound to a
// ticket, and implements the symmetric cipher used to seal attendee
// data for offline scanning devices.
//
// Every derivation is keyed by the owning event's private key; a code
// proves legitimate possession of one ticket and reveals nothing about
// the event key or any other ticket's code.
package ticketcode

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/vogiaan1904/ticketbottle-checkin/internal/models"
)

// HMACTicketInfo computes the keyed digest of the ticket's stable
// identity fields (uuid, email, full name) under the event key.
func HMACTicketInfo(t *models.Ticket, eventKey string) string {
	mac := hmac.New(sha256.New, []byte(eventKey))
	mac.Write([]byte(strings.Join([]string{t.UUID, t.Email, t.FullName()}, "/")))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Code returns the credential code encoded in the ticket's QR code.
// Deterministic: the same ticket and key always yield the same code.
func Code(t *models.Ticket, eventKey string) string {
	return t.UUID + "/" + HMACTicketInfo(t, eventKey)
}

// Verify recomputes the ticket's code and compares it against the
// presented one in constant time.
func Verify(presented string, t *models.Ticket, eventKey string) bool {
	expected := Code(t, eventKey)
	return subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) == 1
}

// LookupKey returns the opaque index under which a ticket's encrypted
// payload is published in an offline bundle. A scanning device holding
// the credential can recompute it locally; it exposes nothing about the
// attendee.
func LookupKey(t *models.Ticket, eventKey string) string {
	sum := sha256.Sum256([]byte(HMACTicketInfo(t, eventKey)))
	return hex.EncodeToString(sum[:])
}
