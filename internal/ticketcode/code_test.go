package ticketcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vogiaan1904/ticketbottle-checkin/internal/models"
)

func newTicket(uuid, first, last, email string) *models.Ticket {
	return &models.Ticket{
		UUID:      uuid,
		FirstName: first,
		LastName:  last,
		Email:     email,
	}
}

func TestCodeIsDeterministic(t *testing.T) {
	ticket := newTicket("8e591fd2", "Ada", "Lovelace", "ada@example.org")

	first := Code(ticket, "event-key")
	second := Code(ticket, "event-key")

	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, ticket.UUID+"/"))
}

func TestCodeChangesWithIdentityAndKey(t *testing.T) {
	base := newTicket("8e591fd2", "Ada", "Lovelace", "ada@example.org")
	code := Code(base, "event-key")

	otherEmail := newTicket("8e591fd2", "Ada", "Lovelace", "other@example.org")
	assert.NotEqual(t, code, Code(otherEmail, "event-key"))

	otherName := newTicket("8e591fd2", "Ada", "Byron", "ada@example.org")
	assert.NotEqual(t, code, Code(otherName, "event-key"))

	assert.NotEqual(t, code, Code(base, "another-key"))
}

func TestVerify(t *testing.T) {
	ticket := newTicket("8e591fd2", "Ada", "Lovelace", "ada@example.org")
	code := Code(ticket, "event-key")

	assert.True(t, Verify(code, ticket, "event-key"))
	assert.False(t, Verify(code+"x", ticket, "event-key"))
	assert.False(t, Verify("", ticket, "event-key"))
	assert.False(t, Verify(code, ticket, "another-key"))

	other := newTicket("b2417cde", "Grace", "Hopper", "grace@example.org")
	assert.False(t, Verify(Code(other, "event-key"), ticket, "event-key"))
}

func TestLookupKey(t *testing.T) {
	ticket := newTicket("8e591fd2", "Ada", "Lovelace", "ada@example.org")

	key := LookupKey(ticket, "event-key")
	require.Len(t, key, 64)
	assert.Equal(t, key, LookupKey(ticket, "event-key"))

	other := newTicket("b2417cde", "Grace", "Hopper", "grace@example.org")
	assert.NotEqual(t, key, LookupKey(other, "event-key"))
	assert.NotEqual(t, key, LookupKey(ticket, "another-key"))
}
