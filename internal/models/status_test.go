package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRequestStatus(t *testing.T) {
	for _, raw := range []string{"draft", "published", "accepted", "paid", "completed", "cancelled"} {
		got, err := ParseRequestStatus(raw)
		assert.NoError(t, err)
		assert.Equal(t, RequestStatus(raw), got)
	}

	for _, raw := range []string{"", "en_route", "PUBLISHED", "done"} {
		_, err := ParseRequestStatus(raw)
		assert.ErrorIs(t, err, ErrInvalidStatus, raw)
	}
}

func TestRequestStatusTransitions(t *testing.T) {
	all := []RequestStatus{
		RequestStatusDraft, RequestStatusPublished, RequestStatusAccepted,
		RequestStatusPaid, RequestStatusCompleted, RequestStatusCancelled,
	}
	legal := map[RequestStatus][]RequestStatus{
		RequestStatusDraft:     {RequestStatusPublished, RequestStatusCancelled},
		RequestStatusPublished: {RequestStatusAccepted, RequestStatusCancelled},
		RequestStatusAccepted:  {RequestStatusPaid, RequestStatusCancelled},
		RequestStatusPaid:      {RequestStatusCompleted, RequestStatusCancelled},
	}

	for _, from := range all {
		allowed := map[RequestStatus]bool{}
		for _, to := range legal[from] {
			allowed[to] = true
		}
		for _, to := range all {
			assert.Equal(t, allowed[to], from.CanTransitionTo(to),
				"%s -> %s", from, to)
		}
	}
}

func TestRequestStatusTerminal(t *testing.T) {
	assert.True(t, RequestStatusCompleted.IsTerminal())
	assert.True(t, RequestStatusCancelled.IsTerminal())
	assert.False(t, RequestStatusDraft.IsTerminal())
	assert.False(t, RequestStatusPublished.IsTerminal())
	assert.False(t, RequestStatusAccepted.IsTerminal())
	assert.False(t, RequestStatusPaid.IsTerminal())
}

func TestOfferStatusIsDecided(t *testing.T) {
	assert.False(t, OfferStatusNew.IsDecided())
	assert.True(t, OfferStatusAccepted.IsDecided())
	assert.True(t, OfferStatusRejected.IsDecided())
	assert.True(t, OfferStatusPaid.IsDecided())
}

func TestRequestIsOwnedBy(t *testing.T) {
	r := &Request{UserID: "u1", UserEmail: "u1@example.com"}

	assert.True(t, r.IsOwnedBy("u1", ""))
	assert.True(t, r.IsOwnedBy("", "u1@example.com"))
	assert.True(t, r.IsOwnedBy("other", "u1@example.com"))
	assert.False(t, r.IsOwnedBy("other", "other@example.com"))
	assert.False(t, r.IsOwnedBy("", ""))
}
