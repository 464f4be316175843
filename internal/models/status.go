package models

// RequestStatus is the lifecycle state of a transport request.
type RequestStatus string

const (
	RequestStatusDraft     RequestStatus = "draft"
	RequestStatusPublished RequestStatus = "published"
	RequestStatusAccepted  RequestStatus = "accepted"
	RequestStatusPaid      RequestStatus = "paid"
	RequestStatusCompleted RequestStatus = "completed"
	RequestStatusCancelled RequestStatus = "cancelled"
)

// OfferStatus is the lifecycle state of a driver's offer, scoped to one request.
type OfferStatus string

const (
	OfferStatusNew      OfferStatus = "new"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusRejected OfferStatus = "rejected"
	OfferStatusPaid     OfferStatus = "paid"
)

// requestTransitions encodes the legal forward moves of a request.
// Progression is monotonic: draft -> published -> accepted -> paid -> completed.
// Cancellation is allowed from any non-terminal state.
var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusDraft:     {RequestStatusPublished, RequestStatusCancelled},
	RequestStatusPublished: {RequestStatusAccepted, RequestStatusCancelled},
	RequestStatusAccepted:  {RequestStatusPaid, RequestStatusCancelled},
	RequestStatusPaid:      {RequestStatusCompleted, RequestStatusCancelled},
	RequestStatusCompleted: nil,
	RequestStatusCancelled: nil,
}

// ParseRequestStatus validates a raw status value against the closed set.
func ParseRequestStatus(raw string) (RequestStatus, error) {
	s := RequestStatus(raw)
	if _, ok := requestTransitions[s]; !ok {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// IsTerminal reports whether no further transition is possible.
func (s RequestStatus) IsTerminal() bool {
	return len(requestTransitions[s]) == 0
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, allowed := range requestTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsDecided reports whether an offer has left the `new` state.
func (s OfferStatus) IsDecided() bool {
	return s != OfferStatusNew
}
