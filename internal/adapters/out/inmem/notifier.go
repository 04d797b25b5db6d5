package inmem

import (
	"context"
	"sync"

	"dispatch/internal/core/domain/model/deliveryjob"
	"dispatch/internal/core/domain/model/kernel"
)

// OfferEvent records a single offer or revocation sent to a courier.
type OfferEvent struct {
	JobID     kernel.UUID
	CourierID kernel.UUID
}

// RecordingNotifier implements ports.NotificationDispatcher and
// ports.AdminAlerts by recording every event it is handed.
type RecordingNotifier struct {
	mu           sync.Mutex
	offers       []OfferEvent
	revocations  []OfferEvent
	manualAlerts []kernel.UUID
}

// NewRecordingNotifier creates an empty recording notifier.
func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

// NotifyOffer records an offer event per targeted courier.
func (n *RecordingNotifier) NotifyOffer(_ context.Context, job *deliveryjob.Job, courierIDs []kernel.UUID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, courierID := range courierIDs {
		n.offers = append(n.offers, OfferEvent{JobID: job.ID(), CourierID: courierID})
	}
	return nil
}

// NotifyOfferRevoked records a revocation event per courier.
func (n *RecordingNotifier) NotifyOfferRevoked(_ context.Context, jobID kernel.UUID, courierIDs []kernel.UUID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, courierID := range courierIDs {
		n.revocations = append(n.revocations, OfferEvent{JobID: jobID, CourierID: courierID})
	}
	return nil
}

// ManualAssignmentRequired records the escalated job.
func (n *RecordingNotifier) ManualAssignmentRequired(_ context.Context, job *deliveryjob.Job) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.manualAlerts = append(n.manualAlerts, job.ID())
	return nil
}

// Offers returns a copy of the recorded offer events.
func (n *RecordingNotifier) Offers() []OfferEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]OfferEvent(nil), n.offers...)
}

// Revocations returns a copy of the recorded revocation events.
func (n *RecordingNotifier) Revocations() []OfferEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]OfferEvent(nil), n.revocations...)
}

// ManualAlerts returns a copy of the recorded escalation alerts.
func (n *RecordingNotifier) ManualAlerts() []kernel.UUID {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]kernel.UUID(nil), n.manualAlerts...)
}
