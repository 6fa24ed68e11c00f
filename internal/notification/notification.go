// Package notification delivers mandate notifications. Delivery is best
// effort: callers log and count failures and never undo a transition because
// a notification could not be sent.
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Kind is the notification template the downstream mailer renders.
type Kind string

const (
	KindSubmissionConfirmed Kind = "submission_confirmed"
	KindApprovalGranted     Kind = "approval_granted"
	KindRequestRejected     Kind = "request_rejected"
	KindAdminAlert          Kind = "admin_alert"
)

// Audience says who a notification is for.
type Audience string

const (
	AudienceSubmitter   Audience = "submitter"
	AudienceAdmins      Audience = "admins"
	AudienceSuperAdmins Audience = "super_admins"
)

// Notification is the message handed to a Notifier. Recipient is empty for
// staff audiences; the mailer resolves the staff list itself.
type Notification struct {
	Kind            Kind              `json:"kind"`
	Audience        Audience          `json:"audience"`
	Recipient       string            `json:"recipient,omitempty"`
	MandateID       string            `json:"mandate_id"`
	ReferenceNumber string            `json:"reference_number"`
	FullName        string            `json:"full_name"`
	Status          string            `json:"status"`
	StatusLabel     string            `json:"status_label"`
	Reason          string            `json:"reason,omitempty"`
	Data            map[string]string `json:"data,omitempty"`
	OccurredAt      time.Time         `json:"occurred_at"`
}

// Validate checks the fields every template needs.
func (n Notification) Validate() error {
	if n.Kind == "" {
		return errors.New("notification kind is required")
	}
	if n.ReferenceNumber == "" {
		return errors.New("notification reference number is required")
	}
	if n.Audience == AudienceSubmitter && n.Recipient == "" {
		return errors.New("submitter notification requires a recipient")
	}
	return nil
}

// Notifier sends one notification.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Publisher is a keyed message sink such as a Kafka topic producer.
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// BrokerNotifier serializes notifications as JSON onto a broker topic,
// keyed by reference number so one mandate's messages stay ordered.
type BrokerNotifier struct {
	publisher Publisher
}

func NewBrokerNotifier(publisher Publisher) *BrokerNotifier {
	return &BrokerNotifier{publisher: publisher}
}

func (b *BrokerNotifier) Notify(ctx context.Context, n Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := b.publisher.Publish(ctx, n.ReferenceNumber, payload); err != nil {
		return fmt.Errorf("publish %s notification: %w", n.Kind, err)
	}
	return nil
}

// Fanout sends to every notifier and joins their errors.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, notifier := range f {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
