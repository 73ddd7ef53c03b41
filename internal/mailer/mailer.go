// Package mailer renders and delivers account emails.
package mailer

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Message is a rendered email. It is also the JSON job body put on the
// email queue.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender only logs messages. Used when delivery is disabled.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	logrus.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("Email delivery disabled, message not sent")
	logrus.WithField("to", msg.To).Debug(msg.Text)
	return nil
}

// BestEffort wraps a Sender so delivery failures are logged, never returned.
func BestEffort(s Sender) Sender {
	return bestEffort{next: s}
}

type bestEffort struct {
	next Sender
}

func (b bestEffort) Send(ctx context.Context, msg Message) error {
	if err := b.next.Send(ctx, msg); err != nil {
		logrus.WithError(err).WithField("to", msg.To).Error("Email delivery failed")
	}
	return nil
}
