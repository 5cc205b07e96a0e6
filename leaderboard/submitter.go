package leaderboard

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// Score is the wire payload sent for every balance change.
type Score struct {
	UserID    string    `json:"user_id"`
	Balance   int64     `json:"balance"`
	Timestamp time.Time `json:"timestamp"`
}

// Submitter pushes score updates to an external leaderboard. Submission
// is fire and forget: gameplay never blocks or fails on it.
type Submitter interface {
	Submit(score Score)
	Close()
}

type natsSubmitter struct {
	nc      *nats.Conn
	subject string
}

// NewNATSSubmitter connects to NATS and publishes scores on subject.
func NewNATSSubmitter(url, subject string) (Submitter, error) {
	opts := []nats.Option{
		nats.Name("pokerroom"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Error("NATS disconnected with error")
			} else {
				log.Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.WithField("url", url).Info("Connected to NATS for leaderboard submission")
	return &natsSubmitter{nc: nc, subject: subject}, nil
}

func (s *natsSubmitter) Submit(score Score) {
	payload, err := json.Marshal(score)
	if err != nil {
		log.WithError(err).Error("Failed to marshal leaderboard score")
		return
	}

	if err := s.nc.Publish(s.subject, payload); err != nil {
		log.WithFields(log.Fields{
			"userID":  score.UserID,
			"subject": s.subject,
			"error":   err,
		}).Error("Failed to submit leaderboard score")
		return
	}

	log.WithFields(log.Fields{
		"userID":  score.UserID,
		"balance": score.Balance,
	}).Debug("Submitted leaderboard score")
}

func (s *natsSubmitter) Close() {
	if err := s.nc.Drain(); err != nil {
		log.WithError(err).Warn("Failed to drain NATS connection")
	}
}

type noopSubmitter struct{}

// NewNoopSubmitter returns a submitter that drops every score, for
// deployments without a leaderboard backend.
func NewNoopSubmitter() Submitter {
	return noopSubmitter{}
}

func (noopSubmitter) Submit(Score) {}
func (noopSubmitter) Close()       {}
