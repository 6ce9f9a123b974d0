package greyfilter

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// Hook receives an audit record for every answered recipient check.
type Hook interface {
	Name() string
	AfterInit()
	AfterDecision(*AfterDecisionData)
}

// AfterDecisionData never carries the addresses, only their fingerprint.
type AfterDecisionData struct {
	ID          string
	OccurredAt  time.Time
	Session     string
	Token       string
	Fingerprint Fingerprint
	Outcome
	Code int64
	// Consulted is false when the answer was given without asking the oracle.
	Consulted bool
	Err       error
}

func (d *AfterDecisionData) failure() string {
	if d.Err == nil {
		return ""
	}
	return d.Err.Error()
}

func hookLog(h Hook) *log.Entry {
	return log.WithField("hook", h.Name())
}
