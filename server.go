package greyfilter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
)

// Server speaks the filter protocol on a line based stream. Lines are
// handled one at a time and every filter request is answered before the
// next line is read.
type Server struct {
	Oracle Oracle
	Hooks  []Hook
	Logger *log.Logger

	ledger     *Ledger
	out        *bufio.Writer
	handshaken bool
}

// Start loads plugin hooks and serves stdin/stdout until stdin is closed.
func (s *Server) Start() error {
	p := &Plugins{}
	if err := p.load(); err != nil {
		return fmt.Errorf("plugin load error: %w", err)
	}

	for _, hook := range s.Hooks {
		hook.AfterInit()
	}
	s.Hooks = append(s.Hooks, p.hooks...)

	return s.Serve(context.Background(), os.Stdin, os.Stdout)
}

// Serve returns nil once r is exhausted. Only read and write faults are
// returned; decision store failures are answered with proceed.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	if s.Oracle == nil {
		return errors.New("no oracle configured")
	}
	if s.ledger == nil {
		s.ledger = NewLedger()
	}
	s.out = bufio.NewWriter(w)

	in := bufio.NewReader(r)
	for {
		line, err := in.ReadString('\n')
		switch err {
		case nil:
			if err := s.handle(ctx, line); err != nil {
				return err
			}
		case io.EOF:
			if len(line) > 0 {
				if err := s.handle(ctx, line); err != nil {
					return err
				}
			}
			s.logger().Info("End of input, terminating")
			return nil
		default:
			return fmt.Errorf("couldn't read input: %w", err)
		}
	}
}

func (s *Server) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.StandardLogger()
}

func (s *Server) ignoreLevel() log.Level {
	if s.handshaken {
		return log.WarnLevel
	}
	return log.DebugLevel
}

func (s *Server) entry(ev Event) *log.Entry {
	return s.logger().WithFields(log.Fields{
		"protocol":  ev.Protocol,
		"timestamp": ev.Timestamp,
		"subsystem": ev.Subsystem,
		"phase":     ev.Phase,
		"session":   ev.Session,
		"params":    ev.Params,
	})
}

func (s *Server) handle(ctx context.Context, line string) error {
	ev := ParseEvent(line)

	switch ev.Kind {
	case EventHandshake:
		for _, l := range handshakeLines {
			if _, err := s.out.WriteString(l + "\n"); err != nil {
				return fmt.Errorf("couldn't write handshake: %w", err)
			}
		}
		if err := s.out.Flush(); err != nil {
			return fmt.Errorf("couldn't write handshake: %w", err)
		}
		s.logger().Info("Completed handshake")
		s.handshaken = true
	case EventSenderAccepted:
		s.ledger.RecordSender(ev.Session, ev.Address)
		s.entry(ev).Trace("Noted mail sender")
	case EventSenderRejected, EventSessionEnded:
		s.ledger.Forget(ev.Session)
		s.entry(ev).Trace("GC-ed mail sender")
	case EventRecipientCheck:
		return s.checkRecipient(ctx, ev)
	case EventFilterOther:
		bypassed.WithLabelValues(bypassOtherPhase).Inc()
		s.entry(ev).Warn("Allowing filter input")
		return s.respond(ev, Allow)
	default:
		s.logger().WithField("input", ev.Line).Log(s.ignoreLevel(), "Ignoring input")
	}

	sessions.Set(float64(s.ledger.Len()))
	return nil
}

func (s *Server) checkRecipient(ctx context.Context, ev Event) error {
	lf := s.entry(ev)
	d := &AfterDecisionData{
		ID:         GenID().String(),
		OccurredAt: time.Now(),
		Session:    ev.Session,
		Token:      ev.Token,
		Outcome:    Allow,
	}

	sender, ok := s.ledger.ConsumeSender(ev.Session)
	sessions.Set(float64(s.ledger.Len()))

	switch {
	case !ok:
		bypassed.WithLabelValues(bypassNoSender).Inc()
		lf.Warn("Sender missing")
	case !ev.HasRecipient:
		lf.Trace("GC-ed mail sender")
		bypassed.WithLabelValues(bypassNoRecipient).Inc()
		lf.Warn("Recipient missing")
	default:
		lf.Trace("GC-ed mail sender")
		s.decide(ctx, lf, d, sender, ev.Address)
	}

	decisions.WithLabelValues(d.Outcome.String()).Inc()
	if err := s.respond(ev, d.Outcome); err != nil {
		return err
	}

	for _, hook := range s.Hooks {
		hook.AfterDecision(d)
	}

	return nil
}

func (s *Server) decide(ctx context.Context, lf *log.Entry, d *AfterDecisionData, sender, recipient string) {
	d.Fingerprint = NewFingerprint([]byte(sender), []byte(recipient))
	d.Consulted = true
	lf = lf.WithField("fingerprint", d.Fingerprint)

	res, err := s.Oracle.Decide(ctx, d.Fingerprint.Keys())
	if err != nil {
		d.Err = err
		storeFailures.Inc()
		lf.WithError(err).Warn("Allowing filter input")
		return
	}

	d.Outcome, d.Code = res.Outcome, res.Code
	lf = lf.WithField("code", res.Code)

	switch {
	case res.Outcome == Allow:
		lf.Info("Allowing filter input")
	case res.Code == CodeStillGreylisted:
		lf.Info("Still greylisted")
	default:
		lf.Info("Greylisted")
	}
}

func (s *Server) respond(ev Event, o Outcome) error {
	if _, err := s.out.WriteString(resultLine(ev.Session, ev.Token, o) + "\n"); err != nil {
		return fmt.Errorf("couldn't write filter result: %w", err)
	}
	if err := s.out.Flush(); err != nil {
		return fmt.Errorf("couldn't write filter result: %w", err)
	}
	return nil
}
