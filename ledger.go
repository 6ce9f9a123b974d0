package greyfilter

// Ledger remembers the most recently accepted sender of every session.
// It is owned by a single Server and is not safe for concurrent use.
type Ledger struct {
	senders map[string]string
}

func NewLedger() *Ledger {
	return &Ledger{senders: map[string]string{}}
}

func (l *Ledger) RecordSender(session, sender string) {
	l.senders[session] = sender
}

// ConsumeSender removes and returns the sender noted for session.
func (l *Ledger) ConsumeSender(session string) (string, bool) {
	sender, ok := l.senders[session]
	if ok {
		delete(l.senders, session)
	}
	return sender, ok
}

func (l *Ledger) Forget(session string) {
	delete(l.senders, session)
}

func (l *Ledger) Len() int {
	return len(l.senders)
}
