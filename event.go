package greyfilter

import "strings"

type EventKind int

const (
	EventIgnored EventKind = iota
	EventHandshake
	EventSenderAccepted
	EventSenderRejected
	EventSessionEnded
	EventRecipientCheck
	EventFilterOther
)

func (k EventKind) String() string {
	switch k {
	case EventHandshake:
		return "handshake"
	case EventSenderAccepted:
		return "sender-accepted"
	case EventSenderRejected:
		return "sender-rejected"
	case EventSessionEnded:
		return "session-ended"
	case EventRecipientCheck:
		return "recipient-check"
	case EventFilterOther:
		return "filter-other"
	}
	return "ignored"
}

const (
	fieldSep        string = "|"
	handshakeLine   string = "config|ready"
	subsystemSMTPIn string = "smtp-in"
	phaseTxMail     string = "tx-mail"
	phaseLinkDisc   string = "link-disconnect"
	phaseRcptTo     string = "rcpt-to"
	statusOK        string = "ok"

	minFilterFields  int = 7
	minReportFields  int = 6
	minTxMailFields  int = 9
	recipientField   int = 7
	senderField      int = 8
	txStatusField    int = 7
	reportParamsFrom int = 6
)

// Event is one classified input line.
type Event struct {
	Kind EventKind

	Protocol  string
	Timestamp string
	Subsystem string
	Phase     string
	Session   string

	// Token is the filter request token echoed in the response.
	Token string
	// Address is the sender of tx-mail or the recipient of rcpt-to.
	Address      string
	HasRecipient bool
	Params       []string

	Line string
}

// ParseEvent classifies a single protocol line. It never fails: anything
// it cannot make sense of is EventIgnored.
func ParseEvent(line string) Event {
	line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
	ev := Event{Line: line}

	if line == handshakeLine {
		ev.Kind = EventHandshake
		return ev
	}

	tokens := strings.Split(line, fieldSep)
	switch tokens[0] {
	case "filter":
		if len(tokens) < minFilterFields {
			return ev
		}
		ev.fill(tokens, minFilterFields)
		ev.Token = tokens[6]
		ev.Kind = EventFilterOther
		if ev.Subsystem == subsystemSMTPIn && ev.Phase == phaseRcptTo {
			ev.Kind = EventRecipientCheck
			if len(tokens) > recipientField {
				ev.Address = strings.Join(tokens[recipientField:], fieldSep)
				ev.HasRecipient = true
			}
		}
	case "report":
		if len(tokens) < minReportFields || tokens[3] != subsystemSMTPIn {
			return ev
		}
		switch tokens[4] {
		case phaseTxMail:
			if len(tokens) < minTxMailFields {
				return ev
			}
			ev.fill(tokens, reportParamsFrom)
			if tokens[txStatusField] == statusOK {
				ev.Kind = EventSenderAccepted
				ev.Address = strings.Join(tokens[senderField:], fieldSep)
			} else {
				ev.Kind = EventSenderRejected
			}
		case phaseLinkDisc:
			ev.fill(tokens, reportParamsFrom)
			ev.Kind = EventSessionEnded
		}
	}

	return ev
}

func (ev *Event) fill(tokens []string, paramsFrom int) {
	ev.Protocol = tokens[1]
	ev.Timestamp = tokens[2]
	ev.Subsystem = tokens[3]
	ev.Phase = tokens[4]
	ev.Session = tokens[5]
	ev.Params = tokens[paramsFrom:]
}
