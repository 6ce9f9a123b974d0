package greyfilter

import "fmt"

// Outcome is the answer given to a recipient check.
type Outcome int

const (
	Allow Outcome = iota // Let the recipient through
	Defer                // Temporarily reject with greylistReply
)

func (o Outcome) String() string {
	if o == Defer {
		return "defer"
	}
	return "allow"
}

const (
	greylistReply string = "450 Greylisted"

	// Oracle codes at or below this value mean the pair is still greylisted.
	lastDeferCode int64 = 1
)

// Oracle codes returned by the decision script.
const (
	CodeFirstSeen int64 = iota
	CodeStillGreylisted
	CodePassed
	CodeWhitelisted
)

var handshakeLines = []string{
	"register|report|smtp-in|tx-mail",
	"register|report|smtp-in|link-disconnect",
	"register|filter|smtp-in|rcpt-to",
	"register|ready",
}

// Decision is what the oracle made of one key pair.
type Decision struct {
	Outcome Outcome
	Code    int64
}

// DecisionFromCode maps a script result onto an outcome.
func DecisionFromCode(code int64) Decision {
	d := Decision{Outcome: Allow, Code: code}
	if code <= lastDeferCode {
		d.Outcome = Defer
	}
	return d
}

func resultLine(session, token string, o Outcome) string {
	if o == Defer {
		return fmt.Sprintf("filter-result|%s|%s|reject|%s", session, token, greylistReply)
	}
	return fmt.Sprintf("filter-result|%s|%s|proceed", session, token)
}
