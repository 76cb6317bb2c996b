package models

// Outcome is the decision reached for a single login attempt.
type Outcome int

const (
	OutcomeRejected Outcome = iota
	OutcomeAuthenticated
	OutcomeThrottled
	OutcomeLocked
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAuthenticated:
		return "authenticated"
	case OutcomeThrottled:
		return "throttled"
	case OutcomeLocked:
		return "locked"
	default:
		return "rejected"
	}
}

// AuthResult carries the outcome and, for OutcomeAuthenticated only, the
// account ID and its normalised email.
type AuthResult struct {
	Outcome   Outcome
	AccountID string
	Email     string
}

func Authenticated(accountID string) *AuthResult {
	return &AuthResult{Outcome: OutcomeAuthenticated, AccountID: accountID}
}

func Rejected() *AuthResult  { return &AuthResult{Outcome: OutcomeRejected} }
func Throttled() *AuthResult { return &AuthResult{Outcome: OutcomeThrottled} }
func Locked() *AuthResult    { return &AuthResult{Outcome: OutcomeLocked} }
