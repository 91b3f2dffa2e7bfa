// internal/domain/notification/outcome.go
package notification

// OutcomeStatus classifies a single (subject, recipient) dispatch.
type OutcomeStatus string

const (
	OutcomeSent        OutcomeStatus = "SENT"
	OutcomeFetchFailed OutcomeStatus = "FETCH_FAILED"
	OutcomeSendFailed  OutcomeStatus = "SEND_FAILED"
)

// Outcome is logged per pair and then discarded. A FetchFailed outcome has no recipient.
type Outcome struct {
	Kind      Kind
	Subject   string
	Recipient int64
	Status    OutcomeStatus
	Err       error
}
