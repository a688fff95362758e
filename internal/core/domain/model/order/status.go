package order

import (
	"fmt"
	"strings"

	"fulfillment/internal/pkg/errs"
)

// Status is the lifecycle state of an order. It is derived from item outcomes while the
// tenant is deciding and set explicitly only by completion.
//
// State transitions:
//
//	New ──┬──> Preparing ──┬──> Completed
//	      │        ▲ │     │
//	      │        └─┘     │
//	      └──> Rejected <──┘
//
// Preparing may be re-entered when a tenant revises its decision. Rejected and Completed
// are terminal.
type Status int

const (
	// Unknown catches uninitialised values.
	Unknown Status = iota

	// New is the status of an order handed over by intake and not yet decided.
	New

	// Preparing means at least one item was accepted.
	Preparing

	// Rejected means every item was rejected.
	Rejected

	// Completed is set by the completion step once the order is handed out.
	Completed
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "unknown",
		New:       "new",
		Preparing: "preparing",
		Rejected:  "rejected",
		Completed: "completed",
	}
}

// ParseStatus reads the wire form ("new", "preparing", "rejected", "completed").
func ParseStatus(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if status != Unknown && str == strings.ToLower(strings.TrimSpace(s)) {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", s))
}

// Validate rejects Unknown and out-of-range values.
func (s Status) Validate() error {
	if s <= Unknown || s > Completed {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(data []byte) error {
	parsed, err := ParseStatus(string(data))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// IsTerminal reports whether no decision may change the order any more.
func (s Status) IsTerminal() bool {
	return s == Rejected || s == Completed
}

// ValidateRespond checks that a tenant decision may still be applied.
func (s Status) ValidateRespond() error {
	if s != New && s != Preparing {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to respond to", s),
		)
	}
	return nil
}

// Decide moves the order to the status derived from its items.
func (s Status) Decide(allRejected bool) (Status, error) {
	if err := s.ValidateRespond(); err != nil {
		return Unknown, err
	}
	if allRejected {
		return Rejected, nil
	}
	return Preparing, nil
}

// Complete transitions Preparing to Completed.
func (s Status) Complete() (Status, error) {
	if s != Preparing {
		return Unknown, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to complete", s),
		)
	}
	return Completed, nil
}
