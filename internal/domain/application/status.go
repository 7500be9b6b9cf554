// Package application holds job applications and their status machine.
//
//	pending ──► accepted
//	   │
//	   └──────► rejected
//
// accepted and rejected are terminal.
package application

import (
	"errors"
	"fmt"
	"strings"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

var ErrInvalidStatus = errors.New("invalid application status")

var validTransitions = map[Status][]Status{
	StatusPending: {StatusAccepted, StatusRejected},
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusAccepted, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// IsTransitionAllowed reports whether an application may move from -> to.
func IsTransitionAllowed(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func IsTerminal(s Status) bool {
	return len(validTransitions[s]) == 0
}

// Counts toward the job's applicant list.
func (s Status) Active() bool {
	return s != StatusRejected
}
