package model

import "time"

// CommitStatus is the state of a commit header. A commit starts active and
// is superseded exactly once, when a newer commit lands in the same scope.
type CommitStatus string

const (
	// CommitActive marks the current commit for a scope.
	CommitActive CommitStatus = "active"
	// CommitSuperseded marks a commit replaced by a later one.
	CommitSuperseded CommitStatus = "superseded"
)

// Commit is the header for one locked submission of a scope's draft rows.
// Headers are never deleted; only the status flag transitions.
type Commit struct {
	CreatedAt     time.Time
	Period        string
	CommittedBy   string
	Status        CommitStatus
	ID            int64
	ClientID      int64
	BankID        int64
	RowsCommitted int
	Accuracy      float64
}

// CommitResult summarizes a successful commit operation.
type CommitResult struct {
	CommitID      int64
	RowsCommitted int
	Accuracy      float64
}
