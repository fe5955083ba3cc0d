package constants

import (
	"database/sql/driver"
	"fmt"
)

// ShiftStatus is the lifecycle state stored in shifts.status.
// Removal is a hard delete and has no status value.
type ShiftStatus string

const (
	ShiftDraft     ShiftStatus = "draft"
	ShiftValidated ShiftStatus = "validated"
	ShiftPublished ShiftStatus = "published"
)

func (s ShiftStatus) String() string { return string(s) }

// Valid reports whether s is a storable shift status.
func (s ShiftStatus) Valid() bool {
	switch s {
	case ShiftDraft, ShiftValidated, ShiftPublished:
		return true
	}
	return false
}

func (s *ShiftStatus) Scan(src interface{}) error {
	if src == nil {
		*s = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		*s = ShiftStatus(v)
	case []byte:
		*s = ShiftStatus(v)
	default:
		return fmt.Errorf("ShiftStatus: cannot scan type %T", src)
	}
	return nil
}

func (s ShiftStatus) Value() (driver.Value, error) { return string(s), nil }

// CommitmentStatus is the lifecycle state stored in volunteer_commitments.status.
type CommitmentStatus string

const (
	CommitmentPending   CommitmentStatus = "pending"
	CommitmentApproved  CommitmentStatus = "approved"
	CommitmentRejected  CommitmentStatus = "rejected"
	CommitmentCancelled CommitmentStatus = "cancelled"
)

func (s CommitmentStatus) String() string { return string(s) }

// Active commitments hold (or wait for) a spot on the shift.
func (s CommitmentStatus) Active() bool {
	return s == CommitmentPending || s == CommitmentApproved
}

func (s *CommitmentStatus) Scan(src interface{}) error {
	if src == nil {
		*s = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		*s = CommitmentStatus(v)
	case []byte:
		*s = CommitmentStatus(v)
	default:
		return fmt.Errorf("CommitmentStatus: cannot scan type %T", src)
	}
	return nil
}

func (s CommitmentStatus) Value() (driver.Value, error) { return string(s), nil }

// ActiveCommitmentStatuses is used in IN (...) filters.
var ActiveCommitmentStatuses = []string{string(CommitmentPending), string(CommitmentApproved)}
