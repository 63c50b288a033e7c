package models

import "time"

// OperationKind names the mutation a ChangeEvent describes.
type OperationKind string

const (
	OperationCreated OperationKind = "created"
	OperationUpdated OperationKind = "updated"
	OperationDeleted OperationKind = "deleted"
)

// Key is the message key consumers of the members channel dispatch on.
func (k OperationKind) Key() string {
	switch k {
	case OperationCreated:
		return "add_member"
	case OperationUpdated:
		return "edit_member"
	case OperationDeleted:
		return "delete_member"
	default:
		return string(k)
	}
}

// ChangeEvent describes one committed mutation. It is built only after the
// store reports success.
type ChangeEvent struct {
	EntityID      MemberID
	CorrelationID string
	Kind          OperationKind
	OccurredAt    time.Time
}
