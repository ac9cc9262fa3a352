package notification

// Type identifies what happened to a leave request and therefore which message is sent
type Type string

const (
	TypeHeadApprovalPending    Type = "request.pending_head"
	TypeManagerApprovalPending Type = "request.pending_manager"
	TypeRejectedByHead         Type = "request.rejected_by_head"
	TypeRejectedByManager      Type = "request.rejected_by_manager"
	TypeApproved               Type = "request.approved"
	TypeCancelled              Type = "request.cancelled"
)

// String returns the string representation of the intent type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the intent type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeHeadApprovalPending,
		TypeManagerApprovalPending,
		TypeRejectedByHead,
		TypeRejectedByManager,
		TypeApproved,
		TypeCancelled:
		return true
	default:
		return false
	}
}

// AllTypes lists every intent type, used to subscribe delivery handlers
func AllTypes() []Type {
	return []Type{
		TypeHeadApprovalPending,
		TypeManagerApprovalPending,
		TypeRejectedByHead,
		TypeRejectedByManager,
		TypeApproved,
		TypeCancelled,
	}
}
