package constants

const (
	MsgShiftCreated       = "Shift created, awaiting admin validation"
	MsgShiftSeriesCreated = "Shift series created, awaiting admin validation"
	MsgShiftRemoved       = "Shift cancelled"
	MsgSignupPending      = "Volunteer request submitted, awaiting approval"
	MsgSignupOverlap      = "You have an overlapping shift"
	MsgCommitmentApproved = "Volunteer commitment approved"
	MsgCommitmentRejected = "Volunteer commitment rejected"
	MsgCommitmentCanceled = "Volunteer commitment cancelled successfully"
)

const (
	MsgCreateForbidden     = "Only managers and admins can create shifts"
	MsgPublishForbidden    = "Only managers and admins can publish shifts"
	MsgValidateForbidden   = "Only admins can validate shifts"
	MsgRemoveForbidden     = "Only admin/manager can cancel shifts"
	MsgApproveForbidden    = "Only managers can approve volunteers"
	MsgUserNotFound        = "User not found"
	MsgVolunteerOnly       = "Only volunteers can sign up for shifts"
	MsgShiftNotPublished   = "Shift not found or not published"
	MsgNoSpots             = "No spots available"
	MsgPreviouslyRejected  = "You were previously rejected for this shift and cannot sign up again"
	MsgAlreadySignedUp     = "Already signed up for this shift"
	MsgCommitmentNotFound  = "Volunteer commitment not found"
	MsgAlreadyProcessed    = "Commitment already processed"
	MsgNotCancellable      = "Commitment not found or not approved"
	MsgWindowExpired       = "Cancellation window has expired"
	MsgTooManyRequests     = "Too many requests, slow down."
	MsgUnauthorized        = "Unauthorized"
	MsgInvalidJSON         = "invalid JSON"
	MsgRoleNotFound        = "Role not found"
	MsgStoreFailure        = "Database error"
)
