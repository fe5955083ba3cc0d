package auth

import (
	"sort"

	"helping-hands/shiftdesk/internal/constants"
)

// Action names one guarded operation.
type Action string

const (
	ActionShiftCreate       Action = "shift.create"
	ActionShiftValidate     Action = "shift.validate"
	ActionShiftPublish      Action = "shift.publish"
	ActionShiftRemove       Action = "shift.remove"
	ActionShiftListAll      Action = "shift.list_all"
	ActionCommitmentRequest Action = "commitment.request"
	ActionCommitmentDecide  Action = "commitment.decide"
	ActionCommitmentCancel  Action = "commitment.cancel"
	ActionReportView        Action = "report.view"
)

// policy is the fixed (role, action) table. Anything absent is denied.
// Commitment decisions belong to managers alone; admins do not approve.
var policy = map[constants.Role]map[Action]bool{
	constants.RoleAdmin: {
		ActionShiftCreate:   true,
		ActionShiftValidate: true,
		ActionShiftPublish:  true,
		ActionShiftRemove:   true,
		ActionShiftListAll:  true,
		ActionReportView:    true,
	},
	constants.RoleManager: {
		ActionShiftCreate:      true,
		ActionShiftPublish:     true,
		ActionShiftRemove:      true,
		ActionShiftListAll:     true,
		ActionCommitmentDecide: true,
		ActionReportView:       true,
	},
	constants.RoleVolunteer: {
		ActionCommitmentRequest: true,
		ActionCommitmentCancel:  true,
	},
}

// Allowed reports whether role may perform action.
func Allowed(role constants.Role, action Action) bool {
	return policy[role][action]
}

// Permissions lists the actions granted to role, sorted. ok is false for
// roles outside the table.
func Permissions(role constants.Role) (actions []Action, ok bool) {
	granted, ok := policy[role]
	if !ok {
		return nil, false
	}
	actions = make([]Action, 0, len(granted))
	for a, allowed := range granted {
		if allowed {
			actions = append(actions, a)
		}
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	return actions, true
}
