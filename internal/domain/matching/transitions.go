package matching

// Action es la operación solicitada sobre un match.
type Action string

const (
	ActionConfirm Action = "confirm"
	ActionReject  Action = "reject"
	ActionResolve Action = "resolve"
)

// transitions es la tabla explícita de transiciones legales:
// (estado actual, acción) -> estado destino. Todo lo que no aparece acá
// es una transición ilegal. resolved solo se alcanza pasando por confirmed.
var transitions = map[MatchStatus]map[Action]MatchStatus{
	StatusPending: {
		ActionConfirm: StatusConfirmed,
		ActionReject:  StatusRejected,
	},
	StatusConfirmed: {
		ActionResolve: StatusResolved,
	},
}

// targetStatus devuelve el estado que produce cada acción (para armar
// TransitionError aunque la transición sea ilegal).
var targetStatus = map[Action]MatchStatus{
	ActionConfirm: StatusConfirmed,
	ActionReject:  StatusRejected,
	ActionResolve: StatusResolved,
}

func nextStatus(current MatchStatus, action Action) (MatchStatus, error) {
	if to, ok := transitions[current][action]; ok {
		return to, nil
	}
	return "", &TransitionError{Current: current, Requested: targetStatus[action]}
}
