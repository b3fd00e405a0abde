package qc

// Resolve returns the effective state of a gate given its own normalized
// status and whether its prerequisite gate is still incomplete. Blocking only
// suppresses the ready-to-act states; a gate that already passed or failed
// keeps its outcome even if the prerequisite later regresses.
func Resolve(own GateStatus, blockedByPrereq bool) GateStatus {
	if blockedByPrereq && AwaitingAction(own) {
		return Blocked
	}
	return own
}

// OverallStatus is the work-order-level quality verdict across both gates.
type OverallStatus string

const (
	OverallComplete OverallStatus = "complete"
	OverallBlocked  OverallStatus = "blocked"
	OverallPending  OverallStatus = "pending"
	OverallFailed   OverallStatus = "failed"
)

// Aggregate combines the material and first-piece gate statuses into one
// verdict. The order of the checks matters: a failure anywhere dominates,
// even while the material gate is still pending.
func Aggregate(material, firstPiece GateStatus) OverallStatus {
	switch {
	case material == Failed || firstPiece == Failed:
		return OverallFailed
	case Satisfied(material) && Satisfied(firstPiece):
		return OverallComplete
	case AwaitingAction(material):
		return OverallBlocked
	default:
		return OverallPending
	}
}

// GateView is the display-ready resolution of a work order's two QC gates.
type GateView struct {
	Material   GateStatus    `json:"material"`
	FirstPiece GateStatus    `json:"first_piece"`
	Overall    OverallStatus `json:"overall"`
}

// ResolveGates normalizes both raw gate strings and resolves first-piece QC
// against its material prerequisite. First-piece QC cannot start until
// material QC clears, so a pending first piece shows as blocked while the
// material gate is open.
func ResolveGates(materialRaw, firstPieceRaw string) GateView {
	material := Normalize(materialRaw)
	firstPiece := Normalize(firstPieceRaw)
	return GateView{
		Material:   material,
		FirstPiece: Resolve(firstPiece, AwaitingAction(material)),
		Overall:    Aggregate(material, firstPiece),
	}
}
