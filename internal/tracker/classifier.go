package tracker

import "github.com/rexlManu/ClimbChallenge/internal/domain"

// Queue-dodge penalties: -5 LP for the first dodge in the penalty window,
// -15 for a repeat. If the upstream penalty schedule ever changes these
// will misclassify; they are kept as fixed values rather than generalized.
const (
	FirstDodgePenalty  = -5
	RepeatDodgePenalty = -15
)

// Classification is the classifier's verdict on an observed change,
// stored verbatim on the new track. All fields are nil/false when there
// is no previous track to diff against.
type Classification struct {
	LPChange *int
	Type     *domain.LPChangeType
	Reason   *domain.LPChangeReason
	IsDodge  bool
}

// Classify computes the signed LP delta on the rank scale between the
// previous track and the observation and attributes a cause. A loss of
// exactly a dodge penalty with no game played and no tier/division move is
// the signature of a queue dodge, not a lost match.
func Classify(previous *domain.SummonerTrack, current Observation) Classification {
	if previous == nil {
		return Classification{}
	}

	lpChange := current.Point().Scale() - previous.Point().Scale()

	var changeType domain.LPChangeType
	var reason domain.LPChangeReason
	isDodge := false

	switch {
	case lpChange > 0:
		changeType = domain.LPChangeGain
		reason = domain.ReasonMatchWin
	case lpChange < 0:
		changeType = domain.LPChangeLoss
		reason = domain.ReasonMatchLoss
		if (lpChange == FirstDodgePenalty || lpChange == RepeatDodgePenalty) &&
			previous.Wins == current.Wins && previous.Losses == current.Losses &&
			previous.Tier == current.Tier && previous.Division == current.Division {
			reason = domain.ReasonDodge
			isDodge = true
		}
	default:
		changeType = domain.LPChangeNoChange
		reason = domain.ReasonUnknown
	}

	return Classification{
		LPChange: &lpChange,
		Type:     &changeType,
		Reason:   &reason,
		IsDodge:  isDodge,
	}
}
