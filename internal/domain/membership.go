package domain

type MembershipStatus int

const (
	MembershipMember MembershipStatus = iota
	MembershipNotMember
	MembershipUndetermined
)

type UndeterminedReason string

const (
	// ReasonMisconfigured means the bot cannot see the channel (no access, bad reference).
	ReasonMisconfigured UndeterminedReason = "misconfigured"
	// ReasonUnavailable means the lookup failed for transport reasons.
	ReasonUnavailable UndeterminedReason = "unavailable"
)

type Membership struct {
	Status MembershipStatus
	Reason UndeterminedReason
	Err    error
}

func (m Membership) IsMember() bool {
	return m.Status == MembershipMember
}
