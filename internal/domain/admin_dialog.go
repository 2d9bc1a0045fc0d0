package domain

type DialogStep string

const (
	DialogAwaitingTargetID DialogStep = "awaiting_target_id"
	DialogAwaitingDelta    DialogStep = "awaiting_delta"
)

// AdminDialog is the pending balance adjustment of one admin.
type AdminDialog struct {
	Step     DialogStep `json:"step"`
	TargetID int64      `json:"target_id,omitempty"`
}
