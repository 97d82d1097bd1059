package models

import "time"

// SectionStatus captures where a section's grade sheet sits in the
// approval workflow.
type SectionStatus string

const (
	SectionStatusDraft       SectionStatus = "DRAFT"
	SectionStatusSubmitted   SectionStatus = "SUBMITTED"
	SectionStatusUnderReview SectionStatus = "UNDER_REVIEW"
	SectionStatusApproved    SectionStatus = "APPROVED"
	SectionStatusRejected    SectionStatus = "REJECTED"
	SectionStatusPublished   SectionStatus = "PUBLISHED"
)

// Valid returns true when the status is a supported value.
func (s SectionStatus) Valid() bool {
	switch s {
	case SectionStatusDraft, SectionStatusSubmitted, SectionStatusUnderReview,
		SectionStatusApproved, SectionStatusRejected, SectionStatusPublished:
		return true
	default:
		return false
	}
}

// Editable reports whether the grade ledger may be mutated while the
// section is in this status.
func (s SectionStatus) Editable() bool {
	return s == SectionStatusDraft || s == SectionStatusRejected
}

// Terminal reports whether no further transitions are possible.
func (s SectionStatus) Terminal() bool {
	return s == SectionStatusPublished
}

// WorkflowAction names a requested transition on a section grade sheet.
type WorkflowAction string

const (
	ActionSubmit     WorkflowAction = "submit"
	ActionMarkReview WorkflowAction = "mark_review"
	ActionApprove    WorkflowAction = "approve"
	ActionReject     WorkflowAction = "reject"
	ActionPublish    WorkflowAction = "publish"
)

// Valid returns true when the action is a supported value.
func (a WorkflowAction) Valid() bool {
	switch a {
	case ActionSubmit, ActionMarkReview, ActionApprove, ActionReject, ActionPublish:
		return true
	default:
		return false
	}
}

// transitionKey identifies one edge of the workflow state machine.
type transitionKey struct {
	From   SectionStatus
	Action WorkflowAction
}

// transitionEdge is the target state plus the role allowed to walk it.
type transitionEdge struct {
	To   SectionStatus
	Role UserRole
}

// transitions is the exhaustive edge set of the approval workflow.
// Anything not listed here is an invalid transition.
var transitions = map[transitionKey]transitionEdge{
	{SectionStatusDraft, ActionSubmit}:         {SectionStatusSubmitted, RoleTeacher},
	{SectionStatusRejected, ActionSubmit}:      {SectionStatusSubmitted, RoleTeacher},
	{SectionStatusSubmitted, ActionMarkReview}: {SectionStatusUnderReview, RoleAdmin},
	{SectionStatusUnderReview, ActionApprove}:  {SectionStatusApproved, RoleAdmin},
	{SectionStatusUnderReview, ActionReject}:   {SectionStatusRejected, RoleAdmin},
	{SectionStatusApproved, ActionPublish}:     {SectionStatusPublished, RoleAdmin},
}

// NextStatus resolves the target status for (from, action). The second
// return is the role required to perform the transition; ok is false
// when the edge does not exist.
func NextStatus(from SectionStatus, action WorkflowAction) (SectionStatus, UserRole, bool) {
	edge, ok := transitions[transitionKey{From: from, Action: action}]
	if !ok {
		return "", "", false
	}
	return edge.To, edge.Role, true
}

// SectionGradeState is the sole source of truth for a section's
// position in the approval workflow. Version increments on every
// transition and every ledger write; cached aggregates embed it.
type SectionGradeState struct {
	SectionID string        `db:"section_id" json:"section_id"`
	Status    SectionStatus `db:"status" json:"status"`
	Version   int64         `db:"version" json:"version"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// StateTransition is one append-only audit row in a section's history.
type StateTransition struct {
	ID         string        `db:"id" json:"id"`
	SectionID  string        `db:"section_id" json:"section_id"`
	FromStatus SectionStatus `db:"from_status" json:"from"`
	ToStatus   SectionStatus `db:"to_status" json:"to"`
	ActorID    string        `db:"actor_id" json:"actor"`
	ActorRole  UserRole      `db:"actor_role" json:"actor_role"`
	Reason     *string       `db:"reason" json:"reason,omitempty"`
	OccurredAt time.Time     `db:"occurred_at" json:"at"`
}

// SectionWorkflow bundles the current state with its full history for
// the audit view.
type SectionWorkflow struct {
	State   SectionGradeState `json:"state"`
	History []StateTransition `json:"history"`
}
