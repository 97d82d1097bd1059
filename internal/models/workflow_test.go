package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextStatusEdges(t *testing.T) {
	cases := []struct {
		from   SectionStatus
		action WorkflowAction
		to     SectionStatus
		role   UserRole
	}{
		{SectionStatusDraft, ActionSubmit, SectionStatusSubmitted, RoleTeacher},
		{SectionStatusRejected, ActionSubmit, SectionStatusSubmitted, RoleTeacher},
		{SectionStatusSubmitted, ActionMarkReview, SectionStatusUnderReview, RoleAdmin},
		{SectionStatusUnderReview, ActionApprove, SectionStatusApproved, RoleAdmin},
		{SectionStatusUnderReview, ActionReject, SectionStatusRejected, RoleAdmin},
		{SectionStatusApproved, ActionPublish, SectionStatusPublished, RoleAdmin},
	}
	for _, tc := range cases {
		to, role, ok := NextStatus(tc.from, tc.action)
		assert.True(t, ok, "%s + %s", tc.from, tc.action)
		assert.Equal(t, tc.to, to)
		assert.Equal(t, tc.role, role)
	}
}

func TestNextStatusRejectsUnknownEdges(t *testing.T) {
	statuses := []SectionStatus{
		SectionStatusDraft, SectionStatusSubmitted, SectionStatusUnderReview,
		SectionStatusApproved, SectionStatusRejected, SectionStatusPublished,
	}
	actions := []WorkflowAction{ActionSubmit, ActionMarkReview, ActionApprove, ActionReject, ActionPublish}

	legal := 0
	for _, status := range statuses {
		for _, action := range actions {
			if _, _, ok := NextStatus(status, action); ok {
				legal++
			}
		}
	}
	assert.Equal(t, 6, legal)

	_, _, ok := NextStatus(SectionStatusPublished, ActionSubmit)
	assert.False(t, ok)
	_, _, ok = NextStatus(SectionStatusDraft, ActionApprove)
	assert.False(t, ok)
}

func TestSectionStatusEditable(t *testing.T) {
	assert.True(t, SectionStatusDraft.Editable())
	assert.True(t, SectionStatusRejected.Editable())
	assert.False(t, SectionStatusSubmitted.Editable())
	assert.False(t, SectionStatusUnderReview.Editable())
	assert.False(t, SectionStatusApproved.Editable())
	assert.False(t, SectionStatusPublished.Editable())
}

func TestSectionStatusTerminal(t *testing.T) {
	assert.True(t, SectionStatusPublished.Terminal())
	assert.False(t, SectionStatusApproved.Terminal())
}
