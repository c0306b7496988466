package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unheard/unheard-backend/pkg/errs"
	"github.com/unheard/unheard-backend/pkg/service"
)

func TestParseStoryStatus(t *testing.T) {
	testCases := []struct {
		raw       string
		expect    service.StoryStatus
		expectErr bool
	}{
		{raw: "PENDING", expect: service.StoryStatusPending},
		{raw: "APPROVED", expect: service.StoryStatusApproved},
		{raw: "REJECTED", expect: service.StoryStatusRejected},
		{raw: "pending", expectErr: true},
		{raw: "DELETED", expectErr: true},
		{raw: "", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run("raw "+tc.raw, func(t *testing.T) {
			status, err := service.ParseStoryStatus(tc.raw)
			if tc.expectErr {
				require.Error(t, err)
				assert.True(t, errs.KindIs(errs.Validation, err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expect, status)
		})
	}
}

func TestCanTransitionTo(t *testing.T) {
	pending := service.StoryStatusPending
	approved := service.StoryStatusApproved
	rejected := service.StoryStatusRejected

	testCases := []struct {
		name    string
		from    service.StoryStatus
		to      service.StoryStatus
		allowed bool
	}{
		{name: "pending to approved", from: pending, to: approved, allowed: true},
		{name: "pending to rejected", from: pending, to: rejected, allowed: true},
		{name: "approved to rejected", from: approved, to: rejected, allowed: true},
		{name: "rejected to approved", from: rejected, to: approved, allowed: true},
		{name: "approved back to pending", from: approved, to: pending, allowed: false},
		{name: "rejected back to pending", from: rejected, to: pending, allowed: false},
		{name: "pending to pending", from: pending, to: pending, allowed: true},
		{name: "approved to approved", from: approved, to: approved, allowed: true},
		{name: "rejected to rejected", from: rejected, to: rejected, allowed: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestNewStoryValidate(t *testing.T) {
	assert.NoError(t, service.NewStory{Content: "something happened"}.Validate())
	assert.Error(t, service.NewStory{}.Validate())
	assert.Error(t, service.NewStory{Content: string(make([]byte, 20001))}.Validate())
}
