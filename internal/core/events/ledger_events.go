package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeDeploymentCreated     = "deployment.created"
	EventTypeDeploymentTransferred = "deployment.transferred"
	EventTypeDeploymentEnded       = "deployment.ended"
	EventTypeGuardTerminated       = "guard.terminated"
	EventTypeLeaveApproved         = "leave.approved"
	EventTypeLeaveCancelled        = "leave.cancelled"
	EventTypeRotationAssigned      = "rotation.assigned"
)

func newBase(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

type DeploymentEvent struct {
	BaseEvent
	DeploymentID string    `json:"deployment_id"`
	GuardID      string    `json:"guard_id"`
	SiteID       string    `json:"site_id"`
	FromSiteID   string    `json:"from_site_id,omitempty"`
	Date         time.Time `json:"date"`
}

func NewDeploymentEvent(eventType, deploymentID, guardID, siteID, fromSiteID string, date time.Time) *DeploymentEvent {
	return &DeploymentEvent{
		BaseEvent: newBase(eventType, map[string]interface{}{
			"deployment_id": deploymentID,
			"guard_id":      guardID,
			"site_id":       siteID,
			"from_site_id":  fromSiteID,
			"date":          date,
		}),
		DeploymentID: deploymentID,
		GuardID:      guardID,
		SiteID:       siteID,
		FromSiteID:   fromSiteID,
		Date:         date,
	}
}

type GuardTerminatedEvent struct {
	BaseEvent
	GuardID       string    `json:"guard_id"`
	EffectiveDate time.Time `json:"effective_date"`
}

func NewGuardTerminatedEvent(guardID string, effectiveDate time.Time) *GuardTerminatedEvent {
	return &GuardTerminatedEvent{
		BaseEvent: newBase(EventTypeGuardTerminated, map[string]interface{}{
			"guard_id":       guardID,
			"effective_date": effectiveDate,
		}),
		GuardID:       guardID,
		EffectiveDate: effectiveDate,
	}
}

type LeaveEvent struct {
	BaseEvent
	LeaveID              string `json:"leave_id"`
	GuardID              string `json:"guard_id"`
	CancelledAssignments int64  `json:"cancelled_assignments"`
}

func NewLeaveEvent(eventType, leaveID, guardID string, cancelledAssignments int64) *LeaveEvent {
	return &LeaveEvent{
		BaseEvent: newBase(eventType, map[string]interface{}{
			"leave_id":              leaveID,
			"guard_id":              guardID,
			"cancelled_assignments": cancelledAssignments,
		}),
		LeaveID:              leaveID,
		GuardID:              guardID,
		CancelledAssignments: cancelledAssignments,
	}
}

type RotationAssignedEvent struct {
	BaseEvent
	AssignmentID string `json:"assignment_id"`
	GuardID      string `json:"guard_id"`
	SiteID       string `json:"site_id"`
	LeaveID      string `json:"leave_id,omitempty"`
}

func NewRotationAssignedEvent(assignmentID, guardID, siteID, leaveID string) *RotationAssignedEvent {
	return &RotationAssignedEvent{
		BaseEvent: newBase(EventTypeRotationAssigned, map[string]interface{}{
			"assignment_id": assignmentID,
			"guard_id":      guardID,
			"site_id":       siteID,
			"leave_id":      leaveID,
		}),
		AssignmentID: assignmentID,
		GuardID:      guardID,
		SiteID:       siteID,
		LeaveID:      leaveID,
	}
}
