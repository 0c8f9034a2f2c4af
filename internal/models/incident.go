package models

import (
	"fmt"
	"time"
)

type IncidentStatus string

const (
	StatusReported     IncidentStatus = "REPORTED"
	StatusAcknowledged IncidentStatus = "ACKNOWLEDGED"
	StatusInProgress   IncidentStatus = "IN_PROGRESS"
	StatusResolved     IncidentStatus = "RESOLVED"
	StatusClosed       IncidentStatus = "CLOSED"
)

func (s IncidentStatus) Valid() bool {
	switch s {
	case StatusReported, StatusAcknowledged, StatusInProgress, StatusResolved, StatusClosed:
		return true
	default:
		return false
	}
}

func ParseIncidentStatus(value string) (IncidentStatus, error) {
	status := IncidentStatus(value)
	if !status.Valid() {
		return "", fmt.Errorf("unknown incident status %q", value)
	}
	return status, nil
}

// Incident is a citizen-reported emergency handled by the incident CRUD
// service. Priority runs 1 (highest) to 5 (lowest).
type Incident struct {
	ID          int64
	Type        string
	Description string
	Location    string
	ReportedBy  string
	Status      IncidentStatus
	Priority    int
	ReportedAt  time.Time
	AssignedTo  string
}

func (i Incident) IsHighPriority() bool {
	return i.Priority >= 1 && i.Priority <= 2
}

func (i Incident) IsResolved() bool {
	return i.Status == StatusResolved
}
