package models

import (
	"fmt"
	"time"
)

// TimestampLayout is the ISO-8601 local date-time format used for alert
// timestamps. Timestamps in this layout compare chronologically under plain
// string comparison, which the query engine relies on.
const TimestampLayout = "2006-01-02T15:04:05"

type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeveritySevere   Severity = "SEVERE"
	SeverityCritical Severity = "CRITICAL"
)

// Rank returns the numeric urgency of the severity, 1 (INFO) through
// 4 (CRITICAL). Unknown severities rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityInfo:
		return 1
	case SeverityWarning:
		return 2
	case SeveritySevere:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

func (s Severity) Valid() bool {
	return s.Rank() != 0
}

func (s Severity) String() string {
	return string(s)
}

// ParseSeverity maps the exact token to a Severity. Tokens are case
// sensitive: "critical" is not a valid severity.
func ParseSeverity(value string) (Severity, error) {
	sev := Severity(value)
	if !sev.Valid() {
		return "", fmt.Errorf("unknown severity %q", value)
	}
	return sev, nil
}

// Alert is a government emergency alert. ID is assigned by the store when
// empty and is immutable afterwards. Issuer is optional, every other field
// is required.
type Alert struct {
	ID        string
	Severity  Severity
	Message   string
	Region    string
	Timestamp string
	Issuer    string
}

// NewAlert builds an alert stamped with the current local time. The store
// assigns the ID on save.
func NewAlert(severity Severity, message, region, issuer string) Alert {
	return Alert{
		Severity:  severity,
		Message:   message,
		Region:    region,
		Timestamp: time.Now().Format(TimestampLayout),
		Issuer:    issuer,
	}
}

func (a Alert) IsCritical() bool {
	return a.Severity == SeverityCritical
}

func (a Alert) IsSevereOrHigher() bool {
	return a.Severity.Rank() >= SeveritySevere.Rank()
}
