package alertstore

import (
	"strings"

	"github.com/mkraiem/go-smartcity-alerts/internal/models"
)

// Engine answers predicate queries against the persisted alert document.
// It is stateless: every call re-reads and re-parses the file, so results
// always reflect the latest completed write rather than any in-memory state.
// Only the store writes the document; the engine is read-only.
type Engine struct {
	codec *Codec
}

func NewEngine(codec *Codec) *Engine {
	return &Engine{codec: codec}
}

// FilterBySeverity returns the alerts whose severity equals the given value
// exactly.
func (e *Engine) FilterBySeverity(severity models.Severity) ([]models.Alert, error) {
	return e.filter(func(a models.Alert) bool {
		return a.Severity == severity
	})
}

// FilterByRegion returns the alerts for the region, compared case
// insensitively.
func (e *Engine) FilterByRegion(region string) ([]models.Alert, error) {
	return e.filter(func(a models.Alert) bool {
		return strings.EqualFold(a.Region, region)
	})
}

// FilterBySeveritySet returns the alerts whose severity is any of the given
// values. An empty set selects nothing.
func (e *Engine) FilterBySeveritySet(severities ...models.Severity) ([]models.Alert, error) {
	return e.filter(func(a models.Alert) bool {
		for _, s := range severities {
			if a.Severity == s {
				return true
			}
		}
		return false
	})
}

// CriticalAlerts returns only CRITICAL alerts.
func (e *Engine) CriticalAlerts() ([]models.Alert, error) {
	return e.FilterBySeverity(models.SeverityCritical)
}

// CountBySeverity reports how many alerts in the document carry the given
// severity. A read or parse failure is returned as an error so callers can
// tell "could not compute" apart from zero.
func (e *Engine) CountBySeverity(severity models.Severity) (int, error) {
	matches, err := e.FilterBySeverity(severity)
	if err != nil {
		return 0, err
	}
	return len(matches), nil
}

// MostRecent returns the alert with the lexicographically greatest timestamp.
// Timestamps share one ISO-8601 layout, so string order is chronological
// order. Among equal timestamps the first in document order wins. The second
// return value is false when the document holds no alerts.
func (e *Engine) MostRecent() (models.Alert, bool, error) {
	alerts, err := e.codec.ReadFile()
	if err != nil {
		return models.Alert{}, false, err
	}
	if len(alerts) == 0 {
		return models.Alert{}, false, nil
	}

	latest := alerts[0]
	for _, a := range alerts[1:] {
		if a.Timestamp > latest.Timestamp {
			latest = a
		}
	}
	return latest, true, nil
}

// ValidateStructure reports whether the document parses and contains at
// least one well-formed alert element. It never returns an error; any
// failure reads as an invalid structure.
func (e *Engine) ValidateStructure() bool {
	alerts, err := e.codec.ReadFile()
	return err == nil && len(alerts) > 0
}

func (e *Engine) filter(keep func(models.Alert) bool) ([]models.Alert, error) {
	alerts, err := e.codec.ReadFile()
	if err != nil {
		return nil, err
	}

	matches := make([]models.Alert, 0, len(alerts))
	for _, a := range alerts {
		if keep(a) {
			matches = append(matches, a)
		}
	}
	return matches, nil
}
