package alertstore

import (
	"encoding/xml"
	"os"
	"path/filepath"

	"github.com/mkraiem/go-smartcity-alerts/internal/models"
)

// Namespace qualifies every element of the alert document. External readers
// match elements by (namespace, local name), so it is part of the on-disk
// compatibility contract.
const Namespace = "http://smartcity.com/alert"

// Codec maps between alert collections and the namespaced XML document, and
// owns the document file on disk. Field order inside each alert element is
// fixed: id, severity, message, region, timestamp, issuer.
type Codec struct {
	path string
}

func NewCodec(path string) *Codec {
	return &Codec{path: path}
}

func (c *Codec) Path() string {
	return c.path
}

// Marshalling uses a dedicated wire struct per direction. Outbound elements
// carry plain local names with a single xmlns on the root; inbound fields are
// matched namespace-qualified so any prefix choice in the document decodes
// the same way.
type xmlAlertsOut struct {
	XMLName xml.Name      `xml:"alerts"`
	Xmlns   string        `xml:"xmlns,attr"`
	Alerts  []xmlAlertOut `xml:"alert"`
}

type xmlAlertOut struct {
	ID        string `xml:"id"`
	Severity  string `xml:"severity"`
	Message   string `xml:"message"`
	Region    string `xml:"region"`
	Timestamp string `xml:"timestamp"`
	Issuer    string `xml:"issuer,omitempty"`
}

type xmlAlertsIn struct {
	XMLName xml.Name     `xml:"http://smartcity.com/alert alerts"`
	Alerts  []xmlAlertIn `xml:"http://smartcity.com/alert alert"`
}

type xmlAlertIn struct {
	ID        string `xml:"http://smartcity.com/alert id"`
	Severity  string `xml:"http://smartcity.com/alert severity"`
	Message   string `xml:"http://smartcity.com/alert message"`
	Region    string `xml:"http://smartcity.com/alert region"`
	Timestamp string `xml:"http://smartcity.com/alert timestamp"`
	Issuer    string `xml:"http://smartcity.com/alert issuer"`
}

// Encode serializes the alerts in input order. Output is deterministic for
// identical input; an empty issuer is omitted rather than emitted empty.
func (c *Codec) Encode(alerts []models.Alert) ([]byte, error) {
	doc := xmlAlertsOut{
		Xmlns:  Namespace,
		Alerts: make([]xmlAlertOut, 0, len(alerts)),
	}
	for _, a := range alerts {
		doc.Alerts = append(doc.Alerts, xmlAlertOut{
			ID:        a.ID,
			Severity:  a.Severity.String(),
			Message:   a.Message,
			Region:    a.Region,
			Timestamp: a.Timestamp,
			Issuer:    a.Issuer,
		})
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}

	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	out = append(out, '\n')
	return out, nil
}

// Decode parses a namespaced alert document. A required field that is
// missing or empty, or an unknown severity token, yields a ValidationError
// naming the field and the alert's position in the document.
func (c *Codec) Decode(data []byte) ([]models.Alert, error) {
	var doc xmlAlertsIn
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}

	alerts := make([]models.Alert, 0, len(doc.Alerts))
	for i, raw := range doc.Alerts {
		pos := i + 1
		required := []struct {
			field string
			value string
		}{
			{"id", raw.ID},
			{"severity", raw.Severity},
			{"message", raw.Message},
			{"region", raw.Region},
			{"timestamp", raw.Timestamp},
		}
		for _, r := range required {
			if r.value == "" {
				return nil, &ValidationError{Field: r.field, Pos: pos, Msg: "required field is missing"}
			}
		}

		severity, err := models.ParseSeverity(raw.Severity)
		if err != nil {
			return nil, &ValidationError{Field: "severity", Pos: pos, Msg: err.Error()}
		}

		alerts = append(alerts, models.Alert{
			ID:        raw.ID,
			Severity:  severity,
			Message:   raw.Message,
			Region:    raw.Region,
			Timestamp: raw.Timestamp,
			Issuer:    raw.Issuer,
		})
	}

	return alerts, nil
}

// WriteFile encodes the alerts and atomically replaces the document: the
// bytes land in a temp file in the same directory which is then renamed over
// the target, so a concurrent reader sees either the old document or the new
// one in full, never a torn write.
func (c *Codec) WriteFile(alerts []models.Alert) error {
	data, err := c.Encode(alerts)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, ".alerts-*.xml")
	if err != nil {
		return &PersistenceError{Op: "write", Path: c.path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &PersistenceError{Op: "write", Path: c.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &PersistenceError{Op: "write", Path: c.path, Err: err}
	}

	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return &PersistenceError{Op: "rename", Path: c.path, Err: err}
	}
	return nil
}

// ReadFile parses the current document. Read failures surface as
// PersistenceError, decode failures as ValidationError.
func (c *Codec) ReadFile() ([]models.Alert, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, &PersistenceError{Op: "read", Path: c.path, Err: err}
	}
	return c.Decode(data)
}
