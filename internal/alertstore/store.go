package alertstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mkraiem/go-smartcity-alerts/internal/models"
)

const idPrefix = "ALERT-"

// Store is the authoritative in-memory index of alerts and the single entry
// point for mutation. Every mutation holds one exclusive lock across both the
// index update and the document rewrite, so the two never diverge and
// concurrent writes cannot persist a stale snapshot. Read-only lookups take
// the shared lock and see only fully applied mutations.
type Store struct {
	mu     sync.RWMutex
	alerts map[string]models.Alert
	nextID int
	codec  *Codec
}

// NewStore loads the existing document into the index, or seeds and persists
// the demonstration records when no document exists yet. An existing but
// unreadable or invalid document is a fatal error: silently reseeding would
// discard prior writes.
func NewStore(codec *Codec) (*Store, error) {
	s := &Store{
		alerts: make(map[string]models.Alert),
		nextID: 1,
		codec:  codec,
	}

	if err := os.MkdirAll(filepath.Dir(codec.Path()), 0o755); err != nil {
		return nil, &PersistenceError{Op: "write", Path: codec.Path(), Err: err}
	}

	if _, err := os.Stat(codec.Path()); err != nil {
		if !os.IsNotExist(err) {
			return nil, &PersistenceError{Op: "read", Path: codec.Path(), Err: err}
		}
		for _, a := range seedAlerts() {
			s.alerts[a.ID] = a
			s.advanceCounter(a.ID)
		}
		if err := s.persistLocked(); err != nil {
			return nil, err
		}
		return s, nil
	}

	alerts, err := codec.ReadFile()
	if err != nil {
		return nil, fmt.Errorf("loading alert document: %w", err)
	}
	for _, a := range alerts {
		s.alerts[a.ID] = a
		s.advanceCounter(a.ID)
	}
	return s, nil
}

// advanceCounter moves the id counter one past the alert's numeric suffix.
// Ids outside the ALERT-<n> format never feed the counter.
func (s *Store) advanceCounter(id string) {
	suffix, ok := strings.CutPrefix(id, idPrefix)
	if !ok {
		return
	}
	n, err := strconv.Atoi(suffix)
	if err != nil || n <= 0 {
		return
	}
	if n >= s.nextID {
		s.nextID = n + 1
	}
}

// Save inserts or overwrites the alert and rewrites the document before
// acknowledging. An empty ID gets the next generated one; an empty timestamp
// is stamped with the current time. On persistence failure the index change
// is rolled back and the error returned.
func (s *Store) Save(a models.Alert) (models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = fmt.Sprintf("%s%d", idPrefix, s.nextID)
		s.nextID++
	}
	if a.Timestamp == "" {
		a.Timestamp = time.Now().Format(models.TimestampLayout)
	}

	prev, existed := s.alerts[a.ID]
	s.alerts[a.ID] = a

	if err := s.persistLocked(); err != nil {
		if existed {
			s.alerts[a.ID] = prev
		} else {
			delete(s.alerts, a.ID)
		}
		return models.Alert{}, err
	}
	return a, nil
}

// Delete removes the alert and rewrites the document. It reports whether a
// record was removed; a missing id is a normal outcome, not an error.
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.alerts[id]
	if !ok {
		return false, nil
	}
	delete(s.alerts, id)

	if err := s.persistLocked(); err != nil {
		s.alerts[id] = prev
		return false, err
	}
	return true, nil
}

// FindByID is a pure index read.
func (s *Store) FindByID(id string) (models.Alert, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.alerts[id]
	return a, ok
}

// FindAll returns a snapshot copy of all alerts. Order is not significant.
func (s *Store) FindAll() []models.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Count reports the number of live alerts in the index.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts)
}

func (s *Store) DocumentPath() string {
	return s.codec.Path()
}

func (s *Store) snapshotLocked() []models.Alert {
	out := make([]models.Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		out = append(out, a)
	}
	return out
}

func (s *Store) persistLocked() error {
	return s.codec.WriteFile(s.snapshotLocked())
}

// seedAlerts returns the demonstration records persisted on first start.
func seedAlerts() []models.Alert {
	now := time.Now().Format(models.TimestampLayout)
	return []models.Alert{
		{
			ID:        idPrefix + "1",
			Severity:  models.SeverityCritical,
			Message:   "Inondations majeures suite aux fortes pluies. Évitez les déplacements et montez aux étages.",
			Region:    "Nabeul",
			Timestamp: now,
			Issuer:    "Protection Civile",
		},
		{
			ID:        idPrefix + "2",
			Severity:  models.SeveritySevere,
			Message:   "Vague de chaleur extrême. Températures dépassant 48°C à l'ombre.",
			Region:    "Tozeur",
			Timestamp: now,
			Issuer:    "INM (Météo Tunisie)",
		},
		{
			ID:        idPrefix + "3",
			Severity:  models.SeverityWarning,
			Message:   "Vents de sable violents réduisant la visibilité à moins de 50m. Prudence sur l'autoroute.",
			Region:    "Gabès - Autoroute A1",
			Timestamp: now,
			Issuer:    "Garde Nationale",
		},
		{
			ID:        idPrefix + "4",
			Severity:  models.SeverityCritical,
			Message:   "Fuite de gaz industrielle détectée. Zone industrielle fermée. Portez des masques.",
			Region:    "Sfax - Zone Thyna",
			Timestamp: now,
			Issuer:    "ONAS",
		},
		{
			ID:        idPrefix + "5",
			Severity:  models.SeverityInfo,
			Message:   "Travaux de maintenance sur le Pont Rades-La Goulette. Circulation ralentie.",
			Region:    "Tunis - La Goulette",
			Timestamp: now,
			Issuer:    "Ministère de l'Équipement",
		},
	}
}
