package repository

import (
	"context"
	"testing"
	"time"

	"github.com/mkraiem/go-smartcity-alerts/internal/models"
)

func setupTestDB(t *testing.T) *SQLiteDB {
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	return db
}

func testIncident() *models.Incident {
	return &models.Incident{
		Type:        "FIRE",
		Description: "Smoke reported in apartment block",
		Location:    "Ariana",
		ReportedBy:  "citizen-42",
		Status:      models.StatusReported,
		Priority:    3,
		ReportedAt:  time.Now(),
	}
}

func TestSQLiteDB_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	incident := testIncident()

	if err := db.Create(ctx, incident); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if incident.ID == 0 {
		t.Fatal("expected generated id")
	}

	got, err := db.GetByID(ctx, incident.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected incident, got nil")
	}
	if got.Description != incident.Description {
		t.Errorf("expected description %q, got %q", incident.Description, got.Description)
	}
	if got.Status != models.StatusReported {
		t.Errorf("expected status REPORTED, got %s", got.Status)
	}
}

func TestSQLiteDB_GetByIDAbsent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	got, err := db.GetByID(context.Background(), 999)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for unknown id, got %+v", got)
	}
}

func TestSQLiteDB_Update(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	incident := testIncident()
	if err := db.Create(ctx, incident); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	incident.Status = models.StatusInProgress
	incident.AssignedTo = "unit-7"

	updated, err := db.Update(ctx, incident)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !updated {
		t.Error("expected update to affect a row")
	}

	got, err := db.GetByID(ctx, incident.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.StatusInProgress || got.AssignedTo != "unit-7" {
		t.Errorf("update not applied: %+v", got)
	}
}

func TestSQLiteDB_UpdateUnknownID(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	incident := testIncident()
	incident.ID = 12345

	updated, err := db.Update(context.Background(), incident)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated {
		t.Error("expected no rows affected for unknown id")
	}
}

func TestSQLiteDB_Delete(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	incident := testIncident()
	if err := db.Create(ctx, incident); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	removed, err := db.Delete(ctx, incident.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !removed {
		t.Error("expected delete to affect a row")
	}

	removed, err = db.Delete(ctx, incident.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if removed {
		t.Error("expected second delete to affect nothing")
	}
}

func TestSQLiteDB_ListByStatus(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	statuses := []models.IncidentStatus{
		models.StatusReported,
		models.StatusReported,
		models.StatusResolved,
	}
	for _, status := range statuses {
		incident := testIncident()
		incident.Status = status
		if err := db.Create(ctx, incident); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	reported, err := db.ListByStatus(ctx, models.StatusReported)
	if err != nil {
		t.Fatalf("ListByStatus failed: %v", err)
	}
	if len(reported) != 2 {
		t.Errorf("expected 2 reported incidents, got %d", len(reported))
	}

	resolved, err := db.ListByStatus(ctx, models.StatusResolved)
	if err != nil {
		t.Fatalf("ListByStatus failed: %v", err)
	}
	if len(resolved) != 1 {
		t.Errorf("expected 1 resolved incident, got %d", len(resolved))
	}
}

func TestSQLiteDB_ListHighPriority(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	for _, priority := range []int{1, 2, 3, 4, 5} {
		incident := testIncident()
		incident.Priority = priority
		if err := db.Create(ctx, incident); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	high, err := db.ListHighPriority(ctx)
	if err != nil {
		t.Fatalf("ListHighPriority failed: %v", err)
	}
	if len(high) != 2 {
		t.Fatalf("expected 2 high-priority incidents, got %d", len(high))
	}
	for _, i := range high {
		if !i.IsHighPriority() {
			t.Errorf("incident %d with priority %d is not high priority", i.ID, i.Priority)
		}
	}
}

func TestSQLiteDB_ListOrdersByReportedAtDesc(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		incident := testIncident()
		incident.ReportedAt = base.Add(time.Duration(i) * time.Minute)
		if err := db.Create(ctx, incident); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	incidents, err := db.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(incidents) != 3 {
		t.Fatalf("expected 3 incidents, got %d", len(incidents))
	}
	for i := 1; i < len(incidents); i++ {
		if incidents[i].ReportedAt.After(incidents[i-1].ReportedAt) {
			t.Error("expected incidents ordered newest first")
		}
	}
}
