package store

import (
	"testing"
	"time"

	"github.com/enkhbat/rota/internal/model"
)

func TestCreateIfAbsentFirstWriterWins(t *testing.T) {
	db := setupTestDB(t)
	ms := NewMemberStore(db)
	ds := NewDutyStore(db)
	as := NewAssignmentStore(db)

	a := mustMember(t, ms, "Anu", model.RoleMember)
	b := mustMember(t, ms, "Bold", model.RoleMember)
	mustDuty(t, ds, "cook", "Cook dinner")

	first, created, err := as.CreateIfAbsent("cook", "2026-01-05", a.ID)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	if !created {
		t.Error("first create should report an insert")
	}
	if first.AssignedMemberID != a.ID {
		t.Errorf("assignee = %d, want %d", first.AssignedMemberID, a.ID)
	}
	if first.Status != model.StatusPending {
		t.Errorf("status = %q, want %q", first.Status, model.StatusPending)
	}
	if first.NotifyState != model.NotifyUnclaimed {
		t.Errorf("notify_state = %q, want %q", first.NotifyState, model.NotifyUnclaimed)
	}

	// A second create with a different assignee must return the original row.
	second, created, err := as.CreateIfAbsent("cook", "2026-01-05", b.ID)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if created {
		t.Error("second create should not report an insert")
	}
	if second.ID != first.ID {
		t.Errorf("second create made a new row: id %d vs %d", second.ID, first.ID)
	}
	if second.AssignedMemberID != a.ID {
		t.Errorf("assignee overwritten: got %d, want %d", second.AssignedMemberID, a.ID)
	}

	all, err := as.ListByDate("2026-01-05")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("len(assignments) = %d, want 1", len(all))
	}
}

func TestMarkDoneIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ms := NewMemberStore(db)
	ds := NewDutyStore(db)
	as := NewAssignmentStore(db)

	a := mustMember(t, ms, "Anu", model.RoleMember)
	mustDuty(t, ds, "trash", "Take out trash")

	created, _, err := as.CreateIfAbsent("trash", "2026-01-05", a.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	t1 := time.Date(2026, 1, 5, 18, 0, 0, 0, time.UTC)
	changed, err := as.MarkDone(created.ID, t1)
	if err != nil {
		t.Fatalf("mark done: %v", err)
	}
	if !changed {
		t.Error("first mark done should transition the row")
	}

	after, _ := as.GetByID(created.ID)
	if !after.Done() || after.DoneAt == nil {
		t.Fatal("expected done with timestamp")
	}
	firstDoneAt := *after.DoneAt

	// Second call is a no-op and must not move done_at.
	t2 := t1.Add(3 * time.Hour)
	changed, err = as.MarkDone(created.ID, t2)
	if err != nil {
		t.Fatalf("second mark done: %v", err)
	}
	if changed {
		t.Error("second mark done should affect no rows")
	}

	again, _ := as.GetByID(created.ID)
	if !again.DoneAt.Equal(firstDoneAt) {
		t.Errorf("done_at moved: %v vs %v", again.DoneAt, firstDoneAt)
	}
}

func TestClaimTakesUnclaimedAndFailed(t *testing.T) {
	db := setupTestDB(t)
	ms := NewMemberStore(db)
	ds := NewDutyStore(db)
	as := NewAssignmentStore(db)

	a := mustMember(t, ms, "Anu", model.RoleMember)
	mustDuty(t, ds, "cook", "Cook dinner")
	mustDuty(t, ds, "clean", "Clean kitchen")

	cook, _, _ := as.CreateIfAbsent("cook", "2026-01-05", a.ID)
	if _, _, err := as.CreateIfAbsent("clean", "2026-01-05", a.ID); err != nil {
		t.Fatalf("create: %v", err)
	}

	now := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

	n, err := as.Claim("2026-01-05", "run-1", now)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if n != 2 {
		t.Errorf("claimed %d rows, want 2", n)
	}

	claimed, err := as.ListClaimed("run-1")
	if err != nil {
		t.Fatalf("list claimed: %v", err)
	}
	if len(claimed) != 2 {
		t.Fatalf("len(claimed) = %d, want 2", len(claimed))
	}
	for _, c := range claimed {
		if c.NotifyState != model.NotifyClaimed {
			t.Errorf("notify_state = %q, want claimed", c.NotifyState)
		}
		if c.NotifiedAt == nil {
			t.Error("notified_at not stamped")
		}
	}

	// A concurrent second run finds nothing left on the date.
	n, err = as.Claim("2026-01-05", "run-2", now)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if n != 0 {
		t.Errorf("second claim took %d rows, want 0", n)
	}

	// Release one member's rows; they become candidates again.
	released, err := as.ReleaseClaim("run-1", a.ID)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if released != 2 {
		t.Errorf("released %d rows, want 2", released)
	}

	got, _ := as.GetByID(cook.ID)
	if got.NotifyState != model.NotifyFailed {
		t.Errorf("notify_state = %q, want failed", got.NotifyState)
	}
	if got.NotifiedAt != nil {
		t.Error("notified_at should be cleared on release")
	}

	n, err = as.Claim("2026-01-05", "run-3", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("third claim: %v", err)
	}
	if n != 2 {
		t.Errorf("retry claim took %d rows, want 2", n)
	}
}

func TestClaimScopedToDate(t *testing.T) {
	db := setupTestDB(t)
	ms := NewMemberStore(db)
	ds := NewDutyStore(db)
	as := NewAssignmentStore(db)

	a := mustMember(t, ms, "Anu", model.RoleMember)
	mustDuty(t, ds, "cook", "Cook dinner")

	if _, _, err := as.CreateIfAbsent("cook", "2026-01-05", a.ID); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := as.CreateIfAbsent("cook", "2026-01-06", a.ID); err != nil {
		t.Fatalf("create: %v", err)
	}

	n, err := as.Claim("2026-01-05", "run-1", time.Now())
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if n != 1 {
		t.Errorf("claimed %d rows, want 1", n)
	}
}
