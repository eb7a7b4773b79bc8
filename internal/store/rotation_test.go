package store

import (
	"testing"

	"github.com/enkhbat/rota/internal/model"
)

func TestRotationGetAbsent(t *testing.T) {
	db := setupTestDB(t)
	rs := NewRotationStore(db)

	got, err := rs.Get("cook")
	if err != nil {
		t.Fatalf("get rotation: %v", err)
	}
	if got != nil {
		t.Error("expected nil for unconfigured rotation")
	}
}

func TestRotationUpsertAndGet(t *testing.T) {
	db := setupTestDB(t)
	ms := NewMemberStore(db)
	ds := NewDutyStore(db)
	rs := NewRotationStore(db)

	a := mustMember(t, ms, "Anu", model.RoleAdmin)
	b := mustMember(t, ms, "Bold", model.RoleMember)
	c := mustMember(t, ms, "Chono", model.RoleMember)
	mustDuty(t, ds, "cook", "Cook dinner")

	if err := rs.Upsert("cook", "2026-03-10", []int64{c.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("upsert rotation: %v", err)
	}

	rot, err := rs.Get("cook")
	if err != nil {
		t.Fatalf("get rotation: %v", err)
	}
	if rot == nil {
		t.Fatal("expected rotation")
	}
	if rot.StartDate != "2026-03-10" {
		t.Errorf("StartDate = %q, want %q", rot.StartDate, "2026-03-10")
	}
	want := []int64{c.ID, a.ID, b.ID}
	if len(rot.UserOrder) != len(want) {
		t.Fatalf("len(UserOrder) = %d, want %d", len(rot.UserOrder), len(want))
	}
	for i, id := range want {
		if rot.UserOrder[i] != id {
			t.Errorf("UserOrder[%d] = %d, want %d", i, rot.UserOrder[i], id)
		}
	}
}

func TestRotationUpsertReplacesOrder(t *testing.T) {
	db := setupTestDB(t)
	ms := NewMemberStore(db)
	ds := NewDutyStore(db)
	rs := NewRotationStore(db)

	a := mustMember(t, ms, "Anu", model.RoleAdmin)
	b := mustMember(t, ms, "Bold", model.RoleMember)
	mustDuty(t, ds, "clean", "Clean kitchen")

	if err := rs.Upsert("clean", "2026-01-01", []int64{a.ID, b.ID}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := rs.Upsert("clean", "2026-02-01", []int64{b.ID}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	rot, err := rs.Get("clean")
	if err != nil {
		t.Fatalf("get rotation: %v", err)
	}
	if rot.StartDate != "2026-02-01" {
		t.Errorf("StartDate = %q, want %q", rot.StartDate, "2026-02-01")
	}
	if len(rot.UserOrder) != 1 || rot.UserOrder[0] != b.ID {
		t.Errorf("UserOrder = %v, want [%d]", rot.UserOrder, b.ID)
	}

	rotations, err := rs.List()
	if err != nil {
		t.Fatalf("list rotations: %v", err)
	}
	if len(rotations) != 1 {
		t.Errorf("len(rotations) = %d, want 1", len(rotations))
	}
}

func TestRotationUpsertRejectsEmptyOrder(t *testing.T) {
	db := setupTestDB(t)
	ds := NewDutyStore(db)
	rs := NewRotationStore(db)

	mustDuty(t, ds, "trash", "Take out trash")

	if err := rs.Upsert("trash", "2026-01-01", nil); err == nil {
		t.Error("expected error for empty user order")
	}
}
