package scene

import (
	"context"
	"errors"
	"testing"

	"github.com/havenhome/haven-core/internal/device"
)

func TestComposer_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lamp := f.newDevice(t, "usr-alice", "Lamp", device.TypeLight)
	tv := f.newDevice(t, "usr-alice", "TV", device.TypeTV)

	s, err := f.composer.Create(ctx, &Scene{OwnerID: "usr-alice", Name: "Evening"}, []Binding{
		{DeviceID: lamp.ID, TargetState: "ON", TargetValue: "40", Position: 1},
		{DeviceID: tv.ID, TargetState: "ON", Position: 2},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(s.Bindings) != 2 {
		t.Fatalf("bindings = %d, want 2", len(s.Bindings))
	}
	if s.Bindings[0].TargetValue != "40" {
		t.Errorf("TargetValue = %q, want %q", s.Bindings[0].TargetValue, "40")
	}
}

func TestComposer_Create_ForeignDeviceAbortsWholeScene(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mine := f.newDevice(t, "usr-alice", "Lamp", device.TypeLight)
	theirs := f.newDevice(t, "usr-bob", "Bob Lamp", device.TypeLight)

	_, err := f.composer.Create(ctx, &Scene{OwnerID: "usr-alice", Name: "Sneaky"}, []Binding{
		{DeviceID: mine.ID, TargetState: "ON", Position: 1},
		{DeviceID: theirs.ID, TargetState: "ON", Position: 2},
	})
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("error = %v, want ErrDeviceNotFound", err)
	}

	// All-or-nothing: neither the scene nor the valid binding persists.
	if n := f.countScenes(t, "usr-alice"); n != 0 {
		t.Errorf("scenes = %d, want 0", n)
	}
	var n int
	if err := f.db.QueryRow("SELECT COUNT(*) FROM scene_bindings").Scan(&n); err != nil {
		t.Fatalf("counting bindings: %v", err)
	}
	if n != 0 {
		t.Errorf("bindings = %d, want 0 after aborted create", n)
	}
}

func TestComposer_Create_MissingDevice(t *testing.T) {
	f := newFixture(t)

	_, err := f.composer.Create(context.Background(),
		&Scene{OwnerID: "usr-alice", Name: "Ghost"},
		[]Binding{{DeviceID: "dev-missing", TargetState: "ON"}})
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("error = %v, want ErrDeviceNotFound", err)
	}
}

func TestComposer_Create_AllowsSoftDeletedDevice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lamp := f.newDevice(t, "usr-alice", "Lamp", device.TypeLight)
	if err := f.devices.Delete(ctx, lamp.ID, "usr-alice"); err != nil {
		t.Fatalf("deleting device: %v", err)
	}

	// Composition over a soft-deleted device is allowed; execution will
	// reinstate it.
	_, err := f.composer.Create(ctx, &Scene{OwnerID: "usr-alice", Name: "Revival"},
		[]Binding{{DeviceID: lamp.ID, TargetState: "ON"}})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
}

func TestComposer_Update_ReplacesBindingSet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lamp := f.newDevice(t, "usr-alice", "Lamp", device.TypeLight)
	tv := f.newDevice(t, "usr-alice", "TV", device.TypeTV)

	s, err := f.composer.Create(ctx, &Scene{OwnerID: "usr-alice", Name: "Evening"}, []Binding{
		{DeviceID: lamp.ID, TargetState: "ON", Position: 1},
		{DeviceID: tv.ID, TargetState: "ON", Position: 2},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := f.composer.Update(ctx, s, []Binding{
		{DeviceID: tv.ID, TargetState: "OFF", Position: 1},
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(updated.Bindings) != 1 {
		t.Fatalf("bindings = %d, want 1 after replace", len(updated.Bindings))
	}
	if updated.Bindings[0].DeviceID != tv.ID || updated.Bindings[0].TargetState != "OFF" {
		t.Errorf("unexpected surviving binding: %+v", updated.Bindings[0])
	}
}

func TestComposer_Update_EmptySetClearsBindings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lamp := f.newDevice(t, "usr-alice", "Lamp", device.TypeLight)
	s, err := f.composer.Create(ctx, &Scene{OwnerID: "usr-alice", Name: "Evening"},
		[]Binding{{DeviceID: lamp.ID, TargetState: "ON"}})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := f.composer.Update(ctx, s, nil)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(updated.Bindings) != 0 {
		t.Errorf("bindings = %d, want 0 after empty replace", len(updated.Bindings))
	}
}

func TestComposer_Update_InvalidBindingKeepsOldSet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lamp := f.newDevice(t, "usr-alice", "Lamp", device.TypeLight)
	s, err := f.composer.Create(ctx, &Scene{OwnerID: "usr-alice", Name: "Evening"},
		[]Binding{{DeviceID: lamp.ID, TargetState: "ON"}})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = f.composer.Update(ctx, s, []Binding{
		{DeviceID: "dev-missing", TargetState: "ON"},
	})
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("error = %v, want ErrDeviceNotFound", err)
	}

	// The failed replace rolled back; the original binding survives.
	got, err := f.composer.Get(ctx, s.ID, "usr-alice")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got.Bindings) != 1 || got.Bindings[0].DeviceID != lamp.ID {
		t.Errorf("bindings after rollback = %+v, want original set", got.Bindings)
	}
}

func TestComposer_OwnerScoping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lamp := f.newDevice(t, "usr-alice", "Lamp", device.TypeLight)
	s, err := f.composer.Create(ctx, &Scene{OwnerID: "usr-alice", Name: "Evening"},
		[]Binding{{DeviceID: lamp.ID, TargetState: "ON"}})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := f.composer.Get(ctx, s.ID, "usr-bob"); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign Get() error = %v, want ErrNotFound", err)
	}
	if err := f.composer.Delete(ctx, s.ID, "usr-bob"); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign Delete() error = %v, want ErrNotFound", err)
	}

	stolen := *s
	stolen.OwnerID = "usr-bob"
	if _, err := f.composer.Update(ctx, &stolen, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign Update() error = %v, want ErrNotFound", err)
	}
}

func TestComposer_Delete_SoftDeletes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lamp := f.newDevice(t, "usr-alice", "Lamp", device.TypeLight)
	s, err := f.composer.Create(ctx, &Scene{OwnerID: "usr-alice", Name: "Evening"},
		[]Binding{{DeviceID: lamp.ID, TargetState: "ON"}})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := f.composer.Delete(ctx, s.ID, "usr-alice"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := f.composer.Get(ctx, s.ID, "usr-alice"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}

	// Soft delete: the row survives, flagged inactive.
	if n := f.countScenes(t, "usr-alice"); n != 1 {
		t.Errorf("scene rows = %d, want 1 (soft delete)", n)
	}
}

func TestComposer_ListDevices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lamp := f.newDevice(t, "usr-alice", "Lamp", device.TypeLight)
	tv := f.newDevice(t, "usr-alice", "TV", device.TypeTV)
	f.newDevice(t, "usr-alice", "Unbound Fan", device.TypeFan)

	s, err := f.composer.Create(ctx, &Scene{OwnerID: "usr-alice", Name: "Evening"}, []Binding{
		{DeviceID: lamp.ID, TargetState: "ON", Position: 1},
		{DeviceID: tv.ID, TargetState: "ON", Position: 2},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	devices, err := f.composer.ListDevices(ctx, s.ID, "usr-alice")
	if err != nil {
		t.Fatalf("ListDevices() error = %v", err)
	}
	if len(devices) != 2 {
		t.Errorf("ListDevices() returned %d devices, want 2", len(devices))
	}
}
