package ownership

import (
	"testing"

	"github.com/openregistry/multiasset/internal/storage"
)

func TestSnapshotRoundTrip(t *testing.T) {
	db := storage.NewMemory()

	reg := NewRegistry()
	if err := reg.Mint(alice, 1); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if err := reg.Mint(bob, 2); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if err := reg.ApproveTransfer(alice, bob, 1); err != nil {
		t.Fatalf("ApproveTransfer: %v", err)
	}

	if err := reg.SaveTo(db); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	restored := NewRegistry()
	if err := restored.Load(db); err != nil {
		t.Fatalf("Load: %v", err)
	}

	owner, err := restored.OwnerOf(1)
	if err != nil {
		t.Fatalf("OwnerOf: %v", err)
	}
	if owner != alice {
		t.Errorf("owner of 1 = %s, want %s", owner, alice)
	}
	if !restored.Exists(2) {
		t.Error("token 2 missing after restore")
	}
	if restored.Exists(3) {
		t.Error("token 3 present after restore")
	}

	// Approvals are session state and do not survive a restore.
	if got := restored.ApprovedFor(1); !got.IsZero() {
		t.Errorf("approval survived restore: %s", got)
	}
}

func TestSnapshotResaveDropsBurned(t *testing.T) {
	db := storage.NewMemory()

	reg := NewRegistry()
	if err := reg.Mint(alice, 1); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if err := reg.Mint(alice, 2); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if err := reg.SaveTo(db); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	if err := reg.Burn(alice, 2); err != nil {
		t.Fatalf("Burn: %v", err)
	}
	if err := reg.SaveTo(db); err != nil {
		t.Fatalf("resave: %v", err)
	}

	restored := NewRegistry()
	if err := restored.Load(db); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if restored.Exists(2) {
		t.Error("burned token survived resave")
	}
	if !restored.Exists(1) {
		t.Error("token 1 missing after resave")
	}
}

func TestSnapshotLoadRejectsCorruptRecord(t *testing.T) {
	db := storage.NewMemory()
	if err := db.Put(ownerKey(7), []byte{0x01, 0x02}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	reg := NewRegistry()
	if err := reg.Load(db); err == nil {
		t.Error("expected error for truncated owner record")
	}
}
