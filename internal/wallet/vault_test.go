package wallet

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestVault(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "testnet")
	v, err := OpenVault(dir)
	if err != nil {
		t.Fatalf("OpenVault: %v", err)
	}
	if v.Exists() {
		t.Fatal("fresh vault should not exist")
	}
	if _, err := v.Load([]byte("pw")); !errors.Is(err, ErrVaultNotFound) {
		t.Errorf("Load(missing) error = %v, want ErrVaultNotFound", err)
	}

	if err := v.Create("  "+testMnemonic+"\n", []byte("pw"), fastParams()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	info, err := os.Stat(v.Path())
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("vault permissions = %o, want 600", perm)
	}

	got, err := v.Load([]byte("pw"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != testMnemonic {
		t.Errorf("Load() = %q, want normalized mnemonic", got)
	}
	if _, err := v.Load([]byte("nope")); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("Load(wrong) error = %v, want ErrWrongPassword", err)
	}
	if err := v.Create(testMnemonic, []byte("pw"), fastParams()); !errors.Is(err, ErrVaultExists) {
		t.Errorf("Create twice error = %v, want ErrVaultExists", err)
	}

	if err := v.Delete(); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := v.Delete(); !errors.Is(err, ErrVaultNotFound) {
		t.Errorf("Delete twice error = %v, want ErrVaultNotFound", err)
	}
}

func TestVault_RejectsInvalidMnemonic(t *testing.T) {
	v, _ := OpenVault(t.TempDir())
	if err := v.Create("twelve random words", []byte("pw"), fastParams()); !errors.Is(err, ErrInvalidMnemonic) {
		t.Errorf("Create(invalid) error = %v, want ErrInvalidMnemonic", err)
	}
	if v.Exists() {
		t.Error("vault written for an invalid mnemonic")
	}
}
