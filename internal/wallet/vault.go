package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Vault errors.
var (
	ErrVaultExists   = errors.New("vault already exists")
	ErrVaultNotFound = errors.New("vault not found")
)

// VaultFileName is the file holding the encrypted mnemonic.
const VaultFileName = "wallet.vault"

const vaultVersion = 1

// vaultFile is the on-disk JSON format of the vault.
type vaultFile struct {
	Version           int       `json:"version"`
	CreatedAt         time.Time `json:"created_at"`
	EncryptedMnemonic []byte    `json:"encrypted_mnemonic"`
}

// Vault stores one mnemonic encrypted with a password.
type Vault struct {
	path string
}

// OpenVault returns the vault in dir, creating the directory if needed.
// The vault file itself is created by Create.
func OpenVault(dir string) (*Vault, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	return &Vault{path: filepath.Join(dir, VaultFileName)}, nil
}

// Path returns the vault file path.
func (v *Vault) Path() string { return v.path }

// Exists reports whether the vault file is present.
func (v *Vault) Exists() bool {
	_, err := os.Stat(v.path)
	return err == nil
}

// Create encrypts mnemonic and writes a new vault file.
func (v *Vault) Create(mnemonic string, password []byte, params EncryptionParams) error {
	if v.Exists() {
		return fmt.Errorf("%w: %s", ErrVaultExists, v.path)
	}
	mnemonic = NormalizeMnemonic(mnemonic)
	if err := ValidateMnemonic(mnemonic); err != nil {
		return err
	}
	encrypted, err := Encrypt([]byte(mnemonic), password, params)
	if err != nil {
		return fmt.Errorf("encrypt mnemonic: %w", err)
	}
	return v.write(&vaultFile{
		Version:           vaultVersion,
		CreatedAt:         time.Now().UTC(),
		EncryptedMnemonic: encrypted,
	})
}

// Load decrypts and returns the mnemonic.
func (v *Vault) Load(password []byte) (string, error) {
	vf, err := v.read()
	if err != nil {
		return "", err
	}
	plain, err := Decrypt(vf.EncryptedMnemonic, password)
	if err != nil {
		return "", fmt.Errorf("decrypt vault: %w", err)
	}
	defer zero(plain)
	return string(plain), nil
}

// Delete removes the vault file.
func (v *Vault) Delete() error {
	if !v.Exists() {
		return fmt.Errorf("%w: %s", ErrVaultNotFound, v.path)
	}
	return os.Remove(v.path)
}

func (v *Vault) write(vf *vaultFile) error {
	data, err := json.MarshalIndent(vf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal vault: %w", err)
	}
	if err := os.WriteFile(v.path, data, 0600); err != nil {
		return fmt.Errorf("write vault: %w", err)
	}
	return nil
}

func (v *Vault) read() (*vaultFile, error) {
	data, err := os.ReadFile(v.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrVaultNotFound, v.path)
	}
	if err != nil {
		return nil, fmt.Errorf("read vault: %w", err)
	}
	var vf vaultFile
	if err := json.Unmarshal(data, &vf); err != nil {
		return nil, fmt.Errorf("parse vault: %w", err)
	}
	if vf.Version != vaultVersion {
		return nil, fmt.Errorf("unsupported vault version: %d", vf.Version)
	}
	return &vf, nil
}
