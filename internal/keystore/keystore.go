// Package keystore loads the feeder's signing identity from an encrypted
// JSON keyfile.
package keystore

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

const (
	kdfScrypt        = "scrypt"
	cipherSecretbox  = "nacl-secretbox"
	defaultScryptN   = 1 << 15
	defaultScryptR   = 8
	defaultScryptP   = 1
	secretboxKeySize = 32
	nonceSize        = 24
)

// keyfile is the on-disk format: scrypt-derived key, secretbox-sealed
// ed25519 seed.
type keyfile struct {
	Address string `json:"address"`
	Crypto  struct {
		KDF        string `json:"kdf"`
		N          int    `json:"n"`
		R          int    `json:"r"`
		P          int    `json:"p"`
		Salt       string `json:"salt"`
		Cipher     string `json:"cipher"`
		Nonce      string `json:"nonce"`
		Ciphertext string `json:"ciphertext"`
	} `json:"crypto"`
}

// Identity is the process-wide signing identity. Read-only after Load.
type Identity struct {
	address string
	pub     ed25519.PublicKey
	priv    ed25519.PrivateKey
}

// Address returns the 0x-prefixed hex encoding of the public key.
func (id *Identity) Address() string { return id.address }

// PublicKey returns the raw 32-byte public key.
func (id *Identity) PublicKey() []byte { return append([]byte(nil), id.pub...) }

// Sign signs msg with the identity's private key.
func (id *Identity) Sign(msg []byte) []byte {
	return ed25519.Sign(id.priv, msg)
}

// Load decrypts the keyfile at path with the passphrase.
func Load(path, passphrase string) (*Identity, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keyfile: %w", err)
	}

	var kf keyfile
	if err := json.Unmarshal(raw, &kf); err != nil {
		return nil, fmt.Errorf("parse keyfile: %w", err)
	}
	if kf.Crypto.KDF != kdfScrypt {
		return nil, fmt.Errorf("keyfile: unsupported kdf %q", kf.Crypto.KDF)
	}
	if kf.Crypto.Cipher != cipherSecretbox {
		return nil, fmt.Errorf("keyfile: unsupported cipher %q", kf.Crypto.Cipher)
	}

	salt, err := hex.DecodeString(kf.Crypto.Salt)
	if err != nil {
		return nil, fmt.Errorf("keyfile salt: %w", err)
	}
	nonceBytes, err := hex.DecodeString(kf.Crypto.Nonce)
	if err != nil {
		return nil, fmt.Errorf("keyfile nonce: %w", err)
	}
	if len(nonceBytes) != nonceSize {
		return nil, fmt.Errorf("keyfile nonce: want %d bytes, got %d", nonceSize, len(nonceBytes))
	}
	ciphertext, err := hex.DecodeString(kf.Crypto.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("keyfile ciphertext: %w", err)
	}

	key, err := scrypt.Key([]byte(passphrase), salt, kf.Crypto.N, kf.Crypto.R, kf.Crypto.P, secretboxKeySize)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	var boxKey [secretboxKeySize]byte
	copy(boxKey[:], key)
	var nonce [nonceSize]byte
	copy(nonce[:], nonceBytes)

	seed, ok := secretbox.Open(nil, ciphertext, &nonce, &boxKey)
	if !ok {
		return nil, fmt.Errorf("keyfile: decryption failed (wrong passphrase?)")
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("keyfile: seed is %d bytes, want %d", len(seed), ed25519.SeedSize)
	}

	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	address := "0x" + hex.EncodeToString(pub)

	if kf.Address != "" && kf.Address != address {
		return nil, fmt.Errorf("keyfile: address %s does not match derived %s", kf.Address, address)
	}

	return &Identity{address: address, pub: pub, priv: priv}, nil
}

// Generate creates a fresh identity.
func Generate() (*Identity, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &Identity{
		address: "0x" + hex.EncodeToString(pub),
		pub:     pub,
		priv:    priv,
	}, nil
}

// Save writes the identity to path encrypted with the passphrase.
func Save(id *Identity, path, passphrase string) error {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}

	key, err := scrypt.Key([]byte(passphrase), salt, defaultScryptN, defaultScryptR, defaultScryptP, secretboxKeySize)
	if err != nil {
		return fmt.Errorf("derive key: %w", err)
	}
	var boxKey [secretboxKeySize]byte
	copy(boxKey[:], key)

	ciphertext := secretbox.Seal(nil, id.priv.Seed(), &nonce, &boxKey)

	var kf keyfile
	kf.Address = id.address
	kf.Crypto.KDF = kdfScrypt
	kf.Crypto.N = defaultScryptN
	kf.Crypto.R = defaultScryptR
	kf.Crypto.P = defaultScryptP
	kf.Crypto.Salt = hex.EncodeToString(salt)
	kf.Crypto.Cipher = cipherSecretbox
	kf.Crypto.Nonce = hex.EncodeToString(nonce[:])
	kf.Crypto.Ciphertext = hex.EncodeToString(ciphertext)

	raw, err := json.MarshalIndent(&kf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal keyfile: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write keyfile: %w", err)
	}
	return nil
}
