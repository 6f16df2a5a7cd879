// Package securefile writes files atomically and, when a passphrase is configured,
// wraps them in an Argon2id + XChaCha20-Poly1305 envelope.
package securefile

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// ErrInvalidPasswordOrCorrupt is returned when an envelope cannot be opened.
var ErrInvalidPasswordOrCorrupt = errors.New("invalid password or corrupted file")

const (
	envelopeVersion = 1
	saltLen         = 16
	envVar          = "ALTMASK_ENV"
)

// Envelope is the on-disk form of an encrypted file.
type Envelope struct {
	Version int `json:"version"`

	ArgonTime    uint32 `json:"argon_time"`
	ArgonMemory  uint32 `json:"argon_memory_kib"`
	ArgonThreads uint8  `json:"argon_threads"`
	ArgonKeyLen  uint32 `json:"argon_key_len"`

	Salt       string `json:"salt_b64"`
	Nonce      string `json:"nonce_b64"`
	Ciphertext string `json:"ct_b64"`
}

type KDF struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
}

var DefaultKDF = KDF{Time: 2, Memory: 64 * 1024, Threads: 1, KeyLen: 32}

type Options struct {
	KDF           KDF
	FilePerm      os.FileMode
	DirectoryPerm os.FileMode
	// AAD must be identical on read and write.
	AAD []byte
}

func (o Options) withDefaults() Options {
	if o.KDF.KeyLen == 0 {
		o.KDF = DefaultKDF
	}
	if o.FilePerm == 0 {
		o.FilePerm = 0o600
	}
	if o.DirectoryPerm == 0 {
		o.DirectoryPerm = 0o700
	}
	return o
}

// Seal encrypts plain under password and returns the JSON envelope.
func Seal(plain, password []byte, opt Options) ([]byte, error) {
	o := opt.withDefaults()

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("rand salt: %w", err)
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("rand nonce: %w", err)
	}

	key := argon2.IDKey(password, salt, o.KDF.Time, o.KDF.Memory, o.KDF.Threads, o.KDF.KeyLen)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("aead: %w", err)
	}

	env := Envelope{
		Version:      envelopeVersion,
		ArgonTime:    o.KDF.Time,
		ArgonMemory:  o.KDF.Memory,
		ArgonThreads: o.KDF.Threads,
		ArgonKeyLen:  o.KDF.KeyLen,
		Salt:         base64.StdEncoding.EncodeToString(salt),
		Nonce:        base64.StdEncoding.EncodeToString(nonce),
		Ciphertext:   base64.StdEncoding.EncodeToString(aead.Seal(nil, nonce, plain, o.AAD)),
	}
	return json.MarshalIndent(env, "", "  ")
}

// Open reverses Seal.
func Open(sealed, password []byte, opt Options) ([]byte, error) {
	var env Envelope
	if err := json.Unmarshal(sealed, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != envelopeVersion {
		return nil, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}

	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil {
		return nil, fmt.Errorf("decode salt: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(env.Nonce)
	if err != nil {
		return nil, fmt.Errorf("decode nonce: %w", err)
	}
	ct, err := base64.StdEncoding.DecodeString(env.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}

	key := argon2.IDKey(password, salt, env.ArgonTime, env.ArgonMemory, env.ArgonThreads, env.ArgonKeyLen)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("aead: %w", err)
	}
	plain, err := aead.Open(nil, nonce, ct, opt.AAD)
	if err != nil {
		return nil, ErrInvalidPasswordOrCorrupt
	}
	return plain, nil
}

// WriteEncryptedJSON marshals v, seals it and writes it atomically to path.
func WriteEncryptedJSON[T any](path string, v T, password []byte, opt Options) error {
	o := opt.withDefaults()
	if err := os.MkdirAll(filepath.Dir(path), o.DirectoryPerm); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	plain, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	sealed, err := Seal(plain, password, o)
	if err != nil {
		return err
	}
	return AtomicWriteFile(path, sealed, o.FilePerm)
}

func ReadEncryptedJSON[T any](path string, password []byte, opt Options) (T, error) {
	var out T
	b, err := os.ReadFile(path)
	if err != nil {
		return out, fmt.Errorf("read file: %w", err)
	}
	plain, err := Open(b, password, opt)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(plain, &out); err != nil {
		return out, fmt.Errorf("unmarshal json: %w", err)
	}
	return out, nil
}

// AtomicWriteFile writes data to a sibling temp file, syncs it and renames it over path.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	_ = os.Remove(tmp)

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("open tmp: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write tmp: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync tmp: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close tmp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// ConfigPathCandidates returns the places app's file may live, in priority order.
// ALTMASK_ENV=local|develop adds a subfolder so dev data never mixes with real wallets.
func ConfigPathCandidates(app, filename string) ([]string, error) {
	if app == "" {
		return nil, errors.New("app must not be empty")
	}
	if filename == "" {
		return nil, errors.New("filename must not be empty")
	}
	envFolder, err := EnvFolder()
	if err != nil {
		return nil, err
	}

	var paths []string
	seen := map[string]bool{}
	add := func(dir string) {
		if envFolder != "" {
			dir = filepath.Join(dir, envFolder)
		}
		p := filepath.Join(dir, filename)
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	if realHome := os.Getenv("SNAP_REAL_HOME"); realHome != "" {
		add(filepath.Join(realHome, ".config", app))
	}
	if home := os.Getenv("HOME"); home != "" {
		add(filepath.Join(home, ".config", app))
	}
	if dir, err := os.UserConfigDir(); err == nil {
		add(filepath.Join(dir, app))
	} else if len(paths) == 0 {
		return nil, fmt.Errorf("UserConfigDir: %w", err)
	}
	return paths, nil
}

// ResolvePath picks the first existing candidate, else the first candidate.
func ResolvePath(app, filename string) (string, error) {
	cands, err := ConfigPathCandidates(app, filename)
	if err != nil {
		return "", err
	}
	for _, p := range cands {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return cands[0], nil
}

func EnvFolder() (string, error) {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(envVar)))
	switch raw {
	case "", "prod", "production":
		return "", nil
	case "local":
		return "local", nil
	case "dev", "develop", "development":
		return "develop", nil
	default:
		return "", fmt.Errorf("invalid %s %q (allowed: local, develop, empty)", envVar, raw)
	}
}
