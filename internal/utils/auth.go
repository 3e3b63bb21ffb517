package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id cost parameters. Hashes embed them, so verification keeps
// working for passwords hashed before a cost bump.
const (
	argonIterations  uint32 = 1
	argonMemoryKiB   uint32 = 64 * 1024
	argonParallelism uint8  = 4
	argonSaltLen            = 16
	argonHashLen     uint32 = 32
)

var ErrPasswordMismatch = errors.New("invalid password")

// Hash derives an Argon2id hash of the password, encoded as
// argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt>$<hash> with raw-std
// base64 for the binary parts.
func Hash(password string) ([]byte, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}

	key := argon2.IDKey([]byte(password), salt,
		argonIterations, argonMemoryKiB, argonParallelism, argonHashLen)

	encoded := fmt.Sprintf("argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		argonMemoryKiB, argonIterations, argonParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))
	return []byte(encoded), nil
}

// VerifyPassword checks a password against a stored hash. The costs
// come from the hash itself, not the current constants.
func VerifyPassword(encodedHash, password string) error {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 5 || parts[0] != "argon2id" {
		return errors.New("invalid hash format")
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[2], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return errors.New("invalid hash parameters")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil {
		return errors.New("invalid salt encoding")
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return errors.New("invalid hash encoding")
	}

	got := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(want)))
	if subtle.ConstantTimeCompare(want, got) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}
