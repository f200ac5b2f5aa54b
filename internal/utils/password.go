package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Supported digest algorithms
const (
	AlgorithmArgon2id = "argon2id"
	AlgorithmBCrypt   = "bcrypt"
)

const (
	argon2SaltLength = 16
	argon2KeyLength  = 32
)

var errMalformedDigest = errors.New("malformed password digest")

// Argon2Params are the argon2id cost parameters
type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
}

// PasswordHasher produces salted password digests. Verify recognises both argon2id and bcrypt
// digests regardless of the algorithm configured for new hashes.
type PasswordHasher struct {
	algorithm  string
	bcryptCost int
	argon2     Argon2Params
}

// NewPasswordHasher creates a hasher for the given algorithm
func NewPasswordHasher(algorithm string, bcryptCost int, params Argon2Params) *PasswordHasher {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &PasswordHasher{
		algorithm:  algorithm,
		bcryptCost: bcryptCost,
		argon2:     params,
	}
}

// Hash hashes a password with a fresh random salt
func (h *PasswordHasher) Hash(password string) (string, error) {
	if h.algorithm == AlgorithmBCrypt {
		bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
		if err != nil {
			return "", fmt.Errorf("failed to hash password: %w", err)
		}
		return string(bytes), nil
	}

	salt := make([]byte, argon2SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	p := h.argon2
	key := argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, argon2KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Iterations, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify compares a password with a stored digest
func (h *PasswordHasher) Verify(password, digest string) bool {
	switch {
	case strings.HasPrefix(digest, "$argon2id$"):
		ok, err := verifyArgon2id(password, digest)
		return err == nil && ok
	case strings.HasPrefix(digest, "$2"):
		return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
	default:
		return false
	}
}

func verifyArgon2id(password, digest string) (bool, error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 {
		return false, errMalformedDigest
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, errMalformedDigest
	}

	var p Argon2Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return false, errMalformedDigest
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, errMalformedDigest
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return false, errMalformedDigest
	}

	got := argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
