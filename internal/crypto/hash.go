package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

const phcAlgorithm = "argon2id"

// Upper bounds accepted when reading a stored hash. A record carrying larger
// cost parameters is rejected instead of being run.
const (
	maxMemoryKiB  = 1024 * 1024
	maxIterations = 16
	maxKeyLength  = 128
)

var (
	ErrInvalidHashFormat   = errors.New("invalid encoded hash format")
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
)

// HashParams configures the Argon2id hashing parameters.
type HashParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultHashParams returns the cost parameters used for new passwords.
func DefaultHashParams() HashParams {
	return HashParams{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// passwordHash is a decoded argon2id record.
type passwordHash struct {
	params HashParams
	salt   []byte
	key    []byte
}

func (h passwordHash) derive(password string) []byte {
	p := h.params
	return argon2.IDKey([]byte(password), h.salt, p.Iterations, p.Memory, p.Parallelism, uint32(len(h.key)))
}

// String renders h as $argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt>$<key>.
func (h passwordHash) String() string {
	enc := base64.RawStdEncoding
	var b strings.Builder
	b.WriteString("$" + phcAlgorithm)
	b.WriteString("$v=" + strconv.Itoa(argon2.Version))
	b.WriteString("$m=" + strconv.FormatUint(uint64(h.params.Memory), 10))
	b.WriteString(",t=" + strconv.FormatUint(uint64(h.params.Iterations), 10))
	b.WriteString(",p=" + strconv.FormatUint(uint64(h.params.Parallelism), 10))
	b.WriteString("$" + enc.EncodeToString(h.salt))
	b.WriteString("$" + enc.EncodeToString(h.key))
	return b.String()
}

// HashPassword hashes password with a random salt and DefaultHashParams.
func HashPassword(password string) (string, error) {
	return newPasswordHash(password, DefaultHashParams())
}

func newPasswordHash(password string, p HashParams) (string, error) {
	h := passwordHash{params: p, salt: make([]byte, p.SaltLength), key: make([]byte, p.KeyLength)}
	if _, err := rand.Read(h.salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	h.key = h.derive(password)
	return h.String(), nil
}

// VerifyPassword reports whether password matches the encoded hash, using the
// cost parameters stored in the hash. Keys are compared in constant time.
func VerifyPassword(password, encoded string) (bool, error) {
	h, err := parsePasswordHash(encoded)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(h.key, h.derive(password)) == 1, nil
}

var (
	burnOnce sync.Once
	burnHash string
)

// BurnVerify runs one full verification against a throwaway hash. Login calls
// it for unknown emails so that both failure paths take the same time.
func BurnVerify(password string) {
	burnOnce.Do(func() {
		burnHash, _ = HashPassword("taskly-dummy-password")
	})
	_, _ = VerifyPassword(password, burnHash)
}

func parsePasswordHash(encoded string) (passwordHash, error) {
	rest, ok := strings.CutPrefix(encoded, "$"+phcAlgorithm+"$")
	if !ok {
		return passwordHash{}, ErrInvalidHashFormat
	}
	fields := strings.Split(rest, "$")
	if len(fields) != 4 {
		return passwordHash{}, ErrInvalidHashFormat
	}

	version, ok := strings.CutPrefix(fields[0], "v=")
	if !ok {
		return passwordHash{}, ErrInvalidHashFormat
	}
	if v, err := strconv.Atoi(version); err != nil {
		return passwordHash{}, ErrInvalidHashFormat
	} else if v != argon2.Version {
		return passwordHash{}, ErrIncompatibleVersion
	}

	params, err := parseCost(fields[1])
	if err != nil {
		return passwordHash{}, err
	}

	enc := base64.RawStdEncoding
	salt, err := enc.DecodeString(fields[2])
	if err != nil || len(salt) == 0 {
		return passwordHash{}, ErrInvalidHashFormat
	}
	key, err := enc.DecodeString(fields[3])
	if err != nil || len(key) == 0 || len(key) > maxKeyLength {
		return passwordHash{}, ErrInvalidHashFormat
	}
	params.SaltLength = uint32(len(salt))
	params.KeyLength = uint32(len(key))

	return passwordHash{params: params, salt: salt, key: key}, nil
}

// parseCost reads the "m=..,t=..,p=.." segment. All three keys are required,
// in that order.
func parseCost(segment string) (HashParams, error) {
	var p HashParams
	pairs := strings.Split(segment, ",")
	if len(pairs) != 3 {
		return p, ErrInvalidHashFormat
	}

	values := make([]uint64, 3)
	for i, want := range []string{"m", "t", "p"} {
		k, v, ok := strings.Cut(pairs[i], "=")
		if !ok || k != want {
			return p, ErrInvalidHashFormat
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil || n == 0 {
			return p, ErrInvalidHashFormat
		}
		values[i] = n
	}

	if values[0] > maxMemoryKiB || values[1] > maxIterations || values[2] > 255 {
		return p, ErrInvalidHashFormat
	}
	p.Memory = uint32(values[0])
	p.Iterations = uint32(values[1])
	p.Parallelism = uint8(values[2])
	return p, nil
}
