// Package hash fingerprints evidence content on a bounded pool so large
// uploads cannot starve the lifecycle paths of CPU.
package hash

import (
	"context"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
	"golang.org/x/sync/semaphore"
)

const (
	SHA256     = "SHA-256"
	SHA512     = "SHA-512"
	SHA3_256   = "SHA3-256"
	BLAKE2b256 = "BLAKE2B-256"
)

const (
	// DefaultChunkSize is how much content is hashed between cancellation checks.
	DefaultChunkSize = 1 << 20
	defaultWorkers   = 4
)

var (
	// ErrUnsupportedAlgorithm is returned for algorithm names not in Algorithms.
	ErrUnsupportedAlgorithm = errors.New("unsupported hash algorithm")
	// ErrTooLarge is returned when content exceeds the engine's byte limit.
	ErrTooLarge = errors.New("content exceeds size limit")
)

var constructors = map[string]func() hash.Hash{
	SHA256:   sha256.New,
	SHA512:   sha512.New,
	SHA3_256: sha3.New256,
	BLAKE2b256: func() hash.Hash {
		h, _ := blake2b.New256(nil)
		return h
	},
}

// Algorithms lists the supported algorithm names.
func Algorithms() []string {
	return []string{SHA256, SHA512, SHA3_256, BLAKE2b256}
}

// Canonical maps a user-supplied name such as "sha256" onto its canonical
// form.
func Canonical(name string) (string, error) {
	key := strings.ToUpper(strings.NewReplacer("-", "", "_", "", " ", "").Replace(name))
	for _, alg := range Algorithms() {
		if strings.ReplaceAll(alg, "-", "") == key {
			return alg, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
}

// Result is a computed fingerprint.
type Result struct {
	Algorithm string
	Digest    string
	Size      int64
}

// Engine computes digests with at most Workers concurrent hash jobs.
type Engine struct {
	algorithm string
	chunkSize int
	maxBytes  int64
	sem       *semaphore.Weighted
}

type Option func(*Engine)

// WithWorkers bounds the number of concurrent hash jobs.
func WithWorkers(n int64) Option {
	return func(e *Engine) {
		if n > 0 {
			e.sem = semaphore.NewWeighted(n)
		}
	}
}

// WithMaxBytes rejects content larger than n. Zero means unlimited.
func WithMaxBytes(n int64) Option {
	return func(e *Engine) { e.maxBytes = n }
}

func WithChunkSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.chunkSize = n
		}
	}
}

// New returns an engine whose default algorithm is algorithm.
func New(algorithm string, opts ...Option) (*Engine, error) {
	alg, err := Canonical(algorithm)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		algorithm: alg,
		chunkSize: DefaultChunkSize,
		sem:       semaphore.NewWeighted(defaultWorkers),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Algorithm is the engine's default algorithm.
func (e *Engine) Algorithm() string {
	return e.algorithm
}

// Digest hashes r with the default algorithm.
func (e *Engine) Digest(ctx context.Context, r io.Reader) (Result, error) {
	return e.DigestWith(ctx, e.algorithm, r)
}

// DigestWith hashes r with algorithm and returns the upper-case hex digest.
// It waits for a pool slot and checks ctx between chunks.
func (e *Engine) DigestWith(ctx context.Context, algorithm string, r io.Reader) (Result, error) {
	alg, err := Canonical(algorithm)
	if err != nil {
		return Result{}, err
	}
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return Result{}, err
	}
	defer e.sem.Release(1)

	h := constructors[alg]()
	buf := make([]byte, e.chunkSize)
	var size int64
	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		n, readErr := r.Read(buf)
		if n > 0 {
			size += int64(n)
			if e.maxBytes > 0 && size > e.maxBytes {
				return Result{}, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, e.maxBytes)
			}
			h.Write(buf[:n])
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return Result{}, fmt.Errorf("read content: %w", readErr)
		}
	}
	return Result{
		Algorithm: alg,
		Digest:    strings.ToUpper(hex.EncodeToString(h.Sum(nil))),
		Size:      size,
	}, nil
}
