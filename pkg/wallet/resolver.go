// Package wallet resolves logical actor identifiers to signing credentials.
// Key custody itself lives outside this service; the resolver only loads
// material that an operator provisioned into the key directory.
package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// ErrKeyNotFound is returned when no signing key exists for an actor.
var ErrKeyNotFound = errors.New("signing key not found")

// Resolver resolves a logical actor identifier to a signing key.
type Resolver interface {
	Resolve(ctx context.Context, actorID string) (*ecdsa.PrivateKey, error)
}

// DirResolver loads hex-encoded private keys from <dir>/<actorID>.key files.
type DirResolver struct {
	dir string
}

// NewDirResolver creates a resolver backed by a key directory.
func NewDirResolver(dir string) *DirResolver {
	return &DirResolver{dir: dir}
}

func (r *DirResolver) Resolve(_ context.Context, actorID string) (*ecdsa.PrivateKey, error) {
	if actorID == "" || strings.ContainsAny(actorID, `/\.`) {
		return nil, fmt.Errorf("invalid actor id %q", actorID)
	}

	data, err := os.ReadFile(filepath.Join(r.dir, actorID+".key"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to read key for %s: %w", actorID, err)
	}

	key, err := crypto.HexToECDSA(strings.TrimSpace(strings.TrimPrefix(string(data), "0x")))
	if err != nil {
		return nil, fmt.Errorf("failed to parse key for %s: %w", actorID, err)
	}
	return key, nil
}

// StaticResolver is an in-memory resolver, primarily for tests.
type StaticResolver map[string]*ecdsa.PrivateKey

func (r StaticResolver) Resolve(_ context.Context, actorID string) (*ecdsa.PrivateKey, error) {
	key, ok := r[actorID]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return key, nil
}
