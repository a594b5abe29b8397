// Package ident mints block identities and style class names.
package ident

import (
	"crypto/rand"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// ClassPrefix namespaces generated class names so they never collide with
// host page styles.
const ClassPrefix = "mb"

// BlockID is an opaque identity of a structural node.
type BlockID string

const randomClassLen = 10

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Allocator mints identities. Zero value is ready to use.
type Allocator struct {
	fallback atomic.Uint64
}

// Default is the process wide allocator.
var Default = &Allocator{}

// NewBlockID returns a new time ordered identity. Never fails.
func (a *Allocator) NewBlockID() BlockID {
	if id, err := uuid.NewV7(); err == nil {
		return BlockID(id.String())
	}
	// entropy source is broken, timestamp plus process counter is still unique
	// within a document
	n := a.fallback.Add(1)
	return BlockID(strconv.FormatInt(time.Now().UnixNano(), 36) + "-" + strconv.FormatUint(n, 36))
}

// NewClassName returns deterministic name for non empty seed and random one
// otherwise.
func (a *Allocator) NewClassName(seed string) string {
	if len(seed) > 0 {
		return ClassPrefix + "-" + strconv.FormatUint(xxhash.Sum64String(seed), 36)
	}

	buf := make([]byte, randomClassLen)
	if _, err := rand.Read(buf); err != nil {
		n := a.fallback.Add(1)
		return ClassPrefix + "-" + strconv.FormatInt(time.Now().UnixNano(), 36) + strconv.FormatUint(n, 36)
	}
	var sb strings.Builder
	sb.Grow(len(ClassPrefix) + 1 + randomClassLen)
	sb.WriteString(ClassPrefix)
	sb.WriteByte('-')
	for _, b := range buf {
		sb.WriteByte(alphabet[int(b)%len(alphabet)])
	}
	return sb.String()
}

// NewBlockID mints identity using Default allocator.
func NewBlockID() BlockID {
	return Default.NewBlockID()
}

// NewClassName generates class name using Default allocator.
func NewClassName(seed string) string {
	return Default.NewClassName(seed)
}
