package id

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates opaque IDs suitable for external references.
type Generator interface {
	NewID() (string, error)
}

// UUIDGenerator issues random (v4) UUIDs.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	value, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return value.String(), nil
}

// SequenceGenerator returns ids from a fixed list, then falls back to UUIDs. Used by tests.
type SequenceGenerator struct {
	ids  []string
	next int
}

func NewSequenceGenerator(ids ...string) *SequenceGenerator {
	return &SequenceGenerator{ids: append([]string(nil), ids...)}
}

func (g *SequenceGenerator) NewID() (string, error) {
	if g.next < len(g.ids) {
		value := g.ids[g.next]
		g.next++
		return value, nil
	}
	return uuid.NewString(), nil
}
