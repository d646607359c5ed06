package record

import (
	"fmt"
	"sync"
)

// Partition names one slot of the store. The set is fixed for the lifetime
// of a parse session.
type Partition string

const (
	// PartitionAST receives candidates the tree walker recognizes.
	PartitionAST Partition = "ast"
	// PartitionPreprocessor receives candidates found in the raw token stream.
	PartitionPreprocessor Partition = "preprocessor"
	// PartitionDeclaredContext receives declarative scope-wide context records.
	PartitionDeclaredContext Partition = "declared-context"
	// PartitionAnnotationContext receives TRANSLATOR annotation records.
	PartitionAnnotationContext Partition = "annotation-context"
	// PartitionCorrected receives the corrector's rewritten copies.
	PartitionCorrected Partition = "corrected"
)

// Partitions lists every slot a new store carries.
var Partitions = []Partition{
	PartitionAST,
	PartitionPreprocessor,
	PartitionDeclaredContext,
	PartitionAnnotationContext,
	PartitionCorrected,
}

// Store is an append-only arena of fixed named partitions. Each partition
// is guarded independently so unrelated producers never contend. Nothing
// is ever removed; filtering happens on snapshots at finalization.
type Store struct {
	partitions map[Partition]*partition
}

type partition struct {
	mu      sync.Mutex
	records []Candidate
}

// NewStore creates a store with all named partitions allocated.
func NewStore() *Store {
	s := &Store{partitions: make(map[Partition]*partition, len(Partitions))}
	for _, name := range Partitions {
		s.partitions[name] = &partition{}
	}
	return s
}

// Append adds a candidate to a partition. Safe for concurrent use from any
// number of producers; the critical section is a single slice append.
func (s *Store) Append(name Partition, c Candidate) error {
	p, ok := s.partitions[name]
	if !ok {
		return fmt.Errorf("append to unknown partition %q", name)
	}
	p.mu.Lock()
	p.records = append(p.records, c)
	p.mu.Unlock()
	return nil
}

// Snapshot returns a consistent copy of a partition for single-consumer
// reading. Appends made after the snapshot is taken are invisible to it.
func (s *Store) Snapshot(name Partition) []Candidate {
	p, ok := s.partitions[name]
	if !ok {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Candidate, len(p.records))
	copy(out, p.records)
	return out
}

// Len reports the current size of a partition.
func (s *Store) Len(name Partition) int {
	p, ok := s.partitions[name]
	if !ok {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.records)
}
