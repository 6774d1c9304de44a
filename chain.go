package fatnav

import (
	"github.com/aligator/fatnav/checkpoint"
)

// Chain follows the allocation table from start and returns all clusters of
// the chain in order. It fails with ErrClusterChain if start is below 2, if
// the chain runs into a bad cluster or a link below 2, or if it is longer
// than the table itself. A chain with more clusters than table entries must
// revisit an entry, so the length cap doubles as cycle detection.
func (t AllocationTable) Chain(start uint32) ([]uint32, error) {
	if start < 2 {
		return nil, checkpoint.Wrapf(ErrClusterChain, "invalid start cluster %d, data clusters begin at 2", start)
	}

	var chain []uint32
	current := start

	for iterations := 0; ; iterations++ {
		if iterations >= t.Len() {
			return nil, checkpoint.Wrapf(ErrClusterChain, "chain starting at cluster %d is too long or circular", start)
		}

		chain = append(chain, current)

		entry, err := t.Entry(current)
		if err != nil {
			return nil, err
		}

		if entry.IsEOC() {
			return chain, nil
		}
		if entry.IsBad() {
			return nil, checkpoint.Wrapf(ErrClusterChain, "bad cluster %d in chain", current)
		}
		if entry.NextCluster() < 2 {
			return nil, checkpoint.Wrapf(ErrClusterChain, "invalid link from cluster %d to %d", current, entry.Value())
		}

		current = entry.NextCluster()
	}
}
