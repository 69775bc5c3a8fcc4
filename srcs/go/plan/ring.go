package plan

import (
	"errors"
	"fmt"
)

var (
	ErrSingleProcess = errors.New("at least 2 processes are required")
	errInvalidRank   = errors.New("invalid rank")
)

// Neighbors of a rank on the ring.
type Neighbors struct {
	Pred int
	Succ int
}

func checkRank(rank, size int) error {
	if size < 2 {
		return ErrSingleProcess
	}
	if rank < 0 || rank >= size {
		return fmt.Errorf("%w: %d of %d", errInvalidRank, rank, size)
	}
	return nil
}

// Ring returns the modular neighbours (rank-1) mod size and (rank+1) mod size.
func Ring(rank, size int) (Neighbors, error) {
	if err := checkRank(rank, size); err != nil {
		return Neighbors{}, err
	}
	return Neighbors{
		Pred: (rank - 1 + size) % size,
		Succ: (rank + 1) % size,
	}, nil
}

// Mirror returns size-1-rank, which is the only neighbour of either rank when size is 2.
func Mirror(rank, size int) (int, error) {
	if err := checkRank(rank, size); err != nil {
		return 0, err
	}
	return size - 1 - rank, nil
}
