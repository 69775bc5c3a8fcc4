// Package execution runs one function per peer or per rank.
package execution

import (
	"sync"

	"github.com/lsds/halo/srcs/go/plan"
	"github.com/lsds/halo/srcs/go/utils"
)

// each runs f on every element concurrently and collects all failures.
func each[T any](xs []T, f func(T) error) error {
	errs := make([]error, len(xs))
	var wg sync.WaitGroup
	wg.Add(len(xs))
	for i, x := range xs {
		go func() {
			defer wg.Done()
			errs[i] = f(x)
		}()
	}
	wg.Wait()
	return utils.MergeErrors(errs, "par")
}

// Par runs f for every peer concurrently.
func Par(ps plan.PeerList, f func(plan.PeerID) error) error { return each(ps, f) }

// ParRanks runs f for every rank concurrently.
func ParRanks(ranks []int, f func(int) error) error { return each(ranks, f) }
