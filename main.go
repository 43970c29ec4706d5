package main

import (
	"fmt"

	"github.com/kevinxiao27/lww-set/lww"
	"github.com/sanity-io/litter"
)

func main() {
	clock := lww.NewLogicalClock(0)
	replica1 := lww.New[string](lww.WithClock(clock))
	replica2 := lww.New[string](lww.WithClock(clock))

	replica1.Add("apple")
	replica1.Add("banana")
	replica2.Add("cherry")
	replica2.Remove("apple")
	replica1.Remove("cherry")

	snap1, snap2 := replica1.Snapshot(), replica2.Snapshot()
	if err := replica1.Merge(snap2); err != nil {
		fmt.Println("merge failed:", err)
		return
	}
	if err := replica2.Merge(snap1); err != nil {
		fmt.Println("merge failed:", err)
		return
	}

	litter.Dump(replica1.Snapshot())

	result1 := replica1.Values()
	result2 := replica2.Values()
	fmt.Printf("Result: %v\n", result1)
	fmt.Printf("Result: %v\n", result2)

	if litter.Sdump(result1) == litter.Sdump(result2) {
		fmt.Println("Replicas converged")
	} else {
		fmt.Println("Replicas differ")
	}
}
