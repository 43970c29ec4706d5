/*
Package lww implements a state-based last-write-wins element set (LWW-Set).

A Set keeps two maps, element to timestamp, one for adds and one for removes.
Membership is derived on every query: an element is present when its add
timestamp is greater than its remove timestamp. Equal timestamps are resolved
by the set's TiePolicy, RemoveWins unless configured otherwise.

Replicas converge by exchanging Snapshots and calling Merge, which keeps the
maximum timestamp per element in each map. Nothing is ever deleted from the
maps; removed elements stay behind as tombstones.

Elements are compared with == (they are map keys) and ordered with the compare
func given to NewFunc, or cmp.Compare for New. For struct element types this
means value equality, unless the struct holds pointers.

Set does not synchronize access by itself. Use Replica when a set is shared
between goroutines.
*/
package lww
