// Package semaphore implements a dynamic-capacity counting semaphore.
//
// Stock semaphores (including golang.org/x/sync/semaphore.Weighted)
// assume capacity only grows, or that shrinking means discarding waiters.
// The scan manager needs to lower the concurrent-scan limit while
// permits are already held, without cancelling in-flight scans and
// without losing queued waiters — grounded on
// original_source/src/sync/dynamic_semaphore.rs and spec.md §4.2/§9.
package semaphore

import "sync"

// Dynamic is a semaphore whose capacity can be raised or lowered at
// runtime. Acquire never takes a permit while inUse >= capacity; after
// capacity is lowered below the permits already held, inUse stays above
// it until enough of them are released. A capacity of 0 means unlimited
// (Acquire never blocks).
type Dynamic struct {
	mu       sync.Mutex
	cond     *sync.Cond
	capacity int // 0 == unlimited
	inUse    int
}

// NewDynamic returns a Dynamic semaphore with the given initial capacity.
// A capacity of 0 means unlimited.
func NewDynamic(capacity int) *Dynamic {
	d := &Dynamic{capacity: capacity}
	d.cond = sync.NewCond(&d.mu)
	return d
}

// Acquire blocks until a permit is available, then takes it.
func (d *Dynamic) Acquire() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for d.capacity != 0 && d.inUse >= d.capacity {
		d.cond.Wait()
	}
	d.inUse++
}

// Release returns a permit. If capacity was lowered while the permit was
// outstanding such that available+inUse would exceed the new capacity,
// the permit is silently forgotten instead of returned to the pool.
func (d *Dynamic) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inUse--
	d.cond.Signal()
}

// SetCapacity atomically changes the capacity. Lowering it does not
// cancel outstanding permits; it only blocks new admissions until inUse
// drops below the new capacity. Raising it admits waiters immediately.
func (d *Dynamic) SetCapacity(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.capacity = n
	d.cond.Broadcast()
}

// Capacity returns the current nominal capacity (0 == unlimited).
func (d *Dynamic) Capacity() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.capacity
}

// InUse returns the current number of outstanding permits.
func (d *Dynamic) InUse() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inUse
}

// AvailablePermits returns max(capacity-inUse, 0); for unlimited
// capacity it returns -1 (undefined/not applicable).
func (d *Dynamic) AvailablePermits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.capacity == 0 {
		return -1
	}
	if avail := d.capacity - d.inUse; avail > 0 {
		return avail
	}
	return 0
}
