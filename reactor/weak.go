package reactor

import (
	"sync"
	"weak"
)

// notifierRegistry maps small integer handles to weak references to each
// Reactor's Notifier. Adapted from the teacher's registry.go id->weak.Pointer
// map, trimmed of ring-buffer scavenging: explicit removal from
// Reactor.Close is this domain's only removal event, so there is nothing
// left to scavenge. Unlike a bare weak.Pointer held directly, a lookup here
// reports a Notifier gone the instant Close removes its entry, not whenever
// the garbage collector eventually reclaims it — weak.Pointer.Value only
// turns nil once collection has actually happened, which Close does not
// force.
var notifierRegistry = struct {
	mu     sync.RWMutex
	data   map[uint64]weak.Pointer[Notifier]
	nextID uint64
}{data: make(map[uint64]weak.Pointer[Notifier]), nextID: 1}

func registerNotifier(n *Notifier) uint64 {
	notifierRegistry.mu.Lock()
	defer notifierRegistry.mu.Unlock()
	id := notifierRegistry.nextID
	notifierRegistry.nextID++
	notifierRegistry.data[id] = weak.Make(n)
	return id
}

func deregisterNotifier(id uint64) {
	notifierRegistry.mu.Lock()
	defer notifierRegistry.mu.Unlock()
	delete(notifierRegistry.data, id)
}

func lookupNotifier(id uint64) *Notifier {
	notifierRegistry.mu.RLock()
	wp, ok := notifierRegistry.data[id]
	notifierRegistry.mu.RUnlock()
	if !ok {
		return nil
	}
	return wp.Value()
}

// WeakNotifier is a back-reference to a Reactor's Notifier that does not
// keep the Reactor alive and reports itself gone once the Reactor has been
// closed. It addresses the notifier through notifierRegistry by handle
// rather than holding a weak.Pointer directly, so that "gone" reflects
// Reactor.Close rather than GC timing.
type WeakNotifier struct {
	id uint64
}

func newWeakNotifier(id uint64) *WeakNotifier {
	return &WeakNotifier{id: id}
}

// Notify wakes the reactor if it still exists. Returns false if the
// reactor has been closed (or, failing that, actually collected).
func (w *WeakNotifier) Notify() (ok bool, err error) {
	n := lookupNotifier(w.id)
	if n == nil {
		return false, nil
	}
	return true, n.Notify()
}
