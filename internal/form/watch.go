package form

// Snapshot is a point-in-time copy of a Form's state. It shares nothing with
// the Form.
type Snapshot struct {
	Fields        Fields
	Errors        map[string]string
	IsDirty       bool
	Processing    bool
	WasSuccessful bool
}

// Error returns the error recorded for field in the snapshot.
func (s Snapshot) Error(field string) string {
	return s.Errors[field]
}

type watcher struct {
	id uint64
	fn func(Snapshot)
}

// Watch registers fn to receive a snapshot immediately and then after every
// change to the form, including changes to errors and submission flags. fn
// runs synchronously on the goroutine that made the change, and snapshots
// arrive in the order the changes were made. fn may read the form but must
// not modify it. The returned function unregisters fn.
func (f *Form) Watch(fn func(Snapshot)) (cancel func()) {
	f.notifyMu.Lock()
	defer f.notifyMu.Unlock()

	f.watchMu.Lock()
	id := f.nextID
	f.nextID++
	f.watchers = append(f.watchers, watcher{id: id, fn: fn})
	f.watchMu.Unlock()

	fn(f.Snapshot())

	return func() {
		f.watchMu.Lock()
		defer f.watchMu.Unlock()
		for i, w := range f.watchers {
			if w.id == id {
				f.watchers = append(f.watchers[:i], f.watchers[i+1:]...)
				return
			}
		}
	}
}

func (f *Form) watched() bool {
	f.watchMu.Lock()
	defer f.watchMu.Unlock()
	return len(f.watchers) > 0
}

func (f *Form) notify(snap Snapshot) {
	f.watchMu.Lock()
	watchers := make([]watcher, len(f.watchers))
	copy(watchers, f.watchers)
	f.watchMu.Unlock()

	for i, w := range watchers {
		if i == 0 {
			w.fn(snap)
			continue
		}
		// Each watcher gets its own copy so one cannot mutate another's view.
		w.fn(Snapshot{
			Fields:        f.clone(snap.Fields),
			Errors:        copyErrors(snap.Errors),
			IsDirty:       snap.IsDirty,
			Processing:    snap.Processing,
			WasSuccessful: snap.WasSuccessful,
		})
	}
}
