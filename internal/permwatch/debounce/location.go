package debounce

// Geolocation success callbacks fire continuously, so location gets a
// stricter rule than the generic duplicate window.

// AcceptOneShot evaluates a success callback of a one-shot position query.
// The first one-shot callback of the page context is accepted regardless of
// timing, provided the unload and visibility guards pass.
func (d *Debouncer) AcceptOneShot(now int64) bool {
	if !d.locationOpen(now) {
		return false
	}
	if !d.loc.firstCallSeen {
		d.loc.firstCallSeen = true
		return d.acceptLocation(now)
	}
	if d.intervalElapsed(now) {
		return d.acceptLocation(now)
	}
	return false
}

// BeginWatch registers a continuous watch and returns its handle. The
// watch's call counter starts at zero.
func (d *Debouncer) BeginWatch() WatchID {
	d.nextWatch++
	d.watches[d.nextWatch] = 0
	return d.nextWatch
}

// AcceptWatch evaluates one success callback of a continuous watch. The
// watch's first callback is exempt from the interval rule. Callbacks for
// unknown or ended watches are rejected.
func (d *Debouncer) AcceptWatch(id WatchID, now int64) bool {
	calls, ok := d.watches[id]
	if !ok {
		return false
	}
	calls++
	d.watches[id] = calls

	if !d.locationOpen(now) {
		return false
	}
	if calls == 1 || d.intervalElapsed(now) {
		return d.acceptLocation(now)
	}
	return false
}

// EndWatch forgets a watch. It never produces an accepted signal.
func (d *Debouncer) EndWatch(id WatchID) {
	delete(d.watches, id)
}

// NoteVisible records that the page became visible again at now. It never
// produces an accepted signal.
func (d *Debouncer) NoteVisible(now int64) {
	d.loc.lastVisibilityChangeAt = now
	d.loc.visibilityChanged = true
}

// MarkUnloading sets the teardown flag. It is never cleared for the life of
// the Debouncer.
func (d *Debouncer) MarkUnloading() {
	d.loc.unloading = true
}

func (d *Debouncer) Unloading() bool { return d.loc.unloading }

func (d *Debouncer) locationOpen(now int64) bool {
	if d.loc.unloading {
		return false
	}
	if d.loc.visibilityChanged && now-d.loc.lastVisibilityChangeAt < d.visibilityMs {
		return false
	}
	return true
}

// intervalElapsed is true until the first location acceptance.
func (d *Debouncer) intervalElapsed(now int64) bool {
	return !d.loc.hasAccepted || now-d.loc.lastAcceptedAt >= d.intervalMs
}

func (d *Debouncer) acceptLocation(now int64) bool {
	d.loc.lastAcceptedAt = now
	d.loc.hasAccepted = true
	return true
}
