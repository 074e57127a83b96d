package reactive

// arena stores every link of a system. Freed slots are chained through
// nextSource and reused before the slice grows.
type arena struct {
	links []link
	free  linkID
	live  int
}

func newArena() arena {
	return arena{free: nilLink}
}

func (a *arena) alloc() linkID {
	a.live++
	if a.free != nilLink {
		id := a.free
		a.free = a.links[id].nextSource
		return id
	}
	a.links = append(a.links, link{})
	return linkID(len(a.links) - 1)
}

func (a *arena) release(id linkID) {
	a.live--
	a.links[id] = link{
		prevTarget: nilLink,
		nextTarget: nilLink,
		prevSource: nilLink,
		nextSource: a.free,
	}
	a.free = id
}

// link records that t read s during its current run. A pair is linked at
// most once.
func (rs *ReactiveSystem) link(s source, t target) {
	sl := t.sources()
	if _, ok := sl.index[s]; ok {
		return
	}
	if sl.index == nil {
		sl.index = map[source]linkID{}
	}

	id := rs.arena.alloc()
	tl := s.targets()
	l := &rs.arena.links[id]
	l.source, l.target = s, t

	l.prevSource, l.nextSource = sl.tail, nilLink
	if sl.tail != nilLink {
		rs.arena.links[sl.tail].nextSource = id
	} else {
		sl.head = id
	}
	sl.tail = id

	l.prevTarget, l.nextTarget = tl.tail, nilLink
	if tl.tail != nilLink {
		rs.arena.links[tl.tail].nextTarget = id
	} else {
		tl.head = id
	}
	tl.tail = id

	sl.index[s] = id
}

// unlinkSources detaches t from everything it read and returns the links to
// the arena.
func (rs *ReactiveSystem) unlinkSources(t target) {
	sl := t.sources()
	for id := sl.head; id != nilLink; {
		l := &rs.arena.links[id]
		next := l.nextSource

		tl := l.source.targets()
		if l.prevTarget != nilLink {
			rs.arena.links[l.prevTarget].nextTarget = l.nextTarget
		} else {
			tl.head = l.nextTarget
		}
		if l.nextTarget != nilLink {
			rs.arena.links[l.nextTarget].prevTarget = l.prevTarget
		} else {
			tl.tail = l.prevTarget
		}

		rs.arena.release(id)
		id = next
	}
	sl.head, sl.tail = nilLink, nilLink
	clear(sl.index)
}

// notifyTargets calls markDirty on every target of s. The next handle is
// read before each call since a target may relink during the walk.
func (rs *ReactiveSystem) notifyTargets(s source) {
	for id := s.targets().head; id != nilLink; {
		l := rs.arena.links[id]
		next := l.nextTarget
		l.target.markDirty()
		id = next
	}
}

// LiveLinks reports how many dependency edges currently exist.
func (rs *ReactiveSystem) LiveLinks() int {
	return rs.arena.live
}

func countLinks(rs *ReactiveSystem, head linkID, sourceSide bool) int {
	n := 0
	for id := head; id != nilLink; n++ {
		if sourceSide {
			id = rs.arena.links[id].nextSource
		} else {
			id = rs.arena.links[id].nextTarget
		}
	}
	return n
}
