package reactive

// linkID is a handle into the system's link arena.
type linkID int32

const nilLink linkID = -1

// link is an edge from a source (signal or computed) to a target (computed or
// effect). It sits in two lists at once: the source's targets and the
// target's sources.
type link struct {
	source source
	target target

	prevTarget, nextTarget linkID
	prevSource, nextSource linkID
}

// targetList is held by sources.
type targetList struct {
	head, tail linkID
}

// sourceList is held by targets. index enforces one link per source.
type sourceList struct {
	head, tail linkID
	index      map[source]linkID
}

func newTargetList() targetList {
	return targetList{head: nilLink, tail: nilLink}
}

func newSourceList() sourceList {
	return sourceList{head: nilLink, tail: nilLink}
}

type source interface {
	targets() *targetList
}

type target interface {
	sources() *sourceList
	markDirty()
}

// SignalAware is implemented by every node a ReactiveSystem hands out.
type SignalAware interface {
	isSignalAware()
}
