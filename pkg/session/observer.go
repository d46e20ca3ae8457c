package session

import "sync/atomic"

// Update is published after every emitted fragment and every state change.
type Update struct {
	// Fragment is the text just appended, empty for pure state changes.
	Fragment string

	Snapshot Snapshot
}

// Observer receives session updates.
type Observer interface {
	OnUpdate(Update)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Update)

// OnUpdate calls f.
func (f ObserverFunc) OnUpdate(u Update) {
	f(u)
}

// subscription forwards updates to a channel without ever blocking the read
// loop. When the buffer is full the update is dropped and counted.
type subscription struct {
	ch      chan Update
	dropped atomic.Uint64
}

func (s *subscription) OnUpdate(u Update) {
	select {
	case s.ch <- u:
	default:
		s.dropped.Add(1)
	}
}
