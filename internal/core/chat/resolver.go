package chat

// resolverState is either unresolved (buffering) or resolved (identity known).
type resolverState interface {
	isResolverState()
}

type unresolved struct {
	pending []Message
}

type resolved struct {
	identity string
}

func (*unresolved) isResolverState() {}
func (*resolved) isResolverState()   {}

// Resolver classifies messages as mine or theirs. Until the local identity is
// known, incoming messages are held in arrival order. The transition to
// resolved happens once and never reverts.
type Resolver struct {
	state resolverState
}

func NewResolver() *Resolver {
	return &Resolver{state: &unresolved{}}
}

// Identity returns the resolved identity.
func (r *Resolver) Identity() (string, bool) {
	if s, ok := r.state.(*resolved); ok {
		return s.identity, true
	}
	return "", false
}

// Pending returns the number of buffered messages.
func (r *Resolver) Pending() int {
	if s, ok := r.state.(*unresolved); ok {
		return len(s.pending)
	}
	return 0
}

// Push accepts a live message. It returns the message back when it can be
// rendered now, or nil when it was buffered.
func (r *Resolver) Push(msg Message) []Message {
	switch s := r.state.(type) {
	case *unresolved:
		s.pending = append(s.pending, msg)
		return nil
	default:
		return []Message{msg}
	}
}

// Snapshot accepts a history snapshot. While unresolved the snapshot replaces
// the pending buffer and nil is returned.
func (r *Resolver) Snapshot(msgs []Message) []Message {
	switch s := r.state.(type) {
	case *unresolved:
		s.pending = append([]Message(nil), msgs...)
		return nil
	default:
		return msgs
	}
}

// Resolve moves to the resolved state and returns the drained buffer. ok is
// false when the identity was already resolved; the call is then ignored.
func (r *Resolver) Resolve(identity string) (drained []Message, ok bool) {
	s, isUnresolved := r.state.(*unresolved)
	if !isUnresolved {
		return nil, false
	}

	drained = s.pending
	s.pending = nil
	r.state = &resolved{identity: identity}
	return drained, true
}

// IsMine reports whether msg was sent by the resolved identity. It is always
// false before resolution.
func (r *Resolver) IsMine(msg Message) bool {
	id, ok := r.Identity()
	return ok && msg.Sender == id
}
