package we

type Snapshot[S any] struct {
	Id       SliceId
	Revision Revision
	Type     string
	State    *S
}

// Initialized reports whether any action has been recorded for the instance.
func (s *Snapshot[S]) Initialized() bool {
	return s.Revision != InitialRevision
}
