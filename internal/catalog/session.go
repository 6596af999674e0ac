package catalog

// Session keeps the state behind one open listing page and recomputes the
// listing whenever its inputs change. It is not safe for concurrent use;
// each caller owns its own Session.
type Session struct {
	reconciler *Reconciler
	snapshot   Snapshot
	url        URLParams
	criteria   Criteria
	navigated  bool
	dirty      bool
	listing    Listing
}

func NewSession(r *Reconciler) *Session {
	return &Session{
		reconciler: r,
		criteria:   DefaultCriteria(),
		dirty:      true,
	}
}

// SetSnapshot replaces the catalog the session evaluates against.
func (s *Session) SetSnapshot(snapshot Snapshot) {
	s.snapshot = snapshot
	s.dirty = true
}

// Navigate records the page URL. The URL category seeds the criteria on the
// first navigation and whenever the URL itself changes.
func (s *Session) Navigate(url URLParams) Criteria {
	seed := !s.navigated || url != s.url
	s.url = url
	s.navigated = true
	return s.update(Origins{Previous: s.criteria, URL: url, InitialLoad: seed})
}

// Apply folds one user edit into the criteria.
func (s *Session) Apply(edit Edit) Criteria {
	return s.update(Origins{Previous: s.criteria, URL: s.url, Edit: &edit})
}

func (s *Session) update(o Origins) Criteria {
	next := s.reconciler.Reconcile(o)
	if !next.Equal(s.criteria) {
		s.criteria = next
		s.dirty = true
	}
	return s.criteria.Clone()
}

func (s *Session) Criteria() Criteria {
	return s.criteria.Clone()
}

// Dirty reports whether the next Listing call recomputes.
func (s *Session) Dirty() bool {
	return s.dirty
}

// Listing returns the current result set, evaluating only when something changed.
func (s *Session) Listing() Listing {
	if s.dirty {
		s.listing = List(s.snapshot, s.criteria)
		s.dirty = false
	}
	return s.listing
}
