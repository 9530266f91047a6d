package cow

import "unicode/utf8"

// exclusiveBytes is the copy-on-write gate. It either proves this handle
// is the sole referent of its block (compare-and-swap the count 1 -> 0,
// then immediately restore 1) or splits off a private copy preserving the
// current free capacity, then returns the writable byte region. Every
// in-place mutation funnels through here. If a concurrent clone or drop
// makes the swap fail, the fallback is one extra allocation, never a wait.
func (s *String) exclusiveBytes() []byte {
	if s.b.TryExclusive() {
		// The count must never rest at 0 while this handle lives.
		s.b.ReleaseExclusive()
	} else {
		fresh := New(s.String(), s.Cap()-s.len)
		s.Drop()
		*s = fresh
	}
	if debugChecks {
		assertf(s.b.Refs() == 1, "cow: gate left refcount %d", s.b.Refs())
	}
	return s.b.MutableBytes()
}

// Reserve guarantees space for at least additional more bytes. Growth is
// amortized: the new capacity is the larger of 1.5x the current capacity
// and the exact requirement, so repeated small appends reallocate
// O(log n) times. Panics if the target capacity overflows int.
func (s *String) Reserve(additional int) {
	if additional <= s.Cap()-s.len {
		return
	}
	required := s.Cap() + additional
	amortized := s.Cap() + s.Cap()/2
	newCap := max(amortized, required)
	if required < s.Cap() || newCap <= s.Cap() {
		panic("cow: capacity overflow")
	}
	fresh := New(s.String(), newCap-s.len)
	s.Drop()
	*s = fresh
}

// Push appends one character. An invalid rune encodes as utf8.RuneError,
// keeping the committed content valid UTF-8.
func (s *String) Push(r rune) {
	n := utf8.RuneLen(r)
	if n < 0 {
		r = utf8.RuneError
		n = utf8.RuneLen(utf8.RuneError)
	}
	s.Reserve(n)
	buf := s.exclusiveBytes()
	utf8.EncodeRune(buf[s.len:], r)
	s.len += n
}

// PushString appends the bytes of t.
func (s *String) PushString(t string) {
	s.Reserve(len(t))
	buf := s.exclusiveBytes()
	copy(buf[s.len:], t)
	s.len += len(t)
}

// Pop removes and returns the last character; the second result is false
// when the content is empty. No exclusivity is needed: shrinking only
// moves this handle's committed length and never writes shared bytes.
func (s *String) Pop() (rune, bool) {
	if s.len == 0 {
		return 0, false
	}
	r, n := utf8.DecodeLastRune(s.Bytes())
	s.len -= n
	return r, true
}

// SetLen overrides the committed length. Contract: n stays within the
// block capacity and lands on a UTF-8 boundary of the buffer content.
// Checked only when debugChecks is enabled.
func (s *String) SetLen(n int) {
	if debugChecks {
		assertf(n >= 0 && n <= s.Cap(), "cow: SetLen(%d) outside capacity %d", n, s.Cap())
		if n < s.len {
			assertf(utf8.RuneStart(s.b.Bytes()[n]), "cow: SetLen(%d) splits a rune", n)
		}
	}
	s.len = n
}

// ExtendRunes appends a sequence of characters, reserving once up front
// for the one-byte-per-rune lower bound.
func (s *String) ExtendRunes(rs []rune) {
	s.Reserve(len(rs))
	for _, r := range rs {
		s.Push(r)
	}
}

// ExtendStrings appends each string in order.
func (s *String) ExtendStrings(ss []string) {
	for _, t := range ss {
		s.PushString(t)
	}
}

// Extend is the variadic convenience form of ExtendStrings.
func (s *String) Extend(ss ...string) {
	s.ExtendStrings(ss)
}
