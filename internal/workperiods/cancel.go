package workperiods

import "context"

// tokenSlot issues generation-counted cancellation tokens for one logical
// request slot (the collection load, or one row's detail load). At most one
// generation is live at a time: issuing a new token cancels the previous
// one's context and bumps the generation, so a completion handler that still
// holds the old generation can tell it has been superseded.
//
// Cancellation at the transport is best effort; the guarantee lives on the
// consuming side: callers must re-check current() under the Store lock before
// mutating state. Not safe for concurrent use on its own.
type tokenSlot struct {
	gen    uint64
	cancel context.CancelFunc
}

// next cancels the live token, if any, and issues a fresh context plus the
// generation that identifies it.
func (s *tokenSlot) next(parent context.Context) (context.Context, uint64) {
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	return ctx, s.gen
}

// current reports whether gen is still the live generation.
func (s *tokenSlot) current(gen uint64) bool {
	return s.gen == gen
}

// drop cancels the live token and invalidates every outstanding generation.
func (s *tokenSlot) drop() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
}
