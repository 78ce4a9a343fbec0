package reactor

import (
	"github.com/joeycumines/go-corexec/corecurrent"
	"github.com/joeycumines/go-corexec/corerr"
)

var currentRegistry = corecurrent.New[*Reactor]()

// EnterCurrent installs r as the reactor driving the calling goroutine for
// the duration of fn, so sources constructed inside fn can resolve it via
// RegisterCurrent without carrying an explicit *Reactor reference of their
// own.
func (r *Reactor) EnterCurrent(fn func()) {
	currentRegistry.Enter(r, fn)
}

// CurrentReactor returns the reactor installed by the innermost enclosing
// EnterCurrent call on this goroutine, if any.
func CurrentReactor() (*Reactor, bool) {
	return currentRegistry.Get()
}

// RegisterCurrent registers source with CurrentReactor.
func RegisterCurrent(source Source, readMask, writeMask IOEvents) (*Registration, error) {
	r, ok := CurrentReactor()
	if !ok {
		return nil, corerr.New("reactor.RegisterCurrent", corerr.ReactorGone)
	}
	return r.Register(source, readMask, writeMask)
}
