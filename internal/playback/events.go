package playback

// Emitter delivers playback events to the surrounding environment.
// Subscribers are invoked synchronously, in registration order, on
// the tick goroutine.
type Emitter struct {
	pause []func(bool)
}

// NewEmitter creates an emitter with no subscribers.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// OnPause registers a callback for pause events.
func (e *Emitter) OnPause(fn func(paused bool)) {
	e.pause = append(e.pause, fn)
}

// EmitPause notifies all pause subscribers.
func (e *Emitter) EmitPause(paused bool) {
	for _, fn := range e.pause {
		fn(paused)
	}
}
