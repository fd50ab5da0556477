package gesture

// Handler reacts to emitted gestures.
type Handler interface {
	HandleGesture(Event)
}

// HandlerFunc adapts an ordinary function to the Handler interface.
type HandlerFunc func(Event)

// HandleGesture calls f(ev).
func (f HandlerFunc) HandleGesture(ev Event) { f(ev) }

// Callbacks dispatches each gesture kind to its own optional function.
// Nil callbacks are skipped.
type Callbacks struct {
	OnDoubleEyeBlink func(Event)
	OnSmile          func(Event)
	OnNodLeft        func(Event)
	OnNodRight       func(Event)
	OnLeftEyeBlink   func(Event)
	OnRightEyeBlink  func(Event)
}

// HandleGesture implements Handler.
func (c Callbacks) HandleGesture(ev Event) {
	var fn func(Event)

	switch ev.Kind {
	case DoubleEyeBlink:
		fn = c.OnDoubleEyeBlink
	case Smile:
		fn = c.OnSmile
	case NodLeft:
		fn = c.OnNodLeft
	case NodRight:
		fn = c.OnNodRight
	case LeftEyeBlink:
		fn = c.OnLeftEyeBlink
	case RightEyeBlink:
		fn = c.OnRightEyeBlink
	}
	if fn != nil {
		fn(ev)
	}
}
