package model

// Callbacks are playback notifications. Any field may be nil; use the
// Emit helpers rather than calling fields directly.
type Callbacks struct {
	OnStart    func()
	OnComplete func()
	OnPause    func()
	OnResume   func()
	OnProgress func(percent float64)
	OnError    func(err error)
}

func (c Callbacks) EmitStart() {
	if c.OnStart != nil {
		c.OnStart()
	}
}

func (c Callbacks) EmitComplete() {
	if c.OnComplete != nil {
		c.OnComplete()
	}
}

func (c Callbacks) EmitPause() {
	if c.OnPause != nil {
		c.OnPause()
	}
}

func (c Callbacks) EmitResume() {
	if c.OnResume != nil {
		c.OnResume()
	}
}

func (c Callbacks) EmitProgress(percent float64) {
	if c.OnProgress != nil {
		c.OnProgress(percent)
	}
}

func (c Callbacks) EmitError(err error) {
	if c.OnError != nil {
		c.OnError(err)
	}
}
