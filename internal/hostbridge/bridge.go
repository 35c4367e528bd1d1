package hostbridge

// Bridge is the capability surface the chat host runtime exposes to the
// mini-app: navigation chrome (back and main buttons), lifecycle signals,
// and a result channel back to the enclosing chat flow. Call sites never
// branch on host presence; when the app runs outside the chat client the
// no-op variant is selected once at startup.
type Bridge interface {
	// Ready tells the host the first paint finished.
	Ready()
	// Expand asks the host to expand the mini-app viewport.
	Expand()

	ShowBackButton()
	HideBackButton()
	// OnBackButton registers the handler invoked when the user presses the
	// host back button. Registering replaces any previous handler.
	OnBackButton(handler func())

	SetMainButtonText(text string)
	ShowMainButton()
	HideMainButton()
	EnableMainButton()
	DisableMainButton()
	ShowMainButtonProgress()
	HideMainButtonProgress()
	// OnMainButton registers the handler invoked when the user presses the
	// host main button; OffMainButton removes it.
	OnMainButton(handler func())
	OffMainButton()

	// SendData delivers a result payload to the host for the enclosing chat
	// flow to act on (for example closing the mini-app after an order).
	SendData(payload string)

	// UserID resolves the authenticated chat user. The second result is
	// false when the host provides no user; callers must then treat every
	// user-scoped operation as unavailable.
	UserID() (int64, bool)
}

// New selects the bridge variant once at startup: a guarded adapter over the
// host callbacks when they are present, the no-op bridge otherwise.
func New(host *Funcs) Bridge {
	if host == nil {
		return Noop{}
	}
	return &funcBridge{host: *host}
}

// Noop is the bridge used outside the chat client. Every capability call
// degrades to a no-op and user resolution reports no user.
type Noop struct{}

func (Noop) Ready()                   {}
func (Noop) Expand()                  {}
func (Noop) ShowBackButton()          {}
func (Noop) HideBackButton()          {}
func (Noop) OnBackButton(func())      {}
func (Noop) SetMainButtonText(string) {}
func (Noop) ShowMainButton()          {}
func (Noop) HideMainButton()          {}
func (Noop) EnableMainButton()        {}
func (Noop) DisableMainButton()       {}
func (Noop) ShowMainButtonProgress()  {}
func (Noop) HideMainButtonProgress()  {}
func (Noop) OnMainButton(func())      {}
func (Noop) OffMainButton()           {}
func (Noop) SendData(string)          {}
func (Noop) UserID() (int64, bool)    { return 0, false }

// Funcs carries the raw host callbacks injected by the embedding runtime.
// Any subset may be populated; absent callbacks degrade to no-ops, matching
// the optional capability object the host exposes.
type Funcs struct {
	ReadyFunc                  func()
	ExpandFunc                 func()
	ShowBackButtonFunc         func()
	HideBackButtonFunc         func()
	OnBackButtonFunc           func(handler func())
	SetMainButtonTextFunc      func(text string)
	ShowMainButtonFunc         func()
	HideMainButtonFunc         func()
	EnableMainButtonFunc       func()
	DisableMainButtonFunc      func()
	ShowMainButtonProgressFunc func()
	HideMainButtonProgressFunc func()
	OnMainButtonFunc           func(handler func())
	OffMainButtonFunc          func()
	SendDataFunc               func(payload string)
	UserIDFunc                 func() (int64, bool)
}

type funcBridge struct {
	host Funcs
}

func (b *funcBridge) Ready() {
	if b.host.ReadyFunc != nil {
		b.host.ReadyFunc()
	}
}

func (b *funcBridge) Expand() {
	if b.host.ExpandFunc != nil {
		b.host.ExpandFunc()
	}
}

func (b *funcBridge) ShowBackButton() {
	if b.host.ShowBackButtonFunc != nil {
		b.host.ShowBackButtonFunc()
	}
}

func (b *funcBridge) HideBackButton() {
	if b.host.HideBackButtonFunc != nil {
		b.host.HideBackButtonFunc()
	}
}

func (b *funcBridge) OnBackButton(handler func()) {
	if b.host.OnBackButtonFunc != nil {
		b.host.OnBackButtonFunc(handler)
	}
}

func (b *funcBridge) SetMainButtonText(text string) {
	if b.host.SetMainButtonTextFunc != nil {
		b.host.SetMainButtonTextFunc(text)
	}
}

func (b *funcBridge) ShowMainButton() {
	if b.host.ShowMainButtonFunc != nil {
		b.host.ShowMainButtonFunc()
	}
}

func (b *funcBridge) HideMainButton() {
	if b.host.HideMainButtonFunc != nil {
		b.host.HideMainButtonFunc()
	}
}

func (b *funcBridge) EnableMainButton() {
	if b.host.EnableMainButtonFunc != nil {
		b.host.EnableMainButtonFunc()
	}
}

func (b *funcBridge) DisableMainButton() {
	if b.host.DisableMainButtonFunc != nil {
		b.host.DisableMainButtonFunc()
	}
}

func (b *funcBridge) ShowMainButtonProgress() {
	if b.host.ShowMainButtonProgressFunc != nil {
		b.host.ShowMainButtonProgressFunc()
	}
}

func (b *funcBridge) HideMainButtonProgress() {
	if b.host.HideMainButtonProgressFunc != nil {
		b.host.HideMainButtonProgressFunc()
	}
}

func (b *funcBridge) OnMainButton(handler func()) {
	if b.host.OnMainButtonFunc != nil {
		b.host.OnMainButtonFunc(handler)
	}
}

func (b *funcBridge) OffMainButton() {
	if b.host.OffMainButtonFunc != nil {
		b.host.OffMainButtonFunc()
	}
}

func (b *funcBridge) SendData(payload string) {
	if b.host.SendDataFunc != nil {
		b.host.SendDataFunc(payload)
	}
}

func (b *funcBridge) UserID() (int64, bool) {
	if b.host.UserIDFunc != nil {
		return b.host.UserIDFunc()
	}
	return 0, false
}
