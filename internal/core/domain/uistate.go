package domain

// PanelState is the lifecycle of a piece of UI that shows remotely loaded data.
type PanelState string

const (
	PanelClosed  PanelState = "closed"
	PanelLoading PanelState = "loading"
	PanelOpen    PanelState = "open"
	PanelError   PanelState = "error"
)

// Panel is the per-entity UI-state record. The zero value is closed.
type Panel struct {
	State PanelState `json:"state"`
	Error string     `json:"error,omitempty"`
}

func (p Panel) current() PanelState {
	if p.State == "" {
		return PanelClosed
	}
	return p.State
}

// Visible reports whether the panel occupies screen space.
func (p Panel) Visible() bool {
	return p.current() != PanelClosed
}

// Begin moves the panel into loading. Allowed from every state.
func (p *Panel) Begin() {
	p.State = PanelLoading
	p.Error = ""
}

// Resolve marks a load as shown. Only a loading panel can resolve.
func (p *Panel) Resolve() bool {
	if p.current() != PanelLoading {
		return false
	}
	p.State = PanelOpen
	return true
}

// Fail records a load failure. Only a loading panel can fail.
func (p *Panel) Fail(err error) bool {
	if p.current() != PanelLoading {
		return false
	}
	p.State = PanelError
	if err != nil {
		p.Error = err.Error()
	}
	return true
}

// Close hides the panel regardless of its state.
func (p *Panel) Close() {
	p.State = PanelClosed
	p.Error = ""
}

// Popover is a single floating surface that shows one target at a time
// (likes preview, user hover card).
type Popover struct {
	Target int64 `json:"target"`
	Panel
}

// Show points the popover at target and starts loading.
func (p *Popover) Show(target int64) {
	p.Target = target
	p.Begin()
}

// Showing reports whether the popover is currently bound to target.
func (p *Popover) Showing(target int64) bool {
	return p.Visible() && p.Target == target
}

// ResolveFor marks target's load as shown if the popover still points at it.
func (p *Popover) ResolveFor(target int64) bool {
	if p.Target != target {
		return false
	}
	return p.Resolve()
}

// FailFor records a failure for target if the popover still points at it.
func (p *Popover) FailFor(target int64, err error) bool {
	if p.Target != target {
		return false
	}
	return p.Fail(err)
}

// Hide closes the popover and forgets the target.
func (p *Popover) Hide() {
	p.Close()
	p.Target = 0
}

// HideIf closes the popover only when it shows target.
func (p *Popover) HideIf(target int64) bool {
	if !p.Showing(target) {
		return false
	}
	p.Hide()
	return true
}

// PanelBoard tracks independent panels keyed by entity id (comment panels per post).
type PanelBoard struct {
	panels map[int64]Panel
}

// NewPanelBoard constructs an empty board.
func NewPanelBoard() *PanelBoard {
	return &PanelBoard{panels: make(map[int64]Panel)}
}

// Get returns the panel for id; missing ids are closed.
func (b *PanelBoard) Get(id int64) Panel {
	return b.panels[id]
}

// Update applies fn to the panel for id and stores the result.
func (b *PanelBoard) Update(id int64, fn func(*Panel)) Panel {
	p := b.panels[id]
	fn(&p)
	if p.current() == PanelClosed {
		delete(b.panels, id)
	} else {
		b.panels[id] = p
	}
	return p
}

// Forget drops every trace of id.
func (b *PanelBoard) Forget(id int64) {
	delete(b.panels, id)
}

// OpenIDs lists ids whose panel is visible.
func (b *PanelBoard) OpenIDs() []int64 {
	ids := make([]int64, 0, len(b.panels))
	for id, p := range b.panels {
		if p.Visible() {
			ids = append(ids, id)
		}
	}
	return ids
}
