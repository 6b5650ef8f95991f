// Package tray provides a system tray interface for handscene.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/handscene/internal/detector"
	"github.com/ayusman/handscene/internal/scene"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle func(enabled bool)
	onOpen   func()
	onQuit   func()
	enabled  bool
	hands    string
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuHands  *systray.MenuItem
}

// New creates a new Tray instance with the given initial enabled state.
func New(enabled bool) *Tray {
	return &Tray{
		enabled: enabled,
		hands:   HandsLabel(false, false),
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpen sets the callback function to be called when the viewer menu item is clicked.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the system tray is ready.
func (t *Tray) onReady() {
	systray.SetTitle("Handscene")
	systray.SetTooltip("Handscene Hand Tracking")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle hand tracking")
	systray.AddSeparator()

	t.menuHands = systray.AddMenuItem(t.hands, "Hands currently tracked")
	t.menuHands.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Viewer...", "Open the scene viewer in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Handscene")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Tracking"
	}
	return "○ Paused"
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// HandsLabel describes which sides are tracked.
func HandsLabel(left, right bool) string {
	switch {
	case left && right:
		return "Hands: Left+Right"
	case left:
		return "Hands: Left"
	case right:
		return "Hands: Right"
	default:
		return "Hands: none"
	}
}

// Update refreshes the hands status from a render snapshot. The menu is only
// touched when the label changes.
func (t *Tray) Update(snap scene.Snapshot) {
	left := snap.Left[detector.Wrist].Visible
	right := snap.Right[detector.Wrist].Visible
	label := HandsLabel(left, right)

	t.mu.Lock()
	defer t.mu.Unlock()

	if label == t.hands {
		return
	}
	t.hands = label
	if t.menuHands != nil {
		t.menuHands.SetTitle(label)
	}
}

// Hands returns the current hands status label.
func (t *Tray) Hands() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.hands
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
