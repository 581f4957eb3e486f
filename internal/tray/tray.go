// Package tray provides the system tray interface for the PhysioSync
// exercise analysis daemon.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onRecord    func() bool
	onStop      func()
	onDashboard func()
	onQuit      func()
	recording   bool
	mu          sync.RWMutex

	// Menu items stored for later updates
	menuRecord *systray.MenuItem
	menuStatus *systray.MenuItem
}

// New creates a new Tray instance.
func New() *Tray {
	return &Tray{}
}

// OnRecord sets the callback for starting a capture session. It must
// return true when the session actually started.
func (t *Tray) OnRecord(fn func() bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onRecord = fn
}

// OnStop sets the callback for stopping the running capture session.
func (t *Tray) OnStop(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStop = fn
}

// OnDashboard sets the callback for the dashboard menu item.
func (t *Tray) OnDashboard(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDashboard = fn
}

// OnQuit sets the callback for the quit menu item.
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
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("PhysioSync")
	systray.SetTooltip("PhysioSync Exercise Analysis")

	t.menuRecord = systray.AddMenuItem("● Start Recording", "Record a patient exercise")
	systray.AddSeparator()

	t.menuStatus = systray.AddMenuItem("Last: none", "Last recording")
	t.menuStatus.Disable()
	systray.AddSeparator()

	menuDashboard := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit PhysioSync")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuRecord.ClickedCh:
				t.handleRecord()
			case <-menuDashboard.ClickedCh:
				t.handleDashboard()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {
}

// handleRecord toggles between starting and stopping a capture session.
func (t *Tray) handleRecord() {
	t.mu.Lock()
	recording := t.recording
	onRecord := t.onRecord
	onStop := t.onStop
	t.mu.Unlock()

	// Call the callbacks outside the lock to prevent deadlocks
	if recording {
		if onStop != nil {
			onStop()
		}
		t.SetRecording(false)
		return
	}

	started := false
	if onRecord != nil {
		started = onRecord()
	}
	t.SetRecording(started)
}

// handleDashboard handles the dashboard menu item click.
func (t *Tray) handleDashboard() {
	t.mu.RLock()
	callback := t.onDashboard
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

// SetRecording updates the record menu item to reflect the session
// state.
func (t *Tray) SetRecording(recording bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.recording = recording
	if t.menuRecord == nil {
		return
	}
	if recording {
		t.menuRecord.SetTitle("■ Stop Recording")
	} else {
		t.menuRecord.SetTitle("● Start Recording")
	}
}

// SetLastRecording updates the last recording display in the menu.
func (t *Tray) SetLastRecording(name string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuStatus != nil {
		if name == "" {
			t.menuStatus.SetTitle("Last: none")
		} else {
			t.menuStatus.SetTitle("Last: " + name)
		}
	}
}

// IsRecording returns whether a tray-initiated session is running.
func (t *Tray) IsRecording() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.recording
}
