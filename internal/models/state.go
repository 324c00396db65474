package models

// State is the position of a project in one check-and-upgrade cycle.
type State string

const (
	StateIdle              State = "IDLE"
	StateChecking          State = "CHECKING"
	StateUpdateAvailable   State = "UPDATE_AVAILABLE"
	StateUpToDate          State = "UP_TO_DATE"
	StateCheckFailed       State = "CHECK_FAILED"
	StateDownloading       State = "DOWNLOADING"
	StateExtracted         State = "EXTRACTED"
	StateRelocating        State = "RELOCATING"
	StateActive            State = "ACTIVE"
	StateRelocatedInactive State = "RELOCATED_INACTIVE"
)

// Terminal reports whether s ends the current cycle.
func (s State) Terminal() bool {
	switch s {
	case StateUpToDate, StateCheckFailed, StateActive, StateRelocatedInactive:
		return true
	}
	return false
}
