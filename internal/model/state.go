package model

// DownloadState identifies where a download job is in its pipeline.
//
// The happy path is
//
//	StateIdle → StateDirectoryCreating → StateTransferring →
//	StateExtracting → StatePollingForPayload → StateRenaming →
//	StateDone
//
// with StateFolderError, StateNetworkError and StateTimeout as the
// terminal failure states. No failure is retried automatically; a new
// job must be started to retry.
type DownloadState string

const (
	StateIdle              DownloadState = "idle"
	StateDirectoryCreating DownloadState = "creating_directory"
	StateTransferring      DownloadState = "transferring"
	StateExtracting        DownloadState = "extracting"
	StatePollingForPayload DownloadState = "polling_for_payload"
	StateRenaming          DownloadState = "renaming"
	StateDone              DownloadState = "done"
	StateFolderError       DownloadState = "folder_error"
	StateNetworkError      DownloadState = "network_error"
	StateTimeout           DownloadState = "timeout"
)

// IsTerminal reports whether the state ends the job.
func (s DownloadState) IsTerminal() bool {
	switch s {
	case StateDone, StateFolderError, StateNetworkError, StateTimeout:
		return true
	}
	return false
}

// IsFailure reports whether the state is a terminal failure.
func (s DownloadState) IsFailure() bool {
	switch s {
	case StateFolderError, StateNetworkError, StateTimeout:
		return true
	}
	return false
}

// IsActive reports whether the job is running: past StateIdle but not
// yet terminal.
func (s DownloadState) IsActive() bool {
	return s != StateIdle && !s.IsTerminal()
}
