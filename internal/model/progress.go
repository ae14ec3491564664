package model

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent is a human-readable progress update emitted by the
// search and download pipelines. Consumers decide how to present it;
// a nil callback anywhere means silent operation.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// ProgressFunc receives progress events. Implementations must be safe
// to call from multiple goroutines.
type ProgressFunc func(ProgressEvent)
