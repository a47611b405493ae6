package engine

// Stage describes a migration phase for one file.
type Stage string

const (
	// StageRename is the file-level rename phase.
	StageRename Stage = "rename"
	// StageRewrite is the source/test content rewrite phase.
	StageRewrite Stage = "rewrite"
	// StageDataset is the dataset document rewrite phase.
	StageDataset Stage = "dataset"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusWorking indicates the file is being processed.
	StatusWorking Status = "working"
	// StatusDone indicates the file finished without error.
	StatusDone Status = "done"
	// StatusError indicates the file was recorded as a per-file error.
	StatusError Status = "error"
)

// Event reports progress for a single file. NewPath is set on a successful
// rename event; later events for the same file carry the renamed path.
type Event struct {
	File         string
	Stage        Stage
	Status       Status
	Err          error
	Replacements int
	NewPath      string
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

// OnEvent implements ProgressSink.
func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// NoopSink discards events.
type NoopSink struct{}

// OnEvent implements ProgressSink.
func (NoopSink) OnEvent(Event) {}

// RenamedFile records one completed (or planned, in dry-run) file rename.
type RenamedFile struct {
	OldPath string
	NewPath string
}

// FileChange summarises content modifications performed on one file.
type FileChange struct {
	Path         string
	Replacements int
}

// SkippedFile captures a per-file error; the run continues past it.
type SkippedFile struct {
	Path   string
	Reason string
}

// Result aggregates the outcome of one migration run.
type Result struct {
	Renamed      []RenamedFile
	Changed      []FileChange
	Skipped      []SkippedFile
	Settled      int
	Scanned      int
	Replacements int
}
