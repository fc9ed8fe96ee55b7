package updater

// Status is the outcome of an update run, as reported to and by the
// [Delegate].
type Status int

const (
	StatusOk Status = iota
	StatusBadPlatform
	StatusResourceNotFound
	StatusBadResult
	StatusBadPrecondition
	StatusBadUndo
)

func (s Status) String() string {
	switch s {
	case StatusOk:
		return "Ok"
	case StatusBadPlatform:
		return "BadPlatform"
	case StatusResourceNotFound:
		return "ResourceNotFound"
	case StatusBadResult:
		return "BadResult"
	case StatusBadPrecondition:
		return "BadPrecondition"
	case StatusBadUndo:
		return "BadUndo"
	default:
		return "Unknown"
	}
}

// Phase is the stage an [Updater] is in.
type Phase int32

const (
	PhaseInit Phase = iota
	PhaseConfigure
	PhaseValidate
	PhaseBackup
	PhaseUpdate
	PhaseDone
	PhaseFailed
	PhaseRollback
	PhaseRolledBack
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseConfigure:
		return "configure"
	case PhaseValidate:
		return "validate"
	case PhaseBackup:
		return "backup"
	case PhaseUpdate:
		return "update"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	case PhaseRollback:
		return "rollback"
	case PhaseRolledBack:
		return "rolled back"
	default:
		return "unknown"
	}
}

// Counter is the progress of one operation list.
type Counter struct {
	Done  int
	Total int
}

// Progress is a snapshot of an [Updater]'s state.
type Progress struct {
	Phase    Phase
	Validate Counter
	Backup   Counter
	Update   Counter
}
