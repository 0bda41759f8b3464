package backup

// Outcome classifies how a run ended when it did not fail.
type Outcome int

const (
	// OutcomeCompleted means a new backup directory was written.
	OutcomeCompleted Outcome = iota
	// OutcomeNoDevice means no mounted volume carried the label.
	OutcomeNoDevice
	// OutcomeAlreadyDone means a backup already exists for the current minute.
	OutcomeAlreadyDone
	// OutcomeInProgress means another run holds the backup lock.
	OutcomeInProgress
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeNoDevice:
		return "no_device"
	case OutcomeAlreadyDone:
		return "already_done"
	case OutcomeInProgress:
		return "in_progress"
	default:
		return "unknown"
	}
}
