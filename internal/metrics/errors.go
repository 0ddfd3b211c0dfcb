package metrics

import "errors"

// ErrInvalidMonthName is returned when a month name is not in the canonical table.
var ErrInvalidMonthName = errors.New("metrics: invalid month name")

// Placeholder labels for missing leadership references.
const (
	NoCopastorLabel   = "Sin Co-Pastor"
	NoSupervisorLabel = "Sin Supervisor"
	NoPreacherLabel   = "Sin Predicador"
	NoZoneLabel       = "Sin Zona"
)
