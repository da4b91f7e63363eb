package domain

// HealthStatus indicates doctor check outcomes.
type HealthStatus string

const (
	HealthOK    HealthStatus = "ok"
	HealthWarn  HealthStatus = "warn"
	HealthError HealthStatus = "error"
)

// HealthCheck captures a single diagnostic result.
type HealthCheck struct {
	Name    string
	Status  HealthStatus
	Details string
}

// HealthReport aggregates checks.
type HealthReport struct {
	Checks []HealthCheck
}

// Worst returns the most serious status in the report.
func (r HealthReport) Worst() HealthStatus {
	worst := HealthOK
	for _, check := range r.Checks {
		switch check.Status {
		case HealthError:
			return HealthError
		case HealthWarn:
			worst = HealthWarn
		}
	}
	return worst
}
