package pipeline

import "fmt"

// Stages of a prediction run, used in errors, logs and metrics.
const (
	StageAggregate = "aggregate"
	StageScale     = "scale"
	StageClassify  = "classify"
	StagePersist   = "persist"
	StageReport    = "report"
)

// ExternalComponentError reports a failure of the scaler, the classifier or
// a downstream sink. Err is the component's own error.
type ExternalComponentError struct {
	Stage string
	Err   error
}

func (e *ExternalComponentError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *ExternalComponentError) Unwrap() error {
	return e.Err
}
