package domain

// Class labels produced by the classifier.
const (
	LabelLowerPerformer  = 0
	LabelHigherPerformer = 1
)

// Human-readable class names.
const (
	ClassHigherPerformer = "higher performer"
	ClassLowerPerformer  = "lower performer"
)

// ClassName maps a raw label to its class name. Any label other than 1 is a lower performer.
func ClassName(label int) string {
	if label == LabelHigherPerformer {
		return ClassHigherPerformer
	}
	return ClassLowerPerformer
}

// Prediction is the classifier outcome for one user.
// Corresponds to predictions table.
type Prediction struct {
	RunID     string // classification run, empty for ad-hoc predictions
	Position  int    // row index of the user within its run
	UserID    string
	Label     int
	ClassName string
	CreatedAt int64 // Unix timestamp in milliseconds
}

// NewPrediction builds a prediction with its class name filled in.
func NewPrediction(userID string, label int) Prediction {
	return Prediction{
		UserID:    userID,
		Label:     label,
		ClassName: ClassName(label),
	}
}
