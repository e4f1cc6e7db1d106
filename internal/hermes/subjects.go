package hermes

const (
	SubjectCatalogReloaded = "admissions.catalog.reloaded"
	SubjectCatalogRejected = "admissions.catalog.rejected"

	// SubjectCatalogReloadRequested asks every running instance to reload
	// its catalog, for example after an import.
	SubjectCatalogReloadRequested = "admissions.catalog.reload.requested"

	StreamName   = "ADMIT_EVENTS"
	StreamMaxAge = "168h" // 7 days
)

// StreamSubjects are the subjects captured by the JetStream stream.
var StreamSubjects = []string{"admissions.>"}

func SubjectEvaluationCompleted(evaluationID string) string {
	return "admissions.evaluation." + evaluationID + ".completed"
}
