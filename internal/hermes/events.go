package hermes

import "time"

type EvaluationCompletedEvent struct {
	EvaluationID        string    `json:"evaluation_id"`
	StandardScore       int       `json:"standard_score"`
	SubjectCount        int       `json:"subject_count"`
	AdmissionReady      bool      `json:"admission_ready"`
	ProgramCategory     string    `json:"program_category,omitempty"`
	InstitutionIDs      []string  `json:"institution_ids,omitempty"`
	TotalPrograms       int       `json:"total_programs"`
	EligibleCount       int       `json:"eligible_count"`
	AlmostEligibleCount int       `json:"almost_eligible_count"`
	Timestamp           time.Time `json:"timestamp"`
}

type CatalogReloadedEvent struct {
	Institutions int       `json:"institutions"`
	Programs     int       `json:"programs"`
	Warnings     int       `json:"warnings"`
	Timestamp    time.Time `json:"timestamp"`
}

type CatalogRejectedEvent struct {
	FatalIssues []string  `json:"fatal_issues"`
	Timestamp   time.Time `json:"timestamp"`
}

type CatalogReloadRequestedEvent struct {
	RequestedBy string    `json:"requested_by"`
	Timestamp   time.Time `json:"timestamp"`
}
