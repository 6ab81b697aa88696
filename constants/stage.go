package constants

// Stage is the canonical state of one submission inside the pipeline.
type Stage string

// Stable values (logged as these exact strings).
const (
	StageReceived       Stage = "RECEIVED"
	StageInferring      Stage = "INFERRING"
	StageSanitized      Stage = "SANITIZED"
	StageArtifactStored Stage = "ARTIFACT_STORED"
	StageParsed         Stage = "PARSED"
	StagePersisted      Stage = "PERSISTED" // terminal success
	StageFailed         Stage = "FAILED"    // terminal failure, reachable from any stage
)
