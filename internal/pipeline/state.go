package pipeline

// Stage is one phase of a training run. Stages always advance in order;
// a failed run stops at its current stage and never resumes.
type Stage string

const (
	StageValidating          Stage = "validating"
	StageFetchingCredentials Stage = "fetching_credentials"
	StageFetchingVideos      Stage = "fetching_videos"
	StageExtractingAssets    Stage = "extracting_assets"
	StageAnalyzingStyle      Stage = "analyzing_style"
	StageEmbedding           Stage = "embedding"
	StagePersisting          Stage = "persisting"
	StageCompleted           Stage = "completed"
)

// stageProgress maps each stage to the job progress percentage reported when
// the stage begins. Persisting shares the embedding milestone, so a full run
// reports exactly 0, 10, 20, 30, 60, 80, 100.
var stageProgress = map[Stage]int{
	StageValidating:          0,
	StageFetchingCredentials: 10,
	StageFetchingVideos:      20,
	StageExtractingAssets:    30,
	StageAnalyzingStyle:      60,
	StageEmbedding:           80,
	StagePersisting:          80,
	StageCompleted:           100,
}

// stageLabel is the human-readable log line emitted when a stage begins.
var stageLabel = map[Stage]string{
	StageValidating:          "Validating training request",
	StageFetchingCredentials: "Fetching channel credentials",
	StageFetchingVideos:      "Fetching video metadata",
	StageExtractingAssets:    "Extracting audio and transcribing videos",
	StageAnalyzingStyle:      "Analyzing content style",
	StageEmbedding:           "Generating style embedding",
	StagePersisting:          "Saving style profile",
	StageCompleted:           "Training completed",
}

// ProgressFor returns the reported percentage for a stage.
func ProgressFor(stage Stage) int {
	return stageProgress[stage]
}
