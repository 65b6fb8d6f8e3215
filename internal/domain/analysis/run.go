package analysis

// RunRequest untuk Runner
type RunRequest struct {
	Tool    Tool
	CaseID  string
	Target  Target
	Options Options
}

// RunResult hasil dari Runner
type RunResult struct {
	Findings      []Finding
	ArtifactPaths []string
	RawFormat     string
	ExitCode      int
	DurationMS    int64
}
