package docker

import (
	"context"
	"fmt"
	"math/rand"
	"os/exec"
	"path/filepath"
	"time"

	domain "github.com/bryanwahyu/automaton-forensics/internal/domain/analysis"
)

type Runner struct {
	randSource *rand.Rand
}

func NewRunner() *Runner {
	// Create a dedicated random source to avoid contention
	src := rand.NewSource(time.Now().UnixNano())
	return &Runner{
		randSource: rand.New(src),
	}
}

// Run invokes one forensic tool as a container and parses its artifact into
// findings. Per-tool timeout comes from ctx; a deadline kills the container
// via CommandContext.
func (r *Runner) Run(ctx context.Context, req domain.RunRequest) (domain.RunResult, error) {
	start := time.Now()

	var cmd *exec.Cmd
	// Use ./temp directory instead of system temp
	tempDir := filepath.Join(".", "temp")
	artifactPath := filepath.Join(tempDir, fmt.Sprintf("%s-%d", req.Tool, r.randSource.Int()))
	rawFormat := "json"

	switch req.Tool {
	case domain.ToolSparrow:
		artifactPath += ".json"
		cmd = exec.CommandContext(ctx, "docker", "run", "--rm",
			"-v", fmt.Sprintf("%s:/out", filepath.Dir(artifactPath)),
			"cisagov/sparrow:latest",
			"--tenant", req.Target.TenantDomain,
			"--output", "/out/"+filepath.Base(artifactPath),
		)

	case domain.ToolHawk:
		artifactPath += ".json"
		args := []string{"run", "--rm",
			"-v", fmt.Sprintf("%s:/out", filepath.Dir(artifactPath)),
			"t0pcyber/hawk:latest",
			"-Tenant", req.Target.TenantDomain,
			"-OutputJson", "/out/" + filepath.Base(artifactPath),
		}
		if req.Options.Bool("include_inactive") {
			args = append(args, "-IncludeInactive")
		}
		cmd = exec.CommandContext(ctx, "docker", args...)

	case domain.ToolAzureHound:
		artifactPath += ".json"
		cmd = exec.CommandContext(ctx, "docker", "run", "--rm",
			"-v", fmt.Sprintf("%s:/out", filepath.Dir(artifactPath)),
			"specterops/azurehound:latest",
			"list", "az-ad",
			"--tenant", req.Target.TenantDomain,
			"-o", "/out/"+filepath.Base(artifactPath),
		)

	case domain.ToolLoki:
		artifactPath += ".jsonl"
		rawFormat = "jsonl"
		args := []string{"run", "--rm",
			"-v", "/:/host:ro",
			"-v", fmt.Sprintf("%s:/out", filepath.Dir(artifactPath)),
			"neo23x0/loki:latest",
			"--onlyrelevant", "--noindicator",
			"-p", "/host",
			"-l", "/out/" + filepath.Base(artifactPath),
		}
		if !req.Options.Bool("deep_scan") {
			args = append(args, "--intense-off")
		}
		cmd = exec.CommandContext(ctx, "docker", args...)

	case domain.ToolO365:
		artifactPath += ".json"
		args := []string{"run", "--rm",
			"-v", fmt.Sprintf("%s:/out", filepath.Dir(artifactPath)),
			"bryanwahyu/o365-extractor:latest",
			"--tenant", req.Target.TenantDomain,
			"--case", req.CaseID,
			"--output", "/out/" + filepath.Base(artifactPath),
		}
		if req.Options.Bool("include_archived") {
			args = append(args, "--include-archived")
		}
		cmd = exec.CommandContext(ctx, "docker", args...)

	default:
		return domain.RunResult{}, &domain.ToolExecutionError{Tool: req.Tool, Err: fmt.Errorf("unsupported tool")}
	}

	// jalankan docker command
	out, err := cmd.CombinedOutput()
	duration := time.Since(start).Milliseconds()

	exitCode := 0
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			exitCode = ee.ExitCode()
		} else {
			return domain.RunResult{}, &domain.ToolExecutionError{
				Tool: req.Tool,
				Err:  fmt.Errorf("run error: %v, output=%s", err, string(out)),
			}
		}
	}
	if exitCode != 0 {
		return domain.RunResult{}, &domain.ToolExecutionError{
			Tool: req.Tool,
			Err:  fmt.Errorf("exit code %d, output=%s", exitCode, truncate(string(out), 512)),
		}
	}

	findings, err := domain.ParseFindings(req.Tool, artifactPath)
	if err != nil {
		return domain.RunResult{}, &domain.ToolExecutionError{
			Tool: req.Tool,
			Err:  fmt.Errorf("parsing artifact: %w", err),
		}
	}

	return domain.RunResult{
		Findings:      findings,
		ArtifactPaths: []string{artifactPath},
		RawFormat:     rawFormat,
		ExitCode:      exitCode,
		DurationMS:    duration,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
