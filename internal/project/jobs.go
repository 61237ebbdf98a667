// Package project persists packing runs as JSON job files, so a run can be
// listed, reloaded, and re-solved later.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bobotu/kaosu-packer/internal/engine"
	"github.com/bobotu/kaosu-packer/internal/model"
)

// jobVersion is written into every saved job file.
const jobVersion = "1.0.0"

// Job is one complete packing run: the problem as entered, the solver
// parameters, and the solution it produced.
type Job struct {
	Version   string             `json:"version"`
	Name      string             `json:"name"`
	CreatedAt string             `json:"created_at"`
	Bin       model.Dimension    `json:"bin"`
	Mode      model.Mode         `json:"mode"`
	MaxBins   int                `json:"max_bins,omitempty"`
	Rotation  model.RotationMode `json:"rotation"`
	Groups    []model.ItemGroup  `json:"groups"`
	Params    engine.Params      `json:"params"`
	Solution  *model.Solution    `json:"solution,omitempty"`
}

// Problem rebuilds the packing instance a job describes. Item IDs are
// regenerated, the geometry is not.
func (j Job) Problem() model.Problem {
	return model.Problem{
		BinSpec:  j.Bin,
		Items:    model.ExpandGroups(j.Groups),
		Mode:     j.Mode,
		MaxBins:  j.MaxBins,
		Rotation: j.Rotation,
	}
}

// SaveJob writes a job into dir as indented JSON and returns the file path.
// Version and CreatedAt are stamped when empty. The file name is derived
// from the job name.
func SaveJob(dir string, job Job) (string, error) {
	if job.Name == "" {
		return "", fmt.Errorf("job has no name")
	}
	if job.Version == "" {
		job.Version = jobVersion
	}
	if job.CreatedAt == "" {
		job.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create jobs directory: %w", err)
	}

	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal job: %w", err)
	}

	path := filepath.Join(dir, jobFileName(job.Name))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write job file: %w", err)
	}
	return path, nil
}

// LoadJob reads a single job file.
func LoadJob(path string) (Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Job{}, fmt.Errorf("failed to read job file: %w", err)
	}

	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return Job{}, fmt.Errorf("failed to parse job file: %w", err)
	}
	if job.Version == "" {
		return Job{}, fmt.Errorf("invalid job file: missing version field")
	}
	return job, nil
}

// ListJobs loads every job file in dir, newest first. A missing directory
// yields an empty list; files that do not parse as jobs are skipped.
func ListJobs(dir string) ([]Job, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Job{}, nil
		}
		return nil, fmt.Errorf("failed to read jobs directory: %w", err)
	}

	var jobs []Job
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		job, err := LoadJob(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		jobs = append(jobs, job)
	}

	sort.SliceStable(jobs, func(i, j int) bool {
		if jobs[i].CreatedAt != jobs[j].CreatedAt {
			return jobs[i].CreatedAt > jobs[j].CreatedAt
		}
		return jobs[i].Name < jobs[j].Name
	})
	return jobs, nil
}

// jobFileName turns a job name into a safe file name.
func jobFileName(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	return mapped + ".json"
}
