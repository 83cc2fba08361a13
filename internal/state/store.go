// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package state persists the workflow state document for one version
// directory. All access goes through Store: writes are atomic (temp file
// then rename) and every read-modify-write cycle runs under an advisory
// file lock with a bounded wait, so a process interruption never leaves a
// half-written document and rapid successive invocations never interleave.
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/gofrs/flock"

	"github.com/pdiddy/manuscript-engine/pkg/types"
)

const (
	stateDirName  = ".mswrite"
	stateFileName = "state.json"
	lockFileName  = "state.lock"
)

// Store manages the state document under one version directory.
type Store struct {
	dir string
	cfg types.StateConfig
}

// NewStore returns a store for versionDir. Zero config fields fall back
// to the documented defaults.
func NewStore(versionDir string, cfg types.StateConfig) *Store {
	def := types.DefaultEngineConfig().State
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = def.LockTimeout
	}
	if cfg.LockRetryDelay <= 0 {
		cfg.LockRetryDelay = def.LockRetryDelay
	}
	return &Store{dir: versionDir, cfg: cfg}
}

func (s *Store) statePath() string {
	return filepath.Join(s.dir, stateDirName, stateFileName)
}

// Init creates a new workflow state document. sections seeds the draft
// stage's section map. When a document already exists, Init fails with
// ErrAlreadyInitialized unless overwrite is set.
func (s *Store) Init(projectName, repoPath string, sections []string, overwrite bool) (*types.WorkflowState, error) {
	var st *types.WorkflowState
	err := s.withLock(func() error {
		if _, statErr := os.Stat(s.statePath()); statErr == nil && !overwrite {
			return fmt.Errorf("%w: %s (pass overwrite to reinitialize)", ErrAlreadyInitialized, s.statePath())
		}

		now := time.Now()
		st = &types.WorkflowState{
			ProjectName:    projectName,
			RepositoryPath: repoPath,
			Stages:         make(map[types.Stage]*types.StageState, len(types.StageOrder)),
			Sections:       make(map[string]*types.SectionState, len(sections)),
			TotalSections:  len(sections),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		for _, stage := range types.StageOrder {
			st.Stages[stage] = &types.StageState{Status: types.StageNotStarted}
		}
		for _, name := range sections {
			st.Sections[name] = &types.SectionState{Status: types.StageNotStarted}
		}
		return s.write(st)
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// Load reads and validates the state document.
func (s *Store) Load() (*types.WorkflowState, error) {
	var st *types.WorkflowState
	err := s.withLock(func() error {
		var readErr error
		st, readErr = s.read()
		return readErr
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// UpdateStage transitions a stage and merges stage metadata and file
// references. Transitions to in_progress or completed are gated on every
// non-optional predecessor being completed; a violation fails with a
// DependencyError and leaves the document untouched.
func (s *Store) UpdateStage(stage types.Stage, status types.StageStatus, metadata map[string]any, fileRefs ...string) (*types.WorkflowState, error) {
	return s.mutate(func(st *types.WorkflowState) error {
		ss, ok := st.Stages[stage]
		if !ok {
			return &UnknownStageError{Stage: stage}
		}

		if status == types.StageInProgress || status == types.StageCompleted {
			if missing, ok := missingPredecessor(st, stage); ok {
				return &DependencyError{Stage: stage, Missing: missing}
			}
		}

		now := time.Now()
		ss.Status = status
		if status == types.StageInProgress && ss.StartedAt == nil {
			ss.StartedAt = &now
		}
		if status == types.StageCompleted {
			ss.CompletedAt = &now
		}
		for k, v := range metadata {
			if ss.Metadata == nil {
				ss.Metadata = make(map[string]any)
			}
			ss.Metadata[k] = v
		}
		for _, ref := range fileRefs {
			if !slices.Contains(ss.FileRefs, ref) {
				ss.FileRefs = append(ss.FileRefs, ref)
			}
		}
		return nil
	})
}

// AddSectionCompleted marks a section complete under the draft stage and
// recomputes the completed/total rollup. Sections not seeded at Init are
// added on first completion. When every section is complete the draft
// stage itself completes.
func (s *Store) AddSectionCompleted(name, file string) (*types.WorkflowState, error) {
	return s.mutate(func(st *types.WorkflowState) error {
		if missing, ok := missingPredecessor(st, types.StageDraft); ok {
			return &DependencyError{Stage: types.StageDraft, Missing: missing}
		}

		now := time.Now()
		sec, ok := st.Sections[name]
		if !ok {
			sec = &types.SectionState{}
			st.Sections[name] = sec
			st.TotalSections++
		}
		sec.Status = types.StageCompleted
		sec.CompletedAt = &now
		if file != "" {
			sec.File = file
		}

		completed := 0
		for _, sec := range st.Sections {
			if sec.Status == types.StageCompleted {
				completed++
			}
		}
		st.CompletedSections = completed

		draft := st.Stages[types.StageDraft]
		if completed == st.TotalSections {
			draft.Status = types.StageCompleted
			draft.CompletedAt = &now
		} else if draft.Status == types.StageNotStarted {
			draft.Status = types.StageInProgress
			draft.StartedAt = &now
		}
		return nil
	})
}

// AddCritiqueIteration records a critique pass, assigning the next
// version number for its type.
func (s *Store) AddCritiqueIteration(it types.CritiqueIteration) (*types.WorkflowState, error) {
	return s.mutate(func(st *types.WorkflowState) error {
		if missing, ok := missingPredecessor(st, types.StageCritique); ok {
			return &DependencyError{Stage: types.StageCritique, Missing: missing}
		}
		it.Version = nextCritiqueVersion(st, it.Type)
		if it.CreatedAt.IsZero() {
			it.CreatedAt = time.Now()
		}
		st.CritiqueIterations = append(st.CritiqueIterations, it)
		return nil
	})
}

// NextCritiqueVersion returns max(version)+1 over recorded iterations of
// the given type, mirroring the resolver's numbering discipline scoped to
// critique artifacts within one project version.
func (s *Store) NextCritiqueVersion(critiqueType string) (int, error) {
	st, err := s.Load()
	if err != nil {
		return 0, err
	}
	return nextCritiqueVersion(st, critiqueType), nil
}

func nextCritiqueVersion(st *types.WorkflowState, critiqueType string) int {
	max := 0
	for _, it := range st.CritiqueIterations {
		if it.Type == critiqueType && it.Version > max {
			max = it.Version
		}
	}
	return max + 1
}

// SetTargetVenue updates the target venue. The venue locks once assembly
// completes.
func (s *Store) SetTargetVenue(venue string) (*types.WorkflowState, error) {
	return s.mutate(func(st *types.WorkflowState) error {
		if st.Stages[types.StageAssembly].Status == types.StageCompleted {
			return fmt.Errorf("%w: cannot change venue to %q", ErrVenueLocked, venue)
		}
		st.TargetVenue = venue
		return nil
	})
}

// missingPredecessor returns the first non-optional predecessor of stage
// that is not completed. Optional stages are skipped. The critique-to-draft
// revision edge needs no special case: once draft's predecessors are
// completed they stay completed, so re-entry is always permitted.
func missingPredecessor(st *types.WorkflowState, stage types.Stage) (types.Stage, bool) {
	for _, pred := range types.StageOrder {
		if pred == stage {
			return "", false
		}
		if types.OptionalStages[pred] {
			continue
		}
		if ps, ok := st.Stages[pred]; !ok || ps.Status != types.StageCompleted {
			return pred, true
		}
	}
	return "", false
}

// mutate runs a read-modify-write cycle under the advisory lock.
func (s *Store) mutate(fn func(*types.WorkflowState) error) (*types.WorkflowState, error) {
	var st *types.WorkflowState
	err := s.withLock(func() error {
		var readErr error
		st, readErr = s.read()
		if readErr != nil {
			return readErr
		}
		if err := fn(st); err != nil {
			return err
		}
		st.UpdatedAt = time.Now()
		return s.write(st)
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// withLock acquires the state file's advisory lock with a bounded wait,
// runs fn, and releases the lock. Acquisition past LockTimeout is an
// error, never an indefinite block.
func (s *Store) withLock(fn func() error) error {
	dir := filepath.Join(s.dir, stateDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, lockFileName))
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.LockTimeout)
	defer cancel()

	ok, err := lock.TryLockContext(ctx, s.cfg.LockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquiring state lock (timeout %s): %w", s.cfg.LockTimeout, err)
	}
	if !ok {
		return fmt.Errorf("state lock held by another process after %s", s.cfg.LockTimeout)
	}
	defer lock.Unlock()

	return fn()
}

func (s *Store) read() (*types.WorkflowState, error) {
	data, err := os.ReadFile(s.statePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no workflow state at %s: run init first", s.statePath())
		}
		return nil, fmt.Errorf("reading state: %w", err)
	}

	var st types.WorkflowState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStateCorrupt, s.statePath(), err)
	}
	if err := validate(&st); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStateCorrupt, s.statePath(), err)
	}
	return &st, nil
}

// validate checks the document's required keys. Any failure is corruption:
// the caller must reinitialize explicitly rather than rely on repair.
func validate(st *types.WorkflowState) error {
	if st.ProjectName == "" {
		return fmt.Errorf("missing project_name")
	}
	if st.Stages == nil {
		return fmt.Errorf("missing stages")
	}
	for _, stage := range types.StageOrder {
		if _, ok := st.Stages[stage]; !ok {
			return fmt.Errorf("missing stage %q", stage)
		}
	}
	if st.Sections == nil {
		return fmt.Errorf("missing sections")
	}
	return nil
}

// write serializes the document to a temp file in the same directory and
// renames it over the target, so readers see either the old or the new
// document, never a partial one.
func (s *Store) write(st *types.WorkflowState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	dir := filepath.Dir(s.statePath())
	tmp, err := os.CreateTemp(dir, stateFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp state file: %w", err)
	}
	if err := os.Rename(tmpName, s.statePath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing state file: %w", err)
	}
	return nil
}
