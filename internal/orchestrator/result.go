package orchestrator

import (
	"errors"
	"time"

	"github.com/mark3labs/swagger2code/internal/codegen"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// IssueKind names the phase an issue was recorded in.
type IssueKind string

const (
	KindConfig    IssueKind = "config"
	KindModel     IssueKind = "model"
	KindOperation IssueKind = "operation"
	KindRender    IssueKind = "render"
)

// Issue is one per-item problem that did not abort the run.
type Issue struct {
	Severity Severity
	Kind     IssueKind
	Subject  string
	Message  string
	Err      error `json:"-"`
}

type FileKind string

const (
	FileSupporting FileKind = "supporting"
	FileModel      FileKind = "model"
	FileAPI        FileKind = "api"
)

// File is one written output, relative to the writer root.
type File struct {
	Path     string
	Template string
	Kind     FileKind
	Size     int
}

// RunResult reports what one run built and wrote.
type RunResult struct {
	RunID      string
	Generator  string
	Files      []File
	Models     []*codegen.Model
	Operations []*codegen.Operation
	Groups     []*codegen.OperationGroup
	Issues     []Issue
	Status     Status
	Duration   time.Duration
}

func (r *RunResult) addIssue(i Issue) { r.Issues = append(r.Issues, i) }

func (r *RunResult) hasErrors() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Err joins the errors of every error-severity issue. It is nil for a
// successful run.
func (r *RunResult) Err() error {
	if r == nil {
		return nil
	}
	var errs []error
	for _, i := range r.Issues {
		if i.Severity != SeverityError {
			continue
		}
		if i.Err != nil {
			errs = append(errs, i.Err)
		} else {
			errs = append(errs, errors.New(i.Message))
		}
	}
	return errors.Join(errs...)
}

// FilesOf returns the written files of kind, in write order.
func (r *RunResult) FilesOf(kind FileKind) []File {
	var out []File
	for _, f := range r.Files {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}
