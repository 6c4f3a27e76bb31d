package codegen

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig matches every *ConfigError.
	ErrConfig = errors.New("codegen: configuration error")
	// ErrModelBuild matches every *BuildError, for models and operations alike.
	ErrModelBuild = errors.New("codegen: build error")
	// ErrRender matches every *RenderError.
	ErrRender = errors.New("codegen: render error")
	// ErrState matches every *StateError.
	ErrState = errors.New("codegen: invalid state")

	ErrUnknownType       = errors.New("unknown schema type")
	ErrPropertyCollision = errors.New("property name collision")
	ErrUnresolved        = errors.New("unresolved reference")
	ErrBodyParameter     = errors.New("more than one body parameter")
	ErrUnknownLocation   = errors.New("unknown parameter location")
)

// ConfigError reports an unknown generator or an unusable option value.
type ConfigError struct {
	Generator string
	Option    string
	Reason    string
}

func (e *ConfigError) Error() string {
	switch {
	case e.Option != "":
		return fmt.Sprintf("generator %q: option %q: %s", e.Generator, e.Option, e.Reason)
	case e.Generator != "":
		return fmt.Sprintf("generator %q: %s", e.Generator, e.Reason)
	default:
		return e.Reason
	}
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

type Subject string

const (
	SubjectModel     Subject = "model"
	SubjectOperation Subject = "operation"
)

// BuildError is recorded against one model or operation. It does not abort
// the run on its own.
type BuildError struct {
	Subject Subject
	Name    string
	Err     error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build %s %q: %v", e.Subject, e.Name, e.Err)
}

func (e *BuildError) Unwrap() error        { return e.Err }
func (e *BuildError) Is(target error) bool { return target == ErrModelBuild }

// RenderError is recorded against one destination file.
type RenderError struct {
	Template    string
	Destination string
	Err         error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s (%s): %v", e.Destination, e.Template, e.Err)
}

func (e *RenderError) Unwrap() error        { return e.Err }
func (e *RenderError) Is(target error) bool { return target == ErrRender }

// StateError reports a lifecycle call made in the wrong state.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("codegen: %s not allowed in state %s", e.Op, e.State)
}

func (e *StateError) Is(target error) bool { return target == ErrState }
