package codegen

import (
	"fmt"
	"path"
	"strings"
)

// SupportingFile maps a template onto one output file. It is a comparable
// value: two entries are the same file iff all three fields match.
type SupportingFile struct {
	Template string
	Folder   string
	Name     string
}

// Path returns the slash separated destination relative to the output root.
func (f SupportingFile) Path() string {
	if f.Folder == "" {
		return f.Name
	}
	return path.Join(f.Folder, f.Name)
}

type Case int

const (
	CaseCamel Case = iota
	CasePascal
	CaseSnake
)

// Naming holds the identifier rules of a target language.
type Naming struct {
	// ReservedWords are matched case-insensitively; keys are lower case.
	ReservedWords  map[string]bool
	ReservedPrefix string
	ReservedSuffix string
	// ClassPrefix is prepended to class names that are reserved or do not
	// start with a letter.
	ClassPrefix         string
	GetterPrefix        string
	SetterPrefix        string
	BooleanGetterPrefix string
	// ReservedAccessors are method names the target's base type already
	// defines, e.g. Java's final getClass. A colliding property gets
	// AccessorPrefix before its name in both accessors.
	ReservedAccessors map[string]bool
	AccessorPrefix    string
	FieldCase         Case
	ParamCase         Case
	APISuffix         string
}

// Language is the data a plugin supplies about its target.
type Language struct {
	// TypeMap is keyed by "type/format" or "type".
	TypeMap map[string]string
	// ImportMapping maps a symbolic import to what a template writes out.
	ImportMapping map[string]string
	// Primitives never contribute imports.
	Primitives        map[string]bool
	ContainerFormat   string
	ContainerImport   string
	MapFormat         string
	MapImport         string
	NullToken         string
	VoidType          string
	WideIntegerSuffix string
	AnnotationImports []string
	Naming            Naming
}

// Settings is the finalized configuration of one run. It is produced by
// ProcessOptions and handed by value to every later phase.
type Settings struct {
	Generator              string
	BaseName               string
	ArtifactID             string
	GroupID                string
	ArtifactVersion        string
	SourceFolder           string
	APIPackage             string
	ModelPackage           string
	InterfaceOnly          bool
	IncludeBuildDescriptor bool
	PermissiveTypes        bool
	TemplateDir            string
	ModelTemplate          string
	APITemplate            string
	SupportingFiles        []SupportingFile
	// AdditionalProperties carries every seeded option plus the derived
	// values, for templates.
	AdditionalProperties map[string]any
	Warnings             []string
	Language             Language
}

// HasSupportingFile reports whether f is part of the finalized list.
func (s Settings) HasSupportingFile(f SupportingFile) bool {
	for _, sf := range s.SupportingFiles {
		if sf == f {
			return true
		}
	}
	return false
}

// PackagePath turns a dotted package name into a folder below SourceFolder.
func (s Settings) PackagePath(pkg string) string {
	return path.Join(s.SourceFolder, strings.ReplaceAll(pkg, ".", "/"))
}

// Clone copies the slices and the top-level property map so the copy can be
// handed out without sharing mutable state.
func (s Settings) Clone() Settings {
	out := s
	out.SupportingFiles = append([]SupportingFile(nil), s.SupportingFiles...)
	out.Warnings = append([]string(nil), s.Warnings...)
	if s.AdditionalProperties != nil {
		out.AdditionalProperties = make(map[string]any, len(s.AdditionalProperties))
		for k, v := range s.AdditionalProperties {
			out.AdditionalProperties[k] = v
		}
	}
	return out
}

// Defaults are the per-plugin fallbacks for the common options.
type Defaults struct {
	BaseName        string
	GroupID         string
	ArtifactVersion string
	SourceFolder    string
	APIPackage      string
	ModelPackage    string
	ModelTemplate   string
	APITemplate     string
}

// ResolveCommon computes the settings every plugin shares from opts. It never
// looks at previous results, so calling it again with the same input yields
// the same Settings.
func ResolveCommon(id string, opts Options, def Defaults, lang Language) (Settings, error) {
	fail := func(option, reason string) (Settings, error) {
		return Settings{}, &ConfigError{Generator: id, Option: option, Reason: reason}
	}
	str := func(key, fallback string) (string, error) {
		v, err := opts.String(key, fallback)
		if err != nil {
			return "", &ConfigError{Generator: id, Option: key, Reason: err.Error()}
		}
		return v, nil
	}
	flag := func(key string, fallback bool) (bool, error) {
		v, err := opts.Bool(key, fallback)
		if err != nil {
			return false, &ConfigError{Generator: id, Option: key, Reason: err.Error()}
		}
		return v, nil
	}

	s := Settings{Generator: id, ModelTemplate: def.ModelTemplate, APITemplate: def.APITemplate}
	var err error
	if s.BaseName, err = str(OptBaseName, def.BaseName); err != nil {
		return Settings{}, err
	}
	if s.GroupID, err = str(OptGroupID, def.GroupID); err != nil {
		return Settings{}, err
	}
	if s.ArtifactVersion, err = str(OptArtifactVersion, def.ArtifactVersion); err != nil {
		return Settings{}, err
	}
	if s.SourceFolder, err = str(OptSourceFolder, def.SourceFolder); err != nil {
		return Settings{}, err
	}
	if s.APIPackage, err = str(OptAPIPackage, def.APIPackage); err != nil {
		return Settings{}, err
	}
	if s.ModelPackage, err = str(OptModelPackage, def.ModelPackage); err != nil {
		return Settings{}, err
	}
	if s.TemplateDir, err = str(OptTemplateDir, ""); err != nil {
		return Settings{}, err
	}
	if s.InterfaceOnly, err = flag(OptInterfaceOnly, false); err != nil {
		return Settings{}, err
	}
	if s.IncludeBuildDescriptor, err = flag(OptIncludeBuildDescriptor, true); err != nil {
		return Settings{}, err
	}
	if s.PermissiveTypes, err = flag(OptPermissiveTypes, false); err != nil {
		return Settings{}, err
	}

	for _, key := range []string{OptBaseName, OptAPIPackage, OptModelPackage} {
		if opts.IsBlank(key) {
			return fail(key, "must not be empty")
		}
	}
	if s.BaseName == "" {
		return fail(OptBaseName, "must not be empty")
	}
	if folder := path.Clean(strings.ReplaceAll(s.SourceFolder, "\\", "/")); s.SourceFolder != "" {
		if path.IsAbs(folder) || folder == ".." || strings.HasPrefix(folder, "../") {
			return fail(OptSourceFolder, fmt.Sprintf("%q must be relative to the output directory", s.SourceFolder))
		}
		s.SourceFolder = folder
	}

	suffix := "-server"
	if s.InterfaceOnly {
		suffix = "-client"
	}
	s.ArtifactID = s.BaseName + suffix
	if explicit, err := str(OptArtifactID, ""); err != nil {
		return Settings{}, err
	} else if explicit != "" {
		s.ArtifactID = explicit
	}

	switch {
	case s.IncludeBuildDescriptor && !s.InterfaceOnly, !s.IncludeBuildDescriptor && s.InterfaceOnly:
	case s.IncludeBuildDescriptor && s.InterfaceOnly:
		s.Warnings = append(s.Warnings, "interfaceOnly with includeBuildDescriptor: build descriptor kept, entry point dropped")
	default:
		s.Warnings = append(s.Warnings, "includeBuildDescriptor=false without interfaceOnly: entry point kept without a build descriptor")
	}

	extra, err := opts.StringSlice(OptAnnotationImports)
	if err != nil {
		return fail(OptAnnotationImports, err.Error())
	}
	if extra != nil {
		lang.AnnotationImports = extra
	}
	s.Language = lang

	s.AdditionalProperties = make(map[string]any, len(opts)+8)
	for k, v := range opts {
		s.AdditionalProperties[k] = v
	}
	s.AdditionalProperties[OptBaseName] = s.BaseName
	s.AdditionalProperties[OptArtifactID] = s.ArtifactID
	s.AdditionalProperties[OptGroupID] = s.GroupID
	s.AdditionalProperties[OptArtifactVersion] = s.ArtifactVersion
	s.AdditionalProperties[OptSourceFolder] = s.SourceFolder
	s.AdditionalProperties[OptAPIPackage] = s.APIPackage
	s.AdditionalProperties[OptModelPackage] = s.ModelPackage
	s.AdditionalProperties[OptInterfaceOnly] = s.InterfaceOnly
	s.AdditionalProperties[OptIncludeBuildDescriptor] = s.IncludeBuildDescriptor
	return s, nil
}
