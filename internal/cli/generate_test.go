package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/swagger2code/internal/codegen"
)

// captureConfig runs the root command with a runner that records the
// resolved config instead of generating. Callers must not run in parallel.
func captureConfig(t *testing.T, args ...string) (*GenerateConfig, error) {
	t.Helper()
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	var captured *GenerateConfig
	generateRunner = func(ctx context.Context, cfg *GenerateConfig) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { generateRunner = runGenerate })

	root.SetArgs(args)
	err := root.Execute()
	return captured, err
}

func TestGenerateConfigFromFlags(t *testing.T) {
	captured, err := captureConfig(t,
		"--verbose",
		"generate",
		"-i", "spec.yaml",
		"-g", "spring,JAXRS-SPEC",
		"-o", "./build",
		"-D", "interfaceOnly=true",
		"-D", "apiPackage=com.acme.api",
		"-D", "generatePom=false",
		"--template-dir", "./tpl",
		"--include-tags", "foo,bar",
		"--exclude-tags", "baz",
		"--parallelism", "3",
		"--dry-run",
		"--force",
	)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if captured == nil {
		t.Fatalf("expected config to be captured")
	}

	if captured.Input != "spec.yaml" {
		t.Errorf("input mismatch: got %q", captured.Input)
	}
	if want := []string{"spring", "jaxrs-spec"}; !equalStringSlices(captured.Generators, want) {
		t.Errorf("generators mismatch: got %v", captured.Generators)
	}
	if captured.Out != "./build" {
		t.Errorf("out mismatch: got %q", captured.Out)
	}
	if captured.Options[codegen.OptInterfaceOnly] != "true" || captured.Options[codegen.OptAPIPackage] != "com.acme.api" {
		t.Errorf("options mismatch: got %v", captured.Options)
	}
	if captured.Options[codegen.OptIncludeBuildDescriptor] != "false" {
		t.Errorf("generatePom alias not applied: got %v", captured.Options)
	}
	if captured.TemplateDir != "./tpl" {
		t.Errorf("template dir mismatch: got %q", captured.TemplateDir)
	}
	if want := []string{"foo", "bar"}; !equalStringSlices(captured.IncludeTags, want) {
		t.Errorf("include tags mismatch: got %v", captured.IncludeTags)
	}
	if want := []string{"baz"}; !equalStringSlices(captured.ExcludeTags, want) {
		t.Errorf("exclude tags mismatch: got %v", captured.ExcludeTags)
	}
	if captured.Parallelism != 3 {
		t.Errorf("parallelism mismatch: got %d", captured.Parallelism)
	}
	if !captured.DryRun {
		t.Errorf("expected dry-run true")
	}
	if !captured.Force {
		t.Errorf("expected force true")
	}
	if !captured.Verbose || captured.LogLevel != "debug" {
		t.Errorf("expected verbose debug logging, got verbose=%v level=%q", captured.Verbose, captured.LogLevel)
	}
}

func TestGenerateConfigDefaults(t *testing.T) {
	captured, err := captureConfig(t, "generate", "--input", "spec.yaml")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if want := []string{defaultGenerator}; !equalStringSlices(captured.Generators, want) {
		t.Errorf("generators: want %v got %v", want, captured.Generators)
	}
	if captured.LogLevel != "info" {
		t.Errorf("log level: want info got %q", captured.LogLevel)
	}
	if captured.HTTPTimeout != 10*time.Second {
		t.Errorf("http timeout: want 10s got %v", captured.HTTPTimeout)
	}
	if len(captured.Options) != 0 {
		t.Errorf("options: want none got %v", captured.Options)
	}
}

func TestGenerateConfigPrecedence(t *testing.T) {
	t.Setenv("SWAGGER2CODE_PARALLELISM", "2")
	t.Setenv("SWAGGER2CODE_TEMPLATE_DIR", "from-env")
	t.Setenv("SWAGGER2CODE_LOG_LEVEL", "warn")
	t.Setenv("SWAGGER2CODE_HTTP_TIMEOUT", "3s")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	configContent := strings.TrimSpace(`input: config-spec.yaml
generators: [spring]
out: from-config
options:
  baseName: petstore
  artifactVersion: 2.5
  interfaceOnly: true
  annotationImports: [Schema, Valid]
templateDir: from-config-templates
includeTags:
  - cfgFoo
excludeTags: cfgBar
parallelism: 4
dryRun: true
force: false
verbose: true
`) + "\n"

	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	captured, err := captureConfig(t,
		"--config", configPath,
		"generate",
		"--input", "flag-spec.yaml",
		"--include-tags", "flagTag",
		"-D", "baseName=from-flag",
		"--dry-run=false",
		"--force",
	)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if captured == nil {
		t.Fatalf("expected config to be captured")
	}

	if captured.Input != "flag-spec.yaml" {
		t.Errorf("input: want %q got %q", "flag-spec.yaml", captured.Input)
	}
	if want := []string{"spring"}; !equalStringSlices(captured.Generators, want) {
		t.Errorf("generators: want %v got %v", want, captured.Generators)
	}
	if captured.Out != "from-config" {
		t.Errorf("out: want from-config got %q", captured.Out)
	}
	if want := []string{"flagTag"}; !equalStringSlices(captured.IncludeTags, want) {
		t.Errorf("include tags: want %v got %v", want, captured.IncludeTags)
	}
	if want := []string{"cfgBar"}; !equalStringSlices(captured.ExcludeTags, want) {
		t.Errorf("exclude tags: want %v got %v", want, captured.ExcludeTags)
	}
	if captured.Options[codegen.OptBaseName] != "from-flag" {
		t.Errorf("baseName: flag should win, got %v", captured.Options[codegen.OptBaseName])
	}
	if captured.Options[codegen.OptArtifactVersion] != "2.5" {
		t.Errorf("artifactVersion: want 2.5 got %v", captured.Options[codegen.OptArtifactVersion])
	}
	if captured.Options[codegen.OptInterfaceOnly] != true {
		t.Errorf("interfaceOnly: want true got %v", captured.Options[codegen.OptInterfaceOnly])
	}
	if list, _ := captured.Options.StringSlice(codegen.OptAnnotationImports); !equalStringSlices(list, []string{"Schema", "Valid"}) {
		t.Errorf("annotationImports: got %v", list)
	}
	if captured.TemplateDir != "from-config-templates" {
		t.Errorf("template dir: config should beat env, got %q", captured.TemplateDir)
	}
	if captured.Parallelism != 4 {
		t.Errorf("parallelism: config should beat env, got %d", captured.Parallelism)
	}
	if captured.HTTPTimeout != 3*time.Second {
		t.Errorf("http timeout: want env value 3s got %v", captured.HTTPTimeout)
	}
	if captured.DryRun {
		t.Errorf("expected dry-run false after flag override")
	}
	if !captured.Force {
		t.Errorf("expected force true after flag override")
	}
	if !captured.Verbose || captured.LogLevel != "debug" {
		t.Errorf("expected verbose from config file to force debug, got %q", captured.LogLevel)
	}
	if captured.ConfigPath != configPath {
		t.Errorf("config path mismatch: got %q", captured.ConfigPath)
	}
}

func TestGenerateConfigEnvironmentErrors(t *testing.T) {
	t.Setenv("SWAGGER2CODE_PARALLELISM", "many")
	_, err := captureConfig(t, "generate", "--input", "spec.yaml")
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestGenerateConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"missing input", []string{"generate"}, "--input is required"},
		{"unknown generator", []string{"generate", "-i", "s.yaml", "-g", "cobol"}, `unknown --generator "cobol"`},
		{"tag overlap", []string{"generate", "-i", "s.yaml", "--include-tags", "a,b", "--exclude-tags", "b"}, "overlap: b"},
		{"bad option", []string{"generate", "-i", "s.yaml", "-D", "interfaceOnly"}, "key=value"},
		{"negative parallelism", []string{"generate", "-i", "s.yaml", "--parallelism", "-1"}, "must not be negative"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := captureConfig(t, tc.args...)
			if !errors.Is(err, ErrUsage) {
				t.Fatalf("expected usage error, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestGenerateConfigUnknownKey(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad.yaml")
	if err := os.WriteFile(configPath, []byte("unknown: value\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	root.SetArgs([]string{
		"--config", configPath,
		"generate",
		"--input", "spec.yaml",
	})

	err := root.Execute()
	if err == nil {
		t.Fatalf("expected an error")
	}
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if !strings.Contains(err.Error(), "unknown field") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestParseOption(t *testing.T) {
	t.Parallel()
	key, value, err := parseOption(" moduleName = example.com/x=y ")
	if err != nil {
		t.Fatalf("parseOption: %v", err)
	}
	if key != "moduleName" || value != "example.com/x=y" {
		t.Fatalf("got %q=%q", key, value)
	}
	if _, _, err := parseOption("=x"); !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error for empty key, got %v", err)
	}
}

func TestDeriveOutDir(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"Swagger Petstore": "swagger-petstore",
		"Orders/API v1.2":  "orders-api-v1-2",
		"   ":              "generated",
	}
	for title, want := range cases {
		if got := deriveOutDir(title); got != want {
			t.Errorf("deriveOutDir(%q) = %q, want %q", title, got, want)
		}
	}
}

func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
