package templates

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"

	"github.com/mark3labs/swagger2code/internal/codegen"
)

// ErrMissingBinding is returned by the must filter for an unset value.
var ErrMissingBinding = errors.New("missing template binding")

var (
	filtersOnce sync.Once
	filtersErr  error
)

// registerFilters installs the generator filters in pongo2's global registry.
func registerFilters() error {
	filtersOnce.Do(func() {
		strict := bluemonday.StrictPolicy()
		filters := map[string]pongo2.FilterFunction{
			"must":      filterMust,
			"camelize":  stringFilter(codegen.Camel),
			"pascalize": stringFilter(codegen.Pascal),
			"snake":     stringFilter(codegen.Snake),
			"quote":     stringFilter(strconv.Quote),
			"gocomment": stringFilter(func(s string) string { return commentLines(s, "// ") }),
			"javadoc": stringFilter(func(s string) string {
				s = strings.ReplaceAll(strict.Sanitize(s), "*/", "*&#47;")
				return commentLines(s, " * ")
			}),
		}
		for _, name := range []string{"must", "camelize", "pascalize", "snake", "quote", "gocomment", "javadoc"} {
			if pongo2.FilterExists(name) {
				continue
			}
			if err := pongo2.RegisterFilter(name, filters[name]); err != nil {
				filtersErr = fmt.Errorf("templates: register filter %q: %w", name, err)
				return
			}
		}
	})
	return filtersErr
}

// filterMust fails rendering when the bound value is missing. The parameter,
// when given, names the binding in the error.
func filterMust(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.IsNil() {
		name := "value"
		if param != nil && !param.IsNil() && param.String() != "" {
			name = param.String()
		}
		return nil, &pongo2.Error{Sender: "filter:must", OrigError: fmt.Errorf("%w: %s", ErrMissingBinding, name)}
	}
	return in, nil
}

func stringFilter(fn func(string) string) pongo2.FilterFunction {
	return func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		return pongo2.AsValue(fn(in.String())), nil
	}
}

// commentLines trims s and prefixes every line after the first with prefix.
func commentLines(s, prefix string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t\r")
	}
	return strings.Join(lines, "\n"+prefix)
}
