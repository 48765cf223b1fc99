package detector

import (
	"encoding/json"
	"strings"

	"sdkbench/pkg/runtime"
)

// PackageJSON represents the parts of package.json detection cares about
type PackageJSON struct {
	Name         string            `json:"name"`
	Scripts      map[string]string `json:"scripts"`
	Dependencies map[string]string `json:"dependencies"`
	DevDeps      map[string]string `json:"devDependencies"`
	Valid        bool              `json:"-"`
}

// ParsePackageJSON reads package.json from the reader root. A missing or
// malformed manifest yields an empty, invalid PackageJSON.
func ParsePackageJSON(fs *FSReader) PackageJSON {
	content := fs.Read("package.json")
	if content == "" {
		return PackageJSON{}
	}

	var pkg PackageJSON
	if err := json.Unmarshal([]byte(content), &pkg); err != nil {
		return PackageJSON{}
	}
	pkg.Valid = true
	return pkg
}

// AllDeps merges dependencies and devDependencies
func (p PackageJSON) AllDeps() map[string]string {
	merged := make(map[string]string, len(p.Dependencies)+len(p.DevDeps))
	for k, v := range p.Dependencies {
		merged[k] = v
	}
	for k, v := range p.DevDeps {
		merged[k] = v
	}
	return merged
}

// HasDep reports whether name is a dependency or devDependency
func (p PackageJSON) HasDep(name string) bool {
	_, ok := p.AllDeps()[name]
	return ok
}

// TestScript returns the "test" script, or ""
func (p PackageJSON) TestScript() string {
	return p.Scripts["test"]
}

// frameworkDeps maps a test framework to the packages that indicate it,
// checked in this order
var frameworkDeps = []struct {
	framework runtime.Framework
	packages  []string
}{
	{runtime.FrameworkVitest, []string{"vitest"}},
	{runtime.FrameworkJest, []string{"jest", "ts-jest", "@jest/globals", "@types/jest", "babel-jest"}},
	{runtime.FrameworkMocha, []string{"mocha", "@types/mocha", "ts-mocha"}},
}

// DetectTestFramework classifies the JS/TS test framework. Declared
// dependencies win over the test script, which wins over the default (Jest).
// The second return value says where the answer came from.
func DetectTestFramework(pkg PackageJSON) (runtime.Framework, string) {
	deps := pkg.AllDeps()
	for _, fd := range frameworkDeps {
		for _, name := range fd.packages {
			if _, ok := deps[name]; ok {
				return fd.framework, "dependency " + name
			}
		}
	}

	script := strings.ToLower(pkg.TestScript())
	for _, fd := range frameworkDeps {
		if strings.Contains(script, string(fd.framework)) {
			return fd.framework, "test script"
		}
	}

	return runtime.FrameworkJest, "default"
}

// UsesTypeScript reports whether the project is TypeScript rather than plain JS
func UsesTypeScript(fs *FSReader, pkg PackageJSON) bool {
	if fs.Has("tsconfig.json") || pkg.HasDep("typescript") || pkg.HasDep("ts-node") {
		return true
	}
	return fs.ContainsExt(".ts") || fs.ContainsExt(".tsx")
}
