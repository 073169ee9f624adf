package detect

import (
	"context"
	"strings"

	"github.com/Aman-CERP/rigcheck/internal/runner"
)

// toolVersion is a detected command-line tool.
type toolVersion struct {
	Version string
	Detail  string
}

// versionParser turns raw command output into a toolVersion.
type versionParser func(out string) toolVersion

// parseFirstLineVersion takes the first version number on the first line.
func parseFirstLineVersion(out string) toolVersion {
	return toolVersion{Version: extractVersion(firstLine(out))}
}

// parseGCCVersion takes the last field of the banner; distro tags in
// parentheses carry their own version-like strings.
func parseGCCVersion(out string) toolVersion {
	fields := strings.Fields(firstLine(out))
	if len(fields) == 0 {
		return toolVersion{}
	}
	return toolVersion{Version: extractVersion(fields[len(fields)-1])}
}

// parseJupyterVersion reads the "package : version" listing and prefers
// jupyterlab, then notebook, then jupyter_core.
func parseJupyterVersion(out string) toolVersion {
	packages := map[string]string{}
	for _, line := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if v := extractVersion(value); v != "" {
			packages[strings.TrimSpace(key)] = v
		}
	}

	for _, pkg := range []string{"jupyterlab", "notebook", "jupyter_core"} {
		if v, ok := packages[pkg]; ok {
			return toolVersion{Version: v, Detail: pkg + " " + v}
		}
	}
	return toolVersion{}
}

// toolSpec describes a dev tool probe: the commands to try, in order, and
// how to read their output.
type toolSpec struct {
	Name     string
	Commands func(s Settings) []string
	Parse    versionParser
}

func commands(cmds ...string) func(Settings) []string {
	return func(Settings) []string { return cmds }
}

func classifyTool(name string, tv toolVersion) Finding {
	if tv.Version == "" {
		return Finding{
			Status:  StatusWarning,
			Details: tv.Detail,
			Message: name + " found but its version could not be read",
		}
	}
	return Finding{
		Status:  StatusOK,
		Version: tv.Version,
		Details: tv.Detail,
		Message: name + " " + tv.Version,
	}
}

// check builds the CheckFunc for a tool.
func (t toolSpec) check() CheckFunc {
	return func(ctx context.Context, r runner.Runner, s Settings) Finding {
		out, _, ok := firstOutput(ctx, r, t.Commands(s)...)
		if !ok {
			return Finding{Status: StatusNotInstalled, Message: t.Name + " not installed"}
		}
		return classifyTool(t.Name, t.Parse(out))
	}
}

var (
	toolPython = toolSpec{
		Name:     "Python",
		Commands: func(s Settings) []string { return []string{s.Python + " --version"} },
		Parse:    parseFirstLineVersion,
	}
	toolConda = toolSpec{
		Name:     "Conda",
		Commands: commands("conda --version"),
		Parse:    parseFirstLineVersion,
	}
	toolGit = toolSpec{
		Name:     "Git",
		Commands: commands("git --version"),
		Parse:    parseFirstLineVersion,
	}
	toolCMake = toolSpec{
		Name:     "CMake",
		Commands: commands("cmake --version"),
		Parse:    parseFirstLineVersion,
	}
	toolGCC = toolSpec{
		Name:     "GCC",
		Commands: commands("gcc --version"),
		Parse:    parseGCCVersion,
	}
	toolHuggingFace = toolSpec{
		Name: "Hugging Face CLI",
		Commands: func(s Settings) []string {
			return []string{
				"huggingface-cli version",
				"hf version",
				python(s, "import huggingface_hub; print(huggingface_hub.__version__)"),
			}
		},
		Parse: parseFirstLineVersion,
	}
	toolJupyter = toolSpec{
		Name:     "Jupyter",
		Commands: commands("jupyter --version"),
		Parse:    parseJupyterVersion,
	}
)
