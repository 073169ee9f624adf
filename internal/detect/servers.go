package detect

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/Aman-CERP/rigcheck/internal/runner"
)

// Server probe commands.
const (
	cmdOllamaVersion  = "ollama --version"
	cmdLMSVersion     = "lms version"
	cmdLMSHomeVersion = "$HOME/.lmstudio/bin/lms version"
	cmdLMSLookup      = "command -v lms"
	cmdDockerVersion  = "docker --version"
	cmdDockerInfo     = "docker info --format '{{.ServerVersion}}'"
	cmdDockerPS       = "docker ps --format '{{.Names}}\t{{.Image}}\t{{.Status}}'"
)

// serverStatus is the state of a local model server.
type serverStatus struct {
	Installed bool
	Version   string
	Running   bool
	Models    []string
	Host      string
}

// IsRemoteHost reports whether the server endpoint is not on this machine.
func (s serverStatus) IsRemoteHost() bool {
	return !strings.Contains(s.Host, "localhost") && !strings.Contains(s.Host, "127.0.0.1")
}

// parseOllamaVersion handles both "ollama version is 0.5.7" and the
// "client version is" warning form printed when the server is down.
func parseOllamaVersion(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "version") {
			if v := extractVersion(line); v != "" {
				return v
			}
		}
	}
	return ""
}

// parseOllamaTags decodes GET /api/tags.
func parseOllamaTags(out string) ([]string, bool) {
	var result struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		return nil, false
	}

	models := make([]string, 0, len(result.Models))
	for _, m := range result.Models {
		if m.Name != "" {
			models = append(models, m.Name)
		}
	}
	sort.Strings(models)
	return models, true
}

// parseOpenAIModels decodes GET /v1/models.
func parseOpenAIModels(out string) ([]string, bool) {
	var result struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		return nil, false
	}

	models := make([]string, 0, len(result.Data))
	for _, m := range result.Data {
		if m.ID != "" {
			models = append(models, m.ID)
		}
	}
	sort.Strings(models)
	return models, true
}

func classifyServer(name string, st serverStatus) Finding {
	if !st.Installed && !st.Running {
		return Finding{Status: StatusNotInstalled, Message: name + " not installed"}
	}

	f := Finding{Version: st.Version}
	var details []string
	if st.IsRemoteHost() {
		details = append(details, "Host: "+st.Host)
	}

	switch {
	case !st.Running:
		f.Status = StatusWarning
		f.Message = name + " installed but not running"
	case len(st.Models) == 0:
		f.Status = StatusWarning
		f.Message = name + " running with no models available"
	default:
		f.Status = StatusOK
		f.Message = fmt.Sprintf("%s running with %s", name, pluralize(len(st.Models), "model"))
		details = append(details, "Models:", bulletList(st.Models))
	}
	f.Details = strings.Join(details, "\n")
	return f
}

// queryModels asks a server endpoint for its models.
func queryModels(ctx context.Context, r runner.Runner, url string, parse func(string) ([]string, bool)) (models []string, running bool) {
	out, ok := r.Run(ctx, curlJSON(url)).Value()
	if !ok {
		return nil, false
	}
	models, ok = parse(out)
	return models, ok
}

func checkOllama(ctx context.Context, r runner.Runner, s Settings) Finding {
	st := serverStatus{Host: s.OllamaHost}
	if out, ok := r.Run(ctx, cmdOllamaVersion).Value(); ok {
		st.Installed = true
		st.Version = parseOllamaVersion(out)
	}
	st.Models, st.Running = queryModels(ctx, r, joinURL(s.OllamaHost, "/api/tags"), parseOllamaTags)
	return classifyServer("Ollama", st)
}

func checkLMStudio(ctx context.Context, r runner.Runner, s Settings) Finding {
	st := serverStatus{Host: s.LMStudioHost}
	if out, cmd, ok := firstOutput(ctx, r, cmdLMSVersion, cmdLMSHomeVersion, cmdLMSLookup); ok {
		st.Installed = true
		if cmd != cmdLMSLookup {
			st.Version = extractVersion(out)
		}
	}
	st.Models, st.Running = queryModels(ctx, r, joinURL(s.LMStudioHost, "/v1/models"), parseOpenAIModels)
	return classifyServer("LM Studio", st)
}

// --- Docker ---

type container struct {
	Name   string
	Image  string
	Status string
}

// parseDockerPS reads tab-separated "name image status" rows.
func parseDockerPS(out string) []container {
	var containers []container
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", 3)
		c := container{Name: fields[0]}
		if len(fields) > 1 {
			c.Image = fields[1]
		}
		if len(fields) > 2 {
			c.Status = fields[2]
		}
		containers = append(containers, c)
	}
	return containers
}

func checkDocker(ctx context.Context, r runner.Runner, _ Settings) Finding {
	out, ok := r.Run(ctx, cmdDockerVersion).Value()
	if !ok {
		return Finding{Status: StatusNotInstalled, Message: "Docker not installed"}
	}
	version := extractVersion(out)

	serverVersion, ok := r.Run(ctx, cmdDockerInfo).Value()
	if !ok {
		return Finding{
			Status:  StatusWarning,
			Version: version,
			Message: "Docker installed but daemon not running",
		}
	}

	f := Finding{
		Status:  StatusOK,
		Version: version,
		Details: "Server: " + serverVersion,
	}
	containers := parseDockerPS(r.Run(ctx, cmdDockerPS).Stdout)
	if len(containers) == 0 {
		f.Message = "Docker running, no containers up"
		return f
	}

	items := make([]string, len(containers))
	for i, c := range containers {
		item := c.Name
		if c.Image != "" {
			item += " (" + c.Image + ")"
		}
		if c.Status != "" {
			item += " " + c.Status
		}
		items[i] = item
	}
	f.Details += "\nContainers:\n" + bulletList(items)
	f.Message = fmt.Sprintf("Docker running with %s", pluralize(len(containers), "container"))
	return f
}
