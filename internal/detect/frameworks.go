package detect

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/Aman-CERP/rigcheck/internal/runner"
)

// Python snippets print a single JSON object on success.
const (
	scriptTorch      = `import json, torch; print(json.dumps({"version": torch.__version__, "cuda_available": torch.cuda.is_available(), "device_count": torch.cuda.device_count(), "cuda_version": torch.version.cuda}))`
	scriptTensorflow = `import json, tensorflow as tf; print(json.dumps({"version": tf.__version__, "gpu_count": len(tf.config.list_physical_devices("GPU"))}))`
	scriptVLLM       = `import vllm; print(vllm.__version__)`
	scriptLlamaCpp   = `import llama_cpp; print(llama_cpp.__version__)`
)

const (
	cmdLlamaServer = "llama-server --version 2>&1"
	cmdLlamaCLI    = "llama-cli --version 2>&1"
)

var llamaBuildPattern = regexp.MustCompile(`version:\s*(\d+)(?:\s*\(([0-9a-f]+)\))?`)

// frameworkInfo is the decoded output of a framework import snippet.
type frameworkInfo struct {
	Version       string `json:"version"`
	CUDAAvailable bool   `json:"cuda_available"`
	DeviceCount   int    `json:"device_count"`
	CUDAVersion   string `json:"cuda_version"`
	GPUCount      int    `json:"gpu_count"`
}

// GPUs is the number of accelerators the framework can see.
func (f frameworkInfo) GPUs() int {
	return max(f.DeviceCount, f.GPUCount)
}

// parseFrameworkJSON decodes the last JSON line of out. Frameworks sometimes
// print banners before the payload.
func parseFrameworkJSON(out string) (frameworkInfo, bool) {
	lines := strings.Split(out, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var info frameworkInfo
		if err := json.Unmarshal([]byte(line), &info); err != nil {
			return frameworkInfo{}, false
		}
		return info, info.Version != ""
	}
	return frameworkInfo{}, false
}

func classifyFramework(name string, info frameworkInfo, gpuReady bool) Finding {
	var details []string
	if info.CUDAVersion != "" {
		details = append(details, "CUDA: "+info.CUDAVersion)
	}
	details = append(details, fmt.Sprintf("GPUs: %d", info.GPUs()))

	f := Finding{Version: info.Version, Details: strings.Join(details, "\n")}
	if gpuReady {
		f.Status = StatusOK
		f.Message = fmt.Sprintf("%s %s with GPU support (%s)", name, info.Version, pluralize(info.GPUs(), "GPU"))
	} else {
		f.Status = StatusWarning
		f.Message = fmt.Sprintf("%s %s installed without GPU support", name, info.Version)
	}
	return f
}

func checkPyTorch(ctx context.Context, r runner.Runner, s Settings) Finding {
	out, ok := r.Run(ctx, python(s, scriptTorch)).Value()
	if !ok {
		return Finding{Status: StatusNotInstalled, Message: "PyTorch not installed"}
	}
	info, ok := parseFrameworkJSON(out)
	if !ok {
		return Finding{Status: StatusWarning, Message: "PyTorch import output could not be parsed"}
	}
	return classifyFramework("PyTorch", info, info.CUDAAvailable && info.DeviceCount > 0)
}

func checkTensorFlow(ctx context.Context, r runner.Runner, s Settings) Finding {
	out, ok := r.Run(ctx, "TF_CPP_MIN_LOG_LEVEL=3 "+python(s, scriptTensorflow)).Value()
	if !ok {
		return Finding{Status: StatusNotInstalled, Message: "TensorFlow not installed"}
	}
	info, ok := parseFrameworkJSON(out)
	if !ok {
		return Finding{Status: StatusWarning, Message: "TensorFlow import output could not be parsed"}
	}
	return classifyFramework("TensorFlow", info, info.GPUCount > 0)
}

func checkVLLM(ctx context.Context, r runner.Runner, s Settings) Finding {
	out, ok := r.Run(ctx, python(s, scriptVLLM)).Value()
	if !ok {
		return Finding{Status: StatusNotInstalled, Message: "vLLM not installed"}
	}
	v := extractVersion(firstLine(out))
	return Finding{Status: StatusOK, Version: v, Message: strings.TrimSpace("vLLM " + v)}
}

// parseLlamaBuild reads "version: 4567 (abc1234)" as build b4567.
func parseLlamaBuild(out string) (version, commit string) {
	m := llamaBuildPattern.FindStringSubmatch(out)
	if m == nil {
		return "", ""
	}
	return "b" + m[1], m[2]
}

func checkLlamaCpp(ctx context.Context, r runner.Runner, s Settings) Finding {
	for _, cmd := range []string{cmdLlamaServer, cmdLlamaCLI} {
		out, ok := r.Run(ctx, cmd).Value()
		if !ok {
			continue
		}
		binary, _, _ := strings.Cut(cmd, " ")
		f := Finding{Status: StatusOK, Details: "Binary: " + binary}
		version, commit := parseLlamaBuild(out)
		f.Version = version
		if commit != "" {
			f.Details += "\nCommit: " + commit
		}
		f.Message = strings.TrimSpace("llama.cpp " + version)
		return f
	}

	if out, ok := r.Run(ctx, python(s, scriptLlamaCpp)).Value(); ok {
		v := extractVersion(firstLine(out))
		return Finding{
			Status:  StatusOK,
			Version: v,
			Details: "Python binding: llama-cpp-python",
			Message: strings.TrimSpace("llama-cpp-python " + v),
		}
	}
	return Finding{Status: StatusNotInstalled, Message: "llama.cpp not installed"}
}
