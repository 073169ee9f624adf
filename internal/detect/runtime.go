package detect

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Aman-CERP/rigcheck/internal/runner"
)

// Runtime probe commands.
const (
	cmdProcVersion   = "cat /proc/version"
	cmdNvcc          = "nvcc --version"
	cmdNvccFallback  = "/usr/local/cuda/bin/nvcc --version"
	cmdNvidiaSMI     = "nvidia-smi"
	cmdCudnnDpkg     = "dpkg -l 2>/dev/null | grep -i '^ii.*cudnn'"
	cmdCudnnHeader   = "cat /usr/include/cudnn_version.h /usr/include/x86_64-linux-gnu/cudnn_version.h /usr/local/cuda/include/cudnn_version.h 2>/dev/null | grep -E '#define CUDNN_(MAJOR|MINOR|PATCHLEVEL) '"
	cmdCudnnLdconfig = "ldconfig -p 2>/dev/null | grep libcudnn"
	cmdCTK           = "nvidia-ctk --version"
	cmdCTKDpkg       = "dpkg -l nvidia-container-toolkit 2>/dev/null | grep '^ii'"
)

var (
	kernelPattern      = regexp.MustCompile(`Linux version (\S+)`)
	nvccReleasePattern = regexp.MustCompile(`release (\d+\.\d+)`)
	driverCUDAPattern  = regexp.MustCompile(`CUDA Version:\s*(\d+\.\d+)`)
	cudnnDefinePattern = regexp.MustCompile(`#define CUDNN_(MAJOR|MINOR|PATCHLEVEL)\s+(\d+)`)
	cudnnLibPattern    = regexp.MustCompile(`libcudnn\.so\.(\d+(?:\.\d+)*)`)
)

// --- WSL ---

type wslInfo struct {
	Present bool
	WSL2    bool
	Kernel  string
	Raw     string
}

// parseProcVersion looks for the Microsoft kernel marker in /proc/version.
func parseProcVersion(out string) wslInfo {
	lower := strings.ToLower(out)
	info := wslInfo{
		Present: strings.Contains(lower, "microsoft") || strings.Contains(lower, "wsl"),
		WSL2:    strings.Contains(lower, "wsl2"),
		Raw:     firstLine(out),
	}
	if m := kernelPattern.FindStringSubmatch(out); m != nil {
		info.Kernel = extractVersion(m[1])
	}
	return info
}

func classifyWSL(info wslInfo, t Thresholds) Finding {
	if !info.Present {
		return Finding{Status: StatusError, Message: "WSL not detected"}
	}

	label := "WSL"
	if info.WSL2 {
		label = "WSL2"
	}
	f := Finding{Version: info.Kernel, Details: info.Raw}

	switch {
	case info.Kernel == "":
		f.Status = StatusWarning
		f.Message = label + " detected but the kernel version could not be read"
	case atLeast(info.Kernel, t.MinWSLKernel):
		f.Status = StatusOK
		f.Message = fmt.Sprintf("%s kernel %s", label, info.Kernel)
	default:
		f.Status = StatusWarning
		f.Message = fmt.Sprintf("%s kernel %s is older than %s", label, info.Kernel, t.MinWSLKernel)
	}
	return f
}

func checkWSL(ctx context.Context, r runner.Runner, s Settings) Finding {
	out, _ := r.Run(ctx, cmdProcVersion).Value()
	return classifyWSL(parseProcVersion(out), s.Thresholds)
}

// --- CUDA ---

type cudaSource int

const (
	cudaAbsent cudaSource = iota
	cudaCompiler
	cudaDriverOnly
)

type cudaToolkit struct {
	Source  cudaSource
	Version string
	Detail  string
}

// parseNvcc extracts "release X.Y" from nvcc --version.
func parseNvcc(out string) string {
	if m := nvccReleasePattern.FindStringSubmatch(out); m != nil {
		return m[1]
	}
	return ""
}

// parseDriverCUDA extracts the "CUDA Version" from the nvidia-smi banner.
func parseDriverCUDA(out string) string {
	if m := driverCUDAPattern.FindStringSubmatch(out); m != nil {
		return m[1]
	}
	return ""
}

func classifyCUDA(tk cudaToolkit, t Thresholds) Finding {
	switch tk.Source {
	case cudaCompiler:
		f := Finding{Version: tk.Version, Details: tk.Detail}
		switch {
		case tk.Version == "":
			f.Status = StatusWarning
			f.Message = "nvcc found but its release could not be read"
		case atLeast(tk.Version, t.MinCUDAVersion):
			f.Status = StatusOK
			f.Message = "CUDA " + tk.Version
		default:
			f.Status = StatusWarning
			f.Message = fmt.Sprintf("CUDA %s is below the required %s", tk.Version, t.MinCUDAVersion)
		}
		return f
	case cudaDriverOnly:
		return Finding{
			Status:  StatusWarning,
			Version: tk.Version,
			Message: fmt.Sprintf("CUDA toolkit not installed; driver supports CUDA %s", tk.Version),
		}
	default:
		return Finding{Status: StatusNotInstalled, Message: "CUDA toolkit not installed"}
	}
}

func checkCUDA(ctx context.Context, r runner.Runner, s Settings) Finding {
	if out, cmd, ok := firstOutput(ctx, r, cmdNvcc, cmdNvccFallback); ok {
		return classifyCUDA(cudaToolkit{
			Source:  cudaCompiler,
			Version: parseNvcc(out),
			Detail:  "nvcc: " + strings.TrimSuffix(cmd, " --version"),
		}, s.Thresholds)
	}
	if out, ok := r.Run(ctx, cmdNvidiaSMI).Value(); ok {
		if v := parseDriverCUDA(out); v != "" {
			return classifyCUDA(cudaToolkit{Source: cudaDriverOnly, Version: v}, s.Thresholds)
		}
	}
	return classifyCUDA(cudaToolkit{}, s.Thresholds)
}

// --- cuDNN ---

// parseDpkgVersion returns the version column of the first "ii" row.
func parseDpkgVersion(out string) (pkg, version string) {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 3 && fields[0] == "ii" {
			return fields[1], fields[2]
		}
	}
	return "", ""
}

// parseCudnnHeader assembles MAJOR.MINOR.PATCHLEVEL from cudnn_version.h.
func parseCudnnHeader(out string) string {
	parts := map[string]string{}
	for _, m := range cudnnDefinePattern.FindAllStringSubmatch(out, -1) {
		if _, seen := parts[m[1]]; !seen {
			parts[m[1]] = m[2]
		}
	}
	major, ok := parts["MAJOR"]
	if !ok {
		return ""
	}
	v := major
	if minor, ok := parts["MINOR"]; ok {
		v += "." + minor
		if patch, ok := parts["PATCHLEVEL"]; ok {
			v += "." + patch
		}
	}
	return v
}

// parseCudnnLib returns the soname version of the first libcudnn entry.
func parseCudnnLib(out string) string {
	if m := cudnnLibPattern.FindStringSubmatch(out); m != nil {
		return m[1]
	}
	return ""
}

func checkCuDNN(ctx context.Context, r runner.Runner, _ Settings) Finding {
	if out, ok := r.Run(ctx, cmdCudnnDpkg).Value(); ok {
		if pkg, v := parseDpkgVersion(out); v != "" {
			return Finding{
				Status:  StatusOK,
				Version: extractVersion(v),
				Details: "Package: " + pkg,
				Message: "cuDNN " + extractVersion(v),
			}
		}
	}
	if out, ok := r.Run(ctx, cmdCudnnHeader).Value(); ok {
		if v := parseCudnnHeader(out); v != "" {
			return Finding{
				Status:  StatusOK,
				Version: v,
				Details: "Source: cudnn_version.h",
				Message: "cuDNN " + v,
			}
		}
	}
	if out, ok := r.Run(ctx, cmdCudnnLdconfig).Value(); ok {
		v := parseCudnnLib(out)
		f := Finding{
			Status:  StatusOK,
			Version: v,
			Details: firstLine(out),
			Message: "cuDNN shared library found",
		}
		if v != "" {
			f.Message = "cuDNN " + v + " shared library found"
		}
		return f
	}
	return Finding{Status: StatusNotInstalled, Message: "cuDNN not installed"}
}

// --- NVIDIA Container Toolkit ---

func checkContainerToolkit(ctx context.Context, r runner.Runner, _ Settings) Finding {
	if out, ok := r.Run(ctx, cmdCTK).Value(); ok {
		v := extractVersion(firstLine(out))
		return Finding{
			Status:  StatusOK,
			Version: v,
			Message: strings.TrimSpace("NVIDIA Container Toolkit " + v),
		}
	}
	if out, ok := r.Run(ctx, cmdCTKDpkg).Value(); ok {
		if _, v := parseDpkgVersion(out); v != "" {
			return Finding{
				Status:  StatusOK,
				Version: extractVersion(v),
				Details: "Source: dpkg",
				Message: "NVIDIA Container Toolkit " + extractVersion(v),
			}
		}
	}
	return Finding{Status: StatusNotInstalled, Message: "NVIDIA Container Toolkit not installed"}
}
