package detect

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/rigcheck/internal/runner"
)

var (
	torchCmd      = python(DefaultSettings(), scriptTorch)
	tensorflowCmd = "TF_CPP_MIN_LOG_LEVEL=3 " + python(DefaultSettings(), scriptTensorflow)
	ollamaTagsCmd = curlJSON("http://localhost:11434/api/tags")
	lmsModelsCmd  = curlJSON("http://localhost:1234/v1/models")
)

func TestCheckPyTorch(t *testing.T) {
	tests := []struct {
		name       string
		output     string
		present    bool
		wantStatus Status
		wantVer    string
	}{
		{
			name:       "gpu available",
			present:    true,
			output:     `{"version": "2.6.0+cu128", "cuda_available": true, "device_count": 2, "cuda_version": "12.8"}`,
			wantStatus: StatusOK,
			wantVer:    "2.6.0+cu128",
		},
		{
			name:       "cpu only",
			present:    true,
			output:     `{"version": "2.6.0+cpu", "cuda_available": false, "device_count": 0, "cuda_version": null}`,
			wantStatus: StatusWarning,
			wantVer:    "2.6.0+cpu",
		},
		{
			name:       "banner before payload",
			present:    true,
			output:     "UserWarning: something\n" + `{"version": "2.5.1", "cuda_available": true, "device_count": 1, "cuda_version": "12.4"}`,
			wantStatus: StatusOK,
			wantVer:    "2.5.1",
		},
		{
			name:       "unrecognized output",
			present:    true,
			output:     "Segmentation fault",
			wantStatus: StatusWarning,
		},
		{
			name:       "import fails",
			wantStatus: StatusNotInstalled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := runner.NewStatic(nil)
			if tt.present {
				r.Set(torchCmd, tt.output)
			}

			f := runCheck(t, checkPyTorch, r)

			assert.Equal(t, tt.wantStatus, f.Status)
			assert.Equal(t, tt.wantVer, f.Version)
		})
	}
}

func TestCheckPyTorch_Details(t *testing.T) {
	r := runner.NewStatic(map[string]string{
		torchCmd: `{"version": "2.6.0", "cuda_available": true, "device_count": 2, "cuda_version": "12.8"}`,
	})

	f := runCheck(t, checkPyTorch, r)

	assert.Equal(t, "CUDA: 12.8\nGPUs: 2", f.Details)
	assert.Equal(t, "PyTorch 2.6.0 with GPU support (2 GPUs)", f.Message)
}

func TestCheckTensorFlow(t *testing.T) {
	r := runner.NewStatic(map[string]string{tensorflowCmd: `{"version": "2.18.0", "gpu_count": 1}`})
	f := runCheck(t, checkTensorFlow, r)
	assert.Equal(t, StatusOK, f.Status)
	assert.Equal(t, "2.18.0", f.Version)

	r = runner.NewStatic(map[string]string{tensorflowCmd: `{"version": "2.18.0", "gpu_count": 0}`})
	f = runCheck(t, checkTensorFlow, r)
	assert.Equal(t, StatusWarning, f.Status)
	assert.Contains(t, f.Message, "without GPU support")

	f = runCheck(t, checkTensorFlow, runner.NewStatic(nil))
	assert.Equal(t, StatusNotInstalled, f.Status)
}

func TestCheckVLLM(t *testing.T) {
	r := runner.NewStatic(map[string]string{python(DefaultSettings(), scriptVLLM): "0.7.2"})
	f := runCheck(t, checkVLLM, r)
	assert.Equal(t, StatusOK, f.Status)
	assert.Equal(t, "0.7.2", f.Version)

	assert.Equal(t, StatusNotInstalled, runCheck(t, checkVLLM, runner.NewStatic(nil)).Status)
}

func TestPython_QuotesInterpreterPath(t *testing.T) {
	tests := []struct {
		name   string
		python string
		want   string
	}{
		{"plain", "python3", "python3 -c 'print(1)' 2>/dev/null"},
		{"venv path", "/opt/venv-3.12/bin/python", "/opt/venv-3.12/bin/python -c 'print(1)' 2>/dev/null"},
		{"space", "/opt/my env/bin/python", "'/opt/my env/bin/python' -c 'print(1)' 2>/dev/null"},
		{"metacharacters", "python3; rm -rf ~", "'python3; rm -rf ~' -c 'print(1)' 2>/dev/null"},
		{"single quote", "/opt/it's/python", `'/opt/it'\''s/python' -c 'print(1)' 2>/dev/null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			s.Python = tt.python

			assert.Equal(t, tt.want, python(s, "print(1)"))
		})
	}
}

func TestPython_InterpreterPathIsNotInterpretedByShell(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	// Given: a configured interpreter that smuggles a second command
	marker := filepath.Join(t.TempDir(), "ran")
	s := DefaultSettings()
	s.Python = "nonexistent-python-rigcheck; touch " + marker

	// When: running the invocation through a real shell
	out := runner.NewExec().Run(context.Background(), python(s, "print(1)"))

	// Then: the whole value is treated as one missing binary
	assert.False(t, out.OK)
	assert.NoFileExists(t, marker)
}

func TestCheckLlamaCpp_FallbackChain(t *testing.T) {
	tests := []struct {
		name    string
		outputs map[string]string
		wantVer string
		wantMsg string
	}{
		{
			name:    "llama-server",
			outputs: map[string]string{cmdLlamaServer: "version: 4567 (2a1b3c4)\nbuilt with cc (Ubuntu 13.2.0) for x86_64-linux-gnu"},
			wantVer: "b4567",
			wantMsg: "llama.cpp b4567",
		},
		{
			name:    "llama-cli",
			outputs: map[string]string{cmdLlamaCLI: "version: 3800 (deadbee)"},
			wantVer: "b3800",
			wantMsg: "llama.cpp b3800",
		},
		{
			name:    "python binding",
			outputs: map[string]string{python(DefaultSettings(), scriptLlamaCpp): "0.3.7"},
			wantVer: "0.3.7",
			wantMsg: "llama-cpp-python 0.3.7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := runCheck(t, checkLlamaCpp, runner.NewStatic(tt.outputs))
			assert.Equal(t, StatusOK, f.Status)
			assert.Equal(t, tt.wantVer, f.Version)
			assert.Equal(t, tt.wantMsg, f.Message)
		})
	}

	assert.Equal(t, StatusNotInstalled, runCheck(t, checkLlamaCpp, runner.NewStatic(nil)).Status)
}

func TestCheckOllama(t *testing.T) {
	tests := []struct {
		name       string
		outputs    map[string]string
		wantStatus Status
		wantMsg    string
		wantDetail string
	}{
		{
			name:       "not installed",
			wantStatus: StatusNotInstalled,
			wantMsg:    "Ollama not installed",
		},
		{
			name: "installed but not running",
			outputs: map[string]string{
				cmdOllamaVersion: "Warning: could not connect to a running Ollama instance\nWarning: client version is 0.5.7",
			},
			wantStatus: StatusWarning,
			wantMsg:    "Ollama installed but not running",
		},
		{
			name: "running with a model",
			outputs: map[string]string{
				cmdOllamaVersion: "ollama version is 0.5.7",
				ollamaTagsCmd:    `{"models":[{"name":"qwen2.5-coder:32b","size":19851349856}]}`,
			},
			wantStatus: StatusOK,
			wantMsg:    "Ollama running with 1 model",
			wantDetail: "qwen2.5-coder:32b",
		},
		{
			name: "running with no models",
			outputs: map[string]string{
				cmdOllamaVersion: "ollama version is 0.5.7",
				ollamaTagsCmd:    `{"models":[]}`,
			},
			wantStatus: StatusWarning,
			wantMsg:    "Ollama running with no models available",
		},
		{
			name: "endpoint returns garbage",
			outputs: map[string]string{
				cmdOllamaVersion: "ollama version is 0.5.7",
				ollamaTagsCmd:    "<html>502</html>",
			},
			wantStatus: StatusWarning,
			wantMsg:    "Ollama installed but not running",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := runCheck(t, checkOllama, runner.NewStatic(tt.outputs))

			assert.Equal(t, tt.wantStatus, f.Status)
			assert.Equal(t, tt.wantMsg, f.Message)
			if tt.wantDetail != "" {
				assert.Contains(t, f.Details, tt.wantDetail)
			}
		})
	}
}

func TestCheckOllama_VersionAndRemoteHost(t *testing.T) {
	s := DefaultSettings()
	s.OllamaHost = "http://gpu-box:11434/"
	r := runner.NewStatic(map[string]string{
		cmdOllamaVersion: "Warning: client version is 0.6.0",
		curlJSON("http://gpu-box:11434/api/tags"): `{"models":[{"name":"b"},{"name":"a"}]}`,
	})

	f := checkOllama(t.Context(), r, s)

	assert.Equal(t, StatusOK, f.Status)
	assert.Equal(t, "0.6.0", f.Version)
	assert.Equal(t, "Host: http://gpu-box:11434/\nModels:\n- a\n- b", f.Details)
}

func TestCheckLMStudio(t *testing.T) {
	r := runner.NewStatic(map[string]string{
		cmdLMSVersion: "lms - LM Studio CLI - v0.3.9",
		lmsModelsCmd:  `{"data":[{"id":"qwen2.5-7b-instruct","object":"model"}],"object":"list"}`,
	})
	f := runCheck(t, checkLMStudio, r)
	assert.Equal(t, StatusOK, f.Status)
	assert.Equal(t, "0.3.9", f.Version)
	assert.Contains(t, f.Details, "qwen2.5-7b-instruct")

	r = runner.NewStatic(map[string]string{cmdLMSLookup: "/home/u/.lmstudio/bin/lms"})
	f = runCheck(t, checkLMStudio, r)
	assert.Equal(t, StatusWarning, f.Status)
	assert.Empty(t, f.Version)
	assert.Equal(t, "LM Studio installed but not running", f.Message)

	assert.Equal(t, StatusNotInstalled, runCheck(t, checkLMStudio, runner.NewStatic(nil)).Status)
}

func TestCheckDocker(t *testing.T) {
	tests := []struct {
		name       string
		outputs    map[string]string
		wantStatus Status
		wantMsg    string
	}{
		{
			name:       "not installed",
			wantStatus: StatusNotInstalled,
			wantMsg:    "Docker not installed",
		},
		{
			name:       "daemon down",
			outputs:    map[string]string{cmdDockerVersion: "Docker version 27.3.1, build ce12230"},
			wantStatus: StatusWarning,
			wantMsg:    "Docker installed but daemon not running",
		},
		{
			name: "running without containers",
			outputs: map[string]string{
				cmdDockerVersion: "Docker version 27.3.1, build ce12230",
				cmdDockerInfo:    "27.3.1",
			},
			wantStatus: StatusOK,
			wantMsg:    "Docker running, no containers up",
		},
		{
			name: "running with containers",
			outputs: map[string]string{
				cmdDockerVersion: "Docker version 27.3.1, build ce12230",
				cmdDockerInfo:    "27.3.1",
				cmdDockerPS:      "open-webui\tghcr.io/open-webui/open-webui:cuda\tUp 3 hours\nqdrant\tqdrant/qdrant\tUp 3 hours",
			},
			wantStatus: StatusOK,
			wantMsg:    "Docker running with 2 containers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := runCheck(t, checkDocker, runner.NewStatic(tt.outputs))
			assert.Equal(t, tt.wantStatus, f.Status)
			assert.Equal(t, tt.wantMsg, f.Message)
		})
	}
}

func TestParseDockerPS(t *testing.T) {
	containers := parseDockerPS("web\tnginx:latest\tUp 2 minutes\nlonely")

	require.Len(t, containers, 2)
	assert.Equal(t, container{Name: "web", Image: "nginx:latest", Status: "Up 2 minutes"}, containers[0])
	assert.Equal(t, container{Name: "lonely"}, containers[1])
}

func TestDevTools(t *testing.T) {
	jupyter := `Selected Jupyter core packages...
IPython          : 8.29.0
ipykernel        : 6.29.5
jupyter_core     : 5.7.2
jupyterlab       : 4.3.0
notebook         : not installed`

	tests := []struct {
		name    string
		tool    toolSpec
		outputs map[string]string
		wantVer string
	}{
		{"python", toolPython, map[string]string{"python3 --version": "Python 3.12.3"}, "3.12.3"},
		{"conda", toolConda, map[string]string{"conda --version": "conda 24.9.2"}, "24.9.2"},
		{"git", toolGit, map[string]string{"git --version": "git version 2.43.0"}, "2.43.0"},
		{"cmake", toolCMake, map[string]string{"cmake --version": "cmake version 3.28.3\n\nCMake suite maintained and supported by Kitware (kitware.com/cmake)."}, "3.28.3"},
		{"gcc", toolGCC, map[string]string{"gcc --version": "gcc (Ubuntu 13.2.0-23ubuntu4) 13.2.0\nCopyright (C) 2023"}, "13.2.0"},
		{"hf legacy", toolHuggingFace, map[string]string{"huggingface-cli version": "huggingface_hub version: 0.26.2"}, "0.26.2"},
		{"hf new", toolHuggingFace, map[string]string{"hf version": "huggingface_hub version: 0.34.4"}, "0.34.4"},
		{"hf python", toolHuggingFace, map[string]string{python(DefaultSettings(), "import huggingface_hub; print(huggingface_hub.__version__)"): "0.30.1"}, "0.30.1"},
		{"jupyter", toolJupyter, map[string]string{"jupyter --version": jupyter}, "4.3.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := runCheck(t, tt.tool.check(), runner.NewStatic(tt.outputs))
			assert.Equal(t, StatusOK, f.Status)
			assert.Equal(t, tt.wantVer, f.Version)

			absent := runCheck(t, tt.tool.check(), runner.NewStatic(nil))
			assert.Equal(t, StatusNotInstalled, absent.Status)
		})
	}
}

func TestDevTools_UnreadableVersion(t *testing.T) {
	f := runCheck(t, toolGit.check(), runner.NewStatic(map[string]string{"git --version": "git: weird build"}))
	assert.Equal(t, StatusWarning, f.Status)
	assert.Empty(t, f.Version)
}

func TestParseJupyterVersion_Preference(t *testing.T) {
	tv := parseJupyterVersion("jupyter_core : 5.7.2\nnotebook : 7.2.2")
	assert.Equal(t, "7.2.2", tv.Version)
	assert.Equal(t, "notebook 7.2.2", tv.Detail)
}
