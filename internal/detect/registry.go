package detect

// DefaultProbes returns the built-in probes in registration order.
// Results of a scan are always reported in this order.
func DefaultProbes() []Probe {
	return []Probe{
		{ID: "cpu", Name: "CPU", Category: CategoryHardware, Check: checkCPU},
		{ID: "gpu", Name: "GPU", Category: CategoryHardware, Check: checkGPU},
		{ID: "ram", Name: "RAM", Category: CategoryHardware, Check: checkRAM},
		{ID: "disk", Name: "Disk", Category: CategoryHardware, Check: checkDisk},

		{ID: "wsl", Name: "WSL", Category: CategoryAIRuntime, Check: checkWSL},
		{ID: "cuda", Name: "CUDA Toolkit", Category: CategoryAIRuntime, Check: checkCUDA},
		{ID: "cudnn", Name: "cuDNN", Category: CategoryAIRuntime, Check: checkCuDNN},
		{ID: "nvidia_container_toolkit", Name: "NVIDIA Container Toolkit", Category: CategoryAIRuntime, Check: checkContainerToolkit},

		{ID: "pytorch", Name: "PyTorch", Category: CategoryAIFrameworks, Check: checkPyTorch},
		{ID: "tensorflow", Name: "TensorFlow", Category: CategoryAIFrameworks, Check: checkTensorFlow},
		{ID: "vllm", Name: "vLLM", Category: CategoryAIFrameworks, Check: checkVLLM},
		{ID: "llama_cpp", Name: "llama.cpp", Category: CategoryAIFrameworks, Check: checkLlamaCpp},

		{ID: "ollama", Name: "Ollama", Category: CategoryAIServers, Check: checkOllama},
		{ID: "lm_studio", Name: "LM Studio", Category: CategoryAIServers, Check: checkLMStudio},
		{ID: "docker", Name: "Docker", Category: CategoryAIServers, Check: checkDocker},

		{ID: "python", Name: "Python", Category: CategoryDevTools, Check: toolPython.check()},
		{ID: "conda", Name: "Conda", Category: CategoryDevTools, Check: toolConda.check()},
		{ID: "git", Name: "Git", Category: CategoryDevTools, Check: toolGit.check()},
		{ID: "cmake", Name: "CMake", Category: CategoryDevTools, Check: toolCMake.check()},
		{ID: "gcc", Name: "GCC", Category: CategoryDevTools, Check: toolGCC.check()},
		{ID: "huggingface_cli", Name: "Hugging Face CLI", Category: CategoryDevTools, Check: toolHuggingFace.check()},
		{ID: "jupyter", Name: "Jupyter", Category: CategoryDevTools, Check: toolJupyter.check()},
	}
}

// FilterProbes keeps the probes in the given categories, preserving order.
// An empty filter keeps everything.
func FilterProbes(probes []Probe, cats ...Category) []Probe {
	if len(cats) == 0 {
		return probes
	}
	keep := make(map[Category]bool, len(cats))
	for _, c := range cats {
		keep[c] = true
	}

	var out []Probe
	for _, p := range probes {
		if keep[p.Category] {
			out = append(out, p)
		}
	}
	return out
}
