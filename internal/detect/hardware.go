package detect

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Aman-CERP/rigcheck/internal/runner"
)

// Hardware probe commands.
const (
	cmdCPUInfo  = "cat /proc/cpuinfo"
	cmdLscpu    = "lscpu"
	cmdGPUQuery = "nvidia-smi --query-gpu=name,memory.total,driver_version,compute_cap,temperature.gpu,utilization.gpu,power.draw --format=csv,noheader,nounits"
	cmdFree     = "free -b"
	cmdMemInfo  = "cat /proc/meminfo"
	cmdLsblk    = "lsblk -d -n -o NAME,SIZE,TYPE,ROTA,MODEL"
	cmdDfRoot   = "df -h /"
)

// --- CPU ---

type cpuInfo struct {
	Model   string
	Cores   int
	Threads int
}

// parseProcCPUInfo reads /proc/cpuinfo. Cores are "cpu cores" times the
// number of distinct physical ids.
func parseProcCPUInfo(out string) cpuInfo {
	var info cpuInfo
	sockets := make(map[string]bool)
	coresPerSocket := 0

	for _, line := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "model name":
			if info.Model == "" {
				info.Model = collapseSpace(value)
			}
		case "processor":
			info.Threads++
		case "physical id":
			sockets[value] = true
		case "cpu cores":
			if n, err := strconv.Atoi(value); err == nil {
				coresPerSocket = n
			}
		}
	}

	if coresPerSocket > 0 {
		info.Cores = coresPerSocket * max(len(sockets), 1)
	}
	return info
}

// parseLscpu reads lscpu's "Key: value" listing.
func parseLscpu(out string) cpuInfo {
	var info cpuInfo
	coresPerSocket, sockets := 0, 1

	for _, line := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		n, err := strconv.Atoi(value)

		switch strings.TrimSpace(key) {
		case "Model name":
			info.Model = collapseSpace(value)
		case "CPU(s)":
			if err == nil {
				info.Threads = n
			}
		case "Core(s) per socket":
			if err == nil {
				coresPerSocket = n
			}
		case "Socket(s)":
			if err == nil && n > 0 {
				sockets = n
			}
		}
	}

	info.Cores = coresPerSocket * sockets
	return info
}

func classifyCPU(info cpuInfo) Finding {
	var details []string
	if info.Cores > 0 {
		details = append(details, fmt.Sprintf("Cores: %d", info.Cores))
	}
	if info.Threads > 0 {
		details = append(details, fmt.Sprintf("Threads: %d", info.Threads))
	}

	if info.Model == "" {
		return Finding{
			Status:  StatusWarning,
			Details: strings.Join(details, "\n"),
			Message: "Could not determine CPU model",
		}
	}
	return Finding{
		Status:  StatusOK,
		Details: strings.Join(details, "\n"),
		Message: info.Model,
	}
}

func checkCPU(ctx context.Context, r runner.Runner, _ Settings) Finding {
	if out, ok := r.Run(ctx, cmdCPUInfo).Value(); ok {
		if info := parseProcCPUInfo(out); info.Model != "" {
			return classifyCPU(info)
		}
	}
	if out, ok := r.Run(ctx, cmdLscpu).Value(); ok {
		return classifyCPU(parseLscpu(out))
	}
	return classifyCPU(cpuInfo{})
}

// --- GPU ---

type gpuDevice struct {
	Name        string
	VRAMMB      int
	Driver      string
	ComputeCap  string
	Temperature string
	Utilization string
	Power       string
}

// parseGPUQuery reads nvidia-smi CSV rows. Rows without a name or a numeric
// memory total are counted as unparseable.
func parseGPUQuery(out string) (devices []gpuDevice, unparsed int) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		if len(fields) < 2 || fields[0] == "" {
			unparsed++
			continue
		}
		vram, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			unparsed++
			continue
		}

		d := gpuDevice{Name: fields[0], VRAMMB: int(vram)}
		field := func(i int) string {
			if i < len(fields) && !strings.Contains(fields[i], "N/A") {
				return fields[i]
			}
			return ""
		}
		d.Driver = field(2)
		d.ComputeCap = field(3)
		d.Temperature = field(4)
		d.Utilization = field(5)
		d.Power = field(6)
		devices = append(devices, d)
	}
	return devices, unparsed
}

func (d gpuDevice) summary() string {
	parts := []string{d.Name, fmt.Sprintf("%d MB VRAM", d.VRAMMB)}
	if d.ComputeCap != "" {
		parts = append(parts, "compute "+d.ComputeCap)
	}
	if d.Temperature != "" {
		parts = append(parts, d.Temperature+"°C")
	}
	if d.Utilization != "" {
		parts = append(parts, d.Utilization+"% util")
	}
	if d.Power != "" {
		parts = append(parts, d.Power+" W")
	}
	return strings.Join(parts, " | ")
}

func classifyGPU(devices []gpuDevice, unparsed int, t Thresholds) Finding {
	var f Finding
	var lines []string
	for i, d := range devices {
		lines = append(lines, fmt.Sprintf("GPU %d: %s", i, d.summary()))
	}
	f.Details = strings.Join(lines, "\n")
	if len(devices) > 0 {
		f.Version = devices[0].Driver
	}

	switch {
	case unparsed > 0:
		f.Status = StatusWarning
		f.Message = fmt.Sprintf("nvidia-smi returned %s that could not be parsed", pluralize(unparsed, "row"))
	case len(devices) == 2:
		f.Status = StatusOK
		f.Message = fmt.Sprintf("Dual-GPU setup: %s + %s", devices[0].Name, devices[1].Name)
	case len(devices) > 2:
		f.Status = StatusOK
		f.Message = fmt.Sprintf("Multi-GPU setup: %d GPUs", len(devices))
	case len(devices) == 1 && devices[0].VRAMMB >= t.HighEndGPUVRAMMB:
		f.Status = StatusOK
		f.Message = fmt.Sprintf("%s (%d MB VRAM)", devices[0].Name, devices[0].VRAMMB)
	case len(devices) == 1:
		f.Status = StatusWarning
		f.Message = fmt.Sprintf("%s has %d MB VRAM, below the %d MB high-end threshold",
			devices[0].Name, devices[0].VRAMMB, t.HighEndGPUVRAMMB)
	default:
		f.Status = StatusWarning
		f.Message = "nvidia-smi reported no GPUs"
	}
	return f
}

func checkGPU(ctx context.Context, r runner.Runner, s Settings) Finding {
	out, ok := r.Run(ctx, cmdGPUQuery).Value()
	if !ok {
		return Finding{
			Status:  StatusError,
			Message: "No NVIDIA GPU detected (nvidia-smi unavailable)",
		}
	}
	devices, unparsed := parseGPUQuery(out)
	return classifyGPU(devices, unparsed, s.Thresholds)
}

// --- RAM ---

type memInfo struct {
	TotalBytes     uint64
	UsedBytes      uint64
	AvailableBytes uint64
}

// TotalGB is total memory in decimal gigabytes.
func (m memInfo) TotalGB() float64 {
	return float64(m.TotalBytes) / gb
}

// parseFree reads the Mem row of "free -b".
// Columns: total used free shared buff/cache available.
func parseFree(out string) (memInfo, bool) {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != "Mem:" {
			continue
		}
		nums := make([]uint64, 0, len(fields)-1)
		for _, f := range fields[1:] {
			n, err := strconv.ParseUint(f, 10, 64)
			if err != nil {
				return memInfo{}, false
			}
			nums = append(nums, n)
		}
		m := memInfo{TotalBytes: nums[0]}
		if len(nums) > 1 {
			m.UsedBytes = nums[1]
		}
		if len(nums) > 5 {
			m.AvailableBytes = nums[5]
		}
		return m, m.TotalBytes > 0
	}
	return memInfo{}, false
}

// parseMemInfo reads /proc/meminfo, whose values are in kB.
func parseMemInfo(out string) (memInfo, bool) {
	var m memInfo
	for _, line := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		fields := strings.Fields(value)
		if len(fields) == 0 {
			continue
		}
		n, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			continue
		}
		switch key {
		case "MemTotal":
			m.TotalBytes = n * 1024
		case "MemAvailable":
			m.AvailableBytes = n * 1024
		}
	}
	if m.TotalBytes == 0 {
		return memInfo{}, false
	}
	if m.AvailableBytes <= m.TotalBytes {
		m.UsedBytes = m.TotalBytes - m.AvailableBytes
	}
	return m, true
}

func classifyRAM(m memInfo, t Thresholds) Finding {
	total := m.TotalGB()
	details := fmt.Sprintf("Total: %s\nUsed: %s\nAvailable: %s",
		formatGB(m.TotalBytes), formatGB(m.UsedBytes), formatGB(m.AvailableBytes))

	switch {
	case total >= t.RAMOkGB:
		return Finding{
			Status:  StatusOK,
			Details: details,
			Message: fmt.Sprintf("%s system memory", formatGB(m.TotalBytes)),
		}
	case total >= t.RAMWarnGB:
		return Finding{
			Status:  StatusWarning,
			Details: details,
			Message: fmt.Sprintf("%s system memory (%.0f GB recommended)", formatGB(m.TotalBytes), t.RAMOkGB),
		}
	default:
		return Finding{
			Status:  StatusError,
			Details: details,
			Message: fmt.Sprintf("%s system memory is below the %.0f GB minimum", formatGB(m.TotalBytes), t.RAMWarnGB),
		}
	}
}

func checkRAM(ctx context.Context, r runner.Runner, s Settings) Finding {
	if out, ok := r.Run(ctx, cmdFree).Value(); ok {
		if m, ok := parseFree(out); ok {
			return classifyRAM(m, s.Thresholds)
		}
	}
	if out, ok := r.Run(ctx, cmdMemInfo).Value(); ok {
		if m, ok := parseMemInfo(out); ok {
			return classifyRAM(m, s.Thresholds)
		}
	}
	return Finding{Status: StatusWarning, Message: "Could not determine system memory"}
}

// --- Disk ---

type blockDevice struct {
	Name       string
	Size       string
	Rotational bool
	Model      string
}

// NVMe reports whether the device is an NVMe drive.
func (d blockDevice) NVMe() bool {
	return strings.HasPrefix(d.Name, "nvme")
}

type rootFS struct {
	Size    string
	Used    string
	Avail   string
	UsePct  string
	Present bool
}

type diskInfo struct {
	Devices []blockDevice
	Root    rootFS
}

// parseLsblk reads "NAME SIZE TYPE ROTA MODEL" rows, keeping only disks.
// MODEL may contain spaces.
func parseLsblk(out string) []blockDevice {
	var devices []blockDevice
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 || fields[2] != "disk" {
			continue
		}
		devices = append(devices, blockDevice{
			Name:       fields[0],
			Size:       fields[1],
			Rotational: fields[3] == "1",
			Model:      strings.Join(fields[4:], " "),
		})
	}
	return devices
}

// parseDf reads "df -h /". Long filesystem names wrap onto their own line,
// so the data fields are taken from the tail.
func parseDf(out string) rootFS {
	lines := strings.Split(out, "\n")
	if len(lines) < 2 {
		return rootFS{}
	}
	fields := strings.Fields(strings.Join(lines[1:], " "))
	if len(fields) < 6 {
		return rootFS{}
	}
	n := len(fields)
	return rootFS{
		Size:    fields[n-5],
		Used:    fields[n-4],
		Avail:   fields[n-3],
		UsePct:  fields[n-2],
		Present: true,
	}
}

func classifyDisk(info diskInfo) Finding {
	if len(info.Devices) == 0 && !info.Root.Present {
		return Finding{Status: StatusWarning, Message: "Could not retrieve disk information"}
	}

	var lines []string
	nvme := 0
	for _, d := range info.Devices {
		kind := "SSD"
		switch {
		case d.NVMe():
			kind = "NVMe"
			nvme++
		case d.Rotational:
			kind = "HDD"
		}
		line := fmt.Sprintf("%s: %s %s", d.Name, d.Size, kind)
		if d.Model != "" {
			line += " (" + d.Model + ")"
		}
		lines = append(lines, line)
	}
	if info.Root.Present {
		lines = append(lines, fmt.Sprintf("Root filesystem: %s used of %s (%s), %s free",
			info.Root.Used, info.Root.Size, info.Root.UsePct, info.Root.Avail))
	}

	var msg string
	switch {
	case nvme > 0:
		msg = fmt.Sprintf("NVMe storage detected (%s)", pluralize(nvme, "NVMe drive"))
	case len(info.Devices) > 0:
		msg = fmt.Sprintf("%s detected, no NVMe", pluralize(len(info.Devices), "disk"))
	default:
		msg = fmt.Sprintf("Root filesystem: %s free of %s", info.Root.Avail, info.Root.Size)
	}

	return Finding{
		Status:  StatusOK,
		Details: strings.Join(lines, "\n"),
		Message: msg,
	}
}

func checkDisk(ctx context.Context, r runner.Runner, _ Settings) Finding {
	var info diskInfo
	if out, ok := r.Run(ctx, cmdLsblk).Value(); ok {
		info.Devices = parseLsblk(out)
	}
	if out, ok := r.Run(ctx, cmdDfRoot).Value(); ok {
		info.Root = parseDf(out)
	}
	return classifyDisk(info)
}
