/*
PURPOSE:
  Detects the acceleration device and basic host facts for the run report.

REQUIREMENTS:
  User-specified:
  - Report which device inference is expected to use (cuda or cpu).

  Implementation-discovered:
  - Generation happens inside the Ollama server, so "device" is informational:
    a visible `nvidia-smi` means the server can use CUDA.
  - Host facts (CPU count, RAM) make results from different boxes comparable.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (before Dispatch), internal/cli (device command)
  - Uses: github.com/shirou/gopsutil

ERROR HANDLING:
  - gopsutil failures degrade to zero values; detection never fails the run.

IMPLEMENTATION RULES:
  - No GPU libraries; PATH lookup only.

USAGE:
  info := host.Detect()

SELF-HEALING INSTRUCTIONS:
  - If ROCm support is wanted, look up "rocm-smi" next to "nvidia-smi" in Device.

RELATED FILES:
  - internal/engine/runner.go

MAINTENANCE:
  - None.
*/

package host

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
)

const (
	DeviceCUDA = "cuda"
	DeviceCPU  = "cpu"
)

// Info describes the machine the benchmark runs on.
type Info struct {
	Device   string
	Arch     string
	Hostname string
	Platform string
	CPUCount int
	RAMGiB   float64
}

func (i Info) String() string {
	return fmt.Sprintf("%s (%s/%s, %d cpus, %.1f GiB)", i.Device, i.Platform, i.Arch, i.CPUCount, i.RAMGiB)
}

// LookPath is swapped out in tests.
var LookPath = exec.LookPath

// Device returns DeviceCUDA when an NVIDIA driver tool is on PATH.
func Device() string {
	if _, err := LookPath("nvidia-smi"); err == nil {
		return DeviceCUDA
	}
	return DeviceCPU
}

// Detect gathers device and host facts.
func Detect() Info {
	info := Info{
		Device: Device(),
		Arch:   runtime.GOARCH,
	}

	if hostStat, err := host.Info(); err == nil {
		info.Hostname = hostStat.Hostname
		info.Platform = hostStat.Platform
	}
	if n, err := cpu.Counts(true); err == nil {
		info.CPUCount = n
	} else {
		info.CPUCount = runtime.NumCPU()
	}
	if vmStat, err := mem.VirtualMemory(); err == nil {
		info.RAMGiB = float64(vmStat.Total) / 1024 / 1024 / 1024
	}

	return info
}
