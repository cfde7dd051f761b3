package observability

import (
	"os"

	"github.com/shirou/gopsutil/process"
)

// ProcessUsage is a snapshot of the resources held by the current process.
type ProcessUsage struct {
	RSS        uint64
	CPUPercent float64
}

// Usage retrieves memory and CPU metrics for the current process.
func Usage() (ProcessUsage, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return ProcessUsage{}, err
	}
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return ProcessUsage{}, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return ProcessUsage{}, err
	}
	return ProcessUsage{RSS: memInfo.RSS, CPUPercent: cpuPercent}, nil
}
