package pipeline

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
)

var logicalCoresFn = func() int {
	logical, err := cpu.Counts(true)
	if err != nil || logical <= 0 {
		logical = runtime.NumCPU()
	}
	if logical <= 0 {
		logical = 1
	}
	return logical
}

// LogicalCores reports the number of logical CPUs available to the process.
func LogicalCores() int {
	return logicalCoresFn()
}

// DefaultIOWorkers sizes the read stage: min(4, max(2, cores)).
func DefaultIOWorkers() int {
	return ioWorkersFor(LogicalCores())
}

// DefaultDecodeWorkers sizes the decode stage at one worker per logical core.
func DefaultDecodeWorkers() int {
	return LogicalCores()
}

func ioWorkersFor(cores int) int {
	n := cores
	if n < 2 {
		n = 2
	}
	if n > 4 {
		n = 4
	}
	return n
}
