package hat

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
)

const thermalZonePath = "/sys/class/thermal/thermal_zone0/temp"

// CPU reads the SoC temperature used for heat compensation. gopsutil's
// sensor enumeration is tried first; when it yields nothing useful (some
// kernels hide hwmon from it) the Pi's thermal zone is read directly.
type CPU struct{}

func (CPU) CPUTemperature() (float64, error) {
	if t, ok := gopsutilCPUTemp(); ok {
		return t, nil
	}
	return thermalZoneTemp(thermalZonePath)
}

func gopsutilCPUTemp() (float64, bool) {
	stats, err := host.SensorsTemperatures()
	if err != nil {
		return 0, false
	}
	for _, s := range stats {
		key := strings.ToLower(s.SensorKey)
		if strings.Contains(key, "cpu_thermal") || strings.Contains(key, "cpu-thermal") ||
			strings.Contains(key, "coretemp") {
			if s.Temperature > 0 {
				return s.Temperature, true
			}
		}
	}
	return 0, false
}

// thermalZoneTemp parses the kernel's millidegree reading.
func thermalZoneTemp(path string) (float64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read thermal zone: %w", err)
	}
	milli, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, fmt.Errorf("parse thermal zone %q: %w", strings.TrimSpace(string(b)), err)
	}
	return float64(milli) / 1000.0, nil
}
