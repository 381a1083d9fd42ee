package device

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	DefaultPowerSupplyDir = "/sys/class/power_supply"
	DefaultLowThreshold   = 15
)

// BatteryMonitor reads Linux power-supply sysfs. Hosts without a battery
// never report low battery.
type BatteryMonitor struct {
	root      string
	threshold int
}

func NewBatteryMonitor(root string, threshold int) *BatteryMonitor {
	if root == "" {
		root = DefaultPowerSupplyDir
	}
	if threshold <= 0 {
		threshold = DefaultLowThreshold
	}
	return &BatteryMonitor{root: root, threshold: threshold}
}

// BatteryState is one battery's reading.
type BatteryState struct {
	Name     string
	Capacity int
	Status   string
}

// Batteries lists every supply of type "Battery" with a readable capacity.
func (m *BatteryMonitor) Batteries() []BatteryState {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		return nil
	}

	var out []BatteryState
	for _, e := range entries {
		dir := filepath.Join(m.root, e.Name())
		if readAttr(dir, "type") != "Battery" {
			continue
		}
		capacity, err := strconv.Atoi(readAttr(dir, "capacity"))
		if err != nil {
			continue
		}
		out = append(out, BatteryState{Name: e.Name(), Capacity: capacity, Status: readAttr(dir, "status")})
	}
	return out
}

// Low is true when any battery is discharging below the threshold.
func (m *BatteryMonitor) Low() bool {
	for _, b := range m.Batteries() {
		if b.Status == "Discharging" && b.Capacity < m.threshold {
			return true
		}
	}
	return false
}

func readAttr(dir, name string) string {
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
