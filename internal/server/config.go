// internal/server/config.go
package server

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v2"

	"quilbridge/internal/device"
	"quilbridge/internal/sim"
)

const (
	defaultListen    = "127.0.0.1:5000"
	defaultQueueSize = 64
	maxWorkers       = 4
)

// Config carries the qvmd runtime settings. The zero value is usable
// after WithDefaults.
type Config struct {
	// Listen is the address the HTTP API binds to.
	Listen string `yaml:"listen"`
	// DataDir holds the job database. Empty selects an in-memory store.
	DataDir string `yaml:"data_dir"`
	// Workers is the number of concurrent simulation workers.
	Workers int `yaml:"workers"`
	// QueueSize bounds the pending job backlog before submissions are
	// rejected.
	QueueSize int `yaml:"queue_size"`
	// MaxQubits caps the register width a single program may use.
	MaxQubits int `yaml:"max_qubits"`
	// Devices lists the devices advertised on /devices.
	Devices []DeviceConfig `yaml:"devices"`
}

// DeviceConfig synthesises one advertised device from a topology and a
// uniform quality figure.
type DeviceConfig struct {
	Name     string `yaml:"name"`
	Topology string `yaml:"topology"` // grid, ring or full
	Rows     int    `yaml:"rows"`
	Cols     int    `yaml:"cols"`
	Qubits   int    `yaml:"qubits"`
	QPU      bool   `yaml:"qpu"`
	Dead     []int  `yaml:"dead"`

	F1QRB  float64 `yaml:"f_1q_rb"`
	FCZ    float64 `yaml:"f_cz"`
	FISWAP float64 `yaml:"f_iswap"`
	FRO    float64 `yaml:"f_ro"`
	T1     float64 `yaml:"t1"`
	T2     float64 `yaml:"t2"`
}

// WithDefaults returns a copy of the config with any missing fields
// replaced by sane defaults.
func (c Config) WithDefaults() Config {
	cpy := c
	if cpy.Listen == "" {
		cpy.Listen = defaultListen
	}
	if cpy.Workers == 0 {
		cpy.Workers = runtime.NumCPU()
		if cpy.Workers > maxWorkers {
			cpy.Workers = maxWorkers
		}
	}
	if cpy.QueueSize == 0 {
		cpy.QueueSize = defaultQueueSize
	}
	if cpy.MaxQubits == 0 {
		cpy.MaxQubits = sim.DefaultMaxQubits
	}
	if len(cpy.Devices) == 0 {
		cpy.Devices = []DeviceConfig{DefaultDevice()}
	}
	return cpy
}

// DefaultDevice is the 3x3 grid simulator advertised when no devices
// are configured.
func DefaultDevice() DeviceConfig {
	return DeviceConfig{
		Name:     "9q-square",
		Topology: "grid",
		Rows:     3,
		Cols:     3,
		F1QRB:    0.999,
		FCZ:      0.99,
		FRO:      0.95,
	}
}

// LoadConfig reads a YAML config file and applies defaults. An empty
// path yields the default config.
func LoadConfig(path string) (Config, error) {
	var c Config
	if path == "" {
		return c.WithDefaults(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return c.WithDefaults(), nil
}

// Description synthesises the advertised device description.
func (dc DeviceConfig) Description() (device.Description, error) {
	q := device.QualitySpec{
		T1: dc.T1, T2: dc.T2,
		FRO: dc.FRO, F1QRB: dc.F1QRB, FCZ: dc.FCZ, FISWAP: dc.FISWAP,
	}
	var (
		d   device.Description
		err error
	)
	switch dc.Topology {
	case "grid", "":
		d, err = device.GridDevice(dc.Name, dc.Rows, dc.Cols, dc.QPU, q)
	case "ring":
		d, err = device.RingDevice(dc.Name, dc.Qubits, dc.QPU, q)
	case "full":
		d, err = device.FullDevice(dc.Name, dc.Qubits, dc.QPU, q)
	default:
		return device.Description{}, fmt.Errorf("device %s: unknown topology %q", dc.Name, dc.Topology)
	}
	if err != nil {
		return device.Description{}, fmt.Errorf("device %s: %w", dc.Name, err)
	}
	if len(dc.Dead) > 0 {
		d.MarkDead(dc.Dead...)
	}
	return d, nil
}
