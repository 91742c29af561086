// internal/forest/devices.go
package forest

import (
	"context"

	"github.com/pkg/errors"

	"quilbridge/internal/device"
	"quilbridge/internal/domain"
	"quilbridge/internal/qvm"
)

// AvailableDevices lists the executor's devices as backend infos, with
// coupling maps and error rates processed from each description. qpus
// and qvms filter by device kind.
func AvailableDevices(ctx context.Context, client *qvm.Client, qpus, qvms bool) ([]domain.BackendInfo, error) {
	descs, err := client.ListDevices(ctx, qpus, qvms)
	if err != nil {
		return nil, errors.Wrap(err, "list devices")
	}
	infos := make([]domain.BackendInfo, 0, len(descs))
	for _, d := range descs {
		char, err := device.Process(d)
		if err != nil {
			return nil, errors.Wrapf(err, "characterise device %s", d.Name)
		}
		infos = append(infos, backendInfo("ForestBackend", d.Name, char, shotGates))
	}
	return infos, nil
}

// FindDevice fetches the description of a named device. An empty name
// selects the first device the executor lists, QPUs before QVMs.
func FindDevice(ctx context.Context, client *qvm.Client, name string) (device.Description, error) {
	descs, err := client.ListDevices(ctx, true, true)
	if err != nil {
		return device.Description{}, errors.Wrap(err, "list devices")
	}
	if name == "" {
		for _, d := range descs {
			if d.QPU {
				return d, nil
			}
		}
		if len(descs) > 0 {
			return descs[0], nil
		}
		return device.Description{}, errors.New("forest: executor lists no devices")
	}
	for _, d := range descs {
		if d.Name == name {
			return d, nil
		}
	}
	return device.Description{}, errors.Errorf("forest: device %q not found", name)
}
