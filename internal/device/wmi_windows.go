//go:build windows

package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"

	"kobobackup/internal/logging"
)

// sFalse is returned by CoInitializeEx when COM is already initialised on
// the calling thread.
const sFalse = 1

type wmiLocator struct {
	logger *slog.Logger
}

func newWMILocator(logger *slog.Logger) (Locator, error) {
	return &wmiLocator{logger: logger}, nil
}

func (l *wmiLocator) Name() string { return "wmi" }

func (l *wmiLocator) Candidates(ctx context.Context, label string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	disks, err := queryLogicalDisks()
	if err != nil {
		return nil, err
	}
	l.logger.Debug("enumerated logical disks", logging.Int("count", len(disks)))
	return matchLogicalDisks(disks, label), nil
}

func queryLogicalDisks() ([]logicalDisk, error) {
	// COM apartments are per OS thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		var oleErr *ole.OleError
		if !errors.As(err, &oleErr) || oleErr.Code() != sFalse {
			return nil, fmt.Errorf("initialize COM: %w", err)
		}
	}
	defer ole.CoUninitialize()

	unknown, err := oleutil.CreateObject("WbemScripting.SWbemLocator")
	if err != nil {
		return nil, fmt.Errorf("create WMI locator: %w", err)
	}
	defer unknown.Release()

	wmi, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return nil, fmt.Errorf("query WMI interface: %w", err)
	}
	defer wmi.Release()

	serviceRaw, err := oleutil.CallMethod(wmi, "ConnectServer")
	if err != nil {
		return nil, fmt.Errorf("connect to WMI service: %w", err)
	}
	service := serviceRaw.ToIDispatch()
	defer service.Release()

	resultRaw, err := oleutil.CallMethod(service, "ExecQuery", "SELECT Name, VolumeName FROM Win32_LogicalDisk")
	if err != nil {
		return nil, fmt.Errorf("query Win32_LogicalDisk: %w", err)
	}
	result := resultRaw.ToIDispatch()
	defer result.Release()

	var disks []logicalDisk
	err = oleutil.ForEach(result, func(v *ole.VARIANT) error {
		item := v.ToIDispatch()
		defer item.Release()
		name, err := oleutil.GetProperty(item, "Name")
		if err != nil {
			return fmt.Errorf("read disk name: %w", err)
		}
		defer name.Clear()
		volume, err := oleutil.GetProperty(item, "VolumeName")
		if err != nil {
			return fmt.Errorf("read volume name: %w", err)
		}
		defer volume.Clear()
		disks = append(disks, logicalDisk{Name: name.ToString(), VolumeName: volume.ToString()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return disks, nil
}
