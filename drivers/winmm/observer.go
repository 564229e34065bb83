//go:build windows

package winmm

import (
	coredrivers "github.com/odaacabeef/midicore/drivers"
	"github.com/odaacabeef/midicore/port"
)

// observer reports a static snapshot; winmm has no MM_MIM_OPEN-style
// system-wide device-change notification wired up here (WM_DEVICECHANGE
// would require a window message pump this library does not own).
type observer struct{}

func (o *observer) API() coredrivers.API { return coredrivers.WindowsMM }

func (o *observer) InputPorts() ([]port.Info, error)  { return listInputs() }
func (o *observer) OutputPorts() ([]port.Info, error) { return listOutputs() }
func (o *observer) Close() error                      { return nil }
