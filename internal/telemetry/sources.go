package telemetry

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
)

const procWireless = "/proc/net/wireless"

// WirelessSignal reads the signal level of one interface from
// /proc/net/wireless.
type WirelessSignal struct {
	Interface string
	Path      string // defaults to /proc/net/wireless
}

func (w *WirelessSignal) Signal() (int, error) {
	path := w.Path
	if path == "" {
		path = procWireless
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return parseWireless(f, w.Interface)
}

// Lines look like:
//   wlan0: 0000   54.  -56.  -256        0      0      0      0      0        0
func parseWireless(r io.Reader, iface string) (int, error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 || fields[0] != iface+":" {
			continue
		}
		level, err := strconv.ParseFloat(strings.TrimSuffix(fields[3], "."), 64)
		if err != nil {
			return 0, fmt.Errorf("wireless level %q: %w", fields[3], err)
		}
		return int(level), nil
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("interface %s not in wireless stats", iface)
}

// SystemMemory reports available memory through gopsutil.
type SystemMemory struct {
	Timeout time.Duration
}

func (m SystemMemory) FreeMemory() (uint64, error) {
	timeout := m.Timeout
	if timeout <= 0 {
		timeout = time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return vm.Available, nil
}
