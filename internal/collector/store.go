package collector

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	filePrefix = "solar_log_"
	fileSuffix = ".txt"
	lastLines  = 5
)

// Payload is a received report. Every field is optional, missing ones are
// rendered as placeholders. Numbers may be integral or fractional; rssi and
// heap are written back exactly as they were sent.
type Payload struct {
	DeviceID  *string      `json:"device_id"`
	Timestamp *float64     `json:"timestamp"`
	WifiRSSI  *json.Number `json:"wifi_rssi"`
	FreeHeap  *json.Number `json:"free_heap"`
	Uptime    *float64     `json:"uptime"`
}

type Status struct {
	CurrentDate  string   `json:"current_date"`
	LogFile      string   `json:"log_file"`
	FileExists   bool     `json:"file_exists"`
	TotalEntries *int     `json:"total_entries,omitempty"`
	LastEntries  []string `json:"last_entries,omitempty"`
}

type FileInfo struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"`
}

// Store appends entries to one text file per day.
type Store struct {
	dir  string
	zone *time.Location
	now  func() time.Time
	mu   sync.Mutex
}

func NewStore(dir string, zone *time.Location) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("log dir: %w", err)
	}
	if zone == nil {
		zone = time.Local
	}
	return &Store{dir: dir, zone: zone, now: time.Now}, nil
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) today() string { return s.now().In(s.zone).Format("2006-01-02") }

func (s *Store) path(date string) string {
	return filepath.Join(s.dir, filePrefix+date+fileSuffix)
}

// FormatEntry renders one log line.
func (s *Store) FormatEntry(p Payload) string {
	var ts int64
	if p.Timestamp != nil {
		ts = int64(*p.Timestamp)
	}
	device := "unknown"
	if p.DeviceID != nil {
		device = *p.DeviceID
	}
	rssi := "N/A"
	if p.WifiRSSI != nil {
		rssi = p.WifiRSSI.String()
	}
	heap := "N/A"
	if p.FreeHeap != nil {
		heap = p.FreeHeap.String()
	}
	var uptime float64
	if p.Uptime != nil {
		uptime = *p.Uptime
	}

	return fmt.Sprintf("%s | Device: %s | WiFi RSSI: %s dBm | Free Heap: %s bytes | Uptime: %.1fs",
		time.Unix(ts, 0).In(s.zone).Format("15:04:05"), device, rssi, heap, uptime/1000)
}

func header(date string) string {
	return fmt.Sprintf("=== Solar Power Monitor Log - %s ===\n", date) +
		"Time     | Device              | WiFi RSSI | Free Heap    | Uptime\n" +
		strings.Repeat("-", 80) + "\n"
}

// Append writes p to today's file, starting the file with a header. It
// returns the file's base name and the written entry.
func (s *Store) Append(p Payload) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	date := s.today()
	path := s.path(date)
	_, err := os.Stat(path)
	exists := err == nil

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	entry := s.FormatEntry(p)
	w := bufio.NewWriter(f)
	if !exists {
		w.WriteString(header(date))
	}
	w.WriteString(entry + "\n")
	if err := w.Flush(); err != nil {
		return "", "", err
	}
	return filepath.Base(path), entry, nil
}

func isHeader(line string) bool {
	return strings.HasPrefix(line, "=") || strings.HasPrefix(line, "-") || strings.HasPrefix(line, "Time")
}

func (s *Store) Status() (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	date := s.today()
	path := s.path(date)
	st := Status{CurrentDate: date, LogFile: "No log today"}

	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, err
	}
	st.LogFile = filepath.Base(path)
	st.FileExists = true

	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	total := 0
	for _, l := range lines {
		if !isHeader(l) {
			total++
		}
	}
	st.TotalEntries = &total

	tail := lines
	if len(tail) > lastLines {
		tail = tail[len(tail)-lastLines:]
	}
	st.LastEntries = []string{}
	for _, l := range tail {
		if l = strings.TrimSpace(l); l != "" {
			st.LastEntries = append(st.LastEntries, l)
		}
	}
	return st, nil
}

func (s *Store) Files() ([]FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	files := []FileInfo{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		files = append(files, FileInfo{
			Filename: name,
			Size:     info.Size(),
			Modified: info.ModTime().In(s.zone).Format("2006-01-02 15:04:05"),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Filename < files[j].Filename })
	return files, nil
}
