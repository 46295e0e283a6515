// Package hwinfo describes the host a benchmark runs on: CPU vendor and
// model, topology, caches and instruction-set features. The description is
// printed by `venchup hwinfo` and stored with the machine at registration.
package hwinfo

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sys/cpu"
)

// Version is bumped whenever a field changes meaning.
const Version = 1

type Cache struct {
	Level          int    `json:"level"`
	Type           string `json:"type"`
	SizeKB         int    `json:"size_kb"`
	Ways           int    `json:"ways,omitempty"`
	LineSize       int    `json:"line_size,omitempty"`
	Sets           int    `json:"sets,omitempty"`
	SharingThreads int    `json:"sharing_threads,omitempty"`
}

// Info is the host description. Fields the platform cannot report are left
// zero and omitted from the JSON.
type Info struct {
	HWInfoVersion  int              `json:"hwinfo_version"`
	Arch           string           `json:"arch"`
	OS             string           `json:"os"`
	VendorID       string           `json:"vendor_id,omitempty"`
	ModelName      string           `json:"model_name,omitempty"`
	Threads        int              `json:"threads"`
	Sockets        int              `json:"sockets,omitempty"`
	CoresPerSocket int              `json:"cores_per_socket,omitempty"`
	ThreadsPerCore int              `json:"threads_per_core,omitempty"`
	Caches         map[string]Cache `json:"caches,omitempty"`
	Features       []string         `json:"features"`
	MemoryTotalMB  int              `json:"memory_total_mb,omitempty"`
	KernelVersion  string           `json:"kernel_version,omitempty"`
}

// Probe describes the current host. It never fails: anything unreadable
// is left out.
func Probe() Info {
	return probe()
}

// WriteJSON writes info as indented JSON, the form pasted into the
// registration form.
func (info Info) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}

// base fills what the Go runtime knows on every platform.
func base() Info {
	return Info{
		HWInfoVersion: Version,
		Arch:          runtime.GOARCH,
		OS:            runtime.GOOS,
		Threads:       runtime.NumCPU(),
		Features:      featureNames(archFeatures()),
	}
}

func archFeatures() any {
	switch runtime.GOARCH {
	case "386", "amd64":
		return cpu.X86
	case "arm64":
		return cpu.ARM64
	case "arm":
		return cpu.ARM
	case "ppc64", "ppc64le":
		return cpu.PPC64
	case "s390x":
		return cpu.S390X
	}
	return nil
}

// featureNames lists the set HasXxx flags of one of the x/sys/cpu feature
// structs as lower-case names, sorted.
func featureNames(flags any) []string {
	names := []string{}
	v := reflect.ValueOf(flags)
	if v.Kind() != reflect.Struct {
		return names
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Type.Kind() != reflect.Bool || !strings.HasPrefix(f.Name, "Has") {
			continue
		}
		if v.Field(i).Bool() {
			names = append(names, strings.ToLower(strings.TrimPrefix(f.Name, "Has")))
		}
	}
	sort.Strings(names)
	return names
}

// readFS fills the fields Linux exposes under /proc and /sys. The roots are
// parameters so tests can use a synthetic tree.
func readFS(info *Info, procRoot, sysRoot string) {
	info.VendorID, info.ModelName = readCPUInfo(filepath.Join(procRoot, "cpuinfo"))

	cpuBase := filepath.Join(sysRoot, "devices/system/cpu")
	cpus := cpuDirs(cpuBase)

	packages := make(map[string]struct{})
	type coreKey struct{ pkg, core string }
	cores := make(map[coreKey]struct{})
	for _, dir := range cpus {
		topology := filepath.Join(dir, "topology")
		pkg := readString(filepath.Join(topology, "physical_package_id"))
		core := readString(filepath.Join(topology, "core_id"))
		if pkg == "" {
			continue
		}
		packages[pkg] = struct{}{}
		if core != "" {
			cores[coreKey{pkg, core}] = struct{}{}
		}
	}
	if len(packages) > 0 {
		info.Sockets = len(packages)
		info.CoresPerSocket = len(cores) / len(packages)
	}
	if n := countCPUList(readString(filepath.Join(cpuBase, "cpu0/topology/thread_siblings_list"))); n > 0 {
		info.ThreadsPerCore = n
	}

	info.Caches = readCaches(filepath.Join(cpuBase, "cpu0/cache"))
}

// readCPUInfo returns the first vendor_id and model name in /proc/cpuinfo.
func readCPUInfo(path string) (vendor, model string) {
	f, err := os.Open(path)
	if err != nil {
		return "", ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() && (vendor == "" || model == "") {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "vendor_id":
			if vendor == "" {
				vendor = strings.TrimSpace(value)
			}
		case "model name":
			if model == "" {
				model = strings.TrimSpace(value)
			}
		}
	}
	return vendor, model
}

// cpuDirs returns the cpuN directories, skipping cpufreq, cpuidle and the
// like.
func cpuDirs(cpuBase string) []string {
	entries, err := os.ReadDir(cpuBase)
	if err != nil {
		return nil
	}
	var dirs []string
	for _, e := range entries {
		suffix, ok := strings.CutPrefix(e.Name(), "cpu")
		if !ok || suffix == "" {
			continue
		}
		if _, err := strconv.Atoi(suffix); err != nil {
			continue
		}
		dirs = append(dirs, filepath.Join(cpuBase, e.Name()))
	}
	return dirs
}

// readCaches reads cpu0's cache/indexN directories, keyed L1d, L1i, L2, L3.
func readCaches(cacheBase string) map[string]Cache {
	dirs, _ := filepath.Glob(filepath.Join(cacheBase, "index*"))
	if len(dirs) == 0 {
		return nil
	}
	caches := make(map[string]Cache)
	for _, dir := range dirs {
		level := readInt(filepath.Join(dir, "level"))
		if level == 0 {
			continue
		}
		typ := readString(filepath.Join(dir, "type"))
		caches[cacheName(level, typ)] = Cache{
			Level:          level,
			Type:           strings.ToLower(typ),
			SizeKB:         readInt(filepath.Join(dir, "size")),
			Ways:           readInt(filepath.Join(dir, "ways_of_associativity")),
			LineSize:       readInt(filepath.Join(dir, "coherency_line_size")),
			Sets:           readInt(filepath.Join(dir, "number_of_sets")),
			SharingThreads: countCPUList(readString(filepath.Join(dir, "shared_cpu_list"))),
		}
	}
	return caches
}

func cacheName(level int, typ string) string {
	name := "L" + strconv.Itoa(level)
	switch typ {
	case "Data":
		name += "d"
	case "Instruction":
		name += "i"
	}
	return name
}

// countCPUList counts the CPUs in a sysfs list such as "0-3,8-11" or "0,96".
func countCPUList(list string) int {
	n := 0
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		if !isRange {
			n++
			continue
		}
		a, err1 := strconv.Atoi(lo)
		b, err2 := strconv.Atoi(hi)
		if err1 != nil || err2 != nil || b < a {
			continue
		}
		n += b - a + 1
	}
	return n
}

func readString(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

// readInt parses a sysfs integer, ignoring a trailing K as in cache sizes.
func readInt(path string) int {
	n, err := strconv.Atoi(strings.TrimSuffix(readString(path), "K"))
	if err != nil {
		return 0
	}
	return n
}
