package common

import (
	"os"
	"runtime"
	"runtime/debug"

	"github.com/rs/zerolog/log"
)

// Runtime profiles for different server configurations
const (
	// Small server: 2 vCPU, 4GB RAM (test/dev environment)
	SmallServerGOGC     = 500
	SmallServerMemLimit = 2.5 * 1024 * 1024 * 1024 // 2.5GB
	SmallServerMaxProcs = 1                        // Leave 1 core for OS

	// Medium server: 4-8 vCPU, 8-16GB RAM
	MediumServerGOGC     = 800
	MediumServerMemLimit = 8 * 1024 * 1024 * 1024 // 8GB

	// Large server: 16+ vCPU, 32GB+ RAM (production)
	LargeServerGOGC     = 1000
	LargeServerMemLimit = 16 * 1024 * 1024 * 1024 // 16GB
)

// detectServerProfile returns appropriate settings based on available
// resources. RAM detection would need cgo or /proc parsing, so the CPU
// count stands in for the machine class.
func detectServerProfile() (gogc int, memLimit int64, maxProcs int) {
	totalCPU := runtime.NumCPU()

	switch {
	case totalCPU <= 2:
		return SmallServerGOGC, int64(SmallServerMemLimit), SmallServerMaxProcs
	case totalCPU <= 8:
		return MediumServerGOGC, int64(MediumServerMemLimit), totalCPU / 2
	default:
		return LargeServerGOGC, int64(LargeServerMemLimit), totalCPU / 2
	}
}

// InitRuntime applies latency-oriented GC and scheduler settings. Quote
// selection fans out a goroutine per route, so a GC pause lands in the tail
// of every in-flight request; a high GOGC with GOMEMLIMIT as the backstop
// trades heap for fewer pauses. Environment variables GOGC, GOMAXPROCS and
// GOMEMLIMIT override the detected profile.
func InitRuntime() {
	defaultGOGC, defaultMemLimit, defaultMaxProcs := detectServerProfile()

	if gcPercent := os.Getenv("GOGC"); gcPercent == "" {
		debug.SetGCPercent(defaultGOGC)
		log.Info().Int("GOGC", defaultGOGC).Msg("[runtime] set GOGC")
	}

	if maxProcs := os.Getenv("GOMAXPROCS"); maxProcs == "" {
		if defaultMaxProcs < 1 {
			defaultMaxProcs = 1
		}
		runtime.GOMAXPROCS(defaultMaxProcs)
		log.Info().
			Int("GOMAXPROCS", defaultMaxProcs).
			Int("total_cpu", runtime.NumCPU()).
			Msg("[runtime] set GOMAXPROCS")
	}

	if memLimit := os.Getenv("GOMEMLIMIT"); memLimit == "" {
		debug.SetMemoryLimit(defaultMemLimit)
		log.Info().
			Int64("GOMEMLIMIT_bytes", defaultMemLimit).
			Msg("[runtime] set memory limit")
	}

	logRuntimeSettings()
}

func logRuntimeSettings() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	log.Info().
		Int("num_cpu", runtime.NumCPU()).
		Int("gomaxprocs", runtime.GOMAXPROCS(0)).
		Uint64("heap_alloc_mb", memStats.HeapAlloc/1024/1024).
		Str("go_version", runtime.Version()).
		Msg("[runtime] current runtime settings")
}
