package metrics

import (
	"errors"
	"path"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
	"go.uber.org/zap"
)

const (
	ProductCreated  = "storefront_product_created"
	ProductUpdated  = "storefront_product_updated"
	ProductDeleted  = "storefront_product_deleted"
	ReviewCreated   = "storefront_review_created"
	UploadAccepted  = "storefront_upload_accepted"
	UploadRejected  = "storefront_upload_rejected"
	CategoryUpdated = "storefront_category_image_updated"
	AdminLogin      = "storefront_admin_login"
	AdminLoginFail  = "storefront_admin_login_failed"
	UploadsSwept    = "storefront_uploads_swept"

	SystemCPUUse  = "system_cpuuse"
	SystemMemUse  = "system_memuse"
	ProcessCPUUse = "storefront_cpuuse"
	ProcessMemUse = "storefront_memuse"
)

// Point is one stored sample
type Point struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

var (
	mu       sync.Mutex
	storage  tstorage.Storage
	counters = make(map[string]int64)
)

// InitMetrics opens the time series store under workdir/data/metrics
func InitMetrics(workdir string) error {
	mu.Lock()
	defer mu.Unlock()
	if storage != nil {
		return nil
	}
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(path.Join(workdir, "data", "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithRetention(30*24*time.Hour),
	)
	if err != nil {
		return err
	}
	storage = s
	counters = make(map[string]int64)
	return nil
}

// SetGauge records the current value of a gauge
func SetGauge(name string, value int64) {
	mu.Lock()
	defer mu.Unlock()
	insert(name, float64(value))
}

// Incr bumps a counter by one and records the new total
func Incr(name string) {
	mu.Lock()
	defer mu.Unlock()
	counters[name]++
	insert(name, float64(counters[name]))
}

// Counter returns the in-process total of a counter
func Counter(name string) int64 {
	mu.Lock()
	defer mu.Unlock()
	return counters[name]
}

func insert(name string, value float64) {
	if storage == nil {
		return
	}
	err := storage.InsertRows([]tstorage.Row{{
		Metric:    name,
		DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: value},
	}})
	if err != nil {
		zap.L().Warn("metrics insert failed", zap.String("metric", name), zap.Error(err))
	}
}

// Query returns the samples of a metric between start and end, both inclusive
func Query(name string, start, end time.Time) ([]Point, error) {
	mu.Lock()
	s := storage
	mu.Unlock()
	if s == nil {
		return []Point{}, nil
	}
	points, err := s.Select(name, nil, start.Unix(), end.Unix()+1)
	if errors.Is(err, tstorage.ErrNoDataPoints) {
		return []Point{}, nil
	}
	if err != nil {
		return nil, err
	}
	result := make([]Point, 0, len(points))
	for _, p := range points {
		result = append(result, Point{Timestamp: p.Timestamp, Value: p.Value})
	}
	return result, nil
}

// Close flushes and closes the store
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}
