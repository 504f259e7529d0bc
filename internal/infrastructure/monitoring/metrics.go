package monitoring

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/isoilaj/caregiver-registry/internal/domain/entity"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	RegistryRecords = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "registry_records",
			Help: "Records in the registry workbook after the last save",
		},
		[]string{"table"},
	)

	RegistrySaves = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "registry_saves_total",
			Help: "Total workbook saves",
		},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestsTotal, RequestDuration, RegistryRecords, RegistrySaves)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware counts requests by route pattern, so ids do not explode label
// cardinality.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		path := c.Route().Path
		RequestsTotal.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		RequestDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}

// RecordSave is a save hook that keeps the record gauges current.
func RecordSave(_ context.Context, data *entity.Dataset) {
	RegistrySaves.Inc()
	RegistryRecords.WithLabelValues("caregivers").Set(float64(len(data.Caregivers)))
	RegistryRecords.WithLabelValues("children").Set(float64(len(data.Children)))
}
