// Package metrics holds the Prometheus collectors of the CMS.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultDeleted  = "deleted"
	ResultNotFound = "not_found"
	ResultFailed   = "failed"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// BlobDeletions counts blob store delete outcomes per blob id.
	BlobDeletions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cms_blob_deletions_total",
			Help: "Blob deletions by result",
		},
		[]string{"result"},
	)

	// UploadCompensations counts deletes of blobs whose document write failed.
	UploadCompensations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cms_upload_compensations_total",
			Help: "Compensating blob deletions after failed image writes",
		},
		[]string{"result"},
	)
)
