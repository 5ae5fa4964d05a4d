package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TotalPagesFetched tracks pages fetched during stage-1 discovery.
	TotalPagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_pages_fetched_total",
		Help: "The total number of pages fetched during link discovery.",
	})
	// TotalFetchErrors tracks fetches that failed in either stage.
	TotalFetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_fetch_errors_total",
		Help: "The total number of failed page fetches.",
	})
	// TotalLinksDiscovered tracks new LinkRecords appended in stage 1.
	TotalLinksDiscovered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_links_discovered_total",
		Help: "The total number of unique links discovered.",
	})
	// TotalProductsExtracted tracks accepted extraction results.
	TotalProductsExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_products_extracted_total",
		Help: "The total number of products extracted and accepted.",
	})
	// TotalExtractionFailures tracks candidates that yielded no product.
	TotalExtractionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_extraction_failures_total",
		Help: "The total number of candidates that produced no product.",
	})
	// TotalTasksCompleted tracks tasks that reached the completed state.
	TotalTasksCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_tasks_completed_total",
		Help: "The total number of tasks that completed successfully.",
	})
	// TotalTasksFailed tracks tasks that reached the failed state.
	TotalTasksFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_tasks_failed_total",
		Help: "The total number of tasks that failed.",
	})
)
