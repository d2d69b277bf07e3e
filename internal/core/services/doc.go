// Package services holds the pipeline and the services behind the driving
// ports.
//
// The pipeline enumerates items, plans them into buckets with the
// partitioner, fetches each item through the retrying Fetcher, and writes
// every bucket through an AggregationWriter. Connectors, renderers and
// sinks reach it only through the driven ports.
package services
