package tmdb

import (
	"context"
	"fmt"

	"movie-pipeline/metrics"
	"movie-pipeline/models"
	"movie-pipeline/storage"
	"movie-pipeline/utils"
)

// FetchStats summarises one harvesting run.
type FetchStats struct {
	Pages         int
	PagesFailed   int
	Records       int
	RecordsFailed int
	Duplicates    int
	DistinctIDs   int
}

// Fetcher drives pagination and detail expansion against a Catalog.
// Requests are issued one at a time; failures skip the unit and are never retried.
type Fetcher struct {
	catalog  Catalog
	sink     storage.RawRecordWriter
	throttle *utils.Throttle
	logger   *utils.Logger
	seen     *utils.IDSet
}

// NewFetcher creates a Fetcher. sink may be nil when records only need to be
// returned; throttle may be nil to disable pacing.
func NewFetcher(catalog Catalog, sink storage.RawRecordWriter, throttle *utils.Throttle, logger *utils.Logger) *Fetcher {
	return &Fetcher{
		catalog:  catalog,
		sink:     sink,
		throttle: throttle,
		logger:   logger,
		seen:     utils.NewIDSet(),
	}
}

// Fetch requests pages 1..maxPages and the detail record of every listed id.
// Transport failures are logged and skipped, so the run always attempts every
// page. Identifiers repeated across pages are fetched and written again.
// The only error returned is a failure to persist a record to the sink.
func (f *Fetcher) Fetch(ctx context.Context, maxPages int) ([]*models.RawRecord, FetchStats, error) {
	var stats FetchStats
	records := make([]*models.RawRecord, 0)

	f.logger.Info("[fetcher] Starting harvest, target: %d pages", maxPages)

	for page := 1; page <= maxPages; page++ {
		stats.Pages++
		f.wait()

		ids, err := f.catalog.ListPage(ctx, page)
		if err != nil {
			stats.PagesFailed++
			metrics.PagesFetched.WithLabelValues(metrics.StatusFailed).Inc()
			f.logger.Error("[fetcher] Page %d failed, skipping: %v", page, err)
			continue
		}
		metrics.PagesFetched.WithLabelValues(metrics.StatusOK).Inc()

		for _, id := range ids {
			if !f.seen.Add(id) {
				stats.Duplicates++
				metrics.DuplicateIDs.Inc()
				f.logger.Debug("[fetcher] Movie %s already seen on an earlier page", id)
			}

			f.wait()
			rec, err := f.catalog.GetDetail(ctx, id)
			if err != nil {
				stats.RecordsFailed++
				metrics.RecordsFetched.WithLabelValues(metrics.StatusFailed).Inc()
				f.logger.Error("[fetcher] Movie %s failed, skipping: %v", id, err)
				continue
			}
			metrics.RecordsFetched.WithLabelValues(metrics.StatusOK).Inc()

			if f.sink != nil {
				if err := f.sink.WriteRecord(rec); err != nil {
					return records, stats, fmt.Errorf("fetcher: persist movie %s: %w", id, err)
				}
			}
			records = append(records, rec)
			stats.Records++
		}

		f.logger.Info("[fetcher] Page %d done, collected %d records so far", page, stats.Records)
	}

	stats.DistinctIDs = f.seen.Size()
	f.logger.Info("[fetcher] Harvest complete: %d records (%d distinct ids), %d/%d pages failed, %d entries failed, %d duplicate ids",
		stats.Records, stats.DistinctIDs, stats.PagesFailed, stats.Pages, stats.RecordsFailed, stats.Duplicates)
	return records, stats, nil
}

func (f *Fetcher) wait() {
	if f.throttle != nil {
		f.throttle.Wait()
	}
}
