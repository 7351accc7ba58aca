package orchestrator

import "github.com/goliatone/go-bannergen/pkg/banner"

// Result records the outcome of one record's bind → settle → capture cycle.
type Result struct {
	Index int
	Name  string
	Data  []byte
	Err   error
}

// Failed reports whether the record produced no raster.
func (r Result) Failed() bool {
	return r.Err != nil
}

// BatchJob tracks one export run: the ordered records, the cursor of the
// strictly sequential loop, and the per-index outcomes. Created when export
// starts and discarded when it ends, success or partial failure alike.
type BatchJob struct {
	Records []banner.Record
	Cursor  int
	Results []Result
}

func newBatchJob(batch banner.Batch) *BatchJob {
	return &BatchJob{Records: batch.Records}
}

func (j *BatchJob) collect(res Result) {
	j.Results = append(j.Results, res)
}

func (j *BatchJob) succeeded() int {
	n := 0
	for _, res := range j.Results {
		if !res.Failed() {
			n++
		}
	}
	return n
}

// ProgressEvent notifies a caller that one record finished its cycle.
type ProgressEvent struct {
	Index     int
	Name      string
	Err       error
	Completed int
	Total     int
}

// ProgressFunc receives one event per processed record, failures included.
type ProgressFunc func(ProgressEvent)

// Summary is the single end-of-batch report surfaced to the user instead of
// per-record interruptions.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Timestamp string
	Results   []Result
}
