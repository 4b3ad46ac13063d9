package archive

import "time"

const (
	defaultWorkerCount = 4

	exportBatchLimit = 5000
	exportChunkSize  = 500

	rowFlushThreshold = 1000
	rowFlushInterval  = 5 * time.Second
	rowFlushRPS       = 10

	sleepDuration     = 5 * time.Second
	longSleepDuration = 30 * time.Second
)
