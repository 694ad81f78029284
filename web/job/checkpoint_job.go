// Package job provides scheduled background jobs for the collector.
package job

import (
	"github.com/sensorlab/doorwatch/database"
	"github.com/sensorlab/doorwatch/logger"
	"github.com/sensorlab/doorwatch/util/common"
)

// CheckpointJob flushes the SQLite WAL once a day so the main database
// file stays current even under a steady ingest stream.
type CheckpointJob struct{}

func NewCheckpointJob() *CheckpointJob {
	return new(CheckpointJob)
}

func (j *CheckpointJob) Run() {
	defer common.Recover("checkpoint job")

	if err := database.Checkpoint(); err != nil {
		logger.Warning("checkpoint job err:", err)
	}
}
