package job

import (
	"errors"

	"github.com/sensorlab/doorwatch/logger"
	"github.com/sensorlab/doorwatch/util/common"
	"github.com/sensorlab/doorwatch/web/service"
)

// DeviceOfflineJob watches the staleness flag and logs transitions, so
// an operator tailing the log sees when the device stops reporting
// without polling the API. Log-only: there is no push alerting.
type DeviceOfflineJob struct {
	statusService service.StatusService

	wasOffline bool
}

func NewDeviceOfflineJob() *DeviceOfflineJob {
	return new(DeviceOfflineJob)
}

func (j *DeviceOfflineJob) Run() {
	defer common.Recover("device offline job")

	out, err := j.statusService.Latest()
	if err != nil {
		if !errors.Is(err, service.ErrNoStatus) {
			logger.Warning("device offline job err:", err)
		}
		return
	}

	if out.Offline && !j.wasOffline {
		logger.Warningf("device went offline, last snapshot at %s", out.Timestamp.Format("2006/01/02 15:04:05"))
	} else if !out.Offline && j.wasOffline {
		logger.Info("device back online")
	}
	j.wasOffline = out.Offline
}
