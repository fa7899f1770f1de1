package output

import (
	"encoding/json"

	"github.com/sonemaro/termbar/pkg/logger"
)

func (f *formatter) formatJSON(report *Report) (string, error) {
	f.log.Debug("Formatting JSON output")

	bytes, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		f.log.WithFields(logger.Fields{
			"error": err,
		}).Error("Failed to marshal JSON")
		return "", err
	}

	return string(bytes), nil
}
