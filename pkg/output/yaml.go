package output

import (
	"github.com/sonemaro/termbar/pkg/logger"
	"gopkg.in/yaml.v3"
)

func (f *formatter) formatYAML(report *Report) (string, error) {
	f.log.Debug("Formatting YAML output")

	bytes, err := yaml.Marshal(report)
	if err != nil {
		f.log.WithFields(logger.Fields{
			"error": err,
		}).Error("Failed to marshal YAML")
		return "", err
	}

	return string(bytes), nil
}
