package logger

// LogDownload logs binary download operations
func LogDownload(photoID, kind string, success bool, err error) {
	fields := map[string]interface{}{
		"photo_id": photoID,
		"kind":     kind,
		"success":  success,
	}

	logger := GetLogger().WithFields(fields)

	if err != nil {
		logger.WithError(err).Error("Download failed")
	} else if success {
		logger.Info("Download completed")
	} else {
		logger.Warn("Download skipped")
	}
}

// LogWalkProgress logs collection walk progress against the API-reported total
func LogWalkProgress(collection string, processed, total int) {
	percentage := 0.0
	if total > 0 {
		percentage = float64(processed) / float64(total) * 100
	}

	GetLogger().InfoWithFields("walk progress", map[string]interface{}{
		"collection": collection,
		"processed":  processed,
		"total":      total,
		"percent":    percentage,
	})
}

// LogAPIUnavailable logs a temporary service outage before a backoff wait
func LogAPIUnavailable(method string, waitSeconds int) {
	GetLogger().WarnWithFields("API temporarily unavailable, backing off", map[string]interface{}{
		"method":       method,
		"wait_seconds": waitSeconds,
	})
}
