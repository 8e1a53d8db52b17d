/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Log file retention helpers.
*/

package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// LogFiles returns the protoinfer log files in dir, oldest first
func LogFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, logFilePrefix+"*.log"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob log files: %w", err)
	}

	modTimes := make(map[string]int64, len(files))
	for _, f := range files {
		if stat, err := os.Stat(f); err == nil {
			modTimes[f] = stat.ModTime().UnixNano()
		}
	}
	sort.SliceStable(files, func(i, j int) bool {
		if modTimes[files[i]] != modTimes[files[j]] {
			return modTimes[files[i]] < modTimes[files[j]]
		}
		return files[i] < files[j]
	})
	return files, nil
}

// CleanupOldLogs removes the oldest log files so at most maxFiles remain
func CleanupOldLogs(dir string, maxFiles int) error {
	files, err := LogFiles(dir)
	if err != nil {
		return err
	}
	if len(files) <= maxFiles {
		return nil
	}

	for _, f := range files[:len(files)-maxFiles] {
		if err := os.Remove(f); err != nil {
			return fmt.Errorf("failed to remove file %s: %w", f, err)
		}
	}
	return nil
}
