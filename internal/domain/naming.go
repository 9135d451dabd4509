package domain

import (
	"fmt"
	"path/filepath"
)

// LogsDir returns the directory holding log files.
func LogsDir(dataDir string) string {
	return filepath.Join(dataDir, LogsDirName)
}

// TaskLogPath returns the path to a task's log file.
func TaskLogPath(dataDir string, taskID int) string {
	return filepath.Join(LogsDir(dataDir), fmt.Sprintf("task-%d.log", taskID))
}

// GlobalLogPath returns the path to the global log file.
func GlobalLogPath(dataDir string) string {
	return filepath.Join(LogsDir(dataDir), GlobalLogName)
}

// TasksStorePath returns the path to the tasks.json file.
func TasksStorePath(dataDir string) string {
	return filepath.Join(dataDir, StoreFileName)
}

// TaskRefName returns the display form of a task ID ("#12").
func TaskRefName(id int) string {
	return fmt.Sprintf("#%d", id)
}
