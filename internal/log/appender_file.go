package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

const defaultMaxSizeMB = 100

// FileAppenderOpt configures the rotating log file. An empty Filename
// disables file output.
type FileAppenderOpt struct {
	Filename      string `mapstructure:"filename"`
	MaxSize       int    `mapstructure:"max_size"` // megabytes
	MaxBackups    int    `mapstructure:"max_backups"`
	MaxAge        int    `mapstructure:"max_age"` // days
	Compress      bool   `mapstructure:"compress"`
	RotateOnStart bool   `mapstructure:"rotate_on_start"`
}

// newFileAppender creates the log directory and opens the rotating file.
// With RotateOnStart each replay starts a fresh file and the previous one
// becomes a backup.
func newFileAppender(opt FileAppenderOpt) (io.WriteCloser, error) {
	if dir := filepath.Dir(opt.Filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	size := opt.MaxSize
	if size <= 0 {
		size = defaultMaxSizeMB
	}

	lj := &lumberjack.Logger{
		Filename:   opt.Filename,
		MaxSize:    size,
		MaxBackups: opt.MaxBackups,
		MaxAge:     opt.MaxAge,
		Compress:   opt.Compress,
	}
	if opt.RotateOnStart {
		if _, err := os.Stat(opt.Filename); err == nil {
			if err := lj.Rotate(); err != nil {
				return nil, fmt.Errorf("failed to rotate %s: %w", opt.Filename, err)
			}
		}
	}
	return lj, nil
}
