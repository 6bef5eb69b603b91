package sinks

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/willibrandon/proclog/core"
	"github.com/willibrandon/proclog/internal/formatters"
	"github.com/willibrandon/proclog/selflog"
)

const (
	// DefaultFilePath is where the file sink writes unless configured otherwise.
	DefaultFilePath = "./process.log"

	// DefaultMaxFileSize is the size above which the file is rolled.
	DefaultMaxFileSize = 64 * 1024 * 1024

	// DefaultRetainFileCount is the number of rolled files kept.
	DefaultRetainFileCount = 100

	rolledTimestampLayout = "20060102-150405.000"
)

// RollingInterval defines when to roll files based on time.
type RollingInterval int

const (
	// RollingIntervalNone disables time-based rolling.
	RollingIntervalNone RollingInterval = iota
	// RollingIntervalHourly rolls files every hour.
	RollingIntervalHourly
	// RollingIntervalDaily rolls files every day.
	RollingIntervalDaily
	// RollingIntervalWeekly rolls files every week.
	RollingIntervalWeekly
	// RollingIntervalMonthly rolls files every month.
	RollingIntervalMonthly
)

// ParseRollingInterval parses the names used in configuration files.
func ParseRollingInterval(s string) (RollingInterval, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return RollingIntervalNone, nil
	case "hour", "hourly":
		return RollingIntervalHourly, nil
	case "day", "daily":
		return RollingIntervalDaily, nil
	case "week", "weekly":
		return RollingIntervalWeekly, nil
	case "month", "monthly":
		return RollingIntervalMonthly, nil
	}
	return RollingIntervalNone, errors.Errorf("unknown rolling interval %q", s)
}

// Formatter turns a record into the bytes of one file line.
type Formatter interface {
	Format(record *core.Record) ([]byte, error)
}

// RollingFileOptions configures the rolling file sink.
type RollingFileOptions struct {
	// FilePath is the path to the log file. Defaults to DefaultFilePath.
	FilePath string

	// MaxFileSize is the size in bytes at which the file is rolled.
	// 0 means no size limit.
	MaxFileSize int64

	// RollingInterval defines time-based rolling.
	RollingInterval RollingInterval

	// RetainFileCount is the number of rolled files to keep.
	// 0 means keep all files.
	RetainFileCount int

	// CompressRolledFiles enables gzip compression for rolled files.
	CompressRolledFiles bool

	// Formatter to use for records. Defaults to formatters.NewFileFormatter().
	Formatter Formatter

	// Fs is the filesystem the sink writes to. Defaults to the OS filesystem.
	Fs afero.Fs
}

// DefaultRollingFileOptions returns the policy of the built-in file sink:
// ./process.log, rolled above 64 MiB, at most 100 rolled files kept.
func DefaultRollingFileOptions() RollingFileOptions {
	return RollingFileOptions{
		FilePath:        DefaultFilePath,
		MaxFileSize:     DefaultMaxFileSize,
		RetainFileCount: DefaultRetainFileCount,
	}
}

// RollingFileSink appends records to a file and rolls it by size or time.
type RollingFileSink struct {
	options      RollingFileOptions
	fs           afero.Fs
	file         afero.File
	mu           sync.Mutex
	currentSize  int64
	rollTime     time.Time
	rolls        int
	closed       bool
	dir          string
	baseFileName string
	fileExt      string
}

// NewRollingFileSink creates a new rolling file sink and opens its file.
func NewRollingFileSink(options RollingFileOptions) (*RollingFileSink, error) {
	if options.FilePath == "" {
		options.FilePath = DefaultFilePath
	}
	if options.Formatter == nil {
		options.Formatter = formatters.NewFileFormatter()
	}
	if options.Fs == nil {
		options.Fs = afero.NewOsFs()
	}

	dir := filepath.Dir(options.FilePath)
	fileName := filepath.Base(options.FilePath)
	ext := filepath.Ext(fileName)

	if err := options.Fs.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "create directory %s", dir)
	}

	sink := &RollingFileSink{
		options:      options,
		fs:           options.Fs,
		dir:          dir,
		baseFileName: strings.TrimSuffix(fileName, ext),
		fileExt:      ext,
	}

	if err := sink.openFile(); err != nil {
		return nil, err
	}
	sink.updateRollTime()

	return sink, nil
}

// Name returns a printable name for diagnostics.
func (rfs *RollingFileSink) Name() string {
	return "file(" + rfs.options.FilePath + ")"
}

// Path returns the path of the active file.
func (rfs *RollingFileSink) Path() string {
	return rfs.options.FilePath
}

// Emit appends the record as one line, rolling the file first if needed.
// Each record is written with a single Write call.
func (rfs *RollingFileSink) Emit(record *core.Record) error {
	rfs.mu.Lock()
	defer rfs.mu.Unlock()

	if rfs.closed {
		return ErrSinkClosed
	}
	if rfs.file == nil {
		if err := rfs.openFile(); err != nil {
			return err
		}
	}

	if rfs.shouldRoll() {
		if err := rfs.roll(); err != nil {
			selflog.Printf("[file] roll %s: %v", rfs.options.FilePath, err)
			if rfs.file == nil {
				return err
			}
		}
	}

	data, err := rfs.options.Formatter.Format(record)
	if err != nil {
		return errors.Wrap(err, "format record")
	}
	data = append(data, '\n')

	n, err := rfs.file.Write(data)
	rfs.currentSize += int64(n)
	if err != nil {
		return errors.Wrapf(err, "write %s", rfs.options.FilePath)
	}
	return nil
}

// Close closes the active file.
func (rfs *RollingFileSink) Close() error {
	rfs.mu.Lock()
	defer rfs.mu.Unlock()

	rfs.closed = true
	if rfs.file == nil {
		return nil
	}
	err := rfs.file.Close()
	rfs.file = nil
	return err
}

// openFile opens the log file for appending.
func (rfs *RollingFileSink) openFile() error {
	file, err := rfs.fs.OpenFile(rfs.options.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, "open %s", rfs.options.FilePath)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return errors.Wrapf(err, "stat %s", rfs.options.FilePath)
	}

	rfs.file = file
	rfs.currentSize = stat.Size()
	return nil
}

// shouldRoll checks if the file should be rolled.
func (rfs *RollingFileSink) shouldRoll() bool {
	if rfs.options.MaxFileSize > 0 && rfs.currentSize >= rfs.options.MaxFileSize {
		return true
	}
	if rfs.options.RollingInterval != RollingIntervalNone {
		return time.Now().After(rfs.rollTime)
	}
	return false
}

// roll moves the active file aside and opens a fresh one. If the file
// cannot be moved, writing continues on the current file.
func (rfs *RollingFileSink) roll() error {
	if err := rfs.file.Close(); err != nil {
		return errors.Wrap(err, "close before roll")
	}
	rfs.file = nil

	rfs.rolls++
	rolledPath := filepath.Join(rfs.dir, fmt.Sprintf("%s-%s-%04d%s",
		rfs.baseFileName, time.Now().Format(rolledTimestampLayout), rfs.rolls, rfs.fileExt))

	if err := rfs.fs.Rename(rfs.options.FilePath, rolledPath); err != nil {
		if oerr := rfs.openFile(); oerr != nil {
			return errors.Wrap(oerr, "reopen after failed roll")
		}
		// Avoid retrying the rename on every write.
		rfs.currentSize = 0
		rfs.updateRollTime()
		return errors.Wrap(err, "rename")
	}

	if rfs.options.CompressRolledFiles {
		if err := rfs.compressFile(rolledPath); err != nil {
			selflog.Printf("[file] compress %s: %v", rolledPath, err)
		}
	}

	if rfs.options.RetainFileCount > 0 {
		if err := rfs.cleanupOldFiles(); err != nil {
			selflog.Printf("[file] cleanup rolled files: %v", err)
		}
	}

	if err := rfs.openFile(); err != nil {
		return err
	}
	rfs.updateRollTime()
	return nil
}

// updateRollTime calculates the next roll time based on interval.
func (rfs *RollingFileSink) updateRollTime() {
	now := time.Now()

	switch rfs.options.RollingInterval {
	case RollingIntervalHourly:
		rfs.rollTime = now.Truncate(time.Hour).Add(time.Hour)
	case RollingIntervalDaily:
		year, month, day := now.Date()
		rfs.rollTime = time.Date(year, month, day+1, 0, 0, 0, 0, now.Location())
	case RollingIntervalWeekly:
		days := int(time.Sunday - now.Weekday())
		if days <= 0 {
			days += 7
		}
		year, month, day := now.Date()
		rfs.rollTime = time.Date(year, month, day+days, 0, 0, 0, 0, now.Location())
	case RollingIntervalMonthly:
		year, month, _ := now.Date()
		rfs.rollTime = time.Date(year, month+1, 1, 0, 0, 0, 0, now.Location())
	default:
		rfs.rollTime = time.Time{}
	}
}

// compressFile replaces filePath with a gzip compressed filePath.gz.
func (rfs *RollingFileSink) compressFile(filePath string) error {
	data, err := afero.ReadFile(rfs.fs, filePath)
	if err != nil {
		return err
	}

	destPath := filePath + ".gz"
	dest, err := rfs.fs.Create(destPath)
	if err != nil {
		return err
	}

	gz := gzip.NewWriter(dest)
	if _, err := gz.Write(data); err != nil {
		gz.Close()
		dest.Close()
		rfs.fs.Remove(destPath)
		return err
	}
	if err := gz.Close(); err != nil {
		dest.Close()
		rfs.fs.Remove(destPath)
		return err
	}
	if err := dest.Close(); err != nil {
		rfs.fs.Remove(destPath)
		return err
	}

	return rfs.fs.Remove(filePath)
}

// RolledFiles returns the rolled files of this sink, newest first.
func (rfs *RollingFileSink) RolledFiles() ([]string, error) {
	matches, err := afero.Glob(rfs.fs, filepath.Join(rfs.dir, rfs.baseFileName+"-*"))
	if err != nil {
		return nil, err
	}

	files := matches[:0]
	for _, m := range matches {
		if strings.HasSuffix(m, rfs.fileExt) || strings.HasSuffix(m, rfs.fileExt+".gz") {
			files = append(files, m)
		}
	}

	// Names embed the roll time and sequence, so they sort chronologically.
	sort.Sort(sort.Reverse(sort.StringSlice(files)))
	return files, nil
}

// cleanupOldFiles removes rolled files beyond the retention count.
func (rfs *RollingFileSink) cleanupOldFiles() error {
	files, err := rfs.RolledFiles()
	if err != nil {
		return err
	}

	for i := rfs.options.RetainFileCount; i < len(files); i++ {
		if err := rfs.fs.Remove(files[i]); err != nil {
			selflog.Printf("[file] remove %s: %v", files[i], err)
		}
	}
	return nil
}
