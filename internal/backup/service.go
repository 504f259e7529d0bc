// Package backup copies the registry workbook into timestamped files.
package backup

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/isoilaj/caregiver-registry/internal/infrastructure/workbook"
)

const (
	namePrefix  = "caregivers_database_"
	nameSuffix  = ".xlsx"
	stampLayout = "20060102_150405"
)

// ErrNoWorkbook is returned by Create when there is nothing to back up yet.
var ErrNoWorkbook = errors.New("workbook does not exist")

type Backup struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

type Service struct {
	source string
	dir    string
	now    func() time.Time
}

func NewService(source, dir string, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{source: source, dir: dir, now: now}
}

// Create copies the workbook to <dir>/caregivers_database_YYYYMMDD_HHMMSS.xlsx.
func (s *Service) Create(ctx context.Context) (Backup, error) {
	if err := ctx.Err(); err != nil {
		return Backup{}, err
	}
	src, err := os.Open(s.source)
	if errors.Is(err, os.ErrNotExist) {
		return Backup{}, ErrNoWorkbook
	}
	if err != nil {
		return Backup{}, fmt.Errorf("open workbook: %w", err)
	}
	defer src.Close()

	stamp := s.now()
	name := namePrefix + stamp.Format(stampLayout) + nameSuffix
	path := filepath.Join(s.dir, name)
	if err := workbook.WriteFileAtomic(path, src, 0o644); err != nil {
		return Backup{}, fmt.Errorf("write backup %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return Backup{}, err
	}
	return Backup{Name: name, Path: path, Size: info.Size(), CreatedAt: stamp.Truncate(time.Second)}, nil
}

// List returns the backups in dir, newest first. A missing directory has no backups.
func (s *Service) List() ([]Backup, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Backup{}, nil
		}
		return nil, err
	}
	out := make([]Backup, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, namePrefix) || !strings.HasSuffix(name, nameSuffix) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, namePrefix), nameSuffix)
		created, err := time.ParseInLocation(stampLayout, stamp, time.Local)
		if err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		out = append(out, Backup{Name: name, Path: filepath.Join(s.dir, name), Size: info.Size(), CreatedAt: created})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	return out, nil
}

// Run creates a backup every interval until ctx is done. Failures are logged
// and passed to onError when it is set.
func (s *Service) Run(ctx context.Context, interval time.Duration, logger *log.Logger, onError func(error)) {
	if interval <= 0 {
		return
	}
	if logger == nil {
		logger = log.Default()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b, err := s.Create(ctx)
			switch {
			case errors.Is(err, ErrNoWorkbook), errors.Is(err, context.Canceled):
			case err != nil:
				logger.Printf("scheduled backup failed: %v", err)
				if onError != nil {
					onError(err)
				}
			default:
				logger.Printf("scheduled backup written to %s", b.Path)
			}
		}
	}
}
