package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"telehealth-consult/internal/domain/entity"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
)

// DefaultDuration is the capture length used when the caller gives none.
const DefaultDuration = 60 * time.Second

// Store keeps one recording per consultation side as a file in dir.
type Store struct {
	dir      string
	recorder Recorder
	log      *logrus.Logger
}

func NewStore(dir string, recorder Recorder, log *logrus.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir %s: %w", dir, err)
	}
	return &Store{
		dir:      dir,
		recorder: recorder,
		log:      log,
	}, nil
}

// Path is where the recording for a consultation side lives.
func (s *Store) Path(consultationID int64, role entity.RecordingRole) string {
	return filepath.Join(s.dir, entity.RecordingFileName(consultationID, role))
}

// Record captures into a temp file and moves it over the previous recording
// only once the capture succeeded and produced data. A failed, cancelled or
// empty capture never replaces the previous recording.
func (s *Store) Record(ctx context.Context, consultationID int64, role entity.RecordingRole, duration time.Duration) error {
	if duration <= 0 {
		duration = DefaultDuration
	}

	final := s.Path(consultationID, role)
	name := strings.TrimSuffix(filepath.Base(final), ".mp4")
	tmp, err := os.CreateTemp(s.dir, "."+name+"-*.mp4")
	if err != nil {
		return fmt.Errorf("create capture file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	start := time.Now()
	if err := s.recorder.Record(ctx, tmpPath, duration); err != nil {
		s.removeTemp(tmpPath)
		return err
	}

	info, err := os.Stat(tmpPath)
	if err != nil {
		s.removeTemp(tmpPath)
		return fmt.Errorf("stat capture: %w", err)
	}
	if info.Size() == 0 {
		s.removeTemp(tmpPath)
		return ErrEmptyCapture
	}

	if err := os.Rename(tmpPath, final); err != nil {
		s.removeTemp(tmpPath)
		return fmt.Errorf("store capture: %w", err)
	}

	elapsed := time.Since(start)
	fields := logrus.Fields{
		"consultation_id": consultationID,
		"role":            role,
		"elapsed":         elapsed.Round(time.Millisecond).String(),
	}
	if elapsed < duration {
		s.log.WithFields(fields).Info("Capture ended before the requested duration")
	} else {
		s.log.WithFields(fields).Info("Capture finished")
	}
	return nil
}

// Fetch returns the stored recording, or nil when none has been made yet.
func (s *Store) Fetch(consultationID int64, role entity.RecordingRole) (*entity.MediaRecording, error) {
	data, err := os.ReadFile(s.Path(consultationID, role))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read recording: %w", err)
	}

	return &entity.MediaRecording{
		ConsultationID: consultationID,
		Role:           role,
		ContentType:    mimetype.Detect(data).String(),
		Data:           data,
	}, nil
}

// Exists reports whether a recording has been made for the consultation side.
func (s *Store) Exists(consultationID int64, role entity.RecordingRole) (bool, error) {
	_, err := os.Stat(s.Path(consultationID, role))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat recording: %w", err)
}

func (s *Store) removeTemp(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Warnf("Failed to remove incomplete capture %s: %v", path, err)
	}
}
