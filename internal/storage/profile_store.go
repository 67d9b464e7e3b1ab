package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
)

var ErrUnsupportedImage = errors.New("profile picture must be a JPEG or PNG image")

// ProfileStore keeps uploaded profile pictures as profile_{username}.jpg files.
// Bytes are written as uploaded, whatever the image format.
type ProfileStore struct {
	dir string
	log *logrus.Logger
}

// StagedPicture is an uploaded picture written to a temp file that has not yet
// been moved to its final name.
type StagedPicture struct {
	store    *ProfileStore
	tmpPath  string
	FileName string
}

func NewProfileStore(dir string, log *logrus.Logger) (*ProfileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create profile picture dir %s: %w", dir, err)
	}
	return &ProfileStore{
		dir: dir,
		log: log,
	}, nil
}

func FileName(username string) string {
	return fmt.Sprintf("profile_%s.jpg", username)
}

func (s *ProfileStore) Path(username string) string {
	return filepath.Join(s.dir, FileName(username))
}

// Stage checks the upload and writes it next to its final location. The
// caller commits it once the account row exists, or discards it otherwise.
func (s *ProfileStore) Stage(username string, data []byte) (*StagedPicture, error) {
	mt := mimetype.Detect(data)
	if !mt.Is("image/jpeg") && !mt.Is("image/png") {
		return nil, ErrUnsupportedImage
	}

	tmp, err := os.CreateTemp(s.dir, ".profile-*")
	if err != nil {
		return nil, fmt.Errorf("create profile picture file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("write profile picture: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("write profile picture: %w", err)
	}

	return &StagedPicture{
		store:    s,
		tmpPath:  tmp.Name(),
		FileName: FileName(username),
	}, nil
}

// Commit moves the staged file to its final name.
func (p *StagedPicture) Commit() error {
	if err := os.Rename(p.tmpPath, filepath.Join(p.store.dir, p.FileName)); err != nil {
		p.Discard()
		return fmt.Errorf("store profile picture: %w", err)
	}
	return nil
}

// Discard removes the staged file. It is safe to call after Commit.
func (p *StagedPicture) Discard() {
	if err := os.Remove(p.tmpPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		p.store.log.Warnf("Failed to remove staged profile picture %s: %v", p.tmpPath, err)
	}
}
