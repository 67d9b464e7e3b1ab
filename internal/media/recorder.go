package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	ErrDeviceUnavailable = errors.New("capture device unavailable")
	ErrCaptureCancelled  = errors.New("capture cancelled")
	// ErrEmptyCapture is returned when the device yielded no frames at all.
	ErrEmptyCapture = fmt.Errorf("%w: no frames captured", ErrDeviceUnavailable)
)

const (
	captureFrameRate = 20
	captureSize      = "640x480"

	// how long ffmpeg gets to finalise the file after an interrupt
	stopGracePeriod = 5 * time.Second
)

// Recorder captures from the local camera into dst for at most duration.
// Returning nil before duration elapsed means the device ran out of frames.
type Recorder interface {
	Record(ctx context.Context, dst string, duration time.Duration) error
}

// FFmpegRecorder captures from a V4L2 device by running ffmpeg.
type FFmpegRecorder struct {
	ffmpegPath string
	device     string
	log        *logrus.Logger
}

func NewFFmpegRecorder(ffmpegPath, device string, log *logrus.Logger) *FFmpegRecorder {
	return &FFmpegRecorder{
		ffmpegPath: ffmpegPath,
		device:     device,
		log:        log,
	}
}

func (r *FFmpegRecorder) Record(ctx context.Context, dst string, duration time.Duration) error {
	if _, err := os.Stat(r.device); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDeviceUnavailable, r.device, err)
	}

	args := captureArgs(r.device, dst, duration)
	cmd := exec.CommandContext(ctx, r.ffmpegPath, args...)
	// interrupt instead of kill so ffmpeg can stop cleanly
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = stopGracePeriod

	r.log.Infof("Executing FFmpeg command: %s %s", r.ffmpegPath, strings.Join(args, " "))
	output, err := cmd.CombinedOutput()

	if ctx.Err() != nil {
		return ErrCaptureCancelled
	}
	if err != nil {
		r.log.Warnf("FFmpeg capture failed: %v, output: %s", err, string(output))
		return fmt.Errorf("%w: ffmpeg: %v", ErrDeviceUnavailable, err)
	}

	return nil
}

func captureArgs(device, dst string, duration time.Duration) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-f", "v4l2",
		"-framerate", strconv.Itoa(captureFrameRate),
		"-video_size", captureSize,
		"-i", device,
		"-t", strconv.FormatFloat(duration.Seconds(), 'f', -1, 64),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-f", "mp4",
		"-y", // overwrite the temp file created for us
		dst,
	}
}
