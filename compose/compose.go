package compose

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	// ErrComposition is returned when merging a scene's two videos fails
	ErrComposition = errors.New("scene composition failed")
	// ErrAssembly is returned when concatenating scene clips fails
	ErrAssembly = errors.New("reel assembly failed")
)

// Composer stacks an explainer video over an avatar video inside a fixed
// output frame: explainer in the top half, avatar in the bottom half.
type Composer struct {
	width  int
	height int
}

func NewComposer(width, height int) *Composer {
	return &Composer{width: width, height: height}
}

// ComposeScene merges one explainer and one avatar video into a single
// clip. The output is truncated to the shorter input so lip-sync and
// visual stay aligned for the whole clip. Audio comes from the avatar
// track, which carries the narration.
func (c *Composer) ComposeScene(ctx context.Context, explainerPath, avatarPath, outPath string) error {
	durExplainer, err := ProbeDuration(ctx, explainerPath)
	if err != nil {
		return fmt.Errorf("%w: probe %s: %v", ErrComposition, filepath.Base(explainerPath), err)
	}
	durAvatar, err := ProbeDuration(ctx, avatarPath)
	if err != nil {
		return fmt.Errorf("%w: probe %s: %v", ErrComposition, filepath.Base(avatarPath), err)
	}
	duration := MinDuration(durExplainer, durAvatar)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-i", explainerPath,
		"-i", avatarPath,
		"-filter_complex", StackFilter(c.width, c.height),
		"-map", "[v]",
		"-map", "1:a?",
		"-t", fmt.Sprintf("%.3f", duration),
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "22",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		outPath,
	)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: ffmpeg: %v: %s", ErrComposition, err, stderr.String())
	}
	return nil
}

// StackFilter scales both inputs to half-height of the output frame and
// stacks them vertically: input 0 on top, input 1 below.
func StackFilter(width, height int) string {
	half := height / 2
	return fmt.Sprintf(
		"[0:v]scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black,setsar=1[top];"+
			"[1:v]scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black,setsar=1[bottom];"+
			"[top][bottom]vstack=inputs=2[v]",
		width, half, width, half,
		width, half, width, half,
	)
}

// MinDuration is the composition duration policy: the shorter input wins
func MinDuration(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Assembler concatenates composed scene clips into the final reel
type Assembler struct{}

func NewAssembler() *Assembler {
	return &Assembler{}
}

// AssembleReel joins the clips in the exact order given and re-encodes
// them with a fixed codec pair. This is the only place scene order
// becomes observable in the output.
func (a *Assembler) AssembleReel(ctx context.Context, clips []string, outPath string) error {
	if len(clips) == 0 {
		return fmt.Errorf("%w: no clips to assemble", ErrAssembly)
	}

	listFile := filepath.Join(filepath.Dir(clips[0]), "reel_concat.txt")
	if err := os.WriteFile(listFile, []byte(ConcatList(clips)), 0644); err != nil {
		return fmt.Errorf("%w: write concat list: %v", ErrAssembly, err)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "22",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		"-movflags", "+faststart",
		outPath,
	)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: ffmpeg: %v: %s", ErrAssembly, err, stderr.String())
	}
	return nil
}

// ConcatList builds the ffmpeg concat demuxer list body, preserving order
func ConcatList(clips []string) string {
	var lines []string
	for _, clip := range clips {
		lines = append(lines, fmt.Sprintf("file '%s'", clip))
	}
	return strings.Join(lines, "\n")
}

// ProbeDuration uses ffprobe to measure a media file's duration in seconds
func ProbeDuration(ctx context.Context, path string) (float64, error) {
	out, err := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).Output()
	if err != nil {
		return 0, err
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}
	return dur, nil
}
