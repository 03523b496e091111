package export

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// Rune limits for names written into an EDL. Clip names go into
// "FROM CLIP NAME" comments; the title doubles as the output file stem.
const (
	clipNameLimit = 160
	titleLimit    = 120
)

var (
	ErrOutputDirRequired  = errors.New("output_dir is required")
	ErrOutputDirTraversal = errors.New("output_dir cannot contain path traversal")
	ErrOutputDirUnclean   = errors.New("output_dir must be clean path")
	ErrOutputDirMissing   = errors.New("output_dir does not exist")
	ErrOutputDirNotDir    = errors.New("output_dir is not a directory")
)

// clipName is the clip's name as it appears in the event comment.
func clipName(c string) string {
	return edlName(c, clipNameLimit)
}

// edlTitle turns a project name into the TITLE line and file stem. Names
// that clean down to nothing fall back to defaultProjectName.
func edlTitle(project string) string {
	if title := edlName(project, titleLimit); title != "" {
		return title
	}
	return defaultProjectName
}

// edlName drops control runes, replaces anything EDL readers or file
// systems may choke on with '_', and cuts the result to limit runes.
func edlName(s string, limit int) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case unicode.IsControl(r):
		case unicode.IsLetter(r), unicode.IsDigit(r), strings.ContainsRune(" -_.,()", r):
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	out = []rune(strings.TrimSpace(string(out)))
	if len(out) > limit {
		out = []rune(strings.TrimRightFunc(string(out[:limit]), unicode.IsSpace))
	}
	return string(out)
}

// ValidateOutputDir accepts an existing directory given as a clean path
// with no ".." segments.
func ValidateOutputDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return ErrOutputDirRequired
	}
	for _, part := range strings.Split(filepath.ToSlash(dir), "/") {
		if part == ".." {
			return ErrOutputDirTraversal
		}
	}
	if filepath.Clean(dir) != dir {
		return ErrOutputDirUnclean
	}

	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrOutputDirMissing
	case err != nil:
		return fmt.Errorf("invalid output_dir: %w", err)
	case !info.IsDir():
		return ErrOutputDirNotDir
	}
	return nil
}
