package life

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rkoesters/xdg/basedir"

	"github.com/thierryreding/kmslife/internal/consts"
	"github.com/thierryreding/kmslife/internal/errors"
	"github.com/thierryreding/kmslife/internal/logx"
)

// ParseRLE applies a run-length encoded pattern to the grid with its
// top-left corner at the anchor. Lines starting with # are comments,
// the header line gives the nominal extent and rule, and the body is a
// stream of counted tokens: o for live cells, b for dead cells and $
// for row breaks, terminated by !. The header extent is reported for
// diagnostics but not checked against the grid.
func ParseRLE(g *Grid, r io.Reader, x, y int, logProv logx.LoggerProvider) error {
	if g == nil || r == nil {
		return errors.NilParam()
	}
	sc := bufio.NewScanner(r)
	var (
		header          bool
		col, row, count int
	)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == `` || strings.HasPrefix(line, `#`) {
			continue
		}
		if !header {
			var w, h int
			var rule string
			n, _ := fmt.Sscanf(line, `x = %d, y = %d, rule = %s`, &w, &h, &rule)
			if n < 2 {
				return errors.Errorf(`malformed pattern header %q`, line)
			}
			logx.Debug(`pattern header`, logProv, `width`, w, `height`, h, `rule`, rule)
			header = true
			continue
		}
		for _, c := range line {
			switch {
			case c >= '0' && c <= '9':
				count = count*10 + int(c-'0')
			case c == 'o':
				n := max(count, 1)
				for i := 0; i < n; i++ {
					g.SetCell(x+col+i, y+row)
				}
				col += n
				count = 0
			case c == 'b':
				col += max(count, 1)
				count = 0
			case c == '$':
				row += max(count, 1)
				col = 0
				count = 0
			case c == '!':
				return nil
			case c == ' ' || c == '\t':
				// stray padding, seen in hand-edited files
			default:
				return errors.Errorf(`unexpected %q in pattern body`, string(c))
			}
		}
	}
	if err := sc.Err(); err != nil {
		return errors.New(err)
	}
	if !header {
		return errors.New(`missing pattern header`)
	}
	return nil
}

// LoadRLE reads the pattern file at path and seeds the grid at the
// anchor. A bare name is also looked up below the XDG data directories,
// with the .rle extension appended when missing.
func LoadRLE(g *Grid, path string, x, y int, logProv logx.LoggerProvider) error {
	f, resolved, err := openPattern(path)
	if err != nil {
		return err
	}
	defer f.Close()
	logx.Info(`loading pattern file`, logProv, `path`, resolved)
	return ParseRLE(g, f, x, y, logProv)
}

// patternSearchDirs lists the data roots consulted for bare pattern
// names, best first.
var patternSearchDirs = append([]string{basedir.DataHome}, basedir.DataDirs...)

func openPattern(path string) (*os.File, string, error) {
	f, err := os.Open(path)
	if err == nil {
		return f, path, nil
	}
	if filepath.IsAbs(path) || strings.ContainsRune(path, rune(os.PathSeparator)) {
		return nil, ``, errors.Join(ErrFile, err)
	}
	names := []string{path}
	if filepath.Ext(path) == `` {
		names = append(names, path+`.rle`)
	}
	for _, dir := range patternSearchDirs {
		if dir == `` {
			continue
		}
		for _, name := range names {
			full := filepath.Join(dir, consts.PatternDirName, name)
			if f, errOpen := os.Open(full); errOpen == nil {
				return f, full, nil
			}
		}
	}
	return nil, ``, errors.Join(ErrFile, err)
}
