package output

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"code.cloudfoundry.org/bytefmt"
	"github.com/pkg/errors"
)

var reIndexSuffix = regexp.MustCompile(`\.(\d+)$`)

// FileWriter saves a navigated page to disk.
type FileWriter struct {
	fullPath string
	progress io.Writer
	width    int
}

func NewFileWriter(u *url.URL, options *Options, progress io.Writer) *FileWriter {
	var fullPath string

	if options.OutputFile == "" {
		name := filepath.Base(u.Path)
		if name == "/" || name == "." || name == "" {
			name = "index.html"
		}
		fullPath = fmt.Sprintf("./%s", name)
	} else {
		fullPath = options.OutputFile
	}

	if !options.Overwrite {
		fullPath = makeNonOverlappingFilename(fullPath)
	}

	return &FileWriter{
		fullPath: fullPath,
		progress: progress,
		width:    options.ProgressWidth,
	}
}

func makeNonOverlappingFilename(path string) string {
	_, err := os.Stat(path)
	if err == nil {
		newPath := reIndexSuffix.ReplaceAllStringFunc(path, func(index string) string {
			i, err := strconv.Atoi(strings.TrimPrefix(index, "."))
			if err != nil {
				panic(err)
			}
			i++
			return fmt.Sprintf(".%d", i)
		})
		if path == newPath {
			path = fmt.Sprintf("%s.%d", path, 1)
		} else {
			path = newPath
		}
		path = makeNonOverlappingFilename(path)
	}
	return path
}

func (f *FileWriter) Download(resp *http.Response) error {
	file, err := os.Create(f.fullPath)
	if err != nil {
		return errors.Wrapf(err, "creating %s", f.fullPath)
	}
	defer file.Close()

	if f.progress == nil || f.width <= 0 {
		if _, err := io.Copy(file, resp.Body); err != nil {
			return errors.Wrapf(err, "writing %s", f.fullPath)
		}
		return nil
	}

	buf := make([]byte, 32*1024)
	var totalRead int64
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := file.Write(buf[:n]); werr != nil {
				return errors.Wrapf(werr, "writing %s", f.fullPath)
			}
			totalRead += int64(n)
			f.printProgress(totalRead, resp.ContentLength)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "reading page")
		}
	}

	fmt.Fprintf(f.progress, "\nSaved %s to %s\n", bytefmt.ByteSize(uint64(totalRead)), f.fullPath)
	return nil
}

func (f *FileWriter) printProgress(done, total int64) {
	var line string
	if total > 0 {
		line = fmt.Sprintf("Downloading: %s / %s (%d%%)",
			bytefmt.ByteSize(uint64(done)), bytefmt.ByteSize(uint64(total)), done*100/total)
	} else {
		line = fmt.Sprintf("Downloading: %s", bytefmt.ByteSize(uint64(done)))
	}
	if len(line) > f.width {
		line = line[:f.width]
	}
	fmt.Fprintf(f.progress, "\r%-*s", f.width, line)
}

func (f *FileWriter) Filename() string {
	return filepath.Base(f.fullPath)
}

func (f *FileWriter) Path() string {
	return f.fullPath
}
