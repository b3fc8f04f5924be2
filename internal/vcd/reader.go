package vcd

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// ParseFile reads and parses one VCD document. Files ending in .gz are
// decompressed transparently; simulators routinely compress large dumps.
func ParseFile(path string) (*Document, error) {
	src, err := readFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(src)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return doc, nil
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(ErrEmptyInput, err.Error())
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "gzip %s", path)
		}
		defer zr.Close()
		r = zr
	}
	return io.ReadAll(r)
}
