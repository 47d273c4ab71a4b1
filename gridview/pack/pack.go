// Package pack writes exported pages into a tar archive.
package pack

import (
	"archive/tar"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"regexp"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/xml"

	"znkr.io/sauce/gridview/render"
)

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFuncRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$"), js.Minify)
	m.AddFuncRegexp(regexp.MustCompile("[/+]xml$"), xml.Minify)
	return m
}

// Minify minifies the files that have a minifiable type, in place.
func Minify(files []render.File) error {
	m := newMinifier()
	for i, f := range files {
		mt, _, err := mime.ParseMediaType(f.MimeType)
		if err != nil {
			return fmt.Errorf("invalid mime type of %s: %v", f.Path, err)
		}
		switch mt {
		case "text/html", "text/css", "application/atom+xml", "text/javascript":
			b, err := m.Bytes(mt, f.Data)
			if err != nil {
				return fmt.Errorf("minification failed for %s: %v", f.Path, err)
			}
			files[i].Data = b
		}
	}
	return nil
}

// Pack minifies files and writes them to a tar archive at filename.
func Pack(filename string, files []render.File) error {
	file, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("opening file: %v", err)
	}
	defer file.Close()

	if err := Write(file, files); err != nil {
		return err
	}
	return file.Close()
}

// Write minifies files and writes them as tar archive to w.
func Write(w io.Writer, files []render.File) error {
	if err := Minify(files); err != nil {
		return err
	}

	tw := tar.NewWriter(w)
	dirs := make(map[string]bool)
	for _, f := range files {
		if dir := path.Dir(f.Path); !dirs[dir] {
			name := "./" + dir + "/"
			if dir == "." {
				name = "./"
			}
			hdr := &tar.Header{
				Name:     name,
				Typeflag: tar.TypeDir,
				Mode:     int64(0755),
			}
			if err := tw.WriteHeader(hdr); err != nil {
				return fmt.Errorf("writing header: %v", err)
			}
			dirs[dir] = true
		}

		hdr := &tar.Header{
			Name: "./" + f.Path,
			Mode: int64(0644),
			Size: int64(len(f.Data)),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("writing header: %v", err)
		}
		if _, err := tw.Write(f.Data); err != nil {
			return fmt.Errorf("writing body: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("finishing archive: %v", err)
	}
	return nil
}
