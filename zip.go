package main

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

func sanitizedName(filename string) string {
	filename = strings.TrimLeft(strings.Replace(filename, `\`, "/", -1), `/`)
	return path.Clean(filename)
}

func isZip(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".apk", ".zip", ".jar", ".aar", ".ap_":
		return true
	}
	return false
}

// ExtractFromZip copies the first file of the archive zipPath whose name
// matches pattern to w. "**/" at the start of the pattern matches any
// directory prefix.
func ExtractFromZip(zipPath, pattern string, w io.Writer) error {
	rd, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer rd.Close()

	anyDir := strings.HasPrefix(pattern, "**/")
	pattern = strings.TrimPrefix(pattern, "**/")
	for _, f := range rd.File {
		name := sanitizedName(f.Name)
		if anyDir {
			name = path.Base(name)
		}
		if ok, _ := path.Match(pattern, name); !ok {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		defer rc.Close()
		_, err = io.Copy(w, rc)
		return err
	}
	return fmt.Errorf("File %s not found", strconv.Quote(pattern))
}

// ListZip returns the names of the files in zipPath under dir.
func ListZip(zipPath, dir string) ([]string, error) {
	rd, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, err
	}
	defer rd.Close()
	var names []string
	for _, f := range rd.File {
		name := sanitizedName(f.Name)
		if dir == "" || strings.HasPrefix(name, dir+"/") {
			names = append(names, name)
		}
	}
	return names, nil
}

// openAsset reads a resource table: resources.arsc out of an apk, or the
// file itself.
func openAsset(filename string) ([]byte, error) {
	if !isZip(filename) {
		return ioutil.ReadFile(filename)
	}
	buf := bytes.NewBuffer(nil)
	if err := ExtractFromZip(filename, "resources.arsc", buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
