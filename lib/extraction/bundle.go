// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

package extraction

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Bundle packs the export tree rooted at root into a compressed tar
// next to it and returns the bundle path. Entry names are relative to
// root. The tree itself is left in place; the caller removes it.
func Bundle(root string, tag Tag) (string, error) {
	bundlePath := root + tag.Extension()
	file, err := os.Create(bundlePath)
	if err != nil {
		return "", fmt.Errorf("creating bundle: %w", err)
	}
	success := false
	defer func() {
		if !success {
			file.Close()
			os.Remove(bundlePath)
		}
	}()

	var compressor io.WriteCloser
	switch tag {
	case TagZstd:
		compressor, err = zstd.NewWriter(file)
		if err != nil {
			return "", fmt.Errorf("zstd writer: %w", err)
		}
	case TagLZ4:
		compressor = lz4.NewWriter(file)
	default:
		compressor = nopWriteCloser{file}
	}

	tarWriter := tar.NewWriter(compressor)
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		relative, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(relative)
		if err := tarWriter.WriteHeader(header); err != nil {
			return err
		}
		source, err := os.Open(path)
		if err != nil {
			return err
		}
		_, err = io.Copy(tarWriter, source)
		source.Close()
		return err
	})
	if err != nil {
		return "", fmt.Errorf("packing %s: %w", root, err)
	}
	if err := tarWriter.Close(); err != nil {
		return "", fmt.Errorf("finishing tar: %w", err)
	}
	if err := compressor.Close(); err != nil {
		return "", fmt.Errorf("finishing compression: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("closing bundle: %w", err)
	}
	success = true
	return bundlePath, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
