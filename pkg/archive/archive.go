// Package archive reads and writes the ZIP archives exchanged with the
// upstream export API. Task and task-run exports arrive as two-member
// archives whose members are paired by a naming convention: the member
// carrying the info-only marker in its name must share a base name with
// its full counterpart. That convention is an implicit protocol with the
// upstream API, isolated here in ClassifyPair so it stays testable without
// any network I/O.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"consensor/pkg/scratch"
)

// InfoOnlyMarker is the substring identifying the metadata-only member of a
// paired export archive.
const InfoOnlyMarker = "_info_only"

// Pair names the two members of a task or task-run export archive.
type Pair struct {
	InfoOnly string
	Full     string
}

// Open parses data as a ZIP archive.
func Open(data []byte) (*zip.Reader, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	return r, nil
}

// ClassifyPair identifies the info-only member and its full counterpart among
// exactly two member names. The info-only member's name truncated at the
// marker must equal the full member's name with its extension stripped.
func ClassifyPair(members []string) (Pair, error) {
	if len(members) != 2 {
		return Pair{}, fmt.Errorf("%w: two members expected, got %d: %v",
			ErrUnexpectedFile, len(members), members)
	}

	info := 0
	if !strings.Contains(members[0], InfoOnlyMarker) {
		info = 1
	}
	marker := strings.Index(members[info], InfoOnlyMarker)
	if marker < 0 {
		return Pair{}, fmt.Errorf("%w: no %q member among %v",
			ErrUnexpectedFile, InfoOnlyMarker, members)
	}

	base := members[info][:marker]
	full := members[1-info]
	if base != strings.TrimSuffix(full, filepath.Ext(full)) {
		return Pair{}, fmt.Errorf("%w: base names do not match: %v",
			ErrUnexpectedFile, members)
	}

	return Pair{InfoOnly: members[info], Full: full}, nil
}

// ExtractPair validates the archive's member pair and extracts both members
// into dir, returning the info-only path first. Pre-existing files at the
// target paths are deleted before extraction.
func ExtractPair(r *zip.Reader, dir string) (string, string, error) {
	pair, err := ClassifyPair(memberNames(r))
	if err != nil {
		return "", "", err
	}

	paths, err := extract(r, dir)
	if err != nil {
		return "", "", err
	}

	info, full := paths[pair.InfoOnly], paths[pair.Full]
	return info, full, nil
}

// ExtractAll extracts every member into dir without pairing validation,
// returning paths in member order. Result archives use this: CSV exports
// carry two members, JSON exports one.
func ExtractAll(r *zip.Reader, dir string) ([]string, error) {
	paths, err := extract(r, dir)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(r.File))
	for _, name := range memberNames(r) {
		out = append(out, paths[name])
	}
	return out, nil
}

// Build writes each file into a new deflate-compressed in-memory archive.
// Member names are the files' base names. The returned buffer reads from
// the start.
func Build(paths []string) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		member, err := zw.Create(filepath.Base(path))
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("add member %s: %w", filepath.Base(path), err)
		}
		if _, err := io.Copy(member, f); err != nil {
			f.Close()
			return nil, fmt.Errorf("write member %s: %w", filepath.Base(path), err)
		}
		f.Close()
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf, nil
}

func memberNames(r *zip.Reader) []string {
	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names
}

// extract writes every member into dir, deleting pre-existing files at the
// target paths first, and returns a member-name to path mapping. Member names
// are safe-joined under dir so no archive entry can escape it.
func extract(r *zip.Reader, dir string) (map[string]string, error) {
	paths := make(map[string]string, len(r.File))
	for _, f := range r.File {
		path, err := scratch.Join(dir, f.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: member %q: %v", ErrUnexpectedFile, f.Name, err)
		}
		paths[f.Name] = path
	}

	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("clear %s: %w", path, err)
		}
	}

	for _, f := range r.File {
		if err := extractMember(f, paths[f.Name]); err != nil {
			return nil, err
		}
	}
	return paths, nil
}

func extractMember(f *zip.File, path string) error {
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open member %s: %w", f.Name, err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create member dir: %w", err)
	}

	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("extract member %s: %w", f.Name, err)
	}
	return nil
}
