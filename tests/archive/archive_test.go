package archive_test

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"consensor/pkg/archive"
)

func buildZip(t *testing.T, members map[string]string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for name, content := range members {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func TestOpenCorrupt(t *testing.T) {
	if _, err := archive.Open([]byte("not a zip at all")); !errors.Is(err, archive.ErrCorruptArchive) {
		t.Errorf("error = %v, want ErrCorruptArchive", err)
	}
}

func TestClassifyPair(t *testing.T) {
	tests := []struct {
		name     string
		members  []string
		wantInfo string
		wantFull string
		wantErr  bool
	}{
		{
			name:     "info member first",
			members:  []string{"task_info_only.csv", "task.csv"},
			wantInfo: "task_info_only.csv",
			wantFull: "task.csv",
		},
		{
			name:     "info member second",
			members:  []string{"demo_task.csv", "demo_task_info_only.csv"},
			wantInfo: "demo_task_info_only.csv",
			wantFull: "demo_task.csv",
		},
		{
			name:    "mismatched base names",
			members: []string{"X_info_only.csv", "Y.csv"},
			wantErr: true,
		},
		{
			name:    "three members",
			members: []string{"a_info_only.csv", "a.csv", "extra.csv"},
			wantErr: true,
		},
		{
			name:    "one member",
			members: []string{"a.csv"},
			wantErr: true,
		},
		{
			name:    "no info member",
			members: []string{"a.csv", "b.csv"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, err := archive.ClassifyPair(tt.members)
			if tt.wantErr {
				if !errors.Is(err, archive.ErrUnexpectedFile) {
					t.Errorf("error = %v, want ErrUnexpectedFile", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ClassifyPair error: %v", err)
			}
			if pair.InfoOnly != tt.wantInfo || pair.Full != tt.wantFull {
				t.Errorf("pair = %+v, want {%s %s}", pair, tt.wantInfo, tt.wantFull)
			}
		})
	}
}

func TestExtractPair(t *testing.T) {
	dir := t.TempDir()
	data := buildZip(t, map[string]string{
		"task_info_only.csv": "id\n1\n",
		"task.csv":           "id,info\n1,x\n",
	})

	zr, err := archive.Open(data)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}

	info, full, err := archive.ExtractPair(zr, dir)
	if err != nil {
		t.Fatalf("ExtractPair error: %v", err)
	}

	if filepath.Base(info) != "task_info_only.csv" {
		t.Errorf("info path = %s", info)
	}
	if filepath.Base(full) != "task.csv" {
		t.Errorf("full path = %s", full)
	}

	content, err := os.ReadFile(full)
	if err != nil {
		t.Fatalf("read extracted: %v", err)
	}
	if string(content) != "id,info\n1,x\n" {
		t.Errorf("content = %q", content)
	}
}

func TestExtractPairOverwrites(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "task.csv")
	os.WriteFile(stale, []byte("stale"), 0o644)

	data := buildZip(t, map[string]string{
		"task_info_only.csv": "id\n",
		"task.csv":           "fresh",
	})
	zr, _ := archive.Open(data)

	if _, _, err := archive.ExtractPair(zr, dir); err != nil {
		t.Fatalf("ExtractPair error: %v", err)
	}

	content, _ := os.ReadFile(stale)
	if string(content) != "fresh" {
		t.Errorf("pre-existing file not overwritten: %q", content)
	}
}

func TestExtractAll(t *testing.T) {
	t.Run("two members", func(t *testing.T) {
		dir := t.TempDir()
		data := buildZip(t, map[string]string{
			"result_info_only.csv": "a\n",
			"result.csv":           "b\n",
		})
		zr, _ := archive.Open(data)

		paths, err := archive.ExtractAll(zr, dir)
		if err != nil {
			t.Fatalf("ExtractAll error: %v", err)
		}
		if len(paths) != 2 {
			t.Fatalf("paths = %v, want 2", paths)
		}
	})

	t.Run("single member", func(t *testing.T) {
		dir := t.TempDir()
		data := buildZip(t, map[string]string{"result.json": "{}"})
		zr, _ := archive.Open(data)

		paths, err := archive.ExtractAll(zr, dir)
		if err != nil {
			t.Fatalf("ExtractAll error: %v", err)
		}
		if len(paths) != 1 || filepath.Base(paths[0]) != "result.json" {
			t.Errorf("paths = %v", paths)
		}
	})

	t.Run("rejects escaping member", func(t *testing.T) {
		dir := t.TempDir()
		data := buildZip(t, map[string]string{"../escape.csv": "x"})
		zr, _ := archive.Open(data)

		if _, err := archive.ExtractAll(zr, dir); !errors.Is(err, archive.ErrUnexpectedFile) {
			t.Errorf("error = %v, want ErrUnexpectedFile", err)
		}
	})
}

func TestBuildRoundTrip(t *testing.T) {
	dir := t.TempDir()
	inputs := map[string]string{
		"result.csv":                "id,data\n1,a\n",
		"demo_consensus_yesno.csv":  "id,Yes,No\n1,0.5,0.5\n",
		"demo_consensus_other.json": `{"1": {"Yes": 1}}`,
	}

	var paths []string
	for name, content := range inputs {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write input: %v", err)
		}
		paths = append(paths, path)
	}

	buf, err := archive.Build(paths)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("reread archive: %v", err)
	}
	if len(zr.File) != len(inputs) {
		t.Fatalf("member count = %d, want %d", len(zr.File), len(inputs))
	}

	for _, f := range zr.File {
		want, ok := inputs[f.Name]
		if !ok {
			t.Errorf("unexpected member %s", f.Name)
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open member: %v", err)
		}
		got, _ := io.ReadAll(rc)
		rc.Close()
		if string(got) != want {
			t.Errorf("member %s = %q, want %q", f.Name, got, want)
		}
	}
}

func TestBuildMissingFile(t *testing.T) {
	if _, err := archive.Build([]string{filepath.Join(t.TempDir(), "missing.csv")}); err == nil {
		t.Error("Build should fail on a missing input file")
	}
}
