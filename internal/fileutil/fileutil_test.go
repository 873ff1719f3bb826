package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestBackupPathFirst(t *testing.T) {
	dir := t.TempDir()
	meta := filepath.Join(dir, "meta.xml")
	touch(t, meta)

	if got := BackupPath(meta); got != filepath.Join(dir, "meta.bak") {
		t.Errorf("BackupPath = %q", got)
	}
}

func TestBackupPathNumbered(t *testing.T) {
	dir := t.TempDir()
	meta := filepath.Join(dir, "meta.xml")
	touch(t, meta)
	touch(t, filepath.Join(dir, "meta.bak"))
	touch(t, filepath.Join(dir, "meta(1).bak"))

	if got := BackupPath(meta); got != filepath.Join(dir, "meta(2).bak") {
		t.Errorf("BackupPath = %q", got)
	}
}

func TestCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.xml")
	if err := os.WriteFile(src, []byte("<root/>"), 0644); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(dir, "dst.xml")

	if err := Copy(src, dst); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "<root/>" {
		t.Errorf("copied content = %q", data)
	}

	if err := Copy(filepath.Join(dir, "missing"), dst); err == nil {
		t.Error("copying a missing file should fail")
	}
}

func TestFindMetaFiles(t *testing.T) {
	dir := t.TempDir()
	sub1 := filepath.Join(dir, "a")
	sub2 := filepath.Join(dir, "b", "deep")
	for _, d := range []string{sub1, sub2} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatal(err)
		}
	}
	touch(t, filepath.Join(sub1, "meta.xml"))
	touch(t, filepath.Join(sub2, "meta.xml"))
	touch(t, filepath.Join(sub1, "other.xml"))

	files, err := FindMetaFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Errorf("found %d files, want 2: %v", len(files), files)
	}
}

func TestSiblingWithSuffix(t *testing.T) {
	got := SiblingWithSuffix("/base/meta.xml", ".fromMets.rdf.xml")
	if got != "/base/meta.fromMets.rdf.xml" {
		t.Errorf("SiblingWithSuffix = %q", got)
	}
}
