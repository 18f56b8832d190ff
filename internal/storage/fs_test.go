package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func tempScratch(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func write(t *testing.T, s *FS, name string, content []byte) {
	t.Helper()
	f, err := s.Create(name)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.Write(content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestCreateAndRead(t *testing.T) {
	s := tempScratch(t)
	content := []byte("RIFF....WAVE")
	write(t, s, "take.wav", content)
	got, err := s.Read("take.wav")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestCreateAndPatch(t *testing.T) {
	s := tempScratch(t)
	f, err := s.Create("capture.wav")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.Write([]byte("0000abcd")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := f.WriteAt([]byte("1234"), 0); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	got, _ := s.Read("capture.wav")
	if string(got) != "1234abcd" {
		t.Errorf("content = %q, want %q", got, "1234abcd")
	}
}

func TestDelete(t *testing.T) {
	s := tempScratch(t)
	write(t, s, "del.wav", []byte("bye"))
	if err := s.Delete("del.wav"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("del.wav"); err == nil {
		t.Error("expected error reading deleted file")
	}
}

func TestListAndSweep(t *testing.T) {
	s := tempScratch(t)
	write(t, s, "a.wav", []byte("a"))
	write(t, s, "b.wav", []byte("b"))
	write(t, s, "readme.txt", []byte("keep"))
	_ = os.Mkdir(filepath.Join(s.Root(), "dir.wav"), 0o755)

	names, err := s.List(".wav")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 2 {
		t.Errorf("len = %d, want 2 (%v)", len(names), names)
	}

	n, err := Sweep(s, ".wav")
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 2 {
		t.Errorf("swept = %d, want 2", n)
	}
	if _, err := s.Read("readme.txt"); err != nil {
		t.Errorf("unrelated file removed: %v", err)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempScratch(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.wav",
		"/etc/shadow",
		"",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Delete(p); err == nil {
			t.Errorf("expected error for delete of %q", p)
		}
		if _, err := s.Create(p); err == nil {
			t.Errorf("expected error for create of %q", p)
		}
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	if _, err := NewFS(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp(t.TempDir(), "tonote-test-*")
	_ = f.Close()
	if _, err := NewFS(f.Name()); err == nil {
		t.Error("expected error when root is a file")
	}
}
