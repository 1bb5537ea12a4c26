package watch

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certvet/certvet/internal/ocr"
	"github.com/certvet/certvet/internal/store"
	"github.com/certvet/certvet/internal/verify"
)

type stubEngine struct{ text string }

func (s *stubEngine) ExtractImage(ctx context.Context, img image.Image) (*ocr.Result, error) {
	return &ocr.Result{FullText: s.text}, nil
}

func (s *stubEngine) Close() error { return nil }

func writeScan(t *testing.T, dir, name string) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 30, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 30; x++ {
			img.Set(x, y, color.White)
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func newTestWatcher(t *testing.T, dir string) (*Watcher, *store.Store) {
	t.Helper()

	reports, err := store.Open(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = reports.Close() })

	verifier := verify.New(&stubEngine{text: "Certificate of Birth BC12345"},
		verify.DefaultOptions(), nil)
	return New(dir, verifier, reports, nil), reports
}

func TestWatcher_ProcessFile(t *testing.T) {
	dir := t.TempDir()
	w, reports := newTestWatcher(t, dir)
	scan := writeScan(t, dir, "cert.png")

	require.NoError(t, w.ProcessFile(context.Background(), scan))

	// Text report beside the scan.
	data, err := os.ReadFile(filepath.Join(dir, "cert.report.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Birth Certificate Validation Report")

	// Persisted report.
	stored, err := reports.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "cert.png", stored[0].FileName)
}

func TestWatcher_ProcessFile_Idempotent(t *testing.T) {
	dir := t.TempDir()
	w, reports := newTestWatcher(t, dir)
	scan := writeScan(t, dir, "cert.png")

	require.NoError(t, w.ProcessFile(context.Background(), scan))
	require.NoError(t, w.ProcessFile(context.Background(), scan))

	stored, err := reports.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestWatcher_ProcessFile_RetriesAfterError(t *testing.T) {
	dir := t.TempDir()
	w, reports := newTestWatcher(t, dir)

	// A partial write that outlived the settle delay.
	path := filepath.Join(dir, "partial.png")
	require.NoError(t, os.WriteFile(path, []byte("not yet a png"), 0o644))
	require.Error(t, w.ProcessFile(context.Background(), path))

	// The complete file arrives with a later write; the path must not be
	// stuck in the done set.
	writeScan(t, dir, "partial.png")
	require.NoError(t, w.ProcessFile(context.Background(), path))

	stored, err := reports.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestWatcher_ProcessExisting(t *testing.T) {
	dir := t.TempDir()
	w, reports := newTestWatcher(t, dir)

	writeScan(t, dir, "a.png")
	writeScan(t, dir, "b.jpg")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0o644))

	require.NoError(t, w.ProcessExisting(context.Background()))

	stored, err := reports.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestWatcher_Run_PicksUpNewFile(t *testing.T) {
	dir := t.TempDir()
	w, _ := newTestWatcher(t, dir)

	processed := make(chan string, 1)
	w.OnReport = func(path string, report *verify.Report) {
		processed <- path
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- w.Run(ctx) }()

	// Give the watcher time to register before dropping the file.
	time.Sleep(200 * time.Millisecond)
	scan := writeScan(t, dir, "incoming.png")

	select {
	case got := <-processed:
		assert.Equal(t, scan, got)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the watcher to process the scan")
	}

	cancel()
	select {
	case err := <-runErr:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for Run to exit")
	}
}

func TestReportPathFor(t *testing.T) {
	assert.Equal(t, "/in/scan.report.txt", reportPathFor("/in/scan.png"))
	assert.Equal(t, "/in/scan.report.txt", reportPathFor("/in/scan.jpeg"))
}
