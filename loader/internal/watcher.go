package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Watcher monitors a source directory and emits file paths that have
// been stable for longer than the monitoring window. PDF writers drop
// files incrementally, so a freshly seen file is not picked up until it
// stops changing.
type Watcher struct {
	sourceDir      string
	archiveDir     string
	badDir         string
	monitoringTime time.Duration

	fileMutex       sync.Mutex
	fileFirstSeen   map[string]time.Time
	filesProcessing map[string]bool
}

func NewWatcher(sourceDir, archiveDir, badDir string, monitoringTime time.Duration) *Watcher {
	createDirectories(sourceDir, archiveDir, badDir)
	return &Watcher{
		sourceDir:       sourceDir,
		archiveDir:      archiveDir,
		badDir:          badDir,
		monitoringTime:  monitoringTime,
		fileFirstSeen:   make(map[string]time.Time),
		filesProcessing: make(map[string]bool),
	}
}

func (w *Watcher) WatchFile(ctx context.Context, fileChan chan<- string) {
	fmt.Printf("Start monitoring folder: %s\n", w.sourceDir)

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	defer fmt.Println("File watcher stopped and cleaned up")

	for {
		select {
		case <-ctx.Done():
			fmt.Println("Stopping file watcher (context cancelled)...")
			return
		case <-ticker.C:
			files, err := os.ReadDir(w.sourceDir)
			if err != nil {
				fmt.Printf("error while reading source directory: %s\n", err)
				continue
			}

			currentFiles := make(map[string]bool)

			for _, file := range files {
				if file.IsDir() {
					continue
				}

				filePath := filepath.Join(w.sourceDir, file.Name())
				currentFiles[filePath] = true

				w.fileMutex.Lock()
				if w.filesProcessing[filePath] {
					w.fileMutex.Unlock()
					continue
				}

				if _, exists := w.fileFirstSeen[filePath]; !exists {
					w.fileFirstSeen[filePath] = time.Now()
					fmt.Printf("New file detected: %s\n", filePath)
					w.fileMutex.Unlock()
					continue
				}

				firstSeen := w.fileFirstSeen[filePath]
				w.fileMutex.Unlock()

				if time.Since(firstSeen) > w.monitoringTime {
					w.fileMutex.Lock()
					w.filesProcessing[filePath] = true
					w.fileMutex.Unlock()

					select {
					case fileChan <- filePath:
					case <-ctx.Done():
						return
					}
				}
			}

			// Forget files that disappeared from the directory.
			w.fileMutex.Lock()
			for filePath := range w.fileFirstSeen {
				if !currentFiles[filePath] {
					delete(w.fileFirstSeen, filePath)
					delete(w.filesProcessing, filePath)
				}
			}
			w.fileMutex.Unlock()
		}
	}
}

// Release removes a file from the in-flight set after processing.
func (w *Watcher) Release(filePath string) {
	w.fileMutex.Lock()
	delete(w.filesProcessing, filePath)
	delete(w.fileFirstSeen, filePath)
	w.fileMutex.Unlock()
}

// MoveToArchive moves a processed file into a dated archive folder, or
// into the bad folder when ingestion failed.
func (w *Watcher) MoveToArchive(filePath string, failed bool) {
	destRoot := w.archiveDir
	if failed {
		destRoot = w.badDir
	}

	currentDate := time.Now().Format("2006-01-02")
	destDir := filepath.Join(destRoot, currentDate)

	if _, err := os.Stat(destDir); os.IsNotExist(err) {
		if err := os.MkdirAll(destDir, 0755); err != nil {
			fmt.Printf("error creating directory: %s\n", err)
			return
		}
	}

	destPath := filepath.Join(destDir, filepath.Base(filePath))

	// Keep both copies on a name collision.
	counter := 1
	for {
		if _, err := os.Stat(destPath); os.IsNotExist(err) {
			break
		}
		ext := filepath.Ext(destPath)
		baseName := strings.TrimSuffix(filepath.Base(destPath), ext)
		destPath = filepath.Join(destDir, fmt.Sprintf("%s_%d%s", baseName, counter, ext))
		counter++
	}

	in, err := os.Open(filePath)
	if err != nil {
		fmt.Printf("error open file: %s\n", err)
		return
	}
	defer in.Close()

	out, err := os.Create(destPath)
	if err != nil {
		fmt.Printf("error create file: %s\n", err)
		return
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		fmt.Printf("error moving file to archive: %s\n", err)
		return
	}

	fmt.Printf("File moved to archive: %s\n", destPath)
	in.Close()
	os.Remove(filePath)
}

func createDirectories(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
