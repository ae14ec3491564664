package install

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/openrl/rlmaps-downloader/internal/http"
	ioutils "github.com/openrl/rlmaps-downloader/internal/io"
	"github.com/openrl/rlmaps-downloader/internal/model"
)

const (
	// payloadExt is the raw map file extension delivered inside archives.
	payloadExt = ".udk"
	// installedExt is the extension the game loads maps under.
	installedExt = ".upk"
)

var (
	// ErrJobActive is returned by Download while another job runs.
	ErrJobActive = errors.New("download already in progress")

	// ErrNoDownloadLink is returned for releases without a zip asset.
	ErrNoDownloadLink = errors.New("release has no download link")

	// ErrNoPayloadFound is returned when no payload file appears in
	// the map folder within the poll budget.
	ErrNoPayloadFound = errors.New("no map payload appeared after extraction")
)

// Job is one download-and-install run. It owns copies of the chosen
// map and release, so it stays valid when a new search clears the
// result store mid-download.
type Job struct {
	ID      string
	Map     model.MapResult
	Release model.Release

	// Dest is the configured maps folder; Folder is the map's own
	// subfolder beneath it.
	Dest   string
	Folder string

	received int64
	total    int64

	mu    sync.Mutex
	state model.DownloadState
}

// NewJob creates an idle job installing one release of a map under
// the destination folder.
func NewJob(dest string, m model.MapResult, r model.Release) *Job {
	name := model.SanitizeMapFolderName(m.Name)
	if name == "" {
		name = m.ID
	}

	return &Job{
		ID:      "job-" + uuid.NewString(),
		Map:     m,
		Release: r,
		Dest:    dest,
		Folder:  filepath.Join(dest, name),
		state:   model.StateIdle,
	}
}

// State returns the job's current state machine position.
func (j *Job) State() model.DownloadState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

func (j *Job) setState(state model.DownloadState) {
	j.mu.Lock()
	j.state = state
	j.mu.Unlock()
}

// Progress returns bytes received and total expected. Total is zero
// until the transfer starts and may be -1 when the server does not
// declare a content length.
func (j *Job) Progress() (received, total int64) {
	return atomic.LoadInt64(&j.received), atomic.LoadInt64(&j.total)
}

// Installer runs download jobs: folder setup, sidecar write, archive
// transfer, external extraction, payload poll, and the final rename.
//
// Terminal failures set a sticky error flag and message that persist
// until the caller clears them. Jobs are never retried; callers start
// a new job instead.
type Installer struct {
	http         *http.Client
	extractor    Extractor
	clock        Clock
	pollAttempts int

	active atomic.Bool

	mu              sync.Mutex
	folderError     bool
	folderErrorText string

	onProgress model.ProgressFunc
}

// NewInstaller creates an Installer. pollAttempts bounds the payload
// poll (30 when not positive); onProgress may be nil.
func NewInstaller(httpClient *http.Client, extractor Extractor, clock Clock, pollAttempts int, onProgress model.ProgressFunc) *Installer {
	if pollAttempts <= 0 {
		pollAttempts = 30
	}
	return &Installer{
		http:         httpClient,
		extractor:    extractor,
		clock:        clock,
		pollAttempts: pollAttempts,
		onProgress:   onProgress,
	}
}

// Active reports whether a job is currently running.
func (i *Installer) Active() bool {
	return i.active.Load()
}

// FolderError returns the sticky error flag and message left by the
// most recent failed job.
func (i *Installer) FolderError() (bool, string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.folderError, i.folderErrorText
}

// ClearFolderError resets the sticky error flag and message.
func (i *Installer) ClearFolderError() {
	i.mu.Lock()
	i.folderError = false
	i.folderErrorText = ""
	i.mu.Unlock()
}

// Download creates a job for the chosen release and runs it to
// completion. It is rejected with ErrJobActive while another job runs.
func (i *Installer) Download(ctx context.Context, dest string, m model.MapResult, r model.Release) (*Job, error) {
	if i.Active() {
		return nil, ErrJobActive
	}
	job := NewJob(dest, m, r)
	return job, i.Run(ctx, job)
}

// Run executes one job through the install state machine, blocking
// until it reaches a terminal state or the context is cancelled.
//
//	Idle → DirectoryCreating → Transferring → Extracting →
//	PollingForPayload → Renaming → Done
//
// FolderError, NetworkError and Timeout are the failure terminals. A
// folder that cannot be prepared fails the job before any network
// request is made.
func (i *Installer) Run(ctx context.Context, job *Job) error {
	if job.Release.DownloadURL == "" {
		return ErrNoDownloadLink
	}

	i.active.Store(true)
	defer i.active.Store(false)

	i.report(fmt.Sprintf("Installing %s (%s)", job.Map.Name, job.ID), model.LevelInfo)

	job.setState(model.StateDirectoryCreating)
	if err := ioutils.EnsureDir(job.Folder); err != nil {
		i.failFolder(job, fmt.Sprintf("Error creating map folder %s: %v", job.Folder, err))
		return err
	}
	if err := i.writeSidecar(ctx, job); err != nil {
		i.failFolder(job, fmt.Sprintf("Error writing metadata for %s: %v", job.Map.Name, err))
		return err
	}
	i.copyPreview(ctx, job)

	atomic.StoreInt64(&job.received, 0)
	atomic.StoreInt64(&job.total, 0)

	fileName := ioutils.SanitizeFileName(job.Release.FileName)
	if fileName == "" {
		fileName = "map.zip"
	}
	archivePath := filepath.Join(job.Folder, fileName)

	job.setState(model.StateTransferring)
	i.report(fmt.Sprintf("Downloading %s", fileName), model.LevelInfo)

	err := i.http.DownloadFile(ctx, job.Release.DownloadURL, archivePath, func(written, total int64) {
		atomic.StoreInt64(&job.received, written)
		atomic.StoreInt64(&job.total, total)
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		job.setState(model.StateNetworkError)
		i.report(fmt.Sprintf("Error downloading %s: %v", job.Release.DownloadURL, err), model.LevelError)
		return err
	}

	job.setState(model.StateExtracting)
	i.report(fmt.Sprintf("Extracting %s", fileName), model.LevelVerbose)
	if err := i.extractor.Extract(ctx, archivePath, job.Folder); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		i.failFolder(job, fmt.Sprintf("Error extracting %s: %v", fileName, err))
		return err
	}

	job.setState(model.StatePollingForPayload)
	payloadPath, err := i.awaitPayload(ctx, job.Folder)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		i.setFolderError(fmt.Sprintf("No map payload appeared in %s", job.Folder))
		job.setState(model.StateTimeout)
		return err
	}

	job.setState(model.StateRenaming)
	installedPath := strings.TrimSuffix(payloadPath, filepath.Ext(payloadPath)) + installedExt
	if err := os.Rename(payloadPath, installedPath); err != nil {
		i.failFolder(job, fmt.Sprintf("Error renaming %s: %v", filepath.Base(payloadPath), err))
		return err
	}

	job.setState(model.StateDone)
	i.report(fmt.Sprintf("Installed %s", job.Map.Name), model.LevelSuccess)
	return nil
}

// awaitPayload waits one clock tick between probes, up to the
// configured attempt budget, for a payload file to appear.
func (i *Installer) awaitPayload(ctx context.Context, folder string) (string, error) {
	for attempt := 0; attempt < i.pollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-i.clock.After(time.Second):
		}

		if path, ok := findPayload(folder); ok {
			return path, nil
		}
	}
	return "", ErrNoPayloadFound
}

// findPayload returns the first payload file in the folder.
func findPayload(folder string) (string, bool) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), payloadExt) {
			return filepath.Join(folder, entry.Name()), true
		}
	}
	return "", false
}

func (i *Installer) writeSidecar(ctx context.Context, job *Job) error {
	sidecar := model.Sidecar{
		Title:       job.Map.Name,
		Author:      job.Map.Author,
		Description: job.Map.Description,
		PreviewURL:  job.Map.PreviewURL,
	}

	data, err := json.MarshalIndent(&sidecar, "", "  ")
	if err != nil {
		return err
	}

	name := filepath.Base(job.Folder) + ".json"
	return ioutils.WriteFile(ctx, filepath.Join(job.Folder, name), data)
}

// copyPreview places the cached preview image next to the payload.
// Failure is reported but never fails the job.
func (i *Installer) copyPreview(ctx context.Context, job *Job) {
	src := job.Map.ImagePath
	if src == "" {
		return
	}
	if _, err := os.Stat(src); err != nil {
		return
	}

	dst := filepath.Join(job.Folder, filepath.Base(job.Folder)+filepath.Ext(src))
	if err := ioutils.CopyFile(ctx, src, dst); err != nil {
		i.report(fmt.Sprintf("Error copying preview for %s: %v", job.Map.Name, err), model.LevelWarning)
	}
}

// failFolder marks the sticky error and parks the job in FolderError.
func (i *Installer) failFolder(job *Job, message string) {
	i.setFolderError(message)
	job.setState(model.StateFolderError)
}

func (i *Installer) setFolderError(message string) {
	i.mu.Lock()
	i.folderError = true
	i.folderErrorText = message
	i.mu.Unlock()
	i.report(message, model.LevelError)
}

func (i *Installer) report(message string, level model.ProgressLevel) {
	if i.onProgress != nil {
		i.onProgress(model.ProgressEvent{Message: message, Level: level})
	}
}
