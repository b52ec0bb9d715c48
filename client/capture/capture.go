// Package capture manages the record-page input state: an in-progress audio
// recording, an attached image with its preview handle, or plain text. It
// owns the lifecycle of the underlying resources so streams stop exactly
// once and replaced previews release promptly.
package capture

import (
	"errors"
	"sync"

	"github.com/yanchenliu/moodlog-backend/pkg/enums"
)

var (
	ErrAlreadyRecording = errors.New("a recording is already in progress")
	ErrNotRecording     = errors.New("no recording in progress")
)

// Blob is an assembled capture payload.
type Blob struct {
	Data []byte
	MIME string
}

// Source delivers recorded chunks. The channel closes after Stop.
type Source interface {
	Chunks() <-chan []byte
	Stop() error
}

// Preview is a releasable handle to a displayable resource, such as an
// object URL for an attached image. Release is idempotent.
type Preview struct {
	url     string
	release func()
	once    sync.Once
}

func NewPreview(url string, release func()) *Preview {
	return &Preview{url: url, release: release}
}

func (p *Preview) URL() string { return p.url }

func (p *Preview) Release() {
	p.once.Do(func() {
		if p.release != nil {
			p.release()
		}
	})
}

type recording struct {
	source Source
	stop   sync.Once
	done   chan struct{}
	mime   string
	data   []byte
}

// Workflow is the capture state machine for one record-entry screen.
type Workflow struct {
	mu        sync.Mutex
	mode      enums.CaptureType
	recording *recording
	blob      *Blob
	preview   *Preview
	text      string
}

func NewWorkflow() *Workflow {
	return &Workflow{mode: enums.CaptureTypeText}
}

func (w *Workflow) Mode() enums.CaptureType {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mode
}

// SetMode switches the capture kind and discards state from the previous
// one, stopping any live recording and releasing any preview.
func (w *Workflow) SetMode(mode enums.CaptureType) {
	w.mu.Lock()
	rec, preview := w.takeResourcesLocked()
	w.mode = mode
	w.blob = nil
	w.text = ""
	w.mu.Unlock()

	releaseResources(rec, preview)
}

// StartRecording begins collecting chunks from the source.
func (w *Workflow) StartRecording(source Source, mime string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.recording != nil {
		return ErrAlreadyRecording
	}

	rec := &recording{
		source: source,
		done:   make(chan struct{}),
		mime:   mime,
	}
	w.recording = rec
	w.blob = nil

	go func() {
		for chunk := range source.Chunks() {
			rec.data = append(rec.data, chunk...)
		}
		close(rec.done)
	}()
	return nil
}

// Recording reports whether a recording is live.
func (w *Workflow) Recording() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.recording != nil
}

// StopRecording stops the source, waits for the remaining chunks, and
// assembles the blob. Stopping an already-stopped workflow is an error, and
// the underlying source is never stopped twice.
func (w *Workflow) StopRecording() (*Blob, error) {
	w.mu.Lock()
	rec := w.recording
	w.recording = nil
	w.mu.Unlock()

	if rec == nil {
		return nil, ErrNotRecording
	}

	var stopErr error
	rec.stop.Do(func() { stopErr = rec.source.Stop() })
	<-rec.done
	if stopErr != nil {
		return nil, stopErr
	}

	blob := &Blob{Data: rec.data, MIME: rec.mime}
	w.mu.Lock()
	w.blob = blob
	w.mu.Unlock()
	return blob, nil
}

// AttachPreview stores the preview for an attached image, releasing the one
// it replaces.
func (w *Workflow) AttachPreview(blob *Blob, preview *Preview) {
	w.mu.Lock()
	previous := w.preview
	w.preview = preview
	w.blob = blob
	w.mu.Unlock()

	if previous != nil {
		previous.Release()
	}
}

func (w *Workflow) Preview() *Preview {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.preview
}

func (w *Workflow) Blob() *Blob {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.blob
}

func (w *Workflow) SetText(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.text = text
}

func (w *Workflow) Text() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.text
}

// Reset returns the workflow to its empty state, stopping any live
// recording and releasing any preview.
func (w *Workflow) Reset() {
	w.mu.Lock()
	rec, preview := w.takeResourcesLocked()
	w.blob = nil
	w.text = ""
	w.mu.Unlock()

	releaseResources(rec, preview)
}

func (w *Workflow) takeResourcesLocked() (*recording, *Preview) {
	rec := w.recording
	preview := w.preview
	w.recording = nil
	w.preview = nil
	return rec, preview
}

func releaseResources(rec *recording, preview *Preview) {
	if rec != nil {
		rec.stop.Do(func() { _ = rec.source.Stop() })
		<-rec.done
	}
	if preview != nil {
		preview.Release()
	}
}
