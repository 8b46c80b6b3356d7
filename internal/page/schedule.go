// internal/page/schedule.go
package page

// RequestFrame queues fn to run on the next frame tick. This is the only
// suspension point the host offers; the focus engine uses it for the deferred
// autofocus-after-activate and restore-after-deactivate moves.
func (d *Document) RequestFrame(fn func()) {
	d.frameQueue = append(d.frameQueue, fn)
}

// FlushFrames runs every callback queued so far, in order. Callbacks queued
// while flushing land on the next flush, matching animation-frame semantics.
// It returns the number of callbacks that ran.
func (d *Document) FlushFrames() int {
	queue := d.frameQueue
	d.frameQueue = nil
	for _, fn := range queue {
		fn()
	}
	return len(queue)
}

// PendingFrames reports how many callbacks are waiting for the next flush.
func (d *Document) PendingFrames() int { return len(d.frameQueue) }
