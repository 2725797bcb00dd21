package reqqueue

import (
	"sort"
	"sync"

	"chaiworker/content"
	"chaiworker/filestate"
	"chaiworker/wclock"
)

// Snapshot is the (clock, FileStates, FileContents) triple trySatisfy needs;
// supplied by the worker facade so this package never imports the pipeline
// driver or the stores directly beyond their read-only Get methods.
type Snapshot struct {
	Clock      wclock.Clock
	FileStates *filestate.Store
	Contents   *content.Store
}

// Queue holds pendingRequests (indexed both by id and by URI) and
// readyRequests (indexed by id), per spec.md §4.6, plus a signal channel
// the dispatcher blocks on.
type Queue struct {
	m sync.Mutex

	byID     map[RequestID]*Request
	byURI    map[string]map[RequestID]*Request
	ready    map[RequestID]*Request
	signal   chan struct{}
	snapshot func() Snapshot
}

// NewQueue creates an empty Queue. snapshot is called by trySatisfy to read
// the current clock/FileStates/FileContents without the queue holding a
// long-lived reference into the stores' own locking.
func NewQueue(snapshot func() Snapshot) *Queue {
	return &Queue{
		byID:     make(map[RequestID]*Request),
		byURI:    make(map[string]map[RequestID]*Request),
		ready:    make(map[RequestID]*Request),
		signal:   make(chan struct{}, 1),
		snapshot: snapshot,
	}
}

func (q *Queue) wake() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// StartRequest implements spec.md §4.1's startRequest: if req is
// immediately satisfiable, it goes straight to ready; otherwise it is
// filed in pending, indexed both by id and by its target URI.
func (q *Queue) StartRequest(req *Request) {
	q.m.Lock()
	defer q.m.Unlock()

	if q.trySatisfyLocked(req) {
		return
	}

	q.byID[req.ID] = req
	if q.byURI[req.URI] == nil {
		q.byURI[req.URI] = make(map[RequestID]*Request)
	}
	q.byURI[req.URI][req.ID] = req
}

// CancelRequest removes a request from both pending and ready without
// interrupting an in-flight dispatch (spec.md §4.1, §5 "cancelRequest
// removes from queues but never interrupts an executing dispatch").
func (q *Queue) CancelRequest(id RequestID) {
	q.m.Lock()
	defer q.m.Unlock()

	if req, ok := q.byID[id]; ok {
		delete(q.byID, id)
		if set := q.byURI[req.URI]; set != nil {
			delete(set, id)
			if len(set) == 0 {
				delete(q.byURI, req.URI)
			}
		}
	}
	delete(q.ready, id)
}

// QueueRequests re-evaluates every pending request against uri and moves
// the newly satisfiable ones into ready (spec.md §4.6's queueRequests),
// called by the compile pass's per-file notify hook.
func (q *Queue) QueueRequests(uri string) {
	q.m.Lock()
	defer q.m.Unlock()

	set := q.byURI[uri]
	if len(set) == 0 {
		return
	}

	moved := false
	for id, req := range set {
		if q.trySatisfyLocked(req) {
			delete(set, id)
			delete(q.byID, id)
			moved = true
		}
	}
	if len(set) == 0 {
		delete(q.byURI, uri)
	}
	if moved {
		q.wake()
	}
}

// trySatisfyLocked runs TrySatisfy against the current snapshot; if the
// outcome is decided (handled), it places req in ready and returns true.
// Must be called with q.m held.
func (q *Queue) trySatisfyLocked(req *Request) bool {
	snap := q.snapshot()
	st, hasState := snap.FileStates.Get(req.URI)
	c, hasContent := snap.Contents.Get(req.URI)

	handled, _, _, _, _, _ := TrySatisfy(req, snap.Clock, st, hasState, c, hasContent)
	if !handled {
		return false
	}

	q.ready[req.ID] = req
	q.wake()
	return true
}

// Dispatch blocks until the ready map is non-empty, pops the smallest-id
// entry, re-checks satisfiability against the latest snapshot (state may
// have changed since it was marked ready), and either runs its sink or
// returns it to pending (spec.md §4.6's dispatcher thread). stop, when
// closed, causes Dispatch to return.
func (q *Queue) Dispatch(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-q.signal:
		}

		for {
			req := q.popSmallest()
			if req == nil {
				break
			}
			q.runOne(req)
		}
	}
}

func (q *Queue) popSmallest() *Request {
	q.m.Lock()
	defer q.m.Unlock()

	if len(q.ready) == 0 {
		return nil
	}

	ids := make([]RequestID, 0, len(q.ready))
	for id := range q.ready {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	smallest := ids[0]
	req := q.ready[smallest]
	delete(q.ready, smallest)
	return req
}

func (q *Queue) runOne(req *Request) {
	snap := q.snapshot()
	st, hasState := snap.FileStates.Get(req.URI)
	c, hasContent := snap.Contents.Get(req.URI)

	handled, name, version, payload, present, errMsg := TrySatisfy(req, snap.Clock, st, hasState, c, hasContent)
	if !handled {
		// State regressed between enqueue and dequeue (e.g. the file was
		// closed); return it to pending rather than dropping it.
		q.m.Lock()
		q.byID[req.ID] = req
		if q.byURI[req.URI] == nil {
			q.byURI[req.URI] = make(map[RequestID]*Request)
		}
		q.byURI[req.URI][req.ID] = req
		q.m.Unlock()
		return
	}

	if errMsg != "" {
		if req.OnError != nil {
			req.OnError(errMsg)
		}
		return
	}

	if req.OnSuccess != nil {
		req.OnSuccess(name, version, payload, present)
	}
}
