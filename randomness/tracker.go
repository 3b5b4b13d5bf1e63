package randomness

import (
	"container/heap"
	"sync"

	"github.com/gagliardetto/solana-go"
	log "github.com/sirupsen/logrus"

	"github.com/ori-shem-tov/scratchcard/models"
	"github.com/ori-shem-tov/scratchcard/tools"
)

// Tracker keeps abandoned requests ordered by commit slot until they are old
// enough to be closed.
type Tracker struct {
	ExpirySlots uint64 // slots after commit before a request may be closed

	mu       sync.Mutex
	requests tools.RandomnessRequestsHeap
}

func NewTracker(expirySlots uint64) *Tracker {
	t := &Tracker{ExpirySlots: expirySlots}
	heap.Init(&t.requests)
	return t
}

func (t *Tracker) Track(req *models.RandomnessRequest) {
	t.mu.Lock()
	defer t.mu.Unlock()
	heap.Push(&t.requests, req)
	log.Debugf("tracking abandoned request %s committed at %d", req.Account, req.CommitSlot)
}

func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.requests.Len()
}

// expired pops the requests owned by authority whose commit slot is at
// least ExpirySlots behind currentSlot. Requests of other authorities stay.
func (t *Tracker) expired(currentSlot uint64, authority solana.PublicKey) []*models.RandomnessRequest {
	t.mu.Lock()
	defer t.mu.Unlock()

	var result, others []*models.RandomnessRequest
	for t.requests.Len() > 0 {
		top := t.requests.Peek()
		if top.CommitSlot+t.ExpirySlots > currentSlot {
			break
		}
		req := heap.Pop(&t.requests).(*models.RandomnessRequest)
		if !req.Payer.Equals(authority) {
			others = append(others, req)
			continue
		}
		result = append(result, req)
	}
	for _, req := range others {
		heap.Push(&t.requests, req)
	}
	return result
}
