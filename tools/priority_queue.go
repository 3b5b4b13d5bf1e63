package tools

import "github.com/ori-shem-tov/scratchcard/models"

// A RandomnessRequestsHeap is a min-heap of RandomnessRequests ordered by commit slot.
type RandomnessRequestsHeap []*models.RandomnessRequest

func (h RandomnessRequestsHeap) Len() int           { return len(h) }
func (h RandomnessRequestsHeap) Less(i, j int) bool { return h[i].CommitSlot < h[j].CommitSlot }
func (h RandomnessRequestsHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *RandomnessRequestsHeap) Push(x interface{}) {
	*h = append(*h, x.(*models.RandomnessRequest))
}

func (h *RandomnessRequestsHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return x
}

// Peek returns the request with the oldest commit slot without removing it.
func (h RandomnessRequestsHeap) Peek() *models.RandomnessRequest {
	if len(h) == 0 {
		return nil
	}
	return h[0]
}
