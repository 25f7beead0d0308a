// Package queue defines message payloads exchanged over the message broker.
package queue

// IngestCompletedEvent is published after every result upload finishes. It
// carries enough information for downstream consumers to log or alert on a
// batch without querying the primary database.
type IngestCompletedEvent struct {
    ExamID      uint64 `json:"exam_id"`
    ActorID     uint64 `json:"actor_id"`
    Filename    string `json:"filename"`
    Processed   int    `json:"processed"`
    Errors      int    `json:"errors"`
    Truncated   bool   `json:"truncated"`
    CompletedAt string `json:"completed_at"`
}
