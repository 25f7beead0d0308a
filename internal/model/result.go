package model

import "time"

// Subject is a row in the `subjects` table. Subjects are created lazily: the
// first result row that names an unknown subject inserts it. The name column
// carries a unique index so concurrent uploads cannot duplicate it.
type Subject struct {
    ID   uint64 // subjects.id
    Name string // subjects.name (unique)
}

// Result is a row in the `results` table: the marks one student scored in
// one subject of one exam. The (exam_id, student_id, subject_id) tuple is
// unique; re-ingesting a file updates marks in place.
type Result struct {
    ID        uint64  // results.id
    ExamID    uint64  // results.exam_id
    StudentID uint64  // results.student_id (= student_profile.id)
    SubjectID uint64  // results.subject_id
    Marks     float64 // results.marks
}

// AuditLog is a row in the `audit_logs` table recording who did what.
type AuditLog struct {
    ID        uint64    // audit_logs.id
    ActorID   uint64    // audit_logs.actor_id (0 for unauthenticated callers)
    Action    string    // audit_logs.action
    Detail    string    // audit_logs.detail
    CreatedAt time.Time // audit_logs.created_at
}
