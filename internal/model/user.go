package model

import "time"

// Account represents a row in the `users` table. Handlers define separate
// response types with JSON tags; these structs stay internal to the
// repository and service layers.
//
// Fields:
//  ID           – primary key identifier of the account.
//  Name         – display name.
//  Email        – unique email address.
//  Username     – unique login name.
//  PasswordHash – bcrypt hashed password; the plaintext is never stored.
//  Role         – account role (admin/teacher/student/parent).
//  CreatorID    – account that provisioned this one; nil only for the
//                 bootstrap admin.
//  ParentOf     – for parent accounts, the student they represent; nil
//                 for every other role.
//  CreatedAt    – timestamp of creation.
type Account struct {
    ID           uint64     // users.id
    Name         string     // users.name
    Email        string     // users.email
    Username     string     // users.username
    PasswordHash string     // users.password
    Role         Role       // users.role
    CreatorID    *uint64    // users.creator_id (nullable)
    ParentOf     *uint64    // users.parent_of (nullable)
    CreatedAt    time.Time  // users.created_at
}

// StudentProfile is the 1:1 extension of a student account stored in the
// `student_profile` table. Its primary key is the student's users.id, so a
// profile id doubles as the account id everywhere results are recorded.
type StudentProfile struct {
    ID         uint64 // student_profile.id (= users.id)
    RollNumber string // student_profile.roll_number (unique)
    Class      string // student_profile.class
    Section    string // student_profile.section
}
