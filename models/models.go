package models

// This file serves as the central export point for all database models
// Import this package to access all model types

// All models are automatically exported from their respective files:
// - User, Session from user.go
// - TrackingEntry from tracking.go
// - JournalEntry, Goal from journal.go
// - ChatSession, ChatMessage from chat.go
// - CareLink, SessionNote, TherapistRequest from therapist.go
// - CommunityPost, Resource from community.go

// Database schema overview:
// 1. users - Patients and therapists, cookie-based authentication, soft-deactivated only
// 2. sessions - Opaque login sessions (hashed at rest) backing the cookie refresh flow
// 3. tracking_entries - One row per logged mood, sleep or meditation data point
// 4. journal_entries - Free-text journaling with derived mood score and keywords
// 5. goals - Wellness goals with progress toward a target value
// 6. chat_sessions / chat_messages - AI companion conversations, turn ordered
// 7. care_links - Active therapist-patient relationships (read access only for therapists)
// 8. session_notes - Therapist notes about a linked patient
// 9. therapist_requests - Patient-initiated appointment requests
// 10. community_posts - Public posts with a like counter
// 11. resources - Professional help and crisis resources
