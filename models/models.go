package models

// This file serves as the central export point for all database models
// Import this package to access all model types

// Database schema overview:
// 1. users - unique username/email, bcrypt password hash
// 2. interview_sessions - one completed practice run per row, owned by a user
// 3. scores - per-metric evaluations belonging to a session
// 4. answers - question/answer pairs belonging to a session
//
// Sessions and their children are cascade-deleted with the owning user.
