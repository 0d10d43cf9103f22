// Package services implements the driving port interfaces: the answer
// orchestrator, retrieval reranking, history filtering and background
// indexing. Services hold the business logic and call out through driven
// ports; they have no transport or storage code of their own.
package services
