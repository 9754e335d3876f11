// Package pagedoc converts a single web page into a structured document,
// optionally translated through a remote language model. It extracts page
// content into a normalized item model, translates it in size-bounded
// batches with retries and quality safeguards, and drives the whole run
// through a cancellable, progress-reporting pipeline.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, gemini/, goquery/);
// cross-cutting orchestration lives in extract/, translate/ and pipeline/.
package pagedoc
