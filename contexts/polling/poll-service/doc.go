// Package pollservice owns the poll store inside the polling context.
//
// The module covers poll and choice creation (atomic, validated), poll
// lifecycle (active/inactive toggle), creator-only mutation, and poll
// listing/detail reads. Vote admission and result aggregation live in the
// sibling voting-engine module; this module only owns the records votes
// reference.
package pollservice
