// Package discovery implements the progressive discovery engine: an
// iterate-expand-search-dedup loop that grows a set of unique candidate
// entities for a scope until a target count is met, progress stalls, or
// the iteration budget runs out.
package discovery
