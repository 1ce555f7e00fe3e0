// Package rule defines the closed vocabularies used throughout the
// rulecheck pipeline: obligation kinds, severities, source kinds, and
// artifact categories.
//
// Every classification decision is made once during extraction and
// represented as one of these enum values; downstream stages never
// branch on raw strings.
package rule
