package mapping

import (
	"regexp"
	"strings"
)

// BLOCK_SEPARATOR joins independent texts sent in one translation call.
const BLOCK_SEPARATOR = "\n---BLOCK_SEPARATOR---\n"

// Tolerates providers that drop or add whitespace around the marker.
var separatorPattern = regexp.MustCompile(`\s*---\s*BLOCK_SEPARATOR\s*---\s*`)

// MergeBatches groups texts, in order, into batches whose joined length stays within maxChars.
// Texts that are too large on their own get a batch of their own. The result holds indexes into texts.
func MergeBatches(texts []string, maxChars int) [][]int {
	batches := [][]int{}
	current := []int{}
	currentLength := 0
	for i, text := range texts {
		length := len(text)
		if length >= maxChars {
			if len(current) > 0 {
				batches = append(batches, current)
				current, currentLength = []int{}, 0
			}
			batches = append(batches, []int{i})
			continue
		}
		additional := length
		if len(current) > 0 {
			additional += len(BLOCK_SEPARATOR)
		}
		if currentLength+additional > maxChars && len(current) > 0 {
			batches = append(batches, current)
			current, currentLength = []int{i}, length
			continue
		}
		current = append(current, i)
		currentLength += additional
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}

// JoinBatch joins texts with the block separator.
func JoinBatch(texts []string) string {
	return strings.Join(texts, BLOCK_SEPARATOR)
}

// SplitBatch splits a translated batch back into parts.
// Surplus parts are merged into the last expected part; a shortfall is returned as is
// so the caller can translate the missing texts individually.
func SplitBatch(translated string, expected int) []string {
	parts := separatorPattern.Split(strings.TrimSpace(translated), -1)
	result := []string{}
	for _, part := range parts {
		result = append(result, strings.TrimSpace(part))
	}
	if expected > 0 && len(result) > expected {
		last := strings.Join(result[expected-1:], "\n")
		result = append(result[:expected-1], last)
	}
	return result
}
