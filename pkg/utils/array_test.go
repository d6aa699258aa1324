package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	assert.Equal(t, []int{1, 4, 9}, Map([]int{1, 2, 3}, func(v int) int { return v * v }))
	assert.Equal(t, []string{}, Map([]string{}, strings.ToUpper))
}

func TestFlatMap(t *testing.T) {
	words := FlatMap([]string{"a b", "", "c"}, strings.Fields)
	assert.Equal(t, []string{"a", "b", "c"}, words)
	assert.Nil(t, FlatMap([]string{}, strings.Fields))
}

func TestReduce(t *testing.T) {
	assert.Equal(t, 6, Reduce([]int{1, 2, 3}, func(sum int, v int) int { return sum + v }, 0))
	assert.Equal(t, "abc", Reduce([]string{"a", "b", "c"}, func(text string, v string) string { return text + v }, ""))
}
