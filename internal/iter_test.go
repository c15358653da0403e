package internal

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIterSeq2Concat(t *testing.T) {
	assert := assert.New(t)

	a := map[string]int{"a": 1, "b": 2}
	b := map[string]int{"c": 3}

	got := IterSeq2Collect(IterSeq2Concat(maps.All(a), maps.All(b)))
	assert.Equal(map[string]int{"a": 1, "b": 2, "c": 3}, got)
}

func TestIterSeq2Concat_Stop(t *testing.T) {
	assert := assert.New(t)

	a := map[string]int{"a": 1, "b": 2}
	b := map[string]int{"c": 3}

	count := 0
	for range IterSeq2Concat(maps.All(a), maps.All(b)) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(2, count)
}

func TestIterSeq2Collect_Override(t *testing.T) {
	assert := assert.New(t)

	a := map[string]int{"a": 1}
	b := map[string]int{"a": 2}

	got := IterSeq2Collect(IterSeq2Concat(maps.All(a), maps.All(b)))
	assert.Equal(2, got["a"])
}
