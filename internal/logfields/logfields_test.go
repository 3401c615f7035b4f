package logfields

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttrs(t *testing.T) {
	assert.Equal(t, KeyPath, Path("/a").Key)
	assert.Equal(t, "/a", Path("/a").Value.String())
	assert.Equal(t, int64(3), Count(3).Value.Int64())
	assert.Equal(t, int64(12), DurationMS(12).Value.Int64())
	assert.Equal(t, "boom", Error(errors.New("boom")).Value.String())
	assert.Equal(t, "", Error(nil).Value.String())
}
