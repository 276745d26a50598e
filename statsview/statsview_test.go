//go:build !statsview

package statsview

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLaunch_Unavailable(t *testing.T) {
	assert := assert.New(t)

	output := &bytes.Buffer{}

	assert.False(Available())
	stop := Launch("", output)
	assert.NotNil(stop)
	stop()
	assert.Equal(0, output.Len())
}
