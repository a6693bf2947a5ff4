package version_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/redblack/pkg/version"
)

func TestString(t *testing.T) {
	t.Parallel()

	version.InitBinaryVersion()

	assert.Contains(t, version.String(), "redblack "+version.Version)
	assert.Contains(t, version.String(), "commit: "+version.Commit)
	assert.NotEmpty(t, version.Version)
}
