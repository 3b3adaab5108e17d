package service

import (
	"testing"

	"traefiker/internal/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	vars := ParseEnv([]string{
		"FOO=bar=baz",
		"PATH=/usr/local/bin:/usr/bin",
		"EMPTY=",
		"FLAG",
		"=orphan",
	})

	require.Len(t, vars, 4)
	assert.Equal(t, "FOO", vars[0].Key)
	assert.Equal(t, "bar=baz", vars[0].Value)
	assert.Equal(t, "/usr/local/bin:/usr/bin", vars[1].Value)
	assert.Equal(t, "EMPTY", vars[2].Key)
	assert.Equal(t, "", vars[2].Value)
	assert.Equal(t, "FLAG", vars[3].Key)
	assert.Equal(t, "", vars[3].Value)
}

func TestEnvListLastValueWins(t *testing.T) {
	entries := envList([]db.EnvironmentVariable{
		{Key: "A", Value: "1"},
		{Key: "B", Value: "2"},
		{Key: "A", Value: "3"},
	})
	assert.Equal(t, []string{"A=3", "B=2"}, entries)
}

func TestImageEnvSkipsOverriddenKeys(t *testing.T) {
	vars := imageEnv(
		[]string{"PATH=/usr/bin", "NGINX_VERSION=1.27.0", "PATH=/opt/bin", "GREETING=hi"},
		[]db.EnvironmentVariable{{Key: "PATH", Value: "/opt/bin"}, {Key: "GREETING", Value: "hi"}},
	)

	require.Len(t, vars, 1)
	assert.Equal(t, "NGINX_VERSION", vars[0].Key)
	assert.Equal(t, "1.27.0", vars[0].Value)
}
