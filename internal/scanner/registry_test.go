package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()
	assert.Equal(t, 6, r.Count())
	assert.Equal(t,
		[]string{NameClient, NameDataFlow, NameDeploy, NameDeps, NameIaC, NameServer},
		r.Names())

	for _, name := range r.Names() {
		s, ok := r.Get(name)
		require.True(t, ok, name)
		assert.Equal(t, name, s.Name())
		assert.Equal(t, familyVersion, s.Version())
	}
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewServerScanner()))
	assert.Error(t, r.Register(NewServerScanner()))
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Get("nope")
	assert.False(t, ok)
}

func TestFileFilters(t *testing.T) {
	tests := []struct {
		filter func(string) bool
		path   string
		want   bool
	}{
		{iacFilter, "infra/main.tf", true},
		{iacFilter, "Dockerfile", true},
		{iacFilter, "Dockerfile.prod", true},
		{iacFilter, "svc/main.go", false},
		{deployFilter, "scripts/provision.sh", true},
		{deployFilter, ".github/workflows/ci.yml", true},
		{deployFilter, "Makefile", true},
		{deployFilter, "src/app.py", false},
		{extFilter(".js", ".ts"), "web/App.TS", true},
		{extFilter(".js", ".ts"), "web/app.css", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.filter(tt.path), tt.path)
	}
}
