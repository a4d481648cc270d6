package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/261016-go-pkg-dashgen/pkg/dashboard"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}

func TestStore_RecordAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	for i, name := range []string{"soc_overview", "data_quality", "network_health"} {
		err := s.Record(ctx, dashboard.Metadata{
			TemplateUsed:    name,
			TemplateVersion: "1.0.0",
			GeneratedAt:     base.Add(time.Duration(i) * time.Hour),
			Parameters:      map[string]any{"primary_index": "security", "run": i},
		}, "/out/"+name+".json")
		require.NoError(t, err)
	}

	entries, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "network_health", entries[0].Template)
	assert.Equal(t, "/out/network_health.json", entries[0].DashboardPath)
	assert.True(t, base.Add(2*time.Hour).Equal(entries[0].GeneratedAt))
	assert.Equal(t, "security", entries[0].Parameters["primary_index"])
	assert.EqualValues(t, 2, entries[0].Parameters["run"])
	assert.Equal(t, "data_quality", entries[1].Template)

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(context.Background(), dashboard.Metadata{
		TemplateUsed: "soc_overview", TemplateVersion: "2.0.0", GeneratedAt: time.Now(),
	}, "/out/soc.json"))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	entries, err := s.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2.0.0", entries[0].Version)
	assert.Nil(t, entries[0].Parameters, "nil parameters round-trip as JSON null")
}

func TestStore_AsGeneratorRecorder(t *testing.T) {
	dir := t.TempDir()
	tpl := `{"template_info": {"name": "t", "title": "T", "description": "d", "version": "3.1.0"},
		"dashboard": {"title": "{{dashboard_title}}"}}`
	require.NoError(t, writeFile(filepath.Join(dir, "t.json"), tpl))

	s := openTestStore(t)
	g := dashboard.NewGenerator(dashboard.NewCatalog(dir, nil), dashboard.WithRecorder(s))
	res, err := g.Generate(context.Background(), "t", map[string]any{"dashboard_title": "Recorded"}, t.TempDir())
	require.NoError(t, err)

	entries, err := s.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "t", entries[0].Template)
	assert.Equal(t, "3.1.0", entries[0].Version)
	assert.Equal(t, res.DashboardPath, entries[0].DashboardPath)
}
