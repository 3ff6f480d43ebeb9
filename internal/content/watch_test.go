package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatchInvalidatesChangedDocuments(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	dataDir := filepath.Join(root, DataDir)
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	docPath := filepath.Join(dataDir, ProjectsPath)
	require.NoError(t, os.WriteFile(docPath, []byte(projectsFixture), 0o644))

	l := NewLoader("")
	l.SetContentDir(root)

	ctx, cancel := context.WithCancel(context.Background())
	done, err := l.Watch(ctx)
	require.NoError(t, err)

	doc, err := l.Projects(context.Background())
	require.NoError(t, err)
	require.Len(t, doc.Projects, 2)

	require.NoError(t, os.WriteFile(docPath, []byte(`{"projects": []}`), 0o644))
	require.Eventually(t, func() bool {
		doc, err := l.Projects(context.Background())
		return err == nil && len(doc.Projects) == 0
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	<-done
}

func TestWatchRejectsRemoteSource(t *testing.T) {
	t.Parallel()

	l := NewLoader("https://content.example.com")
	_, err := l.Watch(context.Background())
	require.Error(t, err)
}
