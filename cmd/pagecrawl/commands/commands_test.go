package commands

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/bradykim7/pagecrawl/internal/models"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_DIR", dir)
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "pagecrawl.db"))
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("NOTIFY_CHANNEL_ID", "")
}

// resetFlags restores every subcommand flag to its default so earlier
// invocations do not leak into later ones
func resetFlags(t *testing.T) {
	t.Helper()
	for _, cmd := range rootCmd.Commands() {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			require.NoError(t, f.Value.Set(f.DefValue))
			f.Changed = false
		})
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(t)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func quotesServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/quotes/1/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<div class="quote"><span itemprop="text">first</span></div><ul><li class="next"><a href="/quotes/2/">Next →</a></li></ul>`)
	})
	mux.HandleFunc("/quotes/2/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<div class="quote"><span itemprop="text">second</span></div>`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestJobLifecycle(t *testing.T) {
	setupEnv(t)
	srv := quotesServer(t)

	out, err := execute(t, "create", "quotes", srv.URL+"/quotes", "--type", "quotes")
	require.NoError(t, err)
	require.Equal(t, "Created job #1 quotes\n", out)

	_, err = execute(t, "create", "quotes", srv.URL+"/quotes", "--type", "quotes")
	require.Error(t, err)

	out, err = execute(t, "run", "1")
	require.NoError(t, err)
	require.Equal(t, "Job #1 completed with 2 records\n", out)

	out, err = execute(t, "results", "1")
	require.NoError(t, err)
	rs, err := models.DecodeResultSet(out)
	require.NoError(t, err)
	require.Equal(t, models.ResultSet{{"quote_text": "first"}, {"quote_text": "second"}}, rs)

	out, err = execute(t, "list")
	require.NoError(t, err)
	require.Contains(t, out, "quotes")
	require.Contains(t, out, "completed")

	out, err = execute(t, "delete", "1")
	require.NoError(t, err)
	require.Equal(t, "Deleted job #1\n", out)

	_, err = execute(t, "results", "1")
	require.Error(t, err)
}

func TestRunFailedJob(t *testing.T) {
	setupEnv(t)
	srv := quotesServer(t)

	_, err := execute(t, "create", "missing", srv.URL+"/nowhere", "--type", "quotes")
	require.NoError(t, err)

	_, err = execute(t, "run", "1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "404")
}

func TestCreateRejectsUnknownType(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "create", "weird", "http://example.com", "--type", "weather")
	require.Error(t, err)
	require.Contains(t, err.Error(), "weather")
}

func TestFlagsDoNotLeakBetweenRuns(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "create", "news-job", "http://news.example", "--type", "news")
	require.NoError(t, err)
	_, err = execute(t, "list", "--status", "failed")
	require.NoError(t, err)

	// no --type, so the default applies again
	_, err = execute(t, "create", "quotes-job", "http://quotes.example")
	require.NoError(t, err)
	require.Equal(t, "quotes", *createType)

	out, err := execute(t, "list")
	require.NoError(t, err)
	require.Contains(t, out, "news-job")
	require.Contains(t, out, "quotes-job")
}

func TestCreateAcceptsLegacyTypes(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "create", "old-quotes", "http://quotes.example", "--type", "quote")
	require.NoError(t, err)
	_, err = execute(t, "create", "old-news", "http://news.example", "--type", "sidhakura")
	require.NoError(t, err)

	out, err := execute(t, "list")
	require.NoError(t, err)
	require.Contains(t, out, "sidhakura")
}

func TestResultsOfPendingJob(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "create", "waiting", "http://quotes.example")
	require.NoError(t, err)

	_, err = execute(t, "results", "1")
	require.EqualError(t, err, "job 1 has no stored results yet, it is pending")
}

func TestInvalidJobID(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "run", "abc")
	require.EqualError(t, err, `invalid job id "abc"`)
}

func TestSourcesTable(t *testing.T) {
	out, err := execute(t, "sources")
	require.NoError(t, err)
	require.Contains(t, out, "news")
	require.Contains(t, out, "https://example.com?page=2")
	require.Contains(t, out, "quotes")
	require.Contains(t, out, "https://example.com/2/")
}
