package doctor

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func TestEndpointsCheck(t *testing.T) {
	t.Run("nothing to probe", func(t *testing.T) {
		root := t.TempDir()
		writeNode(t, root, "antnode1", "")

		check := &EndpointsCheck{Cfg: nodeConfig(filepath.Join(root, "*"))}
		result := check.Run()

		if result.Status != StatusPass {
			t.Errorf("expected StatusPass, got %v: %s", result.Status, result.Message)
		}
		if !strings.Contains(result.Message, "No endpoints") {
			t.Errorf("unexpected message %q", result.Message)
		}
	})

	t.Run("all respond", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("ant_node_uptime 1\n"))
		}))
		t.Cleanup(srv.Close)

		root := t.TempDir()
		writeNode(t, root, "antnode1", strings.TrimPrefix(srv.URL, "http://"))

		check := &EndpointsCheck{Cfg: nodeConfig(filepath.Join(root, "*"))}
		result := check.Run()

		if result.Status != StatusPass {
			t.Errorf("expected StatusPass, got %v: %s", result.Status, result.Message)
		}
	})

	t.Run("none respond", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		deadAddr := strings.TrimPrefix(srv.URL, "http://")
		srv.Close()

		root := t.TempDir()
		writeNode(t, root, "antnode1", deadAddr)

		check := &EndpointsCheck{Cfg: nodeConfig(filepath.Join(root, "*"))}
		result := check.Run()

		if result.Status != StatusFail {
			t.Errorf("expected StatusFail, got %v: %s", result.Status, result.Message)
		}
	})

	t.Run("some unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("ant_node_uptime 1\n"))
		}))
		t.Cleanup(srv.Close)

		dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		deadAddr := strings.TrimPrefix(dead.URL, "http://")
		dead.Close()

		root := t.TempDir()
		writeNode(t, root, "antnode1", strings.TrimPrefix(srv.URL, "http://"))
		writeNode(t, root, "antnode2", deadAddr)

		check := &EndpointsCheck{Cfg: nodeConfig(filepath.Join(root, "*"))}
		result := check.Run()

		if result.Status != StatusWarn {
			t.Errorf("expected StatusWarn, got %v: %s", result.Status, result.Message)
		}
		if !strings.Contains(result.Message, "antnode2") {
			t.Errorf("expected unreachable node named, got %q", result.Message)
		}
	})

	t.Run("name and category", func(t *testing.T) {
		check := &EndpointsCheck{}
		if check.Name() != "endpoints" {
			t.Errorf("expected name 'endpoints', got %s", check.Name())
		}
		if check.Category() != "METRICS" {
			t.Errorf("expected category 'METRICS', got %s", check.Category())
		}
	})
}

func TestSummarizeIDs(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want string
	}{
		{"one", []string{"a"}, "a"},
		{"three", []string{"a", "b", "c"}, "a, b, c"},
		{"five", []string{"a", "b", "c", "d", "e"}, "a, b, c and 2 more"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := summarizeIDs(tc.ids); got != tc.want {
				t.Errorf("summarizeIDs(%v) = %q, want %q", tc.ids, got, tc.want)
			}
		})
	}
}
