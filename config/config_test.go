package config

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"
	"time"
)

// testConfig uses variable names that cannot collide with a CI runner's.
func testConfig() ResolverConfig {
	return ResolverConfig{
		EnvPrefix: "AWTEST_",
		Keys:      []string{"repo", "run_id", "timeout", "artifact_names", "token"},
		Defaults: map[string]string{
			"timeout": "0",
		},
		EnvFallbacks: map[string][]string{
			"token": {"AWTEST_FALLBACK_ONE", "AWTEST_FALLBACK_TWO"},
		},
		ErrWriter: &bytes.Buffer{},
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestResolver_Defaults(t *testing.T) {
	cfg := NewResolverWithPaths(testConfig(), "", "").Resolve()

	if got := cfg.Get("timeout"); got != "0" {
		t.Errorf("timeout = %q, want %q", got, "0")
	}
	if got := cfg.Source("timeout"); got != SourceDefault {
		t.Errorf("source = %q, want %q", got, SourceDefault)
	}
	if got := cfg.Get("repo"); got != "" {
		t.Errorf("repo = %q, want empty", got)
	}
}

func TestResolver_Layers(t *testing.T) {
	dir := t.TempDir()
	global := writeFile(t, dir, "global.yaml", "repo: global/repo\nrun_id: 1\ntimeout: 30\n")
	local := writeFile(t, dir, "local.yaml", "repo: local/repo\nrun_id: 2\n")
	dotenv := writeFile(t, dir, ".env", "AWTEST_RUN_ID=3\n")

	rc := testConfig()
	rc.DotEnvFile = dotenv

	tests := []struct {
		name       string
		env        map[string]string
		flags      map[string]string
		key        string
		wantValue  string
		wantSource Source
	}{
		{"global beats default", nil, nil, "timeout", "30", SourceGlobal},
		{"local beats global", nil, nil, "repo", "local/repo", SourceLocal},
		{"dotenv beats local", nil, nil, "run_id", "3", SourceDotEnv},
		{"env beats dotenv", map[string]string{"AWTEST_RUN_ID": "4"}, nil, "run_id", "4", SourceEnv},
		{"flag beats env", map[string]string{"AWTEST_RUN_ID": "4"}, map[string]string{"run_id": "5"}, "run_id", "5", SourceFlag},
		{"empty flag ignored", nil, map[string]string{"repo": ""}, "repo", "local/repo", SourceLocal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg := NewResolverWithPaths(rc, global, local).ResolveWithFlags(tt.flags)

			value, src := cfg.GetWithSource(tt.key)
			if value != tt.wantValue || src != tt.wantSource {
				t.Errorf("%s = %q (%s), want %q (%s)", tt.key, value, src, tt.wantValue, tt.wantSource)
			}
		})
	}
}

func TestResolver_DotEnvDoesNotTouchEnvironment(t *testing.T) {
	dotenv := writeFile(t, t.TempDir(), ".env", "AWTEST_REPO=dot/env\n")
	rc := testConfig()
	rc.DotEnvFile = dotenv

	cfg := NewResolverWithPaths(rc, "", "").Resolve()

	if got := cfg.Get("repo"); got != "dot/env" {
		t.Errorf("repo = %q, want %q", got, "dot/env")
	}
	if _, set := os.LookupEnv("AWTEST_REPO"); set {
		t.Error("AWTEST_REPO leaked into the process environment")
	}
}

func TestResolver_MissingDotEnv(t *testing.T) {
	rc := testConfig()
	rc.DotEnvFile = filepath.Join(t.TempDir(), "absent.env")

	r := NewResolverWithPaths(rc, "", "")
	r.Resolve()

	if len(r.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", r.Warnings)
	}
}

func TestResolver_EnvFallbacks(t *testing.T) {
	t.Run("first set fallback wins", func(t *testing.T) {
		t.Setenv("AWTEST_FALLBACK_TWO", "second")

		cfg := NewResolverWithPaths(testConfig(), "", "").Resolve()
		if got := cfg.Get("token"); got != "second" {
			t.Errorf("token = %q, want %q", got, "second")
		}

		t.Setenv("AWTEST_FALLBACK_ONE", "first")
		cfg = NewResolverWithPaths(testConfig(), "", "").Resolve()
		if got := cfg.Get("token"); got != "first" {
			t.Errorf("token = %q, want %q", got, "first")
		}
	})

	t.Run("prefixed variable beats fallback", func(t *testing.T) {
		t.Setenv("AWTEST_FALLBACK_ONE", "fallback")
		t.Setenv("AWTEST_TOKEN", "prefixed")

		cfg := NewResolverWithPaths(testConfig(), "", "").Resolve()
		if got := cfg.Get("token"); got != "prefixed" {
			t.Errorf("token = %q, want %q", got, "prefixed")
		}
	})
}

func TestResolver_UnknownKeys(t *testing.T) {
	local := writeFile(t, t.TempDir(), "local.yaml", "repo: a/b\ncolour: blue\n")
	var stderr bytes.Buffer
	rc := testConfig()
	rc.ErrWriter = &stderr

	r := NewResolverWithPaths(rc, "", local)
	cfg := r.Resolve()

	if got := cfg.Get("colour"); got != "" {
		t.Errorf("colour = %q, want it skipped", got)
	}
	if got := cfg.Get("repo"); got != "a/b" {
		t.Errorf("repo = %q, want %q", got, "a/b")
	}
	if len(r.Warnings) != 1 || !strings.Contains(stderr.String(), `unknown key "colour"`) {
		t.Errorf("Warnings = %v, stderr = %q", r.Warnings, stderr.String())
	}
}

func TestResolver_InvalidYAML(t *testing.T) {
	global := writeFile(t, t.TempDir(), "global.yaml", "repo: [unterminated\n")

	r := NewResolverWithPaths(testConfig(), global, "")
	cfg := r.Resolve()

	if len(r.Warnings) != 1 {
		t.Errorf("Warnings = %v, want one parse warning", r.Warnings)
	}
	if got := cfg.Get("timeout"); got != "0" {
		t.Errorf("timeout = %q, want default to survive", got)
	}
}

func TestResolver_YAMLList(t *testing.T) {
	local := writeFile(t, t.TempDir(), "local.yaml", "artifact_names:\n  - linux\n  - darwin\n")

	cfg := NewResolverWithPaths(testConfig(), "", local).Resolve()

	if got := cfg.Fields("artifact_names"); !reflect.DeepEqual(got, []string{"linux", "darwin"}) {
		t.Errorf("artifact_names = %v", got)
	}
}

func TestResolver_LocalConfigInGitRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".artifactwait.yaml", "repo: acme/widgets\n")

	rc := testConfig()
	rc.LocalConfigName = ".artifactwait.yaml"
	rc.GitRootFinder = func(string) (string, error) { return root, nil }

	r := NewResolver(rc)
	cfg := r.Resolve()

	if r.GitRoot() != root || r.LocalPath() != filepath.Join(root, ".artifactwait.yaml") {
		t.Errorf("GitRoot = %q, LocalPath = %q", r.GitRoot(), r.LocalPath())
	}
	if got := cfg.Source("repo"); got != SourceLocal {
		t.Errorf("source = %q, want %q", got, SourceLocal)
	}
}

func TestFindGitRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	if got := findGitRoot(nested); got != root {
		t.Errorf("findGitRoot() = %q, want %q", got, root)
	}
}

func TestResolved_Numbers(t *testing.T) {
	cfg := NewResolverWithPaths(testConfig(), "", "").ResolveWithFlags(map[string]string{
		"run_id":  "42",
		"timeout": "90",
		"repo":    "-5",
	})

	if n, err := cfg.Int("run_id"); err != nil || n != 42 {
		t.Errorf("Int(run_id) = %d, %v", n, err)
	}
	if d, err := cfg.Duration("timeout"); err != nil || d != 90*time.Second {
		t.Errorf("Duration(timeout) = %v, %v", d, err)
	}
	if n, err := cfg.Int("token"); err != nil || n != 0 {
		t.Errorf("Int(unset) = %d, %v", n, err)
	}

	_, err := cfg.Int("repo")
	if err == nil || !strings.Contains(err.Error(), "from flag") {
		t.Errorf("Int(repo) error = %v, want it to name the flag source", err)
	}
}

func TestResolved_All(t *testing.T) {
	cfg := NewResolverWithPaths(testConfig(), "", "").Resolve()
	all := cfg.All()
	all["timeout"] = "changed"

	if cfg.Get("timeout") != "0" {
		t.Error("All() returned the internal map")
	}
}

func TestDefault(t *testing.T) {
	rc := Default()

	if rc.Defaults[KeyPollInterval] != "10" || rc.Defaults[KeyTimeout] != "0" || rc.Defaults[KeyProvider] != "github" {
		t.Errorf("Defaults = %v", rc.Defaults)
	}
	if rc.EnvFallbacks[KeyToken][0] != "GITHUB_TOKEN" {
		t.Errorf("token fallbacks = %v", rc.EnvFallbacks[KeyToken])
	}
	for key := range rc.Defaults {
		if !slices.Contains(rc.Keys, key) {
			t.Errorf("default %q is not a recognised key", key)
		}
	}
}
