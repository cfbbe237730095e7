package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/impred/pkg/cache"
	"github.com/matzehuels/impred/pkg/config"
	impredio "github.com/matzehuels/impred/pkg/io"
)

const triangleJSON = `{
  "nodes": [
    {"id": "a", "position": [0, 0]},
    {"id": "b", "position": [120, 0]},
    {"id": "c", "position": [60, 90]}
  ],
  "edges": [
    {"from": "a", "to": "b"},
    {"from": "b", "to": "c", "control_points": [[100, 60]]},
    {"from": "c", "to": "a"}
  ]
}`

func newTestCLI() (*CLI, *bytes.Buffer) {
	var out bytes.Buffer
	return &CLI{Logger: newLogger(io.Discard, log.InfoLevel), Out: &out}, &out
}

func runCLI(t *testing.T, c *CLI, args ...string) error {
	t.Helper()
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(t.Context())
}

func writeTriangle(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "triangle.json")
	if err := os.WriteFile(path, []byte(triangleJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in      string
		def     string
		want    []string
		wantErr bool
	}{
		{"", "json", []string{"json"}, false},
		{"svg", "json", []string{"svg"}, false},
		{"json, dot,png", "svg", []string{"json", "dot", "png"}, false},
		{"gif", "json", nil, true},
		{"svg,", "json", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseFormats(tt.in, tt.def)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		output  string
		suffix  string
		formats []string
		want    map[string]string
	}{
		{"derived", "g.json", "", ".layout", []string{"json"}, map[string]string{"json": "g.layout.json"}},
		{"explicit single", "g.json", "out.txt", ".layout", []string{"json"}, map[string]string{"json": "out.txt"}},
		{"explicit base", "g.json", "out/draw", "", []string{"svg", "png"}, map[string]string{"svg": "out/draw.svg", "png": "out/draw.png"}},
		{"base strips format ext", "g.json", "draw.svg", "", []string{"svg", "dot"}, map[string]string{"svg": "draw.svg", "dot": "draw.dot"}},
		{"multi derived", "dir/g.json", "", ".layout", []string{"json", "svg"}, map[string]string{"json": "dir/g.layout.json", "svg": "dir/g.layout.svg"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputPaths(tt.input, tt.output, tt.suffix, tt.formats)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCacheDirOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(cacheDirEnv, dir)
	got, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if got != dir {
		t.Errorf("cacheDir() = %q, want %q", got, dir)
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c, _ := newTestCLI()
	root := c.RootCommand()
	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"layout", "render", "watch", "serve", "config", "cache", "completion"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing subcommand %q in %v", want, names)
		}
	}
}

func TestConfigDefaultRoundTrip(t *testing.T) {
	c, out := newTestCLI()
	if err := runCLI(t, c, "config", "default"); err != nil {
		t.Fatal(err)
	}
	got, err := config.Parse(strings.NewReader(out.String()))
	if err != nil {
		t.Fatalf("Parse printed preset: %v\n%s", err, out.String())
	}
	if !reflect.DeepEqual(got, config.Default()) {
		t.Errorf("printed preset does not round-trip:\n%s", out.String())
	}
}

func TestConfigCheck(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.toml")
	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(good, []byte(config.Default().String()), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("iterations = 10\nbogus = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, out := newTestCLI()
	if err := runCLI(t, c, "config", "check", good); err != nil {
		t.Fatalf("check good: %v", err)
	}
	if !strings.Contains(out.String(), "ok") {
		t.Errorf("output = %q", out.String())
	}
	if err := runCLI(t, c, "config", "check", bad); err == nil {
		t.Error("check bad: expected error")
	}
}

func TestLayoutCommand(t *testing.T) {
	t.Setenv(cacheDirEnv, t.TempDir())
	input := writeTriangle(t)
	base := filepath.Join(filepath.Dir(input), "result")

	c, _ := newTestCLI()
	if err := runCLI(t, c, "layout", input, "-n", "5", "-f", "json,dot", "-o", base); err != nil {
		t.Fatal(err)
	}

	doc, err := impredio.ImportJSON(base + ".json")
	if err != nil {
		t.Fatalf("read layout: %v", err)
	}
	if doc.Graph.NodeCount() != 3 || doc.Graph.EdgeCount() != 3 {
		t.Errorf("layout has %d nodes, %d edges", doc.Graph.NodeCount(), doc.Graph.EdgeCount())
	}
	dot, err := os.ReadFile(base + ".dot")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(dot, []byte("digraph")) {
		t.Errorf("dot output starts with %.20q", dot)
	}
}

func TestLayoutCommandErrors(t *testing.T) {
	input := writeTriangle(t)
	tests := []struct {
		name string
		args []string
	}{
		{"bad format", []string{"layout", input, "-f", "gif", "--no-cache"}},
		{"negative iterations", []string{"layout", input, "-n", "-1", "--no-cache"}},
		{"missing input", []string{"layout", input + ".missing", "--no-cache"}},
		{"missing config", []string{"layout", input, "-c", input + ".toml", "--no-cache"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCLI()
			if err := runCLI(t, c, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRenderCommand(t *testing.T) {
	input := writeTriangle(t)
	output := filepath.Join(filepath.Dir(input), "drawing.dot")

	c, _ := newTestCLI()
	if err := runCLI(t, c, "render", input, "-f", "dot", "-o", output, "--no-cache"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `pos="120,0!"`) {
		t.Errorf("node b not pinned at its input position:\n%s", data)
	}
}

func TestCachePath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(cacheDirEnv, dir)

	c, out := newTestCLI()
	if err := runCLI(t, c, "cache", "path"); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out.String()); got != dir {
		t.Errorf("cache path = %q, want %q", got, dir)
	}
	if err := runCLI(t, c, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
}

func TestCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			c, out := newTestCLI()
			if err := runCLI(t, c, "completion", shell); err != nil {
				t.Fatal(err)
			}
			if out.Len() == 0 {
				t.Error("empty completion script")
			}
		})
	}
}

func TestBackendKinds(t *testing.T) {
	tests := []struct {
		name  string
		flags serveFlags
		store string
		cache string
	}{
		{"defaults", serveFlags{}, "memory", "file"},
		{"mongo", serveFlags{mongoURI: "mongodb://db", mongoDB: "impred"}, "mongo (impred)", "file"},
		{"redis", serveFlags{cache: cacheOptions{redisAddr: "localhost:6379"}}, "memory", "redis (localhost:6379)"},
		{"disabled wins", serveFlags{cache: cacheOptions{disabled: true, redisAddr: "x"}}, "memory", "disabled"},
		{"scoped", serveFlags{cache: cacheOptions{scope: "staging"}}, "memory", "file, scope staging"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := storeKind(tt.flags); got != tt.store {
				t.Errorf("storeKind = %q, want %q", got, tt.store)
			}
			if got := cacheKind(tt.flags.cache); got != tt.cache {
				t.Errorf("cacheKind = %q, want %q", got, tt.cache)
			}
		})
	}
}

func TestCacheScope(t *testing.T) {
	opts := cache.LayoutKeyOpts{ConfigHash: "c", Iterations: 10}
	plain := cacheOptions{}.keyer().LayoutKey("g", opts)
	scoped := cacheOptions{scope: "staging"}.keyer().LayoutKey("g", opts)
	if scoped != "staging:"+plain {
		t.Errorf("scoped key = %q, want prefix staging: on %q", scoped, plain)
	}
}
