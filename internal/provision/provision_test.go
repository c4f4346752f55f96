package provision

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Jordan-Sun/geos-chem/internal/command"
	"github.com/Jordan-Sun/geos-chem/internal/config"
)

// fakeCreator lays out a root the way the creation tool does.
type fakeCreator struct {
	runDirs []string
	skip    string // script name left out of the scripts dir
	err     error
	calls   []Request
}

func (f *fakeCreator) Create(_ context.Context, req Request) error {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return f.err
	}
	layout := LayoutFrom(config.Defaults())
	scripts := filepath.Join(req.Root, layout.ScriptsDir)
	for _, dir := range append([]string{scripts, filepath.Join(req.Root, "logs")}, f.runDirs...) {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(req.Root, dir)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	for _, name := range []string{layout.CompileScript, layout.ExecuteScript} {
		if name == f.skip {
			continue
		}
		if err := os.WriteFile(filepath.Join(scripts, name), []byte("#!/bin/bash\n"), 0755); err != nil {
			return err
		}
	}
	return nil
}

func envFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gcclassic.env")
	if err := os.WriteFile(path, []byte("module load gcc\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolve(t *testing.T) {
	env := envFile(t)
	testChdir(t, filepath.Dir(env))

	got, err := Resolve(Request{Root: "itest", EnvFile: filepath.Base(env), Quick: true})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	cwd, _ := os.Getwd()
	want := Request{Root: filepath.Join(cwd, "itest"), EnvFile: filepath.Join(cwd, filepath.Base(env)), Quick: true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Resolve (-want +got):\n%s", diff)
	}
}

func TestResolveInvalidEnvFile(t *testing.T) {
	dir := t.TempDir()
	for _, env := range []string{filepath.Join(dir, "missing.env"), dir} {
		_, err := Resolve(Request{Root: filepath.Join(dir, "root"), EnvFile: env})
		if !errors.Is(err, ErrInvalidEnvFile) {
			t.Errorf("Resolve(env=%s) err = %v, want ErrInvalidEnvFile", env, err)
		}
		if !IsProvisioningError(err) {
			t.Errorf("Resolve(env=%s) err is not a ProvisioningError", env)
		}
	}
}

func TestProvision(t *testing.T) {
	root := filepath.Join(t.TempDir(), "itest")
	creator := &fakeCreator{runDirs: []string{"gc_4x5_merra2_fullchem", "gc_2x25_merra2_CH4", ".hidden", "build"}}
	p := &Provisioner{Layout: LayoutFrom(config.Defaults()), Creator: creator}
	req := Request{Root: root, EnvFile: envFile(t)}

	set, err := p.Provision(context.Background(), req)
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if len(creator.calls) != 1 || creator.calls[0] != req {
		t.Errorf("creator calls = %+v", creator.calls)
	}

	wantEntry := ScriptPair{
		Compile: filepath.Join(root, "scripts", "integrationTestCompile.sh"),
		Execute: filepath.Join(root, "scripts", "integrationTestExecute.sh"),
	}
	if diff := cmp.Diff(wantEntry, set.Entry); diff != "" {
		t.Errorf("Entry (-want +got):\n%s", diff)
	}

	var names []string
	for _, rd := range set.RunDirs {
		names = append(names, rd.Name)
	}
	if diff := cmp.Diff([]string{"gc_2x25_merra2_CH4", "gc_4x5_merra2_fullchem"}, names); diff != "" {
		t.Errorf("run dirs (-want +got):\n%s", diff)
	}
}

func TestProvisionRefusesPopulatedRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "leftover"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	creator := &fakeCreator{}
	p := &Provisioner{Layout: LayoutFrom(config.Defaults()), Creator: creator}

	_, err := p.Provision(context.Background(), Request{Root: root, EnvFile: envFile(t)})
	if !errors.Is(err, ErrRootNotEmpty) {
		t.Fatalf("err = %v, want ErrRootNotEmpty", err)
	}
	if len(creator.calls) != 0 {
		t.Error("creation tool ran on a populated root")
	}
}

func TestProvisionIgnoresLockFile(t *testing.T) {
	root := t.TempDir()
	layout := LayoutFrom(config.Defaults())
	lock, err := LockRoot(root, layout.LockFile)
	if err != nil {
		t.Fatal(err)
	}
	defer lock.Release()

	p := &Provisioner{Layout: layout, Creator: &fakeCreator{}}
	if _, err := p.Provision(context.Background(), Request{Root: root, EnvFile: envFile(t)}); err != nil {
		t.Fatalf("Provision with lock held: %v", err)
	}
}

func TestProvisionCreatorFailure(t *testing.T) {
	cause := errors.New("intTestCreate.sh exited with status 1")
	p := &Provisioner{Layout: LayoutFrom(config.Defaults()), Creator: &fakeCreator{err: cause}}

	_, err := p.Provision(context.Background(), Request{Root: t.TempDir(), EnvFile: envFile(t)})
	if !errors.Is(err, cause) {
		t.Fatalf("err = %v, want creator failure", err)
	}
	var pe *ProvisioningError
	if !errors.As(err, &pe) || pe.Op != "create" {
		t.Errorf("err = %#v, want create ProvisioningError", err)
	}
}

func TestScanMissingEntryScript(t *testing.T) {
	root := t.TempDir()
	layout := LayoutFrom(config.Defaults())
	if err := (&fakeCreator{skip: layout.ExecuteScript}).Create(context.Background(), Request{Root: root}); err != nil {
		t.Fatal(err)
	}

	_, err := Scan(root, layout)
	if !errors.Is(err, ErrMissingScript) {
		t.Fatalf("err = %v, want ErrMissingScript", err)
	}
}

func TestScanRunDirScripts(t *testing.T) {
	root := t.TempDir()
	layout := LayoutFrom(config.Defaults())
	if err := (&fakeCreator{runDirs: []string{"gc_merra2"}}).Create(context.Background(), Request{Root: root}); err != nil {
		t.Fatal(err)
	}
	own := filepath.Join(root, "gc_merra2", layout.CompileScript)
	if err := os.WriteFile(own, []byte("#!/bin/bash\n"), 0755); err != nil {
		t.Fatal(err)
	}

	set, err := Scan(root, layout)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{set.Entry.Compile, set.Entry.Execute, own}
	if diff := cmp.Diff(want, set.Scripts()); diff != "" {
		t.Errorf("Scripts() (-want +got):\n%s", diff)
	}
}

func TestLockRootExclusive(t *testing.T) {
	root := filepath.Join(t.TempDir(), "new-root")
	first, err := LockRoot(root, ".orchestrate.lock")
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}

	if _, err := LockRoot(root, ".orchestrate.lock"); !errors.Is(err, ErrRootLocked) {
		t.Fatalf("second lock err = %v, want ErrRootLocked", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(first.Path()); !os.IsNotExist(err) {
		t.Error("lock file left behind")
	}

	again, err := LockRoot(root, ".orchestrate.lock")
	if err != nil {
		t.Fatalf("relock after release: %v", err)
	}
	again.Release()
}

func TestCommandCreatorArgs(t *testing.T) {
	tests := []struct {
		command string
		quick   bool
		want    []string
	}{
		{"./intTestCreate.sh", false, []string{"./intTestCreate.sh", "/it", "/env", "no"}},
		{"./intTestCreate.sh", true, []string{"./intTestCreate.sh", "/it", "/env", "yes"}},
		{`bash "my dir/intTestCreate.sh" --verbose`, false, []string{"bash", "my dir/intTestCreate.sh", "--verbose", "/it", "/env", "no"}},
	}
	for _, tt := range tests {
		c := NewCommandCreator(tt.command, &command.FakeCommander{})
		got, err := c.Args(Request{Root: "/it", EnvFile: "/env", Quick: tt.quick})
		if err != nil {
			t.Fatalf("Args(%q): %v", tt.command, err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Args(%q) (-want +got):\n%s", tt.command, diff)
		}
	}

	if _, err := NewCommandCreator("   ", nil).Args(Request{}); err == nil {
		t.Error("empty command accepted")
	}
}

func TestCommandCreatorCreate(t *testing.T) {
	fake := &command.FakeCommander{}
	c := NewCommandCreator("./intTestCreate.sh", fake)
	if err := c.Create(context.Background(), Request{Root: "/it", EnvFile: "/env"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	calls := fake.Calls()
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
	if diff := cmp.Diff([]string{"./intTestCreate.sh", "/it", "/env", "no"}, calls[0].Args); diff != "" {
		t.Errorf("args (-want +got):\n%s", diff)
	}

	fake.Err = errors.New("boom")
	if err := c.Create(context.Background(), Request{Root: "/it", EnvFile: "/env"}); !errors.Is(err, fake.Err) {
		t.Errorf("err = %v, want wrapped runner error", err)
	}
}

// testChdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func testChdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
