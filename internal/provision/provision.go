// Package provision prepares the integration-test root directory: it resolves
// the requested paths, runs the external creation tool and scans what the
// tool produced.
package provision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Jordan-Sun/geos-chem/internal/config"
	"github.com/Jordan-Sun/geos-chem/internal/utils"
)

// Request names the root directory to populate and the environment file the
// creation tool should use.
type Request struct {
	Root    string
	EnvFile string
	Quick   bool
}

// ScriptPair is the compile and execute script of one directory.
// An empty path means the script is absent.
type ScriptPair struct {
	Compile string
	Execute string
}

// Paths returns the non-empty paths of the pair.
func (p ScriptPair) Paths() []string {
	var out []string
	for _, s := range []string{p.Compile, p.Execute} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// RunDir is one generated test run-directory.
type RunDir struct {
	Name    string
	Path    string
	Scripts ScriptPair
}

// RunDirectorySet is the result of a successful provisioning.
type RunDirectorySet struct {
	Root string
	// Entry is the root-level pair that gets submitted.
	Entry   ScriptPair
	RunDirs []RunDir
}

// Scripts lists every script in the set: the entry pair first, then each
// run-directory's scripts in directory order.
func (s *RunDirectorySet) Scripts() []string {
	out := s.Entry.Paths()
	for _, rd := range s.RunDirs {
		out = append(out, rd.Scripts.Paths()...)
	}
	return out
}

// Layout describes where scripts live inside a provisioned root.
type Layout struct {
	ScriptsDir    string
	CompileScript string
	ExecuteScript string
	LockFile      string
}

// LayoutFrom extracts the layout from settings.
func LayoutFrom(s config.Settings) Layout {
	return Layout{
		ScriptsDir:    s.ScriptsDir,
		CompileScript: s.CompileScript,
		ExecuteScript: s.ExecuteScript,
		LockFile:      s.LockFile,
	}
}

// Directories the creation tool fills with support files rather than tests.
var reservedDirs = map[string]bool{
	"scripts":   true,
	"logs":      true,
	"build":     true,
	"exe_files": true,
	"env":       true,
}

func (l Layout) isReserved(name string) bool {
	return reservedDirs[name] || name == l.ScriptsDir || utils.IsHidden(name)
}

// Resolve makes the request paths absolute and checks the environment file.
func Resolve(req Request) (Request, error) {
	root, err := filepath.Abs(req.Root)
	if err != nil {
		return req, &ProvisioningError{Op: "resolve", Path: req.Root, Err: err}
	}
	envFile, err := filepath.Abs(req.EnvFile)
	if err != nil {
		return req, &ProvisioningError{Op: "resolve", Path: req.EnvFile, Err: err}
	}

	info, err := os.Stat(envFile)
	if err != nil {
		return req, &ProvisioningError{Op: "resolve", Path: envFile, Err: fmt.Errorf("%w: %v", ErrInvalidEnvFile, err)}
	}
	if !info.Mode().IsRegular() {
		return req, &ProvisioningError{Op: "resolve", Path: envFile, Err: ErrInvalidEnvFile}
	}

	return Request{Root: root, EnvFile: envFile, Quick: req.Quick}, nil
}

// Provisioner populates a root directory with the creation tool.
type Provisioner struct {
	Layout  Layout
	Creator Creator
}

// Provision checks that req.Root holds nothing but the lock file, runs the
// creation tool and scans the result. req must already be resolved.
func (p *Provisioner) Provision(ctx context.Context, req Request) (*RunDirectorySet, error) {
	if err := utils.EnsureDir(req.Root); err != nil {
		return nil, &ProvisioningError{Op: "create", Path: req.Root, Err: err}
	}
	existing, err := utils.ListEntries(req.Root, p.Layout.LockFile)
	if err != nil {
		return nil, &ProvisioningError{Op: "create", Path: req.Root, Err: err}
	}
	if len(existing) > 0 {
		return nil, &ProvisioningError{
			Op:   "create",
			Path: req.Root,
			Err:  fmt.Errorf("%w (found %s)", ErrRootNotEmpty, existing[0]),
		}
	}

	utils.PrintMessage("Creating integration test directories in %s", utils.StylePath(req.Root))
	if err := p.Creator.Create(ctx, req); err != nil {
		return nil, &ProvisioningError{Op: "create", Path: req.Root, Err: err}
	}

	return Scan(req.Root, p.Layout)
}

// Scan reads a provisioned root. The entry script pair must exist; run
// directory scripts are optional.
func Scan(root string, layout Layout) (*RunDirectorySet, error) {
	scripts := filepath.Join(root, layout.ScriptsDir)
	set := &RunDirectorySet{
		Root: root,
		Entry: ScriptPair{
			Compile: filepath.Join(scripts, layout.CompileScript),
			Execute: filepath.Join(scripts, layout.ExecuteScript),
		},
	}
	for _, path := range set.Entry.Paths() {
		if !utils.FileExists(path) {
			return nil, &ProvisioningError{Op: "scan", Path: path, Err: ErrMissingScript}
		}
	}

	names, err := utils.ListEntries(root)
	if err != nil {
		return nil, &ProvisioningError{Op: "scan", Path: root, Err: err}
	}
	for _, name := range names {
		dir := filepath.Join(root, name)
		if layout.isReserved(name) || !utils.DirExists(dir) {
			continue
		}
		rd := RunDir{Name: name, Path: dir}
		if c := filepath.Join(dir, layout.CompileScript); utils.FileExists(c) {
			rd.Scripts.Compile = c
		}
		if e := filepath.Join(dir, layout.ExecuteScript); utils.FileExists(e) {
			rd.Scripts.Execute = e
		}
		set.RunDirs = append(set.RunDirs, rd)
	}

	utils.PrintDebug("Found %s run directories in %s", utils.StyleNumber(len(set.RunDirs)), utils.StylePath(root))
	return set, nil
}
