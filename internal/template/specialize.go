package template

import (
	"bytes"
	"fmt"
	"os"

	"github.com/Jordan-Sun/geos-chem/internal/utils"
)

// Specializer turns a neutral template into a script for one execution environment.
type Specializer interface {
	Specialize(t *Template, partition string) *Template
}

// SpecializeFile rewrites the script at path in place. The file is only
// written when the specialized text differs, so a second pass leaves it
// untouched. Returns whether the file changed.
func SpecializeFile(path string, s Specializer, partition string) (bool, error) {
	orig, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, fmt.Errorf("%w: %s", ErrNoScript, path)
		}
		return false, err
	}

	out := s.Specialize(parseString(string(orig)), partition).Render()
	if bytes.Equal(out, orig) {
		utils.PrintDebug("Script already specialized: %s", utils.StylePath(path))
		return false, nil
	}

	if err := utils.WriteFileAtomic(path, out, utils.PermExec); err != nil {
		return false, fmt.Errorf("failed to rewrite %s: %w", path, err)
	}
	utils.PrintDebug("Specialized %s", utils.StylePath(path))
	return true, nil
}
