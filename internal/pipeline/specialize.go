package pipeline

import (
	"github.com/Jordan-Sun/geos-chem/internal/provision"
	"github.com/Jordan-Sun/geos-chem/internal/template"
	"github.com/Jordan-Sun/geos-chem/internal/utils"
)

// SpecializeSet rewrites every script of set for the given specializer and
// returns how many files changed. Every path in the set was found on disk by
// the scan, so a script vanishing in between is an error.
func SpecializeSet(set *provision.RunDirectorySet, s template.Specializer, partition string) (int, error) {
	changed := 0
	for _, path := range set.Scripts() {
		ok, err := template.SpecializeFile(path, s, partition)
		if err != nil {
			return changed, err
		}
		if ok {
			changed++
		}
	}
	utils.PrintDebug("Specialized %s of %s scripts", utils.StyleNumber(changed), utils.StyleNumber(len(set.Scripts())))
	return changed, nil
}
