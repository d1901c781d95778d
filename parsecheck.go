package main

import (
	"io/ioutil"
	"log"
	"path/filepath"
	"sort"

	"github.com/cruisechaser/havok_browser/anim/spline"
	"github.com/cruisechaser/havok_browser/container"
	"github.com/cruisechaser/havok_browser/hkx/hkdef"
	"github.com/cruisechaser/havok_browser/hkx/tagfile"
	"github.com/cruisechaser/havok_browser/utils"
)

// parseCheck decodes every file of dir and every animation binding inside,
// returning how many files failed.
func parseCheck(dir string, verbose *utils.Logger) int {
	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		log.Fatal(err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	defs := tagfile.NewDefinitionMap()
	failed := 0
	for _, name := range names {
		data, err := ioutil.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Printf("%s: %v", name, err)
			failed++
			continue
		}
		cf, err := container.Open(data)
		if err != nil {
			verbose.Printf("%s: skipped: %v", name, err)
			continue
		}
		root, _, err := hkdef.Decode(cf.Havok, defs)
		if err != nil {
			log.Printf("%s: %v", name, err)
			failed++
			continue
		}

		c, err := hkdef.FindAnimationContainer(root)
		if err != nil {
			verbose.Printf("%s: %v", name, err)
			continue
		}
		for i, binding := range c.Bindings {
			a, err := spline.Decode(binding, spline.Options{Log: verbose})
			if err != nil {
				log.Printf("%s: binding %d: %v", name, i, err)
				failed++
				break
			}
			verbose.Printf("%s: binding %d: %.3fs, %d bones", name, i, a.Duration(), len(a.AffectedBoneIndices()))
		}
	}

	log.Printf("checked %d files, %d definitions known, %d failed", len(names), len(defs), failed)
	return failed
}
