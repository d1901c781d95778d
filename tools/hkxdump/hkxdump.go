package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"sort"

	"github.com/cruisechaser/havok_browser/anim/spline"
	"github.com/cruisechaser/havok_browser/config"
	"github.com/cruisechaser/havok_browser/container"
	"github.com/cruisechaser/havok_browser/hkx/hkdef"
	"github.com/cruisechaser/havok_browser/hkx/tagfile"
	"github.com/cruisechaser/havok_browser/utils"
	"github.com/cruisechaser/havok_browser/utils/gltfutils"

	"gopkg.in/yaml.v3"
)

func dumpDefinitions(doc *tagfile.Document) {
	defs := make([]*tagfile.Definition, len(doc.Definitions))
	copy(defs, doc.Definitions)
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	for _, def := range defs {
		if def == nil {
			continue
		}
		if def.Parent != nil {
			fmt.Printf("%v : %v\n", def, def.Parent)
		} else {
			fmt.Printf("%v\n", def)
		}
		for _, f := range def.Fields {
			fmt.Printf("    %v\n", f)
		}
	}
}

func dumpAnimations(root interface{}, trace *utils.Logger) {
	c, err := hkdef.FindAnimationContainer(root)
	if err != nil {
		fmt.Printf("no animations: %v\n", err)
		return
	}
	for _, skel := range c.Skeletons {
		fmt.Printf("skeleton %q: %d bones\n", skel.Name, len(skel.Bones))
	}
	for i, binding := range c.Bindings {
		a, err := spline.Decode(binding, spline.Options{Log: trace})
		if err != nil {
			fmt.Printf("binding %d (%s): %v\n", i, binding.OriginalSkeletonName, err)
			continue
		}
		fmt.Printf("binding %d (%s): %.3fs, %d parts, bones %v\n",
			i, binding.OriginalSkeletonName, a.Duration(), len(a.Parts), a.AffectedBoneIndices())
	}
}

func main() {
	var showDefs, showYaml, showSpew, verbose bool
	var glbPath, encoding string
	flag.BoolVar(&showDefs, "defs", false, "Print type definitions")
	flag.BoolVar(&showYaml, "yaml", false, "Print node graph as yaml")
	flag.BoolVar(&showSpew, "spew", false, "Dump deserialized records")
	flag.BoolVar(&verbose, "v", false, "Print decode traces")
	flag.StringVar(&glbPath, "glb", "", "Export skeleton and animations to glb file")
	flag.StringVar(&encoding, "encoding", "", "Encoding of PAP and SKLB names (utf-8, shift_jis, ...)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <file.hkx|pap|sklb>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	s := config.DefaultSettings()
	if encoding != "" {
		s.Encoding = encoding
	}
	if err := s.Apply(); err != nil {
		log.Fatal(err)
	}
	var trace *utils.Logger
	if verbose {
		trace = utils.NewLogger(os.Stderr, "")
	}

	data, err := ioutil.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	cf, err := container.Open(data)
	if err != nil {
		log.Fatal(err)
	}
	if cf.Pap != nil {
		for _, clip := range cf.Pap.Animations {
			fmt.Printf("clip %q -> animation %d\n", clip.Name, clip.Index)
		}
	}

	root, doc, err := hkdef.Decode(cf.Havok, tagfile.NewDefinitionMap())
	if doc != nil {
		fmt.Printf("%s: tagfile v%d, %d nodes, %d definitions\n",
			flag.Arg(0), doc.Version, doc.Nodes.Len(), len(doc.Definitions))
		if showDefs {
			dumpDefinitions(doc)
		}
		if showYaml {
			n, err := doc.YAML(doc.Root)
			if err != nil {
				log.Fatal(err)
			}
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			if err := enc.Encode(n); err != nil {
				log.Fatal(err)
			}
			enc.Close()
		}
	}
	if err != nil {
		log.Fatal(err)
	}

	if showSpew {
		utils.Dump(root)
	}
	dumpAnimations(root, trace)

	if glbPath != "" {
		c, err := hkdef.FindAnimationContainer(root)
		if err != nil {
			log.Fatal(err)
		}
		gdoc, err := gltfutils.ExportContainer(c, trace)
		if err != nil {
			log.Fatal(err)
		}
		f, err := os.Create(glbPath)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		if err := gltfutils.ExportBinary(f, gdoc); err != nil {
			log.Fatal(err)
		}
	}
}
