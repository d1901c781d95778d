package web

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"path/filepath"
	"sort"
	"sync"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/cruisechaser/havok_browser/anim/spline"
	"github.com/cruisechaser/havok_browser/container"
	"github.com/cruisechaser/havok_browser/hkx/hkdef"
	"github.com/cruisechaser/havok_browser/hkx/tagfile"
	"github.com/cruisechaser/havok_browser/utils"
	"github.com/cruisechaser/havok_browser/utils/gltfutils"
	"github.com/cruisechaser/havok_browser/webutils"
)

var ServerDirectory string

// Verbose receives decode traces when set.
var Verbose *utils.Logger

// definitions are shared by every parse so files from one game reuse one schema.
var definitions = struct {
	sync.Mutex
	m tagfile.DefinitionMap
}{m: tagfile.NewDefinitionMap()}

type openedFile struct {
	Name      string
	Container *container.File
	Doc       *tagfile.Document
	Root      interface{}
}

func readServerFile(name string) ([]byte, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return nil, errors.Errorf("invalid file name %q", name)
	}
	return ioutil.ReadFile(filepath.Join(ServerDirectory, name))
}

func openFile(name string) (*openedFile, error) {
	data, err := readServerFile(name)
	if err != nil {
		return nil, err
	}
	cf, err := container.Open(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", name)
	}

	definitions.Lock()
	defer definitions.Unlock()

	root, doc, err := hkdef.Decode(cf.Havok, definitions.m)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", name)
	}
	return &openedFile{Name: name, Container: cf, Doc: doc, Root: root}, nil
}

type SkeletonSummary struct {
	Name    string       `json:"name"`
	Bones   []string     `json:"bones"`
	Parents []int32      `json:"parents"`
	Euler   [][3]float32 `json:"euler"`
}

type AnimationSummary struct {
	Binding       int     `json:"binding"`
	Skeleton      string  `json:"skeleton"`
	Duration      float32 `json:"duration"`
	AffectedBones []int   `json:"affected_bones"`
	Error         string  `json:"error,omitempty"`
}

type FileSummary struct {
	Name        string             `json:"name"`
	Kind        string             `json:"kind"`
	Clips       []string           `json:"clips,omitempty"`
	Version     int                `json:"version"`
	RootType    string             `json:"root_type"`
	Nodes       int                `json:"nodes"`
	Definitions int                `json:"definitions"`
	Skeletons   []SkeletonSummary  `json:"skeletons,omitempty"`
	Animations  []AnimationSummary `json:"animations,omitempty"`
}

func summarize(f *openedFile) *FileSummary {
	fs := &FileSummary{
		Name:        f.Name,
		Kind:        f.Container.Kind.String(),
		Version:     f.Doc.Version,
		RootType:    fmt.Sprintf("%T", f.Root),
		Nodes:       f.Doc.Nodes.Len(),
		Definitions: len(f.Doc.Definitions),
	}
	if f.Container.Pap != nil {
		for _, a := range f.Container.Pap.Animations {
			fs.Clips = append(fs.Clips, a.Name)
		}
	}

	c, err := hkdef.FindAnimationContainer(f.Root)
	if err != nil {
		return fs
	}

	for _, skel := range c.Skeletons {
		if skel == nil {
			continue
		}
		ss := SkeletonSummary{Name: skel.Name, Parents: skel.ParentIndices}
		for _, b := range skel.Bones {
			if b == nil {
				ss.Bones = append(ss.Bones, "")
			} else {
				ss.Bones = append(ss.Bones, b.Name)
			}
		}
		for _, pose := range skel.ReferencePose {
			ss.Euler = append(ss.Euler, utils.RoundV3(utils.RadiansToDegreeV3(utils.QuatToEuler(pose.Rotation)), 3))
		}
		fs.Skeletons = append(fs.Skeletons, ss)
	}

	for i, binding := range c.Bindings {
		if binding == nil {
			continue
		}
		as := AnimationSummary{Binding: i, Skeleton: binding.OriginalSkeletonName}
		if a, err := spline.Decode(binding, spline.Options{Log: Verbose}); err != nil {
			as.Error = err.Error()
		} else {
			as.Duration = a.Duration()
			as.AffectedBones = a.AffectedBoneIndices()
		}
		fs.Animations = append(fs.Animations, as)
	}
	return fs
}

func HandlerAjaxFiles(w http.ResponseWriter, r *http.Request) {
	entries, err := ioutil.ReadDir(ServerDirectory)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	webutils.WriteJson(w, files)
}

func HandlerAjaxFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	f, err := openFile(file)
	if err != nil {
		log.Printf("[web] Error opening %q: %v", file, err)
		webutils.WriteError(w, err)
	} else {
		webutils.WriteJson(w, summarize(f))
	}
}

func HandlerAjaxFileDefinitions(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	f, err := openFile(file)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	type jField struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	type jDefinition struct {
		Name   string   `json:"name"`
		Parent string   `json:"parent,omitempty"`
		Fields []jField `json:"fields"`
	}
	result := make([]jDefinition, 0, len(f.Doc.Definitions))
	for _, def := range f.Doc.Definitions {
		jd := jDefinition{Name: def.String(), Fields: make([]jField, 0, len(def.Fields))}
		if def.Parent != nil {
			jd.Parent = def.Parent.String()
		}
		for _, field := range def.Fields {
			jd.Fields = append(jd.Fields, jField{Name: field.Name, Type: field.Type.String()})
		}
		result = append(result, jd)
	}
	webutils.WriteJson(w, result)
}

func HandlerYamlFile(w http.ResponseWriter, r *http.Request) {
	f, err := openFile(mux.Vars(r)["file"])
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	node, err := f.Doc.YAML(f.Doc.Root)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteYaml(w, node)
}

func HandlerDumpFile(w http.ResponseWriter, r *http.Request) {
	f, err := openFile(mux.Vars(r)["file"])
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteText(w, utils.SDump(f.Root))
}

func HandlerRawFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	f, err := openFile(file)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteFile(w, bytes.NewReader(f.Container.Havok), file+".hkx")
}

func HandlerGltfFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	f, err := openFile(file)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	c, err := hkdef.FindAnimationContainer(f.Root)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	doc, err := gltfutils.ExportContainer(c, Verbose)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := gltfutils.ExportBinary(&buf, doc); err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteFile(w, &buf, file+".glb")
}
