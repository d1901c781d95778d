package main

import (
	"flag"
	"log"
	"os"

	"github.com/cruisechaser/havok_browser/config"
	"github.com/cruisechaser/havok_browser/utils"
	"github.com/cruisechaser/havok_browser/web"
)

func main() {
	var settingsPath, addr, dir, webRoot, encoding string
	var verbose, check bool
	flag.StringVar(&settingsPath, "config", "havok_browser.yaml", "Path to yaml settings")
	flag.StringVar(&addr, "i", "", "Address of server")
	flag.StringVar(&dir, "dir", "", "Path to folder with hkx, pap and sklb files")
	flag.StringVar(&webRoot, "web", "", "Path to static web files")
	flag.StringVar(&encoding, "encoding", "", "Encoding of PAP and SKLB names (utf-8, shift_jis, ...)")
	flag.BoolVar(&verbose, "v", false, "Print decode traces")
	flag.BoolVar(&check, "check", false, "Parse every file in -dir and exit")
	flag.Parse()

	s, err := config.LoadSettings(settingsPath)
	if err != nil {
		log.Fatal(err)
	}
	if addr != "" {
		s.Addr = addr
	}
	if dir != "" {
		s.DataDir = dir
	}
	if webRoot != "" {
		s.WebRoot = webRoot
	}
	if encoding != "" {
		s.Encoding = encoding
	}
	if verbose {
		s.Verbose = true
	}
	if err := s.Apply(); err != nil {
		log.Fatal(err)
	}

	if s.Verbose {
		web.Verbose = utils.NewLogger(os.Stderr, "")
	}

	if check {
		if failed := parseCheck(s.DataDir, web.Verbose); failed != 0 {
			log.Fatalf("%d files failed", failed)
		}
		return
	}

	if err := web.StartServer(s.Addr, s.DataDir, s.WebRoot); err != nil {
		log.Fatal(err)
	}
}
