package web

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

func NewRouter(webPath string) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/json/files", HandlerAjaxFiles)
	r.HandleFunc("/json/file/{file}", HandlerAjaxFile)
	r.HandleFunc("/json/file/{file}/definitions", HandlerAjaxFileDefinitions)
	r.HandleFunc("/yaml/file/{file}", HandlerYamlFile)
	r.HandleFunc("/dump/file/{file}", HandlerDumpFile)
	r.HandleFunc("/raw/file/{file}", HandlerRawFile)
	r.HandleFunc("/gltf/file/{file}", HandlerGltfFile)

	if webPath != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(webPath)))
	}

	h := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(r)
	return handlers.LoggingHandler(os.Stdout, h)
}

func StartServer(addr string, dir string, webPath string) error {
	ServerDirectory = dir

	log.Printf("[web] Starting server %v, serving %q", addr, dir)

	return http.ListenAndServe(addr, NewRouter(webPath))
}
