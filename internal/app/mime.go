package app

import (
	"log"
	"mime"
)

// Some minimal container images ship without /etc/mime.types, which breaks
// Content-Type on the embedded stylesheet.
func init() {
	ensureMimeType(".css", "text/css; charset=utf-8")
}

func ensureMimeType(ext, typ string) {
	if mime.TypeByExtension(ext) != "" {
		return
	}
	if err := mime.AddExtensionType(ext, typ); err != nil {
		log.Printf("app: register MIME type for %s: %v", ext, err)
	}
}
