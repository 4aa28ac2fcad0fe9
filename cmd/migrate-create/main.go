package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

func main() {
	name := flag.String("name", "", "migration name")
	dir := flag.String("dir", filepath.Join("db", "migrations"), "migrations directory")
	flag.Parse()

	if *name == "" {
		log.Fatal("migration name is required")
	}
	if strings.ContainsAny(*name, " \t") {
		log.Fatal("migration name must not contain whitespace")
	}

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		log.Fatalf("create migrations dir: %v", err)
	}

	base := time.Now().UTC().Format("20060102150405") + "_" + *name
	stubs := map[string]string{
		base + ".up.sql":   "-- up migration\n",
		base + ".down.sql": "-- down migration\n",
	}
	for _, suffix := range []string{".up.sql", ".down.sql"} {
		file := base + suffix
		path := filepath.Join(*dir, file)
		if err := writeStub(path, stubs[file]); err != nil {
			log.Fatalf("create migration: %v", err)
		}
		log.Printf("created %s", path)
	}
}

func writeStub(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("file already exists: %s", path)
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
