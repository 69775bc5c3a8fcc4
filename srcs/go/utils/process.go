package utils

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"syscall"
)

// ExitErr prints err with its caller and exits with status 1.
func ExitErr(err error) {
	_, file, line, _ := runtime.Caller(1)
	fmt.Fprintf(os.Stderr, "exit on error: %v at %s:%d\n", err, file, line)
	os.Exit(1)
}

// Trap calls cancel on the first SIGINT or SIGTERM.
func Trap(cancel func(os.Signal)) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() { cancel(<-c) }()
}

func ProgName() string { return filepath.Base(os.Args[0]) }

func LogArgs() {
	for i, a := range os.Args {
		fmt.Printf("[arg] [%d]=%s\n", i, a)
	}
}

// LogHaloEnv prints the HALO_* variables of the environment, sorted.
func LogHaloEnv() {
	var kvs []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "HALO_") {
			kvs = append(kvs, kv)
		}
	}
	slices.Sort(kvs)
	for _, kv := range kvs {
		fmt.Printf("[halo-env]: %s\n", kv)
	}
}
