package main

import (
	"gunit"
	"gunit/internal/metadata"
	"gunit/internal/samples"
)

var version = "dev"

func main() {
	samples.Register(metadata.DefaultCatalog)
	gunit.Version = version
	gunit.Main()
}
